package extract

import (
	"regexp"
	"strings"
)

// fieldSpec binds a target field to its ordered pattern list. Patterns are
// tried most-specific first; the first pattern/line combination that matches
// wins for the field and scanning stops there (first-match-wins, not
// best-match). Callers depend on this precedence, imprecise as it is.
type fieldSpec struct {
	name     string
	patterns []*regexp.Regexp
	clean    func(string) string
	assign   func(f *Fields, value string)
}

var fieldSpecs = []fieldSpec{
	{
		name: "bolNumber",
		patterns: compile(
			`(?i)\bBOL\s*(?:#|No\.?|Number|NUM)?\s*[:=]?\s*([A-Z0-9-]{4,20})\b`,
			`(?i)\b(?:Bill\s+of\s+Lading|B/L)\s*(?:#|No\.?|Number|NUM)?\s*[:=]?\s*([A-Z0-9-]{4,20})\b`,
			`(?i)\b(?:SHIPMENT|TRACKING)\s*[#:]\s*([A-Z0-9-]{6,20})\b`,
			// Unlabeled references, tried only after every labeled form fails:
			// a short alpha prefix with a long digit run, or a bare long number.
			`(?i)\b[A-Z]{3,4}-?[0-9]{6,10}\b`,
			`\b[0-9]{10,12}\b`,
		),
		clean: cleanReference,
		assign: func(f *Fields, v string) {
			f.BOLNumber = v
			f.BOLNumberSource = SourceOCR
		},
	},
	{
		name: "poNumber",
		patterns: compile(
			`(?i)\bP\.?O\.?\s*(?:#|No\.?|Number)?\s*[:=]?\s*([A-Z0-9-]{3,20})\b`,
			`(?i)\bPurchase\s+Order\s*(?:#|No\.?)?\s*[:=]?\s*([A-Z0-9-]{3,20})\b`,
		),
		clean:  cleanReference,
		assign: func(f *Fields, v string) { f.PONumber = v },
	},
	{
		name: "mcNumber",
		patterns: compile(
			`(?i)\bMC\s*(?:#|No\.?)?\s*[:=]?\s*([0-9]{4,8})\b`,
			`(?i)\bMotor\s+Carrier\s*(?:#|No\.?)?\s*[:=]?\s*([0-9]{4,8})\b`,
		),
		assign: func(f *Fields, v string) { f.MCNumber = v },
	},
	{
		name: "carrierName",
		patterns: compile(
			`(?i)\bCarrier(?:\s+Name)?\s*[:=]\s*([A-Za-z0-9][A-Za-z0-9 &.,'-]{2,49})`,
			`(?i)\bSCAC\s*[:=]?\s*([A-Z]{2,4})\b`,
		),
		clean:  cleanName,
		assign: func(f *Fields, v string) { f.CarrierName = v },
	},
	{
		name: "customerName",
		patterns: compile(
			`(?i)\b(?:Customer|Consignee)\s*[:=]\s*([A-Za-z0-9][A-Za-z0-9 &.,'-]{2,49})`,
			`(?i)\bShip\s*To\s*[:=]\s*([A-Za-z0-9][A-Za-z0-9 &.,'-]{2,49})`,
		),
		clean:  cleanName,
		assign: func(f *Fields, v string) { f.CustomerName = v },
	},
	{
		name: "trailerNumber",
		patterns: compile(
			`(?i)\bTrailer\s*(?:#|No\.?|Number)?\s*[:=]?\s*([A-Z0-9-]{2,15})\b`,
		),
		clean:  cleanReference,
		assign: func(f *Fields, v string) { f.TrailerNumber = v },
	},
	{
		name: "weight",
		patterns: compile(
			`(?i)\b(?:Gross\s+)?Weight\s*(?:\(?\s*lbs?\.?\s*\)?|\(?\s*kgs?\.?\s*\)?)?\s*[:=]?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\b`,
			`(?i)\b([0-9]{1,3}(?:,[0-9]{3})+)\s*(?:lbs?|kgs?)\b`,
		),
		clean:  stripCommas,
		assign: func(f *Fields, v string) { f.Weight = v },
	},
	{
		name: "shipDate",
		patterns: compile(
			`(?i)\b(?:Ship\s+Date|Date\s+Shipped)\s*[:=]?\s*([0-9]{1,2}[-/][0-9]{1,2}[-/][0-9]{2,4})\b`,
		),
		assign: func(f *Fields, v string) { f.ShipDate = v },
	},
	{
		name: "deliveryDate",
		patterns: compile(
			`(?i)\b(?:Delivery\s+Date|Expected\s+Delivery)\s*[:=]?\s*([0-9]{1,2}[-/][0-9]{1,2}[-/][0-9]{2,4})\b`,
		),
		assign: func(f *Fields, v string) { f.DeliveryDate = v },
	},
}

// filenameBOLPattern recovers a BOL number embedded in the original filename.
var filenameBOLPattern = regexp.MustCompile(`(?i)BOL[-_]?([0-9]+)`)

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

var trailingPunct = regexp.MustCompile(`[,.:;]+$`)

func cleanName(s string) string {
	return strings.TrimSpace(trailingPunct.ReplaceAllString(strings.TrimSpace(s), ""))
}

func cleanReference(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
