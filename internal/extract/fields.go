// Package extract pulls structured freight fields out of raw OCR text using
// ordered regex cascades. It is a heuristic, best-effort layer: every
// extracted value is provisional and carries no confidence beyond pattern
// order.
package extract

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// BOL number provenance values.
const (
	SourceOCR       = "ocr"
	SourceFilename  = "filename"
	SourceGenerated = "generated"
)

// Fields holds the freight fields recovered from a document.
type Fields struct {
	BOLNumber       string `json:"bolNumber,omitempty"`
	BOLNumberSource string `json:"bolNumberSource,omitempty"`
	PONumber        string `json:"poNumber,omitempty"`
	MCNumber        string `json:"mcNumber,omitempty"`
	CarrierName     string `json:"carrierName,omitempty"`
	CustomerName    string `json:"customerName,omitempty"`
	TrailerNumber   string `json:"trailerNumber,omitempty"`
	Weight          string `json:"weight,omitempty"`
	ShipDate        string `json:"shipDate,omitempty"`
	DeliveryDate    string `json:"deliveryDate,omitempty"`
}

// Extract scans the text lines with each field's ordered pattern list.
// Fields are extracted independently of one another; for each field the
// first pattern/line combination that matches wins. Pure function: identical
// input always yields identical output.
func Extract(lines []string) Fields {
	var f Fields
	for _, spec := range fieldSpecs {
	patterns:
		for _, re := range spec.patterns {
			for _, line := range lines {
				m := re.FindStringSubmatch(line)
				if m == nil {
					continue
				}
				value := m[len(m)-1]
				if spec.clean != nil {
					value = spec.clean(value)
				}
				if value == "" {
					continue
				}
				spec.assign(&f, value)
				break patterns
			}
		}
	}
	return f
}

// ResolveBOLNumber guarantees a non-empty BOL reference. When OCR found
// nothing, the number is recovered from the original filename; failing that,
// a placeholder is synthesized so downstream code always has a key. The
// provenance is recorded in BOLNumberSource.
func ResolveBOLNumber(f *Fields, originalName string) {
	if f.BOLNumber != "" {
		if f.BOLNumberSource == "" {
			f.BOLNumberSource = SourceOCR
		}
		return
	}
	if m := filenameBOLPattern.FindStringSubmatch(originalName); m != nil {
		f.BOLNumber = m[1]
		f.BOLNumberSource = SourceFilename
		return
	}
	f.BOLNumber = generatedBOLNumber()
	f.BOLNumberSource = SourceGenerated
}

func generatedBOLNumber() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("GEN-%08d", time.Now().UnixNano()%100000000)
	}
	n := binary.BigEndian.Uint32(b[:]) % 100000000
	return fmt.Sprintf("GEN-%08d", n)
}
