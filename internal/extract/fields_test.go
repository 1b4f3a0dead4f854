package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractBOLNumberLabelVariants(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"BOL No: 445566", "445566"},
		{"Bill of Lading Number: ABC-1234", "ABC-1234"},
		{"BOL# 77889900", "77889900"},
		{"bol num = X99Y88", "X99Y88"},
	}
	for _, tc := range cases {
		f := Extract([]string{tc.line})
		if f.BOLNumber != tc.want {
			t.Fatalf("Extract(%q).BOLNumber = %q, want %q", tc.line, f.BOLNumber, tc.want)
		}
	}
}

func TestExtractBOLNumberStandaloneFallback(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"ref hzl-123456 attached", "HZL-123456"},
		{"WXYZ9876543", "WXYZ9876543"},
		{"shipment total 123456789012 confirmed", "123456789012"},
	}
	for _, tc := range cases {
		f := Extract([]string{tc.line})
		if f.BOLNumber != tc.want {
			t.Fatalf("Extract(%q).BOLNumber = %q, want %q", tc.line, f.BOLNumber, tc.want)
		}
		if f.BOLNumberSource != SourceOCR {
			t.Fatalf("Extract(%q).BOLNumberSource = %q, want %q", tc.line, f.BOLNumberSource, SourceOCR)
		}
	}
}

func TestExtractBOLNumberLabeledBeatsStandalone(t *testing.T) {
	lines := []string{
		"4455667788",
		"BOL No: 111111",
	}
	f := Extract(lines)
	if f.BOLNumber != "111111" {
		t.Fatalf("bolNumber = %q, want labeled match to win over bare number", f.BOLNumber)
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	lines := []string{
		"BOL No: 111111",
		"BOL No: 222222",
	}
	f := Extract(lines)
	if f.BOLNumber != "111111" {
		t.Fatalf("expected first match to win, got %q", f.BOLNumber)
	}
}

func TestExtractFieldsAreIndependent(t *testing.T) {
	lines := []string{
		"Carrier: Swift Transportation",
		"PO Number: PO-556677",
		"MC# 123456",
		"Trailer No: TR-4411",
		"Gross Weight: 42,500 lbs",
	}
	f := Extract(lines)
	if f.CarrierName != "Swift Transportation" {
		t.Fatalf("carrier = %q", f.CarrierName)
	}
	if f.PONumber != "PO-556677" {
		t.Fatalf("po = %q", f.PONumber)
	}
	if f.MCNumber != "123456" {
		t.Fatalf("mc = %q", f.MCNumber)
	}
	if f.TrailerNumber != "TR-4411" {
		t.Fatalf("trailer = %q", f.TrailerNumber)
	}
	if f.Weight != "42500" {
		t.Fatalf("weight = %q, want commas stripped", f.Weight)
	}
	if f.BOLNumber != "" {
		t.Fatalf("unexpected BOL number %q", f.BOLNumber)
	}
}

func TestExtractIsPure(t *testing.T) {
	lines := []string{"BOL No: 445566", "Carrier: ACME Freight"}
	first := Extract(lines)
	second := Extract(lines)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical input gave different output: %+v vs %+v", first, second)
	}
}

func TestResolveBOLNumberFromOCR(t *testing.T) {
	f := Fields{BOLNumber: "445566"}
	ResolveBOLNumber(&f, "bol_scan.jpg")
	if f.BOLNumber != "445566" || f.BOLNumberSource != SourceOCR {
		t.Fatalf("got %q source %q", f.BOLNumber, f.BOLNumberSource)
	}
}

func TestResolveBOLNumberFilenameFallback(t *testing.T) {
	var f Fields
	ResolveBOLNumber(&f, "bol_BOL-998877.pdf")
	if f.BOLNumber != "998877" {
		t.Fatalf("bolNumber = %q, want 998877", f.BOLNumber)
	}
	if f.BOLNumberSource != SourceFilename {
		t.Fatalf("source = %q, want %q", f.BOLNumberSource, SourceFilename)
	}
}

func TestResolveBOLNumberGeneratedFallback(t *testing.T) {
	var f Fields
	ResolveBOLNumber(&f, "scan_001.jpg")
	if !strings.HasPrefix(f.BOLNumber, "GEN-") {
		t.Fatalf("bolNumber = %q, want GEN- prefix", f.BOLNumber)
	}
	if f.BOLNumberSource != SourceGenerated {
		t.Fatalf("source = %q, want %q", f.BOLNumberSource, SourceGenerated)
	}
}

func TestExtractCustomerAndDates(t *testing.T) {
	lines := []string{
		"Ship To: Acme Distribution Center",
		"Ship Date: 08/15/2026",
		"Delivery Date: 08/18/2026",
	}
	f := Extract(lines)
	if f.CustomerName != "Acme Distribution Center" {
		t.Fatalf("customer = %q", f.CustomerName)
	}
	if f.ShipDate != "08/15/2026" {
		t.Fatalf("shipDate = %q", f.ShipDate)
	}
	if f.DeliveryDate != "08/18/2026" {
		t.Fatalf("deliveryDate = %q", f.DeliveryDate)
	}
}
