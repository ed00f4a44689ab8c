package services

import "testing"

func TestFormatDocumentNumber(t *testing.T) {
	tests := []struct {
		name     string
		kind     DocumentKind
		year     int
		seq      int
		expected string
	}{
		{"contract", DocContract, 2025, 1, "CON-2025-0001"},
		{"purchase_order", DocPurchaseOrder, 2025, 42, "PO-2025-00042"},
		{"payment", DocPayment, 2026, 7, "PAY-2026-000007"},
		{"contract_overflow_width", DocContract, 2025, 12345, "CON-2025-12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatDocumentNumber(tt.kind, tt.year, tt.seq)
			if err != nil {
				t.Fatalf("FormatDocumentNumber failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("FormatDocumentNumber() = %s, want %s", got, tt.expected)
			}
		})
	}

	if _, err := FormatDocumentNumber("memo", 2025, 1); err == nil {
		t.Error("Expected error for unknown kind")
	}
	if _, err := FormatDocumentNumber(DocContract, 2025, 0); err == nil {
		t.Error("Expected error for zero sequence")
	}
}

func TestParseDocumentNumber(t *testing.T) {
	n, err := ParseDocumentNumber("PO-2025-00042")
	if err != nil {
		t.Fatalf("ParseDocumentNumber failed: %v", err)
	}
	if n.Prefix != "PO" || n.Year != 2025 || n.Seq != 42 {
		t.Errorf("Unexpected parse result %+v", n)
	}
	if _, err := ParseDocumentNumber("INV-42"); err == nil {
		t.Error("Expected error for malformed number")
	}
}

func TestCompareDocumentNumbers(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"equal", "PO-2025-00001", "PO-2025-00001", 0},
		{"sequence_order", "PO-2025-00009", "PO-2025-00010", -1},
		{"year_order", "PO-2026-00001", "PO-2025-09999", 1},
		{"prefix_order", "CON-2025-0001", "PO-2025-00001", -1},
		{"unparseable_fallback", "draft", "PO-2025-00001", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareDocumentNumbers(tt.a, tt.b); got != tt.expected {
				t.Errorf("CompareDocumentNumbers(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}
