package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DocumentKind selects the prefix and padding of a generated document number.
type DocumentKind string

const (
	DocContract      DocumentKind = "contract"
	DocPurchaseOrder DocumentKind = "purchase_order"
	DocPayment       DocumentKind = "payment"
)

type documentFormat struct {
	prefix string
	width  int
}

var documentFormats = map[DocumentKind]documentFormat{
	DocContract:      {"CON", 4},
	DocPurchaseOrder: {"PO", 5},
	DocPayment:       {"PAY", 6},
}

// FormatDocumentNumber renders e.g. CON-2025-0001, PO-2025-00001, PAY-2025-000001.
func FormatDocumentNumber(kind DocumentKind, year, seq int) (string, error) {
	f, ok := documentFormats[kind]
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	if seq <= 0 {
		return "", fmt.Errorf("sequence must be positive, got %d", seq)
	}
	return fmt.Sprintf("%s-%04d-%0*d", f.prefix, year, f.width, seq), nil
}

// DocumentNumber is a parsed document number.
type DocumentNumber struct {
	Prefix string
	Year   int
	Seq    int
}

var documentPattern = regexp.MustCompile(`^([A-Z]+)-(\d{4})-(\d+)$`)

// ParseDocumentNumber splits a generated number into its parts.
func ParseDocumentNumber(number string) (DocumentNumber, error) {
	m := documentPattern.FindStringSubmatch(number)
	if m == nil {
		return DocumentNumber{}, fmt.Errorf("invalid document number format: %s", number)
	}
	year, _ := strconv.Atoi(m[2])
	seq, err := strconv.Atoi(m[3])
	if err != nil {
		return DocumentNumber{}, fmt.Errorf("invalid sequence in %s: %w", number, err)
	}
	return DocumentNumber{Prefix: m[1], Year: year, Seq: seq}, nil
}

// CompareDocumentNumbers orders numbers by prefix, year then sequence,
// falling back to string comparison for anything unparseable.
// Returns -1, 0 or 1.
func CompareDocumentNumbers(a, b string) int {
	if a == b {
		return 0
	}
	pa, errA := ParseDocumentNumber(a)
	pb, errB := ParseDocumentNumber(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	if pa.Prefix != pb.Prefix {
		return strings.Compare(pa.Prefix, pb.Prefix)
	}
	if pa.Year != pb.Year {
		return cmpInt(pa.Year, pb.Year)
	}
	return cmpInt(pa.Seq, pb.Seq)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
