package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
)

var today = time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)

func overdueFixture() []*entities.Invoice {
	return []*entities.Invoice{
		{
			Number:   "INV-7",
			VendorID: "vendor-acme",
			Amount:   decimal.RequireFromString("1250.5"),
			DueDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Status:   entities.InvoiceApproved,
		},
	}
}

func TestOverdueInvoicesRows(t *testing.T) {
	report := OverdueInvoices(overdueFixture(), today)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, []string{"INV-7", "vendor-acme", "1250.50", "2025-03-10", "10", "approved"}, report.Rows[0])
}

func TestExpiringContractsDaysLeft(t *testing.T) {
	report := ExpiringContracts([]*entities.Contract{{
		Number:  "CON-2025-0001",
		Title:   "Chairs",
		Value:   decimal.NewFromInt(12000),
		EndDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}}, today)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "12", report.Rows[0][5])
	assert.Equal(t, "12000.00", report.Rows[0][3])
}

func TestGenerateText(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(VendorRankings([]dto.VendorRanking{
		{Rank: 1, CompanyName: "Acme Supplies", CategoryID: "cat-office", RatingAverage: decimal.RequireFromString("4.5"), Reviews: 2},
	}), Config{Format: "text", Out: &buf})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Vendor Rankings (1)")
	assert.Contains(t, out, "Acme Supplies")
	assert.Contains(t, out, "4.50")
}

func TestGenerateTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(InvoicesDueSoon(nil), Config{Format: "text", Out: &buf}))
	assert.Contains(t, buf.String(), "Nothing to report.")
}

func TestGenerateJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(InvoicesDueSoon(nil), Config{Format: "json", Out: &buf}))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestGenerateCSVToDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	var buf bytes.Buffer
	err := Generate(OverdueInvoices(overdueFixture(), today), Config{Format: "csv", OutputDir: dir, Verbose: true, Out: &buf})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "overdue_invoices.csv")

	file, err := os.Open(filepath.Join(dir, "overdue_invoices.csv"))
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Invoice", records[0][0])
	assert.Equal(t, "INV-7", records[1][0])
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	err := Generate(Report{}, Config{Format: "xml"})
	assert.EqualError(t, err, "unsupported output format: xml")
}

func TestContractTimelineSVG(t *testing.T) {
	contracts := []*entities.Contract{
		{
			Number:    "CON-2025-0001",
			VendorID:  "vendor-acme",
			Title:     "Chairs & desks",
			Status:    entities.ContractActive,
			StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Number:    "CON-2025-0002",
			VendorID:  "vendor-globex",
			Title:     "Printers",
			Status:    entities.ContractRenewed,
			StartDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	svg := NewContractTimeline(contracts, today).GenerateSVG(contracts)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, "vendor-acme")
	assert.Contains(t, svg, "vendor-globex")
	assert.Contains(t, svg, "Chairs &amp; desks")
	assert.NotContains(t, svg, "Chairs & desks")
	assert.Contains(t, svg, `class="today-line"`)
	assert.Contains(t, svg, barColor(entities.ContractRenewed))
}

func TestContractTimelineEmpty(t *testing.T) {
	svg := NewContractTimeline(nil, today).GenerateSVG(nil)
	assert.Contains(t, svg, "No Contracts Found")
}

func TestGenerateSVG(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(ExpiringContracts(nil, today), Config{Format: "svg", OutputDir: dir}))
	data, err := os.ReadFile(filepath.Join(dir, "expiring_contracts.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	err = Generate(VendorRankings(nil), Config{Format: "svg", Out: &bytes.Buffer{}})
	assert.EqualError(t, err, "svg format is not available for vendor_rankings")
}
