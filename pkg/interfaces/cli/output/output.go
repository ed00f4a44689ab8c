package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/vsinha/procure/pkg/application/dto"
	"github.com/vsinha/procure/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Out receives stdout output. Nil means os.Stdout.
	Out io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Report is a rendered-ready table. Data is what the JSON format encodes.
type Report struct {
	Name    string
	Title   string
	Columns []string
	Rows    [][]string
	Data    interface{}
	// SVG renders a chart of the report. Nil when the report has none.
	SVG func() string
}

// Generate creates output in the specified format
func Generate(report Report, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, config)
	case "csv":
		return generateCSVOutput(report, config)
	case "svg":
		return generateSVGOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func generateTextOutput(report Report, config Config) error {
	w := config.out()
	fmt.Fprintf(w, "%s (%d)\n\n", report.Title, len(report.Rows))
	if len(report.Rows) == 0 {
		fmt.Fprintln(w, "Nothing to report.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeTabRow(tw, report.Columns)
	for _, row := range report.Rows {
		writeTabRow(tw, row)
	}
	return tw.Flush()
}

func writeTabRow(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

func generateJSONOutput(report Report, config Config) error {
	jsonData, err := json.MarshalIndent(report.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.out(), string(jsonData))
		return nil
	}

	filename, err := reportPath(config.OutputDir, report.Name, "json")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "JSON report saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes to OutputDir when set, stdout otherwise.
func generateCSVOutput(report Report, config Config) error {
	if config.OutputDir == "" {
		return writeCSV(config.out(), report)
	}

	filename, err := reportPath(config.OutputDir, report.Name, "csv")
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := writeCSV(file, report); err != nil {
		file.Close()
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "CSV report saved to: %s\n", filename)
	}
	return nil
}

func generateSVGOutput(report Report, config Config) error {
	if report.SVG == nil {
		return fmt.Errorf("svg format is not available for %s", report.Name)
	}
	chart := report.SVG()
	if config.OutputDir == "" {
		fmt.Fprintln(config.out(), chart)
		return nil
	}

	filename, err := reportPath(config.OutputDir, report.Name, "svg")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(chart), 0644); err != nil {
		return fmt.Errorf("failed to write SVG file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "Chart saved to: %s\n", filename)
	}
	return nil
}

func writeCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(report.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(report.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func reportPath(dir, name, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, name+"."+ext), nil
}

// OverdueInvoices lists open invoices past due, with days overdue as of today.
func OverdueInvoices(invoices []*entities.Invoice, today time.Time) Report {
	report := Report{
		Name:    "overdue_invoices",
		Title:   "Overdue Invoices",
		Columns: []string{"Invoice", "Vendor", "Amount", "Due Date", "Days Overdue", "Status"},
		Data:    nonNil(invoices),
	}
	day := entities.Day(today)
	for _, inv := range invoices {
		overdue := int(day.Sub(entities.Day(inv.DueDate)).Hours() / 24)
		report.Rows = append(report.Rows, []string{
			inv.Number,
			inv.VendorID,
			inv.Amount.StringFixed(2),
			inv.DueDate.Format(dateLayout),
			strconv.Itoa(overdue),
			string(inv.Status),
		})
	}
	return report
}

// InvoicesDueSoon lists approved invoices falling due within the window.
func InvoicesDueSoon(invoices []*entities.Invoice) Report {
	report := Report{
		Name:    "invoices_due_soon",
		Title:   "Invoices Due Soon",
		Columns: []string{"Invoice", "Vendor", "Amount", "Due Date", "Status"},
		Data:    nonNil(invoices),
	}
	for _, inv := range invoices {
		report.Rows = append(report.Rows, []string{
			inv.Number,
			inv.VendorID,
			inv.Amount.StringFixed(2),
			inv.DueDate.Format(dateLayout),
			string(inv.Status),
		})
	}
	return report
}

func ExpiringContracts(contracts []*entities.Contract, today time.Time) Report {
	report := Report{
		Name:    "expiring_contracts",
		Title:   "Expiring Contracts",
		Columns: []string{"Contract", "Vendor", "Title", "Value", "End Date", "Days Left"},
		Data:    nonNil(contracts),
		SVG: func() string {
			return NewContractTimeline(contracts, today).GenerateSVG(contracts)
		},
	}
	day := entities.Day(today)
	for _, c := range contracts {
		left := int(entities.Day(c.EndDate).Sub(day).Hours() / 24)
		report.Rows = append(report.Rows, []string{
			c.Number,
			c.VendorID,
			c.Title,
			c.Value.StringFixed(2),
			c.EndDate.Format(dateLayout),
			strconv.Itoa(left),
		})
	}
	return report
}

func VendorRankings(rankings []dto.VendorRanking) Report {
	report := Report{
		Name:    "vendor_rankings",
		Title:   "Vendor Rankings",
		Columns: []string{"Rank", "Vendor", "Category", "Rating", "Reviews"},
		Data:    nonNil(rankings),
	}
	for _, r := range rankings {
		report.Rows = append(report.Rows, []string{
			strconv.Itoa(r.Rank),
			r.CompanyName,
			r.CategoryID,
			r.RatingAverage.StringFixed(2),
			strconv.Itoa(r.Reviews),
		})
	}
	return report
}

// nonNil keeps empty reports encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
