package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/procure/pkg/application/services"
	"github.com/vsinha/procure/pkg/domain/entities"
	"github.com/vsinha/procure/pkg/infrastructure/config"
)

func init() {
	services.PasswordCost = 4
}

var demoTime = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func testApp(t *testing.T) *app {
	t.Helper()
	return &app{
		cfg:    config.Default(),
		logger: zaptest.NewLogger(t),
		clock:  func() time.Time { return demoTime },
	}
}

func TestDemoRunsToPaidInvoice(t *testing.T) {
	a := testApp(t)

	summary, err := a.demo(context.Background(), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "CON-2025-0001", summary.ContractNo)
	assert.Equal(t, "PO-2025-00001", summary.PONumber)
	assert.Equal(t, entities.InvoicePaid, summary.InvoiceStatus)
	assert.Equal(t, []string{"PAY-2025-000001", "PAY-2025-000002"}, summary.Payments)
	assert.NotZero(t, summary.Notifications)
	assert.NotZero(t, summary.Events)
}

func TestDemoVerboseOutput(t *testing.T) {
	a := testApp(t)
	a.flags.Verbose = true

	var buf bytes.Buffer
	require.NoError(t, a.runDemo(context.Background(), &buf))
	out := buf.String()
	assert.Contains(t, out, "Registered Northwind Seating (pending)")
	assert.Contains(t, out, "Demo Summary")
	assert.Contains(t, out, "Invoice:       paid")
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "procure dev\n", buf.String())
}

func TestSeedRequiresInput(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"seed", "--log-level", "error"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to seed")
}

func TestUnknownConfigFails(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"sweep", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSeedThenReportAgainstSQLite(t *testing.T) {
	dir := t.TempDir()
	seedDir := filepath.Join(dir, "seed")
	require.NoError(t, os.MkdirAll(seedDir, 0755))

	writeFile(t, filepath.Join(seedDir, "categories.csv"), `id,name,slug,description,status,sort_order
cat-office,Office Supplies,,,active,1
`)
	writeFile(t, filepath.Join(seedDir, "vendors.csv"), `id,company_name,category_id,contact_name,contact_email,contact_phone,tax_id,status,user_id
vendor-acme,Acme Supplies,cat-office,Alice Acme,alice@acme.test,,,active,
`)
	// users.csv is absent and skipped.

	cfgPath := filepath.Join(dir, "procure.yaml")
	writeFile(t, cfgPath, "storage:\n  driver: sqlite\n  dsn: "+filepath.Join(dir, "procure.db")+"\nlogging:\n  level: error\n")

	run := func(args ...string) string {
		t.Helper()
		root := NewRootCommand()
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetArgs(append(args, "--config", cfgPath))
		require.NoError(t, root.Execute())
		return buf.String()
	}

	assert.Equal(t, "Seeded 1 categories, 0 users, 1 vendors\n", run("seed", "--dir", seedDir))

	csvOut := run("report", "rankings", "--format", "csv")
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Rank,Vendor,Category,Rating,Reviews", lines[0])
	assert.Equal(t, "1,Acme Supplies,cat-office,0.00,0", lines[1])

	assert.Contains(t, run("report", "overdue"), "Nothing to report.")
	assert.Equal(t, "Expired: 0\nExpiring: 0\nOverdue: 0\n", run("sweep"))
}
