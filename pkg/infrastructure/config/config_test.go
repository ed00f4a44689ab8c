package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 30, cfg.Procurement.ContractExpiryDays)
	assert.Equal(t, 7, cfg.Procurement.InvoiceDueSoonDays)
	assert.Equal(t, "USD", cfg.Procurement.DefaultCurrency)
	assert.Equal(t, time.Hour, cfg.Procurement.SweepInterval)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procure.yaml")
	yamlContent := `
server:
  addr: ":9090"
  read_timeout: 5s
storage:
  driver: sqlite
  dsn: /tmp/procure.db
logging:
  level: debug
procurement:
  contract_expiry_days: 45
  auto_schedule_payment: true
  sweep_interval: 15m
notifications:
  finance_emails:
    - ap@example.test
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 45, cfg.Procurement.ContractExpiryDays)
	assert.Equal(t, 7, cfg.Procurement.InvoiceDueSoonDays)
	assert.True(t, cfg.Procurement.AutoSchedulePayment)
	assert.Equal(t, 15*time.Minute, cfg.Procurement.SweepInterval)
	assert.Equal(t, []string{"ap@example.test"}, cfg.Notifications.FinanceEmails)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PROCURE_STORAGE_DRIVER", "sqlite")
	t.Setenv("PROCURE_STORAGE_DSN", "/var/lib/procure.db")
	t.Setenv("PROCURE_AUTO_SCHEDULE_PAYMENT", "true")
	t.Setenv("PROCURE_FINANCE_EMAILS", "a@x.test, b@x.test,")
	t.Setenv("PROCURE_SWEEP_INTERVAL", "30m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/procure.db", cfg.Storage.DSN)
	assert.True(t, cfg.Procurement.AutoSchedulePayment)
	assert.Equal(t, []string{"a@x.test", "b@x.test"}, cfg.Notifications.FinanceEmails)
	assert.Equal(t, 30*time.Minute, cfg.Procurement.SweepInterval)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to parse config file")

	t.Setenv("PROCURE_TRACING_ENABLED", "maybe")
	_, err = Load("")
	assert.ErrorContains(t, err, "invalid PROCURE_TRACING_ENABLED")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }, "unknown storage driver"},
		{"sqlite without dsn", func(c *Config) { c.Storage.Driver = "sqlite" }, "storage.dsn is required"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "unknown log level"},
		{"zero expiry window", func(c *Config) { c.Procurement.ContractExpiryDays = 0 }, "contract_expiry_days must be positive"},
		{"negative due soon", func(c *Config) { c.Procurement.InvoiceDueSoonDays = -1 }, "invoice_due_soon_days must be positive"},
		{"zero sweep", func(c *Config) { c.Procurement.SweepInterval = 0 }, "sweep_interval must be positive"},
		{"bad currency", func(c *Config) { c.Procurement.DefaultCurrency = "EURO" }, "3-letter code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
	assert.NoError(t, Default().Validate())
}
