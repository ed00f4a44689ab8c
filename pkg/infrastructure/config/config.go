package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the procure.yaml file layout.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Logging       LoggingConfig       `yaml:"logging"`
	Tracing       TracingConfig       `yaml:"tracing"`
	Procurement   ProcurementConfig   `yaml:"procurement"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Output is a file path; empty writes spans to stdout.
	Output string `yaml:"output"`
}

type ProcurementConfig struct {
	ContractExpiryDays  int           `yaml:"contract_expiry_days"`
	InvoiceDueSoonDays  int           `yaml:"invoice_due_soon_days"`
	DefaultCurrency     string        `yaml:"default_currency"`
	AutoSchedulePayment bool          `yaml:"auto_schedule_payment"`
	SweepInterval       time.Duration `yaml:"sweep_interval"`
}

type NotificationsConfig struct {
	FinanceEmails []string `yaml:"finance_emails"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{Driver: "memory"},
		Logging: LoggingConfig{Level: "info"},
		Procurement: ProcurementConfig{
			ContractExpiryDays: 30,
			InvoiceDueSoonDays: 7,
			DefaultCurrency:    "USD",
			SweepInterval:      time.Hour,
		},
	}
}

// Load reads path over the defaults, applies PROCURE_* environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
		return nil
	}

	str("PROCURE_SERVER_ADDR", &c.Server.Addr)
	str("PROCURE_STORAGE_DRIVER", &c.Storage.Driver)
	str("PROCURE_STORAGE_DSN", &c.Storage.DSN)
	str("PROCURE_LOG_LEVEL", &c.Logging.Level)
	str("PROCURE_TRACING_OUTPUT", &c.Tracing.Output)
	str("PROCURE_DEFAULT_CURRENCY", &c.Procurement.DefaultCurrency)
	if err := boolean("PROCURE_LOG_DEVELOPMENT", &c.Logging.Development); err != nil {
		return err
	}
	if err := boolean("PROCURE_TRACING_ENABLED", &c.Tracing.Enabled); err != nil {
		return err
	}
	if err := boolean("PROCURE_AUTO_SCHEDULE_PAYMENT", &c.Procurement.AutoSchedulePayment); err != nil {
		return err
	}
	if v, ok := lookup("PROCURE_SWEEP_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PROCURE_SWEEP_INTERVAL: %w", err)
		}
		c.Procurement.SweepInterval = d
	}
	if v, ok := lookup("PROCURE_FINANCE_EMAILS"); ok {
		c.Notifications.FinanceEmails = nil
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				c.Notifications.FinanceEmails = append(c.Notifications.FinanceEmails, e)
			}
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q (want memory or sqlite)", c.Storage.Driver)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Procurement.ContractExpiryDays <= 0 {
		return fmt.Errorf("procurement.contract_expiry_days must be positive, got %d", c.Procurement.ContractExpiryDays)
	}
	if c.Procurement.InvoiceDueSoonDays <= 0 {
		return fmt.Errorf("procurement.invoice_due_soon_days must be positive, got %d", c.Procurement.InvoiceDueSoonDays)
	}
	if c.Procurement.SweepInterval <= 0 {
		return fmt.Errorf("procurement.sweep_interval must be positive, got %s", c.Procurement.SweepInterval)
	}
	if len(c.Procurement.DefaultCurrency) != 3 {
		return fmt.Errorf("procurement.default_currency must be a 3-letter code, got %q", c.Procurement.DefaultCurrency)
	}
	return nil
}
