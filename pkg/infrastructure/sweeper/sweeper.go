// Package sweeper runs the periodic housekeeping jobs: expiring contracts past
// their end date and reporting overdue invoices and contracts about to expire.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/vsinha/procure/pkg/domain/entities"
)

// ContractJobs is the contract side of a sweep.
type ContractJobs interface {
	ExpireContracts(ctx context.Context) ([]*entities.Contract, error)
	ExpiringContracts(ctx context.Context, days int) ([]*entities.Contract, error)
}

// InvoiceJobs is the invoice side of a sweep.
type InvoiceJobs interface {
	OverdueInvoices(ctx context.Context) ([]*entities.Invoice, error)
}

// Report counts what one sweep found.
type Report struct {
	Expired  int `json:"expired"`
	Expiring int `json:"expiring"`
	Overdue  int `json:"overdue"`
}

// Config controls the sweep cadence.
type Config struct {
	Interval time.Duration
}

// Sweeper runs the jobs once at start and then on every tick.
type Sweeper struct {
	config    Config
	contracts ContractJobs
	invoices  InvoiceJobs
	logger    *zap.Logger
}

// New creates a sweeper. A nil logger disables logging.
func New(contracts ContractJobs, invoices InvoiceJobs, config Config, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		config:    config,
		contracts: contracts,
		invoices:  invoices,
		logger:    logger.Named("sweeper"),
	}
}

// Start sweeps until ctx is cancelled. Failed sweeps are logged and the loop
// carries on.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.config.Interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.config.Interval)
	}
	s.sweepAndLog(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Sweeper) sweepAndLog(ctx context.Context) {
	report, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
	}
	s.logger.Info("sweep finished",
		zap.Int("expired", report.Expired),
		zap.Int("expiring", report.Expiring),
		zap.Int("overdue", report.Overdue))
}

// RunOnce performs a single sweep. Every job runs even if an earlier one
// fails; the errors are combined.
func (s *Sweeper) RunOnce(ctx context.Context) (Report, error) {
	var (
		report Report
		errs   error
	)

	expired, err := s.contracts.ExpireContracts(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to expire contracts: %w", err))
	}
	report.Expired = len(expired)
	for _, c := range expired {
		s.logger.Info("contract expired", zap.String("contract", c.Number), zap.String("vendor", c.VendorID))
	}

	expiring, err := s.contracts.ExpiringContracts(ctx, 0)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to list expiring contracts: %w", err))
	}
	report.Expiring = len(expiring)
	for _, c := range expiring {
		s.logger.Warn("contract expiring soon",
			zap.String("contract", c.Number),
			zap.Time("end_date", c.EndDate))
	}

	overdue, err := s.invoices.OverdueInvoices(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to list overdue invoices: %w", err))
	}
	report.Overdue = len(overdue)
	for _, inv := range overdue {
		s.logger.Warn("invoice overdue",
			zap.String("invoice", inv.Number),
			zap.String("vendor", inv.VendorID),
			zap.Time("due_date", inv.DueDate))
	}

	return report, errs
}
