package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/procure/pkg/application/services"
	"github.com/vsinha/procure/pkg/domain/repositories"
	"github.com/vsinha/procure/pkg/infrastructure/config"
	"github.com/vsinha/procure/pkg/infrastructure/events"
	"github.com/vsinha/procure/pkg/infrastructure/logging"
	"github.com/vsinha/procure/pkg/infrastructure/notifications"
	"github.com/vsinha/procure/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/procure/pkg/infrastructure/repositories/sqlite"
)

// Version is stamped into traces and the version output.
var Version = "dev"

// Config holds the global flags shared by every command.
type Config struct {
	ConfigFile string
	LogLevel   string
	Verbose    bool
}

// app is the state PersistentPreRunE prepares for the subcommands.
type app struct {
	flags  Config
	cfg    config.Config
	logger *zap.Logger
	clock  func() time.Time
}

// NewRootCommand builds the procure command tree.
func NewRootCommand() *cobra.Command {
	a := &app{clock: time.Now}

	root := &cobra.Command{
		Use:   "procure",
		Short: "Vendor management and procurement workflow",
		Long: `procure runs the vendor onboarding, RFQ, contract, purchase order and
invoice workflow as an HTTP service, and provides maintenance commands
for seeding data, running the scheduled sweep and printing reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.flags.ConfigFile, "config", "c", "", "Path to procure.yaml")
	root.PersistentFlags().StringVar(&a.flags.LogLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVarP(&a.flags.Verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		newServeCommand(a),
		newSeedCommand(a),
		newSweepCommand(a),
		newReportCommand(a),
		newDemoCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.flags.ConfigFile)
	if err != nil {
		return err
	}
	if a.flags.LogLevel != "" {
		cfg.Logging.Level = a.flags.LogLevel
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// runtime is an opened store with the services wired over it.
type runtime struct {
	store    repositories.Store
	services *services.Services
	events   *events.InMemoryEventStore
	closers  []func() error
}

func (rt *runtime) Close() error {
	var first error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// open connects the configured store and builds the services.
func (a *app) open(ctx context.Context, notifier notifications.Notifier) (*runtime, error) {
	rt := &runtime{}

	switch a.cfg.Storage.Driver {
	case "sqlite":
		store, err := sqlite.Open(ctx, a.cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		rt.store = store
		rt.closers = append(rt.closers, store.Close)
	default:
		rt.store = memory.NewStore()
	}

	rt.events = events.NewInMemoryEventStore(a.logger)
	rt.closers = append(rt.closers, rt.events.Close)
	if err := events.LogActivity(rt.events, a.logger, events.FinanceEvents); err != nil {
		rt.Close()
		return nil, err
	}

	if notifier == nil {
		notifier = notifications.NewLogNotifier(a.logger)
	}
	rt.services = services.New(services.Deps{
		Store:    rt.store,
		Events:   rt.events,
		Notifier: notifier,
		Logger:   a.logger,
		Clock:    a.clock,
		Options:  a.options(),
	})

	a.logger.Debug("store opened", zap.String("driver", a.cfg.Storage.Driver))
	return rt, nil
}

func (a *app) options() services.Options {
	p := a.cfg.Procurement
	return services.Options{
		ContractExpiryDays:  p.ContractExpiryDays,
		InvoiceDueSoonDays:  p.InvoiceDueSoonDays,
		DefaultCurrency:     p.DefaultCurrency,
		AutoSchedulePayment: p.AutoSchedulePayment,
		FinanceEmails:       a.cfg.Notifications.FinanceEmails,
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "procure %s\n", Version)
		},
	}
}
