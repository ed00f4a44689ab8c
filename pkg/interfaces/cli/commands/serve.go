package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/procure/pkg/infrastructure/sweeper"
	"github.com/vsinha/procure/pkg/infrastructure/tracing"
	"github.com/vsinha/procure/pkg/interfaces/api"
)

func newServeCommand(a *app) *cobra.Command {
	var seedDir string
	var noSweep bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, seedDir, !noSweep)
		},
	}
	cmd.Flags().StringVar(&seedDir, "seed", "", "Seed the store from the CSV files in this directory before serving")
	cmd.Flags().BoolVar(&noSweep, "no-sweep", false, "Disable the contract and invoice sweep")
	return cmd
}

func (a *app) serve(ctx context.Context, seedDir string, sweep bool) error {
	if a.cfg.Tracing.Enabled {
		shutdown, err := tracing.Init("procure", Version, a.cfg.Tracing.Output)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				a.logger.Warn("tracing shutdown failed", zap.Error(err))
			}
		}()
	}

	rt, err := a.open(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			a.logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	if seedDir != "" {
		counts, err := a.seed(ctx, rt.store, seedFiles(seedDir))
		if err != nil {
			return err
		}
		a.logger.Info("store seeded", zap.String("dir", seedDir), zap.Object("counts", counts))
	}

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      api.NewServer(rt.services, rt.store.Users(), a.logger),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if sweep {
		s := sweeper.New(rt.services.Contracts, rt.services.Invoices, sweeper.Config{
			Interval: a.cfg.Procurement.SweepInterval,
		}, a.logger)
		g.Go(func() error {
			return s.Start(gctx)
		})
	}

	return g.Wait()
}
