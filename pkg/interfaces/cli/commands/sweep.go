package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/procure/pkg/infrastructure/sweeper"
)

func newSweepCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire lapsed contracts and count expiring contracts and overdue invoices once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := a.open(ctx, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			s := sweeper.New(rt.services.Contracts, rt.services.Invoices, sweeper.Config{
				Interval: a.cfg.Procurement.SweepInterval,
			}, a.logger)
			report, err := s.RunOnce(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Expired: %d\nExpiring: %d\nOverdue: %d\n",
				report.Expired, report.Expiring, report.Overdue)
			return err
		},
	}
}
