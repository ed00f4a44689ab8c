package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vsinha/procure/pkg/interfaces/cli/output"
)

func newReportCommand(a *app) *cobra.Command {
	var config output.Config

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print procurement reports",
	}
	cmd.PersistentFlags().StringVarP(&config.Format, "format", "f", "text", "Output format: text, json, csv, svg (expiring only)")
	cmd.PersistentFlags().StringVarP(&config.OutputDir, "output", "o", "", "Write the report to this directory instead of stdout")

	// build runs one report against a freshly opened store.
	build := func(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) (output.Report, error)) error {
		ctx := cmd.Context()
		rt, err := a.open(ctx, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		report, err := fn(ctx, rt)
		if err != nil {
			return err
		}
		config.Verbose = a.flags.Verbose
		config.Out = cmd.OutOrStdout()
		return output.Generate(report, config)
	}

	var days int
	var category string

	overdue := &cobra.Command{
		Use:   "overdue",
		Short: "Open invoices past their due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return build(cmd, func(ctx context.Context, rt *runtime) (output.Report, error) {
				invoices, err := rt.services.Invoices.OverdueInvoices(ctx)
				return output.OverdueInvoices(invoices, a.clock()), err
			})
		},
	}

	dueSoon := &cobra.Command{
		Use:   "due-soon",
		Short: "Approved invoices falling due within --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return build(cmd, func(ctx context.Context, rt *runtime) (output.Report, error) {
				invoices, err := rt.services.Invoices.InvoicesDueSoon(ctx, days)
				return output.InvoicesDueSoon(invoices), err
			})
		},
	}
	dueSoon.Flags().IntVar(&days, "days", 0, "Window in days (default from procurement.invoice_due_soon_days)")

	expiring := &cobra.Command{
		Use:   "expiring",
		Short: "Active contracts ending within --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return build(cmd, func(ctx context.Context, rt *runtime) (output.Report, error) {
				contracts, err := rt.services.Contracts.ExpiringContracts(ctx, days)
				return output.ExpiringContracts(contracts, a.clock()), err
			})
		},
	}
	expiring.Flags().IntVar(&days, "days", 0, "Window in days (default from procurement.contract_expiry_days)")

	rankings := &cobra.Command{
		Use:   "rankings",
		Short: "Active vendors ordered by average rating",
		RunE: func(cmd *cobra.Command, args []string) error {
			return build(cmd, func(ctx context.Context, rt *runtime) (output.Report, error) {
				ranked, err := rt.services.Rating.Rankings(ctx, category)
				return output.VendorRankings(ranked), err
			})
		},
	}
	rankings.Flags().StringVar(&category, "category", "", "Restrict to one category ID")

	cmd.AddCommand(overdue, dueSoon, expiring, rankings)
	return cmd
}
