package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/plfog/backoffice/internal/bootstrap"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/spf13/cobra"
)

func newBillTabsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bill-tabs",
		Short: "Bill all members with outstanding tab balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *bootstrap.App) error {
				_, err := a.Services.Tabs.BillTabs(ctx, cmd.OutOrStdout())
				return err
			})
		},
	}
}

func newPayoutReportCommand(opts *options) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "payout-report",
		Short: "Aggregate paid orders in a period into pending payouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := shared.ParseDate(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			to, err := shared.ParseDate(end)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			return opts.run(cmd, true, func(ctx context.Context, a *bootstrap.App) error {
				payouts, err := a.Services.Payouts.ProcessPayoutReport(ctx, from, to)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				var total int64
				for _, p := range payouts {
					total += p.Amount
					fmt.Fprintf(out, "%-6s %s  %s\n", p.PayeeType, p.PayeeID, shared.FormatCents(p.Amount))
				}
				fmt.Fprintf(out, "Created %s payouts for %s to %s, total %s\n",
					humanize.Comma(int64(len(payouts))), start, end, shared.FormatCents(total))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day of the period (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
