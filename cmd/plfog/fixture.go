package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/plfog/backoffice/internal/application/fixture"
	"github.com/plfog/backoffice/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newGenerateFixtureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-fixture <csv>",
		Short: "Convert the legacy space spreadsheet into fixture JSON",
		Long: `Reads the spreadsheet export and writes fixture JSON to stdout.
The summary report and any warnings go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := fixture.Generate(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			if err := enc.Encode(res.Records()); err != nil {
				return err
			}
			if info, err := f.Stat(); err == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Read %s from %s\n", humanize.Bytes(uint64(info.Size())), args[0])
			}
			res.WriteReport(cmd.ErrOrStderr())
			return nil
		},
	}
}

func newLoadDataCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "loaddata <fixture.json>",
		Short: "Install a fixture file, updating rows that already exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return opts.run(cmd, true, func(ctx context.Context, a *bootstrap.App) error {
				res, loadErr := a.Services.Fixtures.Load(ctx, f)
				if res == nil {
					return loadErr
				}
				out := cmd.OutOrStdout()
				models := make([]string, 0, len(res.Loaded))
				for m := range res.Loaded {
					models = append(models, m)
				}
				sort.Strings(models)
				parts := make([]string, 0, len(models))
				for _, m := range models {
					parts = append(parts, fmt.Sprintf("%s=%s", m, humanize.Comma(int64(res.Loaded[m]))))
				}
				fmt.Fprintf(out, "Installed %s object(s) from %s", humanize.Comma(int64(res.Total())), args[0])
				if len(parts) > 0 {
					fmt.Fprintf(out, " (%s)", strings.Join(parts, ", "))
				}
				fmt.Fprintln(out)
				if res.Failed > 0 {
					fmt.Fprintf(out, "%s record(s) failed\n", humanize.Comma(int64(res.Failed)))
				}
				return loadErr
			})
		},
	}
}
