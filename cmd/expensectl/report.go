package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/report"
)

func statsCmd(opts *globalOptions) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show balance, totals and this month's figures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := ff.filters()
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, a *app) error {
				st, err := a.svc.Stats(ctx, filters)
				if err != nil {
					return err
				}
				symbol := a.cfg.Report.CurrencySymbol
				rows := []struct{ label, value string }{
					{"Balance", report.FormatAmount(st.TotalBalance, symbol)},
					{"Income", report.FormatSigned(st.TotalIncome, models.TypeIncome, symbol)},
					{"Expense", report.FormatSigned(st.TotalExpense, models.TypeExpense, symbol)},
					{"This month's income", report.FormatSigned(st.MonthlyIncome, models.TypeIncome, symbol)},
					{"This month's expense", report.FormatSigned(st.MonthlyExpense, models.TypeExpense, symbol)},
				}

				label := lipgloss.NewStyle().Width(22).Inherit(infoStyle)
				out := cmd.OutOrStdout()
				for _, r := range rows {
					fmt.Fprintf(out, "%s %s\n", label.Render(r.label), r.value)
				}
				fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("%d transactions", st.Count())))
				return nil
			})
		},
	}

	ff.register(cmd)

	return cmd
}

func reportCmd(opts *globalOptions) *cobra.Command {
	var ff filterFlags
	var format, outPath string
	var byMonth, shareIt bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a report of the selected transactions",
		Long: `Render a report of the selected transactions.

The text format prints to the terminal. Other formats are written to --out,
or to a generated file name in the current directory, or handed to the
configured share target with --share.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := ff.filters()
			if err != nil {
				return err
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			return withSession(cmd, opts, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()

				// unset leaves the layout to report.by_month
				var layout report.Layout
				var grouped *bool
				if cmd.Flags().Changed("by-month") {
					grouped = &byMonth
					layout = report.LayoutFlat
					if byMonth {
						layout = report.LayoutByMonth
					}
				}

				if shareIt {
					resp, err := a.svc.ShareReport(ctx, models.ShareReportRequest{
						Filters: filters,
						Format:  string(f),
						ByMonth: grouped,
					})
					if err != nil {
						return err
					}
					fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ Shared %s (report %s)", resp.Filename, resp.ReportID)))
					return nil
				}

				if f == report.FormatText && outPath == "" {
					doc, err := a.svc.BuildReport(ctx, filters, layout)
					if err != nil {
						return err
					}
					fmt.Fprint(out, report.RenderText(doc))
					return nil
				}

				exp, err := a.svc.ExportReport(ctx, filters, layout, f)
				if err != nil {
					return err
				}
				path := outPath
				if path == "" {
					path = exp.Filename
				}
				if dir := filepath.Dir(path); dir != "." {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return err
					}
				}
				if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintln(out, successStyle.Render("✓ Report written to "+path))
				return nil
			})
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "text, html, pdf or xlsx")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")
	cmd.Flags().BoolVar(&byMonth, "by-month", false, "group rows into one section per month (default from report.by_month)")
	cmd.Flags().BoolVar(&shareIt, "share", false, "send the report to the configured share target")

	return cmd
}
