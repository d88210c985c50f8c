package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/report"
)

// filterFlags binds the transaction filter flags shared by list, stats and report
type filterFlags struct {
	from       string
	to         string
	typ        string
	categories []int64
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "earliest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "latest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.typ, "type", "", "income, expense or all")
	cmd.Flags().Int64SliceVar(&f.categories, "category", nil, "category id (repeatable)")
}

func (f *filterFlags) filters() (models.TransactionFilters, error) {
	filters := models.TransactionFilters{
		DateFrom:    f.from,
		DateTo:      f.to,
		Type:        f.typ,
		CategoryIDs: f.categories,
	}
	return filters, filters.Validate()
}

func transactionsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and browse transactions",
	}

	cmd.AddCommand(transactionsListCmd(opts))
	cmd.AddCommand(transactionsAddCmd(opts))
	cmd.AddCommand(transactionsDeleteCmd(opts))

	return cmd
}

func transactionsListCmd(opts *globalOptions) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := ff.filters()
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, a *app) error {
				resp, err := a.svc.ListTransactions(ctx, filters)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if resp.Count == 0 {
					fmt.Fprintln(out, infoStyle.Render("No transactions"))
					return nil
				}

				symbol := a.cfg.Report.CurrencySymbol
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tDESCRIPTION\tAMOUNT")
				for _, t := range resp.Transactions {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.CategoryName, t.Description, signedAmount(t, symbol))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("%d transactions", resp.Count)))
				return nil
			})
		},
	}

	ff.register(cmd)

	return cmd
}

func signedAmount(t models.TransactionWithCategory, symbol string) string {
	amount, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return t.Amount
	}
	return report.FormatSigned(amount, t.Type, symbol)
}

func transactionsAddCmd(opts *globalOptions) *cobra.Command {
	var typ, description, date string
	var categoryID int64

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, a *app) error {
				if date == "" {
					date = time.Now().Format(models.DateLayout)
				}
				tx, err := a.svc.CreateTransaction(ctx, models.TransactionRequest{
					Amount:      args[0],
					Description: description,
					Type:        models.TransactionType(typ),
					CategoryID:  categoryID,
					Date:        date,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Recorded %s %s on %s (id %d)", tx.Type, tx.Amount, tx.Date, tx.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", string(models.TypeExpense), "income or expense")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what it was for")
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func transactionsDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			return withSession(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.svc.DeleteTransaction(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Transaction deleted"))
				return nil
			})
		},
	}
}
