package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rongwang/expense-tracker/internal/models"
)

func categoriesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage categories",
	}

	cmd.AddCommand(categoriesListCmd(opts))
	cmd.AddCommand(categoriesAddCmd(opts))
	cmd.AddCommand(categoriesDeleteCmd(opts))

	return cmd
}

func categoriesListCmd(opts *globalOptions) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(ctx context.Context, a *app) error {
				categories, err := a.svc.ListCategories(ctx, models.TransactionType(typ))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(categories) == 0 {
					fmt.Fprintln(out, infoStyle.Render("No categories"))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("NAME")+"\t"+headerStyle.Render("TYPE")+"\t"+headerStyle.Render("COLOR"))
				for _, c := range categories {
					fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\n", c.ID, c.Icon, c.Name, c.Type, c.Color)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only income or expense categories")

	return cmd
}

func categoriesAddCmd(opts *globalOptions) *cobra.Command {
	var typ, icon, color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, a *app) error {
				category, err := a.svc.CreateCategory(ctx, models.CategoryRequest{
					Name:  args[0],
					Icon:  icon,
					Color: color,
					Type:  models.TransactionType(typ),
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Created category %q (id %d)", category.Name, category.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", string(models.TypeExpense), "income or expense")
	cmd.Flags().StringVar(&icon, "icon", "", "icon shown next to the name")
	cmd.Flags().StringVar(&color, "color", "#94A3B8", "hex color, e.g. #FF6B6B")

	return cmd
}

func categoriesDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an unused category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}
			return withSession(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.svc.DeleteCategory(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Category deleted"))
				return nil
			})
		},
	}
}
