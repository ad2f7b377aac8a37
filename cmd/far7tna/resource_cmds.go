package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/far7tna/portal/apiclient"
	"github.com/far7tna/portal/internal/utils"
)

type listFlags struct {
	page     int
	pageSize int
	search   string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 10, "items per page")
	cmd.Flags().StringVar(&f.search, "search", "", "search text")
}

func (f *listFlags) query() apiclient.Query {
	return apiclient.Query{Page: f.page, PageSize: f.pageSize, Search: f.search}
}

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage service categories (admin)",
	}
	cmd.AddCommand(newCategoriesListCmd(opts), newCategoriesCreateCmd(opts), newCategoriesDeleteCmd(opts))
	return cmd
}

func newCategoriesListCmd(opts *rootOptions) *cobra.Command {
	var flags listFlags
	var active string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				q := flags.query()
				q.Active = utils.OptionalBool(active)
				page, err := a.client.Resources(apiclient.ScopeAdmin).Categories.List(ctx, q)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(page.Items))
				for _, c := range page.Items {
					rows = append(rows, []string{c.ID, c.Name, c.Slug, yesNo(c.IsActive)})
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "SLUG", "ACTIVE"}, rows, page.Page, page.Pages(), page.Total)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&active, "active", "", "true or false to filter on the active flag")
	return cmd
}

func newCategoriesCreateCmd(opts *rootOptions) *cobra.Command {
	var slug string
	var inactive bool

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				name := strings.TrimSpace(args[0])
				if slug == "" {
					slug = strings.Join(strings.Fields(strings.ToLower(name)), "-")
				}
				created, err := a.client.Resources(apiclient.ScopeAdmin).Categories.Create(ctx, apiclient.Category{
					Name:     name,
					Slug:     slug,
					IsActive: !inactive,
				})
				if err != nil {
					return err
				}
				cmd.Printf("Created category %s (%s)\n", created.Name, created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&slug, "slug", "", "category slug (default derived from the name)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the category inactive")
	return cmd
}

func newCategoriesDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				if err := a.client.Resources(apiclient.ScopeAdmin).Categories.Delete(ctx, args[0]); err != nil {
					return err
				}
				cmd.Printf("Deleted category %s\n", args[0])
				return nil
			})
		},
	}
}

func newServicesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Browse services",
	}

	var flags listFlags
	var scope string
	list := &cobra.Command{
		Use:   "list",
		Short: "List services from the public catalogue or a role scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				services := a.client.Catalogue()
				if scope != "" {
					services = a.client.Resources(apiclient.Scope(scope)).Services
				}
				page, err := services.List(ctx, flags.query())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(page.Items))
				for _, s := range page.Items {
					rows = append(rows, []string{s.ID, s.Title, fmt.Sprintf("%.2f", s.Price), yesNo(s.IsActive)})
				}
				return printTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "PRICE", "ACTIVE"}, rows, page.Page, page.Pages(), page.Total)
			})
		},
	}
	flags.register(list)
	list.Flags().StringVar(&scope, "scope", "", "admin or vendor; empty for the public catalogue")

	cmd.AddCommand(list)
	return cmd
}

func printTable(out io.Writer, header []string, rows [][]string, page, pages, total int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "page %d of %d, %d total\n", page, pages, total)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
