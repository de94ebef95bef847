package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	uriparser "github.com/nlstn/go-odata-uriparser"
	"github.com/nlstn/go-odata-uriparser/gormfilter"
	"github.com/nlstn/go-odata-uriparser/printer"
)

var (
	labelFmt = color.New(color.FgGreen, color.Bold).SprintFunc()
	kindFmt  = color.New(color.FgCyan).SprintFunc()
	typeFmt  = color.New(color.FgYellow).SprintFunc()
	errorFmt = color.New(color.FgRed).SprintFunc()
)

type printOptions struct {
	Set     string
	OrderBy string
	Dialect string
	NoColor bool
}

func newPrintCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &printOptions{}

	cmd := &cobra.Command{
		Use:   "print [filter]",
		Short: "Print the bound tree and SQL of a $filter and $orderby",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter string
			if len(args) == 1 {
				filter = args[0]
			}
			if filter == "" && opts.OrderBy == "" {
				return errors.New("nothing to print: pass a filter argument or --orderby")
			}
			if opts.NoColor {
				color.NoColor = true
			}
			logger := newLogger(cmd.ErrOrStderr(), slog.LevelWarn, rootOpts.Verbose)
			return runPrint(cmd.Context(), cmd.OutOrStdout(), logger, opts, filter)
		},
	}

	cmd.Flags().StringVar(&opts.Set, "set", "Products", "entity set the options apply to")
	cmd.Flags().StringVar(&opts.OrderBy, "orderby", "", "$orderby expression")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", gormfilter.DialectSQLite, "SQL dialect (sqlite|postgres)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	return cmd
}

func runPrint(ctx context.Context, w io.Writer, logger *slog.Logger, opts *printOptions, filter string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cat, err := newCatalog()
	if err != nil {
		return err
	}
	parser := uriparser.NewParser(cat.model, uriparser.WithLogger(logger))
	translator := gormfilter.New(gormfilter.WithLogger(logger))
	treeOpts := []printer.TreeOption{printer.WithTypes(), printer.WithStyles(kindFmt, typeFmt)}

	if filter != "" {
		clause, err := parser.ParseFilter(ctx, opts.Set, filter)
		if err != nil {
			return err
		}
		text, err := printer.PrintFilter(clause)
		if err != nil {
			return err
		}
		tree, err := printer.Tree(clause.Expression(), treeOpts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s\n", labelFmt("filter:"), text)
		fmt.Fprint(w, tree)
		sql, vars, err := translator.Where(opts.Dialect, clause)
		writeSQL(w, "where:", sql, vars, err)
	}

	if opts.OrderBy != "" {
		clause, err := parser.ParseOrderBy(ctx, opts.Set, opts.OrderBy)
		if err != nil {
			return err
		}
		text, err := printer.PrintOrderBy(clause)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s\n", labelFmt("orderby:"), text)
		for _, item := range clause.Items() {
			tree, err := printer.Tree(item.Expression, treeOpts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, item.Direction)
			fmt.Fprint(w, tree)
		}
		sql, vars, err := translator.OrderBy(opts.Dialect, clause)
		writeSQL(w, "order:", sql, vars, err)
	}
	return nil
}

// writeSQL prints a translated fragment, or why it could not be translated.
func writeSQL(w io.Writer, label, sql string, vars []interface{}, err error) {
	if err != nil {
		fmt.Fprintf(w, "%s %s\n", labelFmt(label), errorFmt(err.Error()))
		return
	}
	if len(vars) == 0 {
		fmt.Fprintf(w, "%s %s\n", labelFmt(label), sql)
		return
	}
	fmt.Fprintf(w, "%s %s %v\n", labelFmt(label), sql, vars)
}
