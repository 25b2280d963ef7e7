package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/abgdnv/storefront/internal/engine"
	"github.com/spf13/cobra"
)

// NewOrdersCommand groups the read-only ledger commands.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect the order ledger",
	}
	cmd.AddCommand(newOrdersListCommand(rootOpts))
	cmd.AddCommand(newOrdersShowCommand(rootOpts))
	return cmd
}

func newOrdersListCommand(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return NewExitError(ExitCommandError, "--limit must not be negative")
			}
			return opts.withEngine(cmd, func(_ context.Context, eng *engine.Engine) error {
				orders := eng.Orders()
				if limit > 0 && len(orders) > limit {
					orders = orders[:limit]
				}
				return opts.formatter(cmd).Success(orders, func(w io.Writer) error {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tCITY\tITEMS\tTOTAL\tSTATUS")
					for _, o := range orders {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
							o.ID, o.Date.Format(time.RFC3339), o.CustomerName, o.City, len(o.Items), o.Total, o.Status)
					}
					return tw.Flush()
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many orders (0 for all)")
	return cmd
}

func newOrdersShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one order with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEngine(cmd, func(_ context.Context, eng *engine.Engine) error {
				f := opts.formatter(cmd)
				o, err := eng.GetOrder(args[0])
				if err != nil {
					return f.Failure(exitCodeFor(err), "failed to get order", err)
				}
				return f.Success(o, func(w io.Writer) error {
					return writeOrder(w, o)
				})
			})
		},
	}
}

func writeOrder(w io.Writer, o domain.Order) error {
	fmt.Fprintf(w, "Order %s (%s)\n", o.ID, o.Status)
	fmt.Fprintf(w, "Placed:   %s\n", o.Date.Format(time.RFC3339))
	fmt.Fprintf(w, "Customer: %s, %s, %s\n\n", o.CustomerName, o.City, o.Phone)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range o.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", l.Name, l.Quantity, l.Price, l.Subtotal())
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\n", o.Total)
	return tw.Flush()
}
