package cli

import (
	"context"
	"io"

	"github.com/abgdnv/storefront/internal/engine"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NewDashboardCommand prints the admin overview.
func NewDashboardCommand(opts *RootOptions) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show revenue and order counts",
		Example: `  storefrontctl dashboard
  storefrontctl dashboard --lang fr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := language.Parse(lang)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --lang", err)
			}
			return opts.withEngine(cmd, func(_ context.Context, eng *engine.Engine) error {
				d := eng.Dashboard()
				return opts.formatter(cmd).Success(d, func(w io.Writer) error {
					return writeDashboard(w, message.NewPrinter(tag), d)
				})
			})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", "BCP 47 tag used to group digits")
	return cmd
}

func writeDashboard(w io.Writer, p *message.Printer, d engine.Dashboard) error {
	fraction := max(0, -int(d.Revenue.Exponent()))
	revenue := number.Decimal(d.Revenue.InexactFloat64(), number.MaxFractionDigits(fraction))
	_, err := p.Fprintf(w, "Revenue:         %v\nOrders:          %d\nPending orders:  %d\nProducts:        %d\n",
		revenue, d.OrderCount, d.PendingOrders, d.ProductCount)
	return err
}
