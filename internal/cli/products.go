package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/abgdnv/storefront/internal/domain"
	"github.com/abgdnv/storefront/internal/engine"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewProductsCommand groups the catalog commands.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the catalog",
	}
	cmd.AddCommand(newProductsListCommand(rootOpts))
	cmd.AddCommand(newProductsAddCommand(rootOpts))
	cmd.AddCommand(newProductsDeleteCommand(rootOpts))
	return cmd
}

func newProductsListCommand(opts *RootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		Example: `  storefrontctl products list
  storefrontctl products list --category home --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := domain.ParseCategory(category)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --category", err)
			}
			return opts.withEngine(cmd, func(_ context.Context, eng *engine.Engine) error {
				products := eng.ProductsByCategory(c)
				return opts.formatter(cmd).Success(products, func(w io.Writer) error {
					return writeProducts(w, products)
				})
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", string(domain.CategoryAll), "filter by category (all|electronics|home|cars)")
	return cmd
}

type productAddOptions struct {
	id          string
	name        string
	price       string
	category    string
	image       string
	description string
}

func newProductsAddCommand(opts *RootOptions) *cobra.Command {
	add := &productAddOptions{}
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a product to the catalog",
		Example: `  storefrontctl products add --name "Desk lamp" --price 120 --category home`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := decimal.NewFromString(add.price)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --price", err)
			}
			if !price.IsPositive() {
				return NewExitError(ExitCommandError, "--price must be greater than 0")
			}
			p := domain.Product{
				ID:          add.id,
				Name:        add.name,
				Price:       price,
				Category:    domain.Category(add.category),
				Image:       add.image,
				Description: add.description,
			}
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			if p.Image == "" {
				p.Image = domain.DefaultProductImage
			}
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				f := opts.formatter(cmd)
				if err := eng.AddProduct(ctx, p); err != nil {
					return f.Failure(exitCodeFor(err), "failed to add product", err)
				}
				return f.Success(p, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Added product %s (%s)\n", p.ID, p.Name)
					return err
				})
			})
		},
	}
	cmd.Flags().StringVar(&add.id, "id", "", "product id (generated when empty)")
	cmd.Flags().StringVar(&add.name, "name", "", "product name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&add.price, "price", "", "decimal price, e.g. 49.90 (required)")
	_ = cmd.MarkFlagRequired("price")
	cmd.Flags().StringVar(&add.category, "category", "", "electronics|home|cars (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&add.image, "image", "", "image URL")
	cmd.Flags().StringVar(&add.description, "description", "", "product description")
	return cmd
}

func newProductsDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a product from the catalog",
		Long:  "Remove a product from the catalog. Deleting an unknown id is not an error.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEngine(cmd, func(ctx context.Context, eng *engine.Engine) error {
				f := opts.formatter(cmd)
				if err := eng.DeleteProduct(ctx, args[0]); err != nil {
					return f.Failure(exitCodeFor(err), "failed to delete product", err)
				}
				return f.Success(map[string]string{"deleted": args[0]}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted product %s\n", args[0])
					return err
				})
			})
		},
	}
}

func writeProducts(w io.Writer, products []domain.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, p.Price)
	}
	return tw.Flush()
}

// exitCodeFor separates rejected input from storage failures.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, storeerrors.ErrInvalidProduct),
		errors.Is(err, storeerrors.ErrProductNotFound),
		errors.Is(err, storeerrors.ErrOrderNotFound):
		return ExitFailure
	default:
		return ExitCommandError
	}
}
