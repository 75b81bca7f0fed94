package cli

import (
	"context"
	"fmt"
	"strconv"

	"mobilehub/internal/models"
	"mobilehub/internal/storefront"

	"github.com/spf13/cobra"
)

func newCatalogCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse products and categories",
	}

	var category string
	products := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				list, err := app.Gateway.ListProducts(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), storefront.FilterByCategory(list, category))
			})
		},
	}
	products.Flags().StringVar(&category, "category", "", "only show this category")

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				list, err := app.Gateway.ListCategories(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), storefront.ValidCategories(list))
			})
		},
	}

	cmd.AddCommand(products, categories)
	return cmd
}

type cartView struct {
	Items []models.CartItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

func printCart(cmd *cobra.Command, app *storefront.App) error {
	return printJSON(cmd.OutOrStdout(), cartView{
		Items: app.Cart.Items(),
		Count: app.Cart.Count(),
		Total: app.Cart.Total(),
	})
}

func newCartCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the cart of the signed-in account",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				if !app.Auth.IsAuthenticated() {
					return storefront.ErrNotAuthenticated
				}
				if err := app.Cart.Err(); err != nil {
					return err
				}
				return printCart(cmd, app)
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				if !app.Auth.IsAuthenticated() {
					return storefront.ErrNotAuthenticated
				}
				product, err := app.Gateway.GetProduct(ctx, productID)
				if err != nil {
					return err
				}
				if err := app.Cart.AddToCart(ctx, *product); err != nil {
					return err
				}
				return printCart(cmd, app)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				if err := app.Cart.RemoveFromCart(ctx, itemID); err != nil {
					return err
				}
				return printCart(cmd, app)
			})
		},
	}

	update := &cobra.Command{
		Use:   "update <item-id> <quantity>",
		Short: "Set the quantity of an item, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				if err := app.Cart.UpdateQuantity(ctx, itemID, quantity); err != nil {
					return err
				}
				return printCart(cmd, app)
			})
		},
	}

	cmd.AddCommand(list, add, remove, update)
	return cmd
}

func newOrdersCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Check out and list past orders",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List orders of the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				orders, err := app.Gateway.ListOrders(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), orders)
			})
		},
	}

	checkout := &cobra.Command{
		Use:   "checkout",
		Short: "Walk through checkout and place the order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				for app.Checkout.Step() != storefront.StepReview {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s done\n", app.Checkout.Step())
					app.Checkout.Next()
				}
				order, err := app.Checkout.PlaceOrder(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), order)
			})
		},
	}

	cmd.AddCommand(list, checkout)
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
