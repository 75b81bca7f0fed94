package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"mobilehub/internal/models"
	"mobilehub/internal/storefront"

	"github.com/spf13/cobra"
)

var errAdminOnly = errors.New("admin access required")

func newAdminCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the catalog, admin accounts only",
	}

	withAdmin := func(cmd *cobra.Command, fn func(ctx context.Context, app *storefront.App) error) error {
		return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
			if !app.Auth.IsAdmin() {
				return errAdminOnly
			}
			return fn(ctx, app)
		})
	}

	var product models.Product
	saveProduct := &cobra.Command{
		Use:   "save-product",
		Short: "Create a product, or update it when --id is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, app *storefront.App) error {
				saved, err := app.Gateway.SaveProduct(ctx, product)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), saved)
			})
		},
	}
	pf := saveProduct.Flags()
	pf.IntVar(&product.ID, "id", 0, "product id to update")
	pf.StringVar(&product.Name, "name", "", "product name")
	pf.Float64Var(&product.Price, "price", 0, "price")
	pf.StringVar(&product.Description, "description", "", "description")
	pf.StringVar(&product.Image, "image", "", "image url")
	pf.StringVar(&product.Category, "category", "", "category name")
	pf.IntVar(&product.Stock, "stock", 0, "units in stock")
	_ = saveProduct.MarkFlagRequired("name")

	deleteProduct := &cobra.Command{
		Use:   "delete-product <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withAdmin(cmd, func(ctx context.Context, app *storefront.App) error {
				return app.Gateway.DeleteProduct(ctx, id)
			})
		},
	}

	var category models.Category
	saveCategory := &cobra.Command{
		Use:   "save-category",
		Short: "Create a category, or update it when --id is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, app *storefront.App) error {
				saved, err := app.Gateway.SaveCategory(ctx, category)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), saved)
			})
		},
	}
	saveCategory.Flags().IntVar(&category.ID, "id", 0, "category id to update")
	saveCategory.Flags().StringVar(&category.Name, "name", "", "category name")
	saveCategory.Flags().StringVar(&category.Description, "description", "", "description")

	deleteCategory := &cobra.Command{
		Use:   "delete-category <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withAdmin(cmd, func(ctx context.Context, app *storefront.App) error {
				return app.Gateway.DeleteCategory(ctx, id)
			})
		},
	}

	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a product image and print its url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			name := filepath.Base(args[0])
			return withAdmin(cmd, func(ctx context.Context, app *storefront.App) error {
				url, err := app.Gateway.UploadImage(ctx, name, mime.TypeByExtension(filepath.Ext(name)), data)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}

	cmd.AddCommand(saveProduct, deleteProduct, saveCategory, deleteCategory, upload)
	return cmd
}
