package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
)

func (c *cli) productsCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.sf.Catalog.Refresh(cmd.Context()); err != nil {
				return err
			}
			products := c.sf.Catalog.Products(category)
			return c.emit(products, func(w io.Writer) { printProducts(w, products) })
		},
	}
	cmd.Flags().StringVar(&category, "category", domain.CategoryAll, "filter by category (substring match)")
	return cmd
}

func printProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "no products")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		stock := fmt.Sprint(p.Stock)
		if p.SoldOut() {
			stock = "sold out"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\tR$ %s\t%s\n", p.ID, p.Name, p.Category, p.Price, stock)
	}
	_ = tw.Flush()
}
