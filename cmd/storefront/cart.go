package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
)

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart of this session",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cart := c.sf.Cart.List(cmd.Context())
			return c.emit(cartView(cart), func(w io.Writer) { printCart(w, cart) })
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty := 1
			if len(args) == 2 {
				if qty, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
			}
			product, err := c.sf.Catalog.Lookup(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.sf.Cart.AddItem(cmd.Context(), product, qty)
		},
	}

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a line; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return c.sf.Cart.UpdateQuantity(cmd.Context(), id, qty)
		},
	}

	remove := &cobra.Command{
		Use:     "remove <product-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.sf.Cart.RemoveItem(cmd.Context(), id)
		},
	}

	cmd.AddCommand(list, add, update, remove)
	return cmd
}

type cartSummary struct {
	Lines []domain.CartLine `json:"itens"`
	Items int               `json:"quantidade_total"`
	Total domain.Price      `json:"valor_total"`
}

func cartView(cart domain.Cart) cartSummary {
	return cartSummary{Lines: cart.Lines, Items: cart.ItemCount(), Total: cart.Total()}
}

func printCart(w io.Writer, cart domain.Cart) {
	if cart.IsEmpty() {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tUNIT\tSUBTOTAL")
	for _, l := range cart.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\tR$ %s\tR$ %s\n", l.ProductID, l.Name, l.Quantity, l.UnitPrice, l.Subtotal())
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d item(s), total R$ %s\n", cart.ItemCount(), cart.Total())
}
