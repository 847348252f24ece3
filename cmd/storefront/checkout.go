package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
)

func (c *cli) checkoutCmd() *cobra.Command {
	var (
		contact domain.ContactInfo
		addr    domain.Address
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Submit the cart as an order and print the WhatsApp handoff link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !addr.IsZero() {
				a := addr
				contact.Address = &a
			}
			cart := c.sf.Cart.List(ctx)
			result, err := c.sf.Checkout.Submit(ctx, cart, contact)
			if err != nil {
				return err
			}
			return c.emit(result, func(w io.Writer) { printOrderResult(w, result) })
		},
	}

	f := cmd.Flags()
	f.StringVar(&contact.Name, "name", "", "customer name (required)")
	f.StringVar(&contact.WhatsApp, "whatsapp", "", "customer WhatsApp number (required)")
	f.StringVar(&contact.Email, "email", "", "customer email")
	f.StringVar(&addr.Street, "street", "", "shipping street")
	f.StringVar(&addr.Number, "number", "", "shipping street number")
	f.StringVar(&addr.Complement, "complement", "", "shipping address complement")
	f.StringVar(&addr.Neighborhood, "neighborhood", "", "shipping neighborhood")
	f.StringVar(&addr.City, "city", "", "shipping city")
	f.StringVar(&addr.State, "state", "", "shipping state")
	f.StringVar(&addr.PostalCode, "cep", "", "shipping postal code")
	return cmd
}

func printOrderResult(w io.Writer, r *domain.OrderResult) {
	if r.Recorded() {
		if r.OrderID == "" {
			fmt.Fprintf(w, "order recorded, total R$ %s\n", r.Draft.Total)
		} else {
			fmt.Fprintf(w, "order %s recorded, total R$ %s\n", r.OrderID, r.Draft.Total)
		}
	} else {
		fmt.Fprintf(w, "order NOT recorded by the store (%v)\n", r.OrderError)
		fmt.Fprintln(w, "send the message below on WhatsApp so the store still receives it")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Message)
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.HandoffURL)
}
