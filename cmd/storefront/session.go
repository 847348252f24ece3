package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type sessionView struct {
	SessionID  string `json:"session_id"`
	CustomerID string `json:"customer_id,omitempty"`
	Email      string `json:"email,omitempty"`
}

func (c *cli) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the cart session of this profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current session id and customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			v := sessionView{SessionID: c.sf.Session.SessionID(ctx)}
			if id, ok := c.sf.Keeper.Customer(ctx); ok {
				v.CustomerID = id.CustomerID
				v.Email = id.Email
			}
			return c.emit(v, func(w io.Writer) {
				fmt.Fprintf(w, "session:  %s\n", v.SessionID)
				if v.CustomerID == "" {
					fmt.Fprintln(w, "customer: (anonymous)")
					return
				}
				fmt.Fprintf(w, "customer: %s <%s>\n", v.CustomerID, v.Email)
			})
		},
	}

	rotate := &cobra.Command{
		Use:   "rotate",
		Short: "Start a new session; the old cart is abandoned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := sessionView{SessionID: c.sf.Session.Rotate(cmd.Context())}
			return c.emit(v, func(w io.Writer) { fmt.Fprintf(w, "session:  %s\n", v.SessionID) })
		},
	}

	cmd.AddCommand(show, rotate)
	return cmd
}
