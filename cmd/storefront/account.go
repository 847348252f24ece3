package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
)

// readPassword falls back to the first line of stdin when the flag is empty.
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a customer; reads the password from stdin when --password is omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			res, err := c.sf.Keeper.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			return c.emit(res, func(w io.Writer) {
				if res.Customer != nil && res.Customer.Name != "" {
					fmt.Fprintf(w, "logged in as %s\n", res.Customer.Name)
					return
				}
				fmt.Fprintf(w, "logged in as %s\n", email)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var reg domain.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, reg.Password)
			if err != nil {
				return err
			}
			reg.Password = pw
			if reg.PasswordConfirm == "" {
				reg.PasswordConfirm = pw
			}
			res, err := c.sf.Keeper.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			return c.emit(res, func(w io.Writer) {
				if res.Token != "" {
					fmt.Fprintf(w, "account created, logged in as %s\n", reg.Email)
					return
				}
				msg := res.Message
				if msg == "" {
					msg = "account created, check your e-mail to verify it"
				}
				fmt.Fprintln(w, msg)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&reg.Name, "name", "", "full name")
	f.StringVar(&reg.Email, "email", "", "account email")
	f.StringVar(&reg.Password, "password", "", "account password (min 6 characters)")
	f.StringVar(&reg.PasswordConfirm, "confirm", "", "password confirmation; defaults to --password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored customer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.sf.Keeper.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "logged out")
			return nil
		},
	}
}

func (c *cli) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Confirm an account with the e-mailed verification token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ack, err := c.sf.Keeper.VerifyAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.emit(ack, func(w io.Writer) { printAck(w, ack, "account verified") })
		},
	}
}

func (c *cli) resendVerificationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend-verification <email>",
		Short: "Send the verification e-mail again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ack, err := c.sf.Keeper.ResendVerification(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.emit(ack, func(w io.Writer) { printAck(w, ack, "") })
		},
	}
}

func (c *cli) ordersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List the orders of the logged-in customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orders, err := c.sf.API.ListCustomerOrders(cmd.Context())
			if err != nil {
				return err
			}
			return c.emit(orders, func(w io.Writer) { printOrders(w, orders) })
		},
	}
}

func printAck(w io.Writer, ack *domain.Ack, fallback string) {
	switch {
	case ack.Message != "":
		fmt.Fprintln(w, ack.Message)
	case !ack.Success && ack.Error != "":
		fmt.Fprintln(w, ack.Error)
	case fallback != "":
		fmt.Fprintln(w, fallback)
	}
}

func printOrders(w io.Writer, orders []domain.CustomerOrder) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "no orders yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tITEMS\tTOTAL")
	for _, o := range orders {
		items := 0
		for _, it := range o.Items {
			items += it.Quantity
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\tR$ %s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Status, items, o.Total)
	}
	_ = tw.Flush()
}
