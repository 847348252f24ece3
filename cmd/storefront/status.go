package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Wjwesley1/queen-store-frontend/pkg/health"
)

func (c *cli) subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <email>",
		Short: "Subscribe an e-mail address to the newsletter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.sf.Newsletter.Subscribe(cmd.Context(), args[0])
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the store API and the profile store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp := c.sf.Health(cmd.Context())
			if err := c.emit(resp, func(w io.Writer) { printHealth(w, resp) }); err != nil {
				return err
			}
			if resp.Status == health.StatusDown {
				return fmt.Errorf("storefront is %s", resp.Status)
			}
			return nil
		},
	}
}

func printHealth(w io.Writer, resp health.Response) {
	fmt.Fprintf(w, "status: %s\n", resp.Status)
	names := make([]string, 0, len(resp.Checks))
	for name := range resp.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		check := resp.Checks[name]
		line := fmt.Sprintf("  %-14s %s", name, check.Status)
		if check.Error != "" {
			line += " (" + check.Error + ")"
		}
		fmt.Fprintln(w, line)
	}
}
