package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Wjwesley1/queen-store-frontend/internal/app"
	"github.com/Wjwesley1/queen-store-frontend/internal/config"
	"github.com/Wjwesley1/queen-store-frontend/internal/service"
	"github.com/Wjwesley1/queen-store-frontend/pkg/logger"
)

// cli carries what every subcommand needs. The storefront is built once per
// invocation in PersistentPreRunE and closed by execute.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	jsonOutput bool

	cfg    *config.Config
	logger *slog.Logger
	sf     *app.Storefront
}

// execute runs one command line. The storefront is closed even when the
// command fails, which cobra's post-run hooks do not guarantee.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c := &cli{stdout: stdout, stderr: stderr}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	err := root.ExecuteContext(ctx)
	if cerr := c.teardown(context.WithoutCancel(ctx)); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {

	root := &cobra.Command{
		Use:   "storefront",
		Short: "Queen Store storefront client",
		Long: `storefront browses the Queen Store catalog, manages the anonymous cart
of this profile and submits orders for WhatsApp handoff.

Configuration comes from the environment (and an optional .env file):
STORE_API_URL, PROFILE_BACKEND, PROFILE_PATH, WHATSAPP_NUMBER, ...`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		c.productsCmd(),
		c.cartCmd(),
		c.checkoutCmd(),
		c.sessionCmd(),
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.verifyCmd(),
		c.resendVerificationCmd(),
		c.ordersCmd(),
		c.subscribeCmd(),
		c.statusCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger.NewWithFormat("storefront", cfg.LogLevel, "text", c.stderr)

	ctx := logger.WithCorrelationID(cmd.Context(), uuid.NewString())
	cmd.SetContext(ctx)

	sf, err := app.NewStorefront(ctx, cfg, c.logger, service.NotifierFunc(c.notify))
	if err != nil {
		return fmt.Errorf("initialize storefront: %w", err)
	}
	c.sf = sf
	cmd.SetContext(sf.Session.Annotate(ctx))
	return nil
}

func (c *cli) teardown(ctx context.Context) error {
	if c.sf == nil {
		return nil
	}
	return c.sf.Close(ctx)
}

// notify prints service notices on stderr so stdout stays parseable.
func (c *cli) notify(_ context.Context, n service.Notice) {
	mark := "•"
	switch n.Level {
	case service.NoticeSuccess:
		mark = "✓"
	case service.NoticeError:
		mark = "✗"
	}
	fmt.Fprintf(c.stderr, "%s %s\n", mark, n.Message)
}

// emit writes v as indented JSON when --json is set, otherwise calls text.
func (c *cli) emit(v any, text func(w io.Writer)) error {
	if c.jsonOutput {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(c.stdout)
	return nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", arg)
	}
	return id, nil
}
