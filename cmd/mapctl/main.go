// Command mapctl checks placements and replays map sessions against a farm
// map API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/samirrijal/farmmap/internal/adapters/farmapi"
	"github.com/samirrijal/farmmap/internal/pkg/config"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
)

type options struct {
	cfg     *config.Config
	baseURL string
	token   string
	timeout time.Duration
	verbose bool
}

func (o *options) client() *farmapi.Client {
	return farmapi.New(o.baseURL, o.token, o.timeout, nil)
}

func rootCommand(cfg *config.Config) *cobra.Command {
	opts := &options{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:           "mapctl",
		Short:         "Farm map command line tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := cfg.Log.Level
			if opts.verbose {
				level = "debug"
			}
			logging.Setup(level, "text")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "api", cfg.FarmAPI.BaseURL, "Base URL of the farm map API")
	flags.StringVar(&opts.token, "token", cfg.FarmAPI.Token, "Bearer token for the farm map API")
	flags.DurationVar(&opts.timeout, "timeout", cfg.FarmAPI.Timeout, "HTTP timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(validateCommand(opts), replayCommand(opts))
	return rootCmd
}

func main() {
	cfg, err := config.Load("farmmap-mapctl")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
