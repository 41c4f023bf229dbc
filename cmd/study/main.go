// Command study runs the study library: an HTTP server plus a handful of
// commands that work on the same storage from the terminal.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/phrazzld/studyhall/internal/config"
	"github.com/phrazzld/studyhall/internal/platform/logger"
)

// cli holds state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type cli struct {
	configFile string
	debug      bool

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	out       io.Writer
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "study: %v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "study",
		Short:         "Personal study library with spaced repetition and a tutor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if c.logCloser != nil {
				return c.logCloser.Close()
			}
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file path (default ./config.yaml)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		c.newServeCommand(),
		c.newDueCommand(),
		c.newDecksCommand(),
		c.newReviewCommand(),
		c.newSeedCommand(),
		c.newStatsCommand(),
		c.newMigrateCommand(),
	)
	return root
}

// setup loads configuration and initializes logging.
func (c *cli) setup() error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.debug {
		cfg.Server.LogLevel = "debug"
	}

	log, closer, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	c.cfg = cfg
	c.logger = log
	c.logCloser = closer
	return nil
}
