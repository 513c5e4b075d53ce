// Command lumen checks and serves a blog's site configuration.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eringen/lumen"
	"github.com/eringen/lumen/logging"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	logJSON    bool
	logFile    string

	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "lumen",
		Short: "Blog site configuration loader and service",
		Long: `lumen loads a blog's site configuration (url, title, author card, contacts
and navigation menu) from YAML or JSON, validates it, and serves it read-only.

Values can be overridden with LUMEN_* environment variables, for example
LUMEN_TITLE or LUMEN_POSTS_PER_PAGE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logging.Config{
				Level: g.logLevel,
				JSON:  g.logJSON,
				File:  g.logFile,
			})
			if err != nil {
				return err
			}
			g.logger = l
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", lumen.EnvOr("LUMEN_CONFIG", "site.yaml"), "site config file (.yaml, .yml, .json)")
	pf.StringVar(&g.logLevel, "log-level", lumen.EnvOr("LOG_LEVEL", "info"), "debug, info, warn or error")
	pf.BoolVar(&g.logJSON, "log-json", lumen.EnvBool("LOG_JSON"), "log JSON lines instead of console output")
	pf.StringVar(&g.logFile, "log-file", lumen.EnvOr("LOG_FILE", ""), "also write logs to this rotating file")

	root.AddCommand(
		newServeCmd(g),
		newValidateCmd(g),
		newShowCmd(g),
		newConvertCmd(g),
		newNewCmd(),
		newHistoryCmd(g),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lumen version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lumen %s\n", version)
		},
	}
}
