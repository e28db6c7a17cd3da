package main

import (
	"fmt"
	"os"

	"github.com/crowdsourcing/surveyadmin/internal/logging"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "surveyadmin",
		Short: "Survey admin field-name assist service",
		Long: `surveyadmin serves the survey API, loads its questions into a
field-name suggestion list and rewrites the survey admin pages so the
field-names input offers those suggestions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logging.Init(logLevel, os.Getenv("APP_ENV"))
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.L().Sync()
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newFetchCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
