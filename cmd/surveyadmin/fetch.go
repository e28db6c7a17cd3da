package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crowdsourcing/surveyadmin/internal/fieldnames"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var (
		baseURL string
		apiKey  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Load the survey API once and print the field-name suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				return fmt.Errorf("--base-url is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			store := fieldnames.NewStore()
			loader := fieldnames.NewLoader(baseURL, store,
				fieldnames.WithHeader("X-API-Key", apiKey),
			)
			if err := loader.Load(ctx); err != nil {
				return fmt.Errorf("fetch suggestions: %w", err)
			}

			out, err := json.MarshalIndent(store.Get(), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", envOr("SURVEY_API_BASE_URL", ""), "Base URL of the survey API")
	cmd.Flags().StringVar(&apiKey, "api-key", envOr("SURVEY_API_KEY", ""), "API key sent as X-API-Key")
	cmd.Flags().DurationVar(&timeout, "timeout", fieldnames.DefaultTimeout, "Request timeout")
	return cmd
}
