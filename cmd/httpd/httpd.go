// Package httpd implements the command that serves the analytics API.
package httpd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/bootstrap"
)

// Command returns the httpd command. opts is called at run time so it sees
// the parsed global flags.
func Command(opts func() bootstrap.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

The server exposes the data set endpoints under /api/v1/datasets/:index,
plus /health and /metrics. It stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Start(cmd.Context(), opts())
		},
	}
}
