// Package cmd implements the command-line interface of the email analytics service.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/email-analytics/cmd/httpd"
	"github.com/jonesrussell/north-cloud/email-analytics/cmd/report"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/bootstrap"
)

// version is overridden at build time with -ldflags.
var version = "1.0.0"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "email-analytics",
		Short: "Timeline and entity analytics over indexed email data sets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "email-analytics version %s\n", version)
		},
	})

	rootCmd.AddCommand(httpd.Command(options))
	rootCmd.AddCommand(report.Command(options))
}

// options reads the global flags once cobra has parsed them.
func options() bootstrap.Options {
	return bootstrap.Options{
		ConfigPath: cfgFile,
		Debug:      debug,
	}
}
