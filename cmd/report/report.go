// Package report implements commands that print analytics as tables.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
)

const dateLayout = "2006-01-02"

// windowFlags are shared by the histogram commands.
type windowFlags struct {
	start    string
	end      string
	interval string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "window start (YYYY-MM-DD, default estimated)")
	cmd.Flags().StringVar(&f.end, "end", "", "window end (YYYY-MM-DD, default estimated)")
	cmd.Flags().StringVar(&f.interval, "interval", "", "histogram interval (default from config)")
}

func (f *windowFlags) validate() error {
	for name, value := range map[string]string{"start": f.start, "end": f.end} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, value); err != nil {
			return fmt.Errorf("--%s must be YYYY-MM-DD: %w", name, err)
		}
	}
	return nil
}

// resolve fills the missing sides of the window from the estimated bounds.
func (f *windowFlags) resolve(ctx context.Context, app *bootstrap.App, index string) (domain.DateBounds, error) {
	return app.Services.Bounds.ResolveBounds(ctx, index, domain.DateBounds{Start: f.start, End: f.end})
}

// Command returns the report command and its subcommands.
func Command(opts func() bootstrap.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print data set analytics as tables",
	}

	cmd.AddCommand(boundsCommand(opts))
	cmd.AddCommand(activityCommand(opts))
	cmd.AddCommand(attachmentsCommand(opts))
	cmd.AddCommand(entitiesCommand(opts))

	return cmd
}

// withApp connects the backends, logging to stderr so tables stay clean.
func withApp(ctx context.Context, opts func() bootstrap.Options, fn func(*bootstrap.App) error) error {
	o := opts()
	o.LogOutput = []string{"stderr"}

	app, err := bootstrap.Setup(ctx, o)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(app)
}

func boundsCommand(opts func() bootstrap.Options) *cobra.Command {
	var (
		docType string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "bounds <index>",
		Short: "Show the default date window of a data set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, opts, func(app *bootstrap.App) error {
				estimate := app.Services.Bounds.GetDateTimeBounds
				if refresh {
					estimate = app.Services.Bounds.RefreshBounds
				}
				bounds, err := estimate(ctx, args[0], docType)
				if err != nil {
					return fmt.Errorf("failed to estimate bounds: %w", err)
				}
				renderBounds(cmd.OutOrStdout(), args[0], docType, bounds)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&docType, "type", "t", domain.DocTypeEmails, "document type")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop cached bounds of the index before estimating")
	return cmd
}

func activityCommand(opts func() bootstrap.Options) *cobra.Command {
	var (
		window  windowFlags
		account string
	)

	cmd := &cobra.Command{
		Use:   "activity <index>",
		Short: "Show sent and received email counts per interval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := window.validate(); err != nil {
				return err
			}
			index := args[0]
			ctx := cmd.Context()

			return withApp(ctx, opts, func(app *bootstrap.App) error {
				bounds, err := window.resolve(ctx, app, index)
				if err != nil {
					return fmt.Errorf("failed to resolve window: %w", err)
				}
				records, err := app.Services.Activity.GetEmailActivity(ctx, index, index, account, bounds, window.interval)
				if err != nil {
					return fmt.Errorf("failed to fetch activity: %w", err)
				}
				renderActivity(cmd.OutOrStdout(), domain.EmailActivity{
					DataSetID:  index,
					AccountID:  account,
					Activities: records,
				})
				return nil
			})
		},
	}
	window.register(cmd)
	cmd.Flags().StringVarP(&account, "account", "a", "", "account address (default whole data set)")
	return cmd
}

func attachmentsCommand(opts func() bootstrap.Options) *cobra.Command {
	var (
		window windowFlags
		sender string
	)

	cmd := &cobra.Command{
		Use:   "attachments <index>",
		Short: "Show attachment counts per interval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := window.validate(); err != nil {
				return err
			}
			index := args[0]
			ctx := cmd.Context()

			return withApp(ctx, opts, func(app *bootstrap.App) error {
				bounds, err := window.resolve(ctx, app, index)
				if err != nil {
					return fmt.Errorf("failed to resolve window: %w", err)
				}

				activity := domain.AttachmentActivity{DataSetID: index, AccountID: index}
				if sender != "" {
					activity.AccountID = sender
					activity.Activities, err = app.Services.Activity.GetEmailerAttachmentActivity(
						ctx, index, sender, bounds, window.interval)
				} else {
					activity.Activities, err = app.Services.Activity.GetTotalAttachmentActivity(ctx, index, index,
						func() *query.Document {
							return app.Services.Builder.AttachmentHistogram(bounds.Start, bounds.End, window.interval)
						})
				}
				if err != nil {
					return fmt.Errorf("failed to fetch attachments: %w", err)
				}

				renderAttachments(cmd.OutOrStdout(), activity)
				return nil
			})
		},
	}
	window.register(cmd)
	cmd.Flags().StringVarP(&sender, "sender", "s", "", "only attachments sent by this address")
	return cmd
}

func entitiesCommand(opts func() bootstrap.Options) *cobra.Command {
	var (
		window windowFlags
		addrs  []string
		terms  string
		size   int
	)

	cmd := &cobra.Command{
		Use:   "entities <index>",
		Short: "Show the most mentioned people, organizations, locations and other entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := window.validate(); err != nil {
				return err
			}
			index := args[0]
			ctx := cmd.Context()

			return withApp(ctx, opts, func(app *bootstrap.App) error {
				bounds, err := window.resolve(ctx, app, index)
				if err != nil {
					return fmt.Errorf("failed to resolve window: %w", err)
				}
				entities, err := app.Services.Entities.GetEntityHistogram(ctx, index, domain.DocTypeEmails,
					query.EntityHistogramParams{
						Addrs:      addrs,
						QueryTerms: terms,
						Bounds:     bounds,
						AggSize:    size,
					})
				if err != nil {
					return fmt.Errorf("failed to fetch entities: %w", err)
				}
				renderEntities(cmd.OutOrStdout(), index, entities)
				return nil
			})
		},
	}
	window.register(cmd)
	cmd.Flags().StringSliceVar(&addrs, "addr", nil, "sender or recipient addresses")
	cmd.Flags().StringVarP(&terms, "query", "q", "", "query string terms, all required")
	cmd.Flags().IntVar(&size, "size", 0, "entities per category (default from config)")
	return cmd
}
