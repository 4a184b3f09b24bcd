package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/pdcgo/collection_service/sync_service"
	"github.com/spf13/cobra"
)

var errNotConfirmed = errors.New("refusing to continue without --yes")

type cliOptions struct {
	agent   string
	token   string
	timeout time.Duration
}

func (o *cliOptions) client() sync_service.SyncServiceClient {
	return sync_service.NewSyncServiceClient(
		http.DefaultClient,
		o.agent,
		connect.WithInterceptors(tokenInterceptor(o.token)),
	)
}

func (o *cliOptions) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), o.timeout)
}

func tokenInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" && req.Spec().IsClient {
				req.Header().Set("Authorization", token)
			}
			return next(ctx, req)
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func rootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Talks to the collector agent running on this device",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.agent, "agent", "http://127.0.0.1:8081", "Collector agent base url")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "Authorization token sent to the agent")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "Request timeout")

	cmd.AddCommand(
		reconcileCmd(opts),
		reportCmd(opts),
		statsCmd(opts),
		statusCmd(opts),
		initialLoadCmd(opts),
		purgeCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func reconcileCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Upload local payments missing from the remote ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().Reconcile(ctx, connect.NewRequest(&sync_service.ReconcileRequest{}))
			if err != nil {
				return err
			}

			outcome := res.Msg.Outcome
			fmt.Fprintln(cmd.OutOrStdout(), outcome.Diagnostic)
			if !outcome.Success {
				return errors.New("reconcile failed")
			}
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, res *sync_service.ReportResponse) error {
	fmt.Fprint(cmd.OutOrStdout(), res.Ticket.Text)
	if res.PrintError != "" {
		return fmt.Errorf("print: %s", res.PrintError)
	}
	return nil
}

func reportCmd(opts *cliOptions) *cobra.Command {
	var toPrinter bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build collection tickets",
	}
	cmd.PersistentFlags().BoolVar(&toPrinter, "print", false, "Send the ticket to the configured printer")

	var date string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Payments collected on one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().DailyReport(ctx, connect.NewRequest(&sync_service.DailyReportRequest{
				Date:  date,
				Print: toPrinter,
			}))
			if err != nil {
				return err
			}
			return printReport(cmd, res.Msg)
		},
	}
	daily.Flags().StringVar(&date, "date", "", "Day to report as YYYY-MM-DD, today when empty")

	var local bool
	weekly := &cobra.Command{
		Use:   "weekly",
		Short: "Payments since the last initial load",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().WeeklyReport(ctx, connect.NewRequest(&sync_service.WeeklyReportRequest{
				Local: local,
				Print: toPrinter,
			}))
			if err != nil {
				return err
			}
			return printReport(cmd, res.Msg)
		},
	}
	weekly.Flags().BoolVar(&local, "local", false, "Read the device ledger instead of the remote one")

	cmd.AddCommand(daily, weekly)
	return cmd
}

func statsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Home screen totals for the current week",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().HomeStats(ctx, connect.NewRequest(&sync_service.HomeStatsRequest{}))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Msg.Stats)
		},
	}
}

func statusCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Session and last reconcile run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().Status(ctx, connect.NewRequest(&sync_service.StatusRequest{}))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Msg)
		},
	}
}

func initialLoadCmd(opts *cliOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "initial-load",
		Short: "Start a new collection week for the zone",
		Long: `Marks every sale of the zone as pending and moves the collector's
initial load to now. Run it once a week, not daily.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}

			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().InitialLoad(ctx, connect.NewRequest(&sync_service.InitialLoadRequest{}))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "initial load at", res.Msg.InitialLoadAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the initial load")

	return cmd
}

func purgeCmd(opts *cliOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every payment stored on the device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}

			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().PurgeLocal(ctx, connect.NewRequest(&sync_service.PurgeLocalRequest{Confirm: true}))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "purged %d payments\n", res.Msg.Purged)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the purge")

	return cmd
}
