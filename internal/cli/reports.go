package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutmetrics/pkg/client"
	"github.com/matzehuels/layoutmetrics/pkg/config"
	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

// reportSource reads stored reports from the configured store or a server.
type reportSource interface {
	get(ctx context.Context, id string) (*store.Record, error)
	list(ctx context.Context, limit int) ([]store.Record, error)
	close(ctx context.Context) error
}

type storeSource struct{ st store.Store }

func (s storeSource) get(ctx context.Context, id string) (*store.Record, error) {
	rec, err := s.st.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrCodeNotFound, err, "report %s not found", id)
	}
	return rec, err
}

func (s storeSource) list(ctx context.Context, limit int) ([]store.Record, error) {
	return s.st.List(ctx, limit)
}

func (s storeSource) close(ctx context.Context) error { return s.st.Close(ctx) }

type remoteSource struct{ c *client.Client }

func (s remoteSource) get(ctx context.Context, id string) (*store.Record, error) {
	return s.c.Report(ctx, id)
}

func (s remoteSource) list(ctx context.Context, limit int) ([]store.Record, error) {
	return s.c.Reports(ctx, limit)
}

func (remoteSource) close(context.Context) error { return nil }

func (c *CLI) reportsCommand() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse stored metric reports",
	}
	cmd.PersistentFlags().StringVar(&server, "server", "", "read from a remote layoutmetrics server (base URL)")

	open := func(ctx context.Context) (reportSource, error) {
		if server != "" {
			return remoteSource{client.New(server, nil)}, nil
		}
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		if err := requirePersistentStore(cfg); err != nil {
			return nil, err
		}
		st, err := openStore(ctx, cfg)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "open %s store", cfg.Store.Backend)
		}
		return storeSource{st}, nil
	}

	var limit int
	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent reports, newest first",
		Long: `List recent reports, newest first.

On a terminal the list is interactive: pick a report to show it in full.
Use --json, or pipe the output, for a plain listing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 || limit > apperrors.MaxListLimit {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "limit must be between 1 and %d", apperrors.MaxListLimit)
			}
			ctx := cmd.Context()
			src, err := open(ctx)
			if err != nil {
				return err
			}
			defer src.close(context.WithoutCancel(ctx))

			recs, err := src.list(ctx, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(recs)
			}
			if len(recs) == 0 {
				printInfo("No stored reports")
				return nil
			}
			if isTerminal(os.Stdout) {
				return pickReport(recs)
			}
			for _, r := range recs {
				fmt.Println(formatRecordLine(r))
			}
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of reports")
	list.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apperrors.ValidateReportID(args[0]); err != nil {
				return err
			}
			ctx := cmd.Context()
			src, err := open(ctx)
			if err != nil {
				return err
			}
			defer src.close(context.WithoutCancel(ctx))

			rec, err := src.get(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(rec)
			}
			fmt.Println(formatRecord(rec))
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	cmd.AddCommand(list, show)
	return cmd
}

// formatRecordLine renders one report as a single list line.
func formatRecordLine(r store.Record) string {
	return fmt.Sprintf("%s  %s  %s",
		StyleDim.Render(r.ID),
		StyleValue.Render(recordName(r)),
		StyleDim.Render(fmt.Sprintf("%d crossings · %d segments · path %d · %s",
			r.Report.Crossings, r.Report.Segments, r.Report.LongestPathLength,
			r.CreatedAt.Local().Format("2006-01-02 15:04"))))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// requirePersistentStore rejects the in-process memory backend for local
// commands: a record saved there is gone when the command exits.
func requirePersistentStore(cfg config.Config) error {
	if cfg.Store.Backend != config.BackendMemory {
		return nil
	}
	return apperrors.New(apperrors.ErrCodeInvalidConfig,
		"store backend %q does not outlive the command; configure file, mongo or postgres, or use --server", cfg.Store.Backend)
}
