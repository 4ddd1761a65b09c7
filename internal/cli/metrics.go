package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutmetrics/pkg/client"
	"github.com/matzehuels/layoutmetrics/pkg/config"
	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
)

// metricsOpts holds the flags of the metrics command.
type metricsOpts struct {
	json      bool
	timeout   time.Duration
	noCache   bool
	save      bool
	crossings bool
	server    string
}

func (c *CLI) metricsCommand() *cobra.Command {
	var opts metricsOpts

	cmd := &cobra.Command{
		Use:   "metrics <diagram>",
		Short: "Compute crossings, segment count and longest path of a diagram",
		Long: `Compute layout-quality metrics for a process diagram file (JSON or TOML).

The longest-path search is exponential on densely branching diagrams; use
--timeout to bound it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMetrics(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "bound the longest-path search (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.save, "save", false, "persist the report to the configured store")
	cmd.Flags().BoolVar(&opts.crossings, "crossings", false, "list every crossing segment pair")
	cmd.Flags().StringVar(&opts.server, "server", "", "analyze on a remote layoutmetrics server (base URL)")

	return cmd
}

func (c *CLI) runMetrics(cmd *cobra.Command, path string, opts metricsOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("timeout") {
		opts.timeout = cfg.Timeout.Duration
	}

	d, err := readDiagram(path)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Analyzing %s...", path))
	spinner.Start()
	res, err := c.analyze(ctx, cfg, d, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if opts.json {
		return printJSON(res)
	}
	fmt.Println(formatReport(d.Name(), res))
	if res.Report.Crossings > 0 && !opts.crossings {
		fmt.Println()
		printNextStep("See the crossing flows", fmt.Sprintf("%s render %s -o out.svg", appName, path))
	}
	return nil
}

// analyze runs the analysis locally or, with --server, remotely.
func (c *CLI) analyze(ctx context.Context, cfg config.Config, d *diagram.Diagram, opts metricsOpts) (*pipeline.Result, error) {
	if opts.server != "" {
		c.Logger.Debug("analyzing remotely", "server", opts.server)
		return client.New(opts.server, nil).Analyze(ctx, d, client.AnalyzeOptions{
			Crossings: opts.crossings,
			NoSave:    !opts.save,
		})
	}

	if opts.save {
		if err := requirePersistentStore(cfg); err != nil {
			return nil, err
		}
	}
	runner, err := c.newRunner(ctx, cfg, runnerOpts{noCache: opts.noCache, store: opts.save})
	if err != nil {
		return nil, err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	return runner.Analyze(ctx, d, pipeline.Options{
		Timeout:       opts.timeout,
		WithCrossings: opts.crossings,
		Save:          opts.save,
	})
}

// readDiagram loads a diagram file, mapping failures to structured errors.
func readDiagram(path string) (*diagram.Diagram, error) {
	d, err := diagram.ReadFile(path)
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "diagram file %s not found", path)
	default:
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidDiagram, err, "read %s", path)
	}
}
