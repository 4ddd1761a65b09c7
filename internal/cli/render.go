package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
	"github.com/matzehuels/layoutmetrics/pkg/render"
)

const defaultPNGScale = 2.0

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output      string        // output path; the extension picks the format
	leftToRight bool          // horizontal layout
	highlight   bool          // highlight the longest path
	crossings   bool          // mark flows taking part in crossings
	timeout     time.Duration // bound for the longest-path search
	noCache     bool
}

// validFormats is the set of supported output extensions.
var validFormats = map[string]bool{"dot": true, "svg": true, "pdf": true, "png": true}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{highlight: true, crossings: true}

	cmd := &cobra.Command{
		Use:   "render <diagram>",
		Short: "Render a diagram with Graphviz, highlighting its longest path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output == "" {
				opts.output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".svg"
			}
			format, err := outputFormat(opts.output)
			if err != nil {
				return err
			}
			return c.runRender(cmd, args[0], format, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file: .svg (default), .dot, .pdf or .png")
	cmd.Flags().BoolVar(&opts.leftToRight, "lr", false, "lay out left to right")
	cmd.Flags().BoolVar(&opts.highlight, "highlight", opts.highlight, "highlight the longest path")
	cmd.Flags().BoolVar(&opts.crossings, "crossings", opts.crossings, "mark flows that cross other flows")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "bound the longest-path search (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")

	return cmd
}

// outputFormat derives the output format from a file extension.
func outputFormat(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !validFormats[ext] {
		return "", apperrors.New(apperrors.ErrCodeInvalidInput, "unsupported output format %q (must be .svg, .dot, .pdf or .png)", filepath.Ext(path))
	}
	return ext, nil
}

func (c *CLI) runRender(cmd *cobra.Command, path, format string, opts renderOpts) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

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

	dotOpts := render.Options{LeftToRight: opts.leftToRight}
	if opts.highlight || opts.crossings {
		runner, err := c.newRunner(ctx, cfg, runnerOpts{noCache: opts.noCache})
		if err != nil {
			return err
		}
		defer runner.Close(context.WithoutCancel(ctx))

		res, err := runner.Analyze(ctx, d, pipeline.Options{Timeout: opts.timeout, WithCrossings: opts.crossings})
		if err != nil {
			return err
		}
		if opts.highlight {
			dotOpts.HighlightPath = res.Report.LongestPath
		}
		if opts.crossings {
			dotOpts.CrossingFlows = render.CrossingFlows(res.Crossings)
		}
	}

	data, err := renderDiagram(ctx, d, format, dotOpts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	prog.done(fmt.Sprintf("Rendered %s", filepath.Base(opts.output)))
	printFile(opts.output)
	return nil
}

// renderDiagram produces the bytes of d in the given format.
func renderDiagram(ctx context.Context, d *diagram.Diagram, format string, opts render.Options) ([]byte, error) {
	dot := render.ToDOT(d, opts)
	if format == "dot" {
		return []byte(dot), nil
	}

	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case "pdf":
		return render.ToPDF(ctx, svg)
	case "png":
		return render.ToPNG(ctx, svg, defaultPNGScale)
	default:
		return svg, nil
	}
}
