package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/document"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (multiple)
	formats  []string // svg, png, pdf, json, dot, nodelink
	slices   []string // slice names to render, in order
	width    float64  // minimum canvas width
	scale    float64  // PNG resolution multiplier
	detailed bool     // node IDs and types in dot/nodelink labels
	noCache  bool     // bypass the artifact cache
	refresh  bool     // re-render even when cached
	pick     bool     // choose slices interactively
	instance int      // corpus instance to render
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a document to SVG, PNG, PDF, JSON or Graphviz",
		Long: `Render a document to one or more artifact formats.

The document is read from file (use - for stdin) or from the "document"
setting of the config file. A corpus file renders one instance, chosen
with --instance. Formats are svg, png, pdf, json (node and edge
snapshot), dot (Graphviz source of the graph and tree slices) and nodelink
(the dot export rendered to SVG by Graphviz).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "render")
			}
			return c.runRender(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, nodelink (comma-separated)")
	cmd.Flags().StringSliceVarP(&opts.slices, "slice", "s", nil, "render only the named slices (repeatable)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "minimum canvas width")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node IDs and types (dot, nodelink)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when artifacts are cached")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose slices interactively")
	cmd.Flags().IntVar(&opts.instance, "instance", 0, "instance to render when the file is a corpus")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, args []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	input, doc, err := c.loadDocument(args, opts.instance)
	if err != nil {
		return err
	}
	logger.Debug("loaded document", "input", input, "slices", len(doc.Slices))

	if opts.pick {
		names, err := pickSlices(doc)
		if err != nil {
			return err
		}
		if names == nil {
			printInfo("Cancelled")
			return nil
		}
		opts.slices = names
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, os.Stderr, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, doc, pipeline.Options{
		Formats:  opts.formats,
		Slices:   opts.slices,
		MinWidth: opts.width,
		Scale:    opts.scale,
		Detailed: opts.detailed,
		Refresh:  opts.refresh,
		Logger:   logger,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered " + strings.Join(opts.formats, ", "))

	paths := outputPaths(opts.output, input, opts.formats)
	for _, format := range opts.formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", StyleValue.Render(input))
	printStats(result.Stats.Slices, result.Stats.Nodes, result.CacheHit)
	for _, format := range opts.formats {
		printFile(paths[format])
	}
	return nil
}

// loadDocument reads the document or corpus named by args, falling back to
// the configured default document, and returns the requested instance.
func (c *CLI) loadDocument(args []string, instance int) (string, *document.Document, error) {
	path := c.Config.Document
	if len(args) > 0 {
		path = args[0]
	}

	var instances []*document.Document
	var err error
	switch path {
	case "":
		return "", nil, errors.New(errors.ErrCodeInvalidInput, "no document given and no default document configured")
	case "-":
		data, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return "", nil, fmt.Errorf("read stdin: %w", rerr)
		}
		path = "stdin"
		instances, err = document.ParseCorpus(data, document.DetectFormat(data))
	default:
		instances, err = document.LoadCorpus(path)
	}
	if err != nil {
		return path, nil, err
	}
	if instance < 0 || instance >= len(instances) {
		return path, nil, errors.New(errors.ErrCodeInvalidInput, "instance %d out of range, %s has %d", instance, path, len(instances))
	}
	return path, instances[instance], nil
}

// fileExt maps a format to the extension of its output file.
func fileExt(format string) string {
	if format == pipeline.FormatNodelink {
		return "nodelink.svg"
	}
	return format
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. Known format
// extensions are stripped from output.
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == "stdin" {
			return "canvas"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths assigns an output file to every format. A single format
// writes to output verbatim when one is given.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + fileExt(f)
	}
	return paths
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
