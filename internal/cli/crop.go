package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svgcrop/pkg/config"
	errs "github.com/matzehuels/svgcrop/pkg/errors"
	"github.com/matzehuels/svgcrop/pkg/pipeline"
)

// stdinName is the input argument that reads from standard input.
const stdinName = "-"

// cropOpts holds the command-line flags for the crop command.
type cropOpts struct {
	size     int
	scale    float64
	output   string // output file, or directory for several inputs
	inPlace  bool   // overwrite the input files
	noCache  bool
	refresh  bool
	review   bool // confirm each result interactively before writing
	renderer rendererFlags
}

// input is one document read from a file or stdin.
type input struct {
	Name   string
	Source string
}

// cropCommand creates the crop command.
func (c *CLI) cropCommand() *cobra.Command {
	var opts cropOpts

	cmd := &cobra.Command{
		Use:   "crop [files...|-]",
		Short: "Crop SVG viewBoxes to their visible content",
		Long: `Crop renders every input in a single batch, finds the visible pixels of each
document and rewrites its viewBox to fit them.

With no files, or "-", the document is read from standard input and the
result is written to standard output.`,
		Example: `  svgcrop crop logo.svg -o logo.cropped.svg
  svgcrop crop --in-place icons/*.svg
  cat logo.svg | svgcrop crop --renderer raster > out.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			opts.renderer.apply(cmd, &cfg.Renderer)
			if cmd.Flags().Changed("size") {
				cfg.Crop.Size = opts.size
			}
			if cmd.Flags().Changed("scale") {
				cfg.Crop.Scale = opts.scale
			}
			if opts.noCache {
				cfg.Cache.Backend = config.BackendNone
			}
			return c.runCrop(cmd.Context(), cfg, args, &opts)
		},
	}

	cmd.Flags().IntVar(&opts.size, "size", pipeline.DefaultSize, "tile size in pixels (max 1600)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "padding multiplier applied to the content bounds")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or directory when cropping several files")
	cmd.Flags().BoolVar(&opts.inPlace, "in-place", false, "overwrite the input files")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&opts.review, "review", false, "review the results before writing them")
	opts.renderer.register(cmd)
	cmd.MarkFlagsMutuallyExclusive("output", "in-place")

	return cmd
}

// runCrop reads the inputs, crops them in one batch and writes the results.
func (c *CLI) runCrop(ctx context.Context, cfg config.Config, args []string, opts *cropOpts) error {
	logger := loggerFromContext(ctx)

	inputs, err := readInputs(args, os.Stdin)
	if err != nil {
		return err
	}
	if opts.inPlace && hasStdin(inputs) {
		return errs.New(errs.ErrCodeInvalidInput, "--in-place needs file arguments")
	}
	paths, err := outputPaths(inputs, opts.output, opts.inPlace)
	if err != nil {
		return err
	}

	r, err := c.newRenderer(cfg.Renderer)
	if err != nil {
		return err
	}
	if closer, ok := r.(io.Closer); ok {
		defer closer.Close()
	}
	runner, err := c.newRunner(ctx, cfg, r)
	if err != nil {
		return err
	}
	defer runner.Close()

	srcs := make([]string, len(inputs))
	for i, in := range inputs {
		srcs[i] = in.Source
	}

	prog := newProgress(logger)
	spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Cropping %d document(s)...", len(inputs)))
	spin.Start()
	result, err := runner.Execute(ctx, pipeline.Options{
		Inputs:  srcs,
		Size:    cfg.Crop.Size,
		Scale:   cfg.Crop.Scale,
		Refresh: opts.refresh,
	})
	spin.Stop()
	if err != nil {
		return describeError(err, inputs)
	}
	prog.done(fmt.Sprintf("Cropped %d documents", len(inputs)), "rendered", result.Stats.Rendered, "cached", result.CacheInfo.HitCount())

	rows := resultRows(inputs, result)
	if opts.review {
		var ttyIn []tea.ProgramOption
		if hasStdin(inputs) {
			ttyIn = append(ttyIn, tea.WithInputTTY())
		}
		accepted, err := runReview(rows, os.Stderr, ttyIn...)
		if err != nil {
			return err
		}
		for i, ok := range accepted {
			if !ok {
				result.Outputs[i] = inputs[i].Source
				rows[i].Skipped = true
			}
		}
	}

	if paths == nil {
		if err := writeStdout(os.Stdout, result.Outputs); err != nil {
			return err
		}
		printResults(os.Stderr, rows)
		return nil
	}

	for i, path := range paths {
		if rows[i].Skipped {
			continue
		}
		if err := writeOutput(path, result.Outputs[i]); err != nil {
			return err
		}
	}
	printResults(os.Stdout, rows)
	printSuccess("Wrote %d file(s)", countWritten(rows))
	return nil
}

// readInputs reads each named file, or stdin for "-" or no arguments.
func readInputs(args []string, stdin io.Reader) ([]input, error) {
	if len(args) == 0 {
		args = []string{stdinName}
	}
	inputs := make([]input, 0, len(args))
	readStdin := false
	for _, name := range args {
		var data []byte
		var err error
		if name == stdinName {
			if readStdin {
				return nil, errs.New(errs.ErrCodeInvalidInput, "stdin can only be read once")
			}
			readStdin = true
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", name)
		}
		inputs = append(inputs, input{Name: name, Source: string(data)})
	}
	return inputs, nil
}

// writeStdout writes every output back to back, byte for byte.
func writeStdout(w io.Writer, outputs []string) error {
	for _, out := range outputs {
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}

func hasStdin(inputs []input) bool {
	for _, in := range inputs {
		if in.Name == stdinName {
			return true
		}
	}
	return false
}

// outputPaths decides where each result goes. A nil result means stdout.
//
//   - --in-place writes each result back to its input
//   - -o with one input names the output file (or a directory to write into)
//   - -o with several inputs names a directory; files keep their base names
func outputPaths(inputs []input, output string, inPlace bool) ([]string, error) {
	if inPlace {
		paths := make([]string, len(inputs))
		for i, in := range inputs {
			paths[i] = in.Name
		}
		return paths, nil
	}
	if output == "" {
		if len(inputs) > 1 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "cropping several files needs --output <dir> or --in-place")
		}
		return nil, nil
	}
	if err := errs.ValidatePath(output); err != nil {
		return nil, err
	}

	info, statErr := os.Stat(output)
	isDir := statErr == nil && info.IsDir()
	if len(inputs) == 1 && !isDir {
		return []string{output}, nil
	}
	if !isDir {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", output)
		}
	}

	paths := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, in := range inputs {
		name := filepath.Base(in.Name)
		if in.Name == stdinName {
			name = "stdin.svg"
		}
		if prev, ok := seen[name]; ok {
			return nil, errs.New(errs.ErrCodeInvalidPath, "%s and %s would both be written to %s", prev, in.Name, name)
		}
		seen[name] = in.Name
		paths[i] = filepath.Join(output, name)
	}
	return paths, nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path, data string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(data), 0o644)
}

// describeError names the offending file for errors tied to a document.
func describeError(err error, inputs []input) error {
	i := errs.GetIndex(err)
	if i < 0 || i >= len(inputs) || len(inputs) == 1 && inputs[0].Name == stdinName {
		return err
	}
	return fmt.Errorf("%s: %w", inputs[i].Name, err)
}

// resultRows pairs inputs with their crop results for display.
func resultRows(inputs []input, result *pipeline.Result) []resultRow {
	rows := make([]resultRow, len(inputs))
	for i, in := range inputs {
		rows[i] = resultRow{
			Name:   in.Name,
			Before: result.Original[i],
			After:  result.ViewBoxes[i],
			Cached: result.CacheInfo.Hits[i],
		}
	}
	return rows
}

func countWritten(rows []resultRow) int {
	n := 0
	for _, r := range rows {
		if !r.Skipped {
			n++
		}
	}
	return n
}
