package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/proctrace/internal/combine"
	"github.com/GriffinCanCode/proctrace/internal/config"
	"github.com/GriffinCanCode/proctrace/internal/logging"
	"github.com/GriffinCanCode/proctrace/internal/shared/paths"
)

type options struct {
	baseDir     string
	runID       string
	pattern     string
	name        string
	compression string
	output      string
}

func main() {
	cmd, err := newCommand(os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand(stdout io.Writer) (*cobra.Command, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	opts := options{
		baseDir:     cfg.Trace.Dir,
		pattern:     cfg.Combine.Pattern,
		name:        cfg.Combine.Name,
		compression: cfg.Combine.Compression,
	}

	cmd := &cobra.Command{
		Use:          "tracecombine [run-dir]",
		Short:        "Merge the trace files of one run",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Config{
				Level:       cfg.Logging.Level,
				Development: cfg.Logging.Development,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			dir, err := opts.runDir(args)
			if err != nil {
				return err
			}
			return run(dir, opts, stdout, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.baseDir, "dir", opts.baseDir, "base trace directory (TRACE_LOG_DIR)")
	flags.StringVar(&opts.runID, "run", "", "run id below --dir")
	flags.StringVar(&opts.pattern, "pattern", opts.pattern, "glob selecting trace files in the run directory")
	flags.StringVar(&opts.name, "name", opts.name, "name recorded in the combined document")
	flags.StringVar(&opts.compression, "compression", opts.compression, "output compression: none, gzip or zstd")
	flags.StringVarP(&opts.output, "output", "o", "", `output file, "-" for stdout (default combined.json)`)
	return cmd, nil
}

func (o options) runDir(args []string) (string, error) {
	switch {
	case len(args) == 1 && o.runID != "":
		return "", errors.New("give either a run directory or --run, not both")
	case len(args) == 1:
		return args[0], nil
	case o.runID != "":
		if err := paths.ValidateComponent(o.runID); err != nil {
			return "", fmt.Errorf("invalid --run: %w", err)
		}
		return paths.RunPath(o.baseDir, o.runID).Dir(), nil
	default:
		return "", errors.New("a run directory or --run is required")
	}
}

func run(dir string, opts options, stdout io.Writer, logger *logging.Logger) error {
	compression, err := combine.ParseCompression(opts.compression)
	if err != nil {
		return err
	}

	files, err := combine.Discover(dir, opts.pattern)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no trace files matching %q in %s", opts.pattern, dir)
	}

	combined, err := combine.Combine(files)
	if err != nil {
		return err
	}
	combined.Name = opts.name

	output := opts.output
	if output == "" {
		output = "combined.json" + compression.Ext()
	}
	if output == "-" {
		err = combine.Write(stdout, combined, compression)
	} else {
		err = combine.WriteFile(output, combined, compression)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	logger.Info("combined trace files",
		zap.String("run_dir", dir),
		zap.Int("files", len(combined.Files)),
		zap.Int("records", combined.Records),
		zap.Int("resource_spans", len(combined.ResourceSpans)),
		zap.String("output", filepath.Clean(output)),
	)
	return nil
}
