package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/specialistvlad/pixelgrid/internal/app"
	"github.com/specialistvlad/pixelgrid/internal/engine"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

var commands = map[string]app.Command{
	"run":      app.CommandRun,
	"validate": app.CommandValidate,
	"list":     app.CommandList,
	"info":     app.CommandInfo,
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	command := app.CommandRun
	if len(args) > 0 {
		if c, ok := commands[args[0]]; ok {
			command = c
			args = args[1:]
		}
	}

	flagSet := flag.NewFlagSet("pixelgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Pixelgrid - an image-processing dataflow engine.

Usage:
  pixelgrid [run] [options] GRAPH_PATH
  pixelgrid validate [options] GRAPH_PATH
  pixelgrid list
  pixelgrid info OPERATION_ID

Arguments:
  GRAPH_PATH
    A .hcl file, a directory of .hcl files, or a .json/.yaml graph document.

Options:
`)
		flagSet.PrintDefaults()
	}

	graphFlag := flagSet.String("graph", "", "Path to the graph file or directory.")
	gFlag := flagSet.String("g", "", "Path to the graph file or directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	validationFlag := flagSet.String("validation", app.ValidationFull, "Validation level before running. Options: 'full' or 'minimal'.")

	workersFlag := flagSet.Int("workers", 0, "Maximum nodes executed concurrently. 0 uses the number of CPUs.")
	memoryFlag := flagSet.String("memory-limit", "", "Memory budget for tiled processing, e.g. '512MB' or '1GiB'.")
	tileSizeFlag := flagSet.Int("tile-size", 0, "Tile edge length in pixels for tiled processing.")
	parallelFlag := flagSet.Bool("parallel", true, "Execute independent nodes concurrently.")
	noCacheFlag := flagSet.Bool("no-cache", false, "Disable result caching.")
	failFastFlag := flagSet.Bool("fail-fast", false, "Stop starting nodes after the first failure.")
	noAutoChunkFlag := flagSet.Bool("no-auto-chunk", false, "Never split large images into tiles.")
	nodeTimeoutFlag := flagSet.Duration("node-timeout", 0, "Time limit for a single node. 0 is unlimited.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "command", string(command))

	cfg := app.Config{Command: command}
	switch command {
	case app.CommandInfo:
		if flagSet.NArg() == 0 {
			return nil, false, usageError("info requires an operation id")
		}
		cfg.OperationID = flagSet.Arg(0)
	case app.CommandRun, app.CommandValidate:
		switch {
		case *graphFlag != "":
			cfg.GraphPath = *graphFlag
		case *gFlag != "":
			cfg.GraphPath = *gFlag
		case flagSet.NArg() > 0:
			cfg.GraphPath = flagSet.Arg(0)
		}
		slog.Debug("Graph path determined.", "path", cfg.GraphPath)
		if cfg.GraphPath == "" {
			slog.Debug("No graph path provided, printing usage and exiting.")
			flagSet.Usage()
			return nil, true, nil
		}
	}

	cfg.LogFormat = strings.ToLower(*logFormatFlag)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}
	cfg.LogLevel = strings.ToLower(*logLevelFlag)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	cfg.HealthcheckPort = *healthPortFlag
	cfg.Validation = strings.ToLower(*validationFlag)

	// Only flags given explicitly override the graph file's settings.
	var visitErr error
	flagSet.Visit(func(f *flag.Flag) {
		if visitErr != nil {
			return
		}
		s := &cfg.Settings
		switch f.Name {
		case "workers":
			if *workersFlag < 0 {
				visitErr = usageError("invalid workers: must not be negative")
				return
			}
			s.MaxWorkers = workersFlag
		case "memory-limit":
			n, err := humanize.ParseBytes(*memoryFlag)
			if err != nil || n == 0 {
				visitErr = usageError("invalid memory-limit %q: use a size like '512MB'", *memoryFlag)
				return
			}
			limit := int64(n)
			s.MemoryLimit = &limit
		case "tile-size":
			if *tileSizeFlag <= 0 {
				visitErr = usageError("invalid tile-size: must be positive")
				return
			}
			s.TileSize = tileSizeFlag
		case "parallel":
			s.Parallel = parallelFlag
		case "no-cache":
			useCache := !*noCacheFlag
			s.UseCache = &useCache
		case "fail-fast":
			policy := engine.FailAggregate
			if *failFastFlag {
				policy = engine.FailFast
			}
			s.FailurePolicy = &policy
		case "no-auto-chunk":
			autoChunk := !*noAutoChunkFlag
			s.AutoChunk = &autoChunk
		case "node-timeout":
			if *nodeTimeoutFlag < 0 {
				visitErr = usageError("invalid node-timeout: must not be negative")
				return
			}
			s.NodeTimeout = nodeTimeoutFlag
		}
	})
	if visitErr != nil {
		return nil, false, visitErr
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "command", string(config.Command))
	return config, false, nil
}
