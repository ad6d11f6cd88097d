package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/pixelgrid/internal/hcl_adapter"
)

// Command selects what the App does.
type Command string

const (
	CommandRun      Command = "run"
	CommandValidate Command = "validate"
	CommandList     Command = "list"
	CommandInfo     Command = "info"
)

// Validation levels.
const (
	ValidationFull    = "full"
	ValidationMinimal = "minimal"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command Command
	// GraphPath is a .hcl file or directory, or a .json/.yaml/.yml document.
	GraphPath string
	// OperationID is the operation described by the info command.
	OperationID string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Validation      string

	// Settings holds the run settings given on the command line. They win
	// over a graph file's settings block, which wins over the defaults.
	Settings hcl_adapter.Overrides
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		cfg.Command = CommandRun
	}
	switch cfg.Command {
	case CommandRun, CommandValidate:
		if cfg.GraphPath == "" {
			return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
		}
	case CommandInfo:
		if cfg.OperationID == "" {
			return nil, errors.New("info requires an operation id")
		}
	case CommandList:
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.Validation == "" {
		cfg.Validation = ValidationFull
	}
	if cfg.Validation != ValidationFull && cfg.Validation != ValidationMinimal {
		return nil, errors.New("validation must be 'full' or 'minimal'")
	}
	if cfg.HealthcheckPort < 0 {
		return nil, errors.New("HealthcheckPort cannot be negative")
	}
	return &cfg, nil
}
