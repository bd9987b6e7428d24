package config

import (
	"fmt"
	"os"
	"strings"
)

// Options holds output settings shared by the CLI and the library
type Options struct {
	// Format is "surql" or "markdown"
	Format string `json:"format" yaml:"format"`

	// Comments adds a banner before every table block
	Comments bool `json:"comments" yaml:"comments"`

	// OutputDir enables multi-file output
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SchemaName is the source database schema for imports
	SchemaName string `json:"schema" yaml:"schema"`

	// Mode of imported tables
	Mode string `json:"mode" yaml:"mode"`
}

// DefaultOptions returns the default options
func DefaultOptions() *Options {
	return &Options{
		Format: "surql",
		Mode:   "SCHEMAFULL",
	}
}

// LoadOptionsFromEnv overrides options from environment variables.
// Environment variables use the SURQLSCHEMA_ prefix.
func LoadOptionsFromEnv(o *Options) {
	if v := os.Getenv("SURQLSCHEMA_FORMAT"); v != "" {
		o.Format = v
	}
	if v := os.Getenv("SURQLSCHEMA_COMMENTS"); v != "" {
		o.Comments = v == "true" || v == "1"
	}
	if v := os.Getenv("SURQLSCHEMA_OUTPUT_DIR"); v != "" {
		o.OutputDir = v
	}
	if v := os.Getenv("SURQLSCHEMA_SCHEMA"); v != "" {
		o.SchemaName = v
	}
	if v := os.Getenv("SURQLSCHEMA_MODE"); v != "" {
		o.Mode = v
	}
}

// Validate validates the options
func (o *Options) Validate() error {
	switch o.Format {
	case "surql", "markdown":
	default:
		return fmt.Errorf("invalid format: %s (must be 'surql' or 'markdown')", o.Format)
	}

	switch strings.ToUpper(o.Mode) {
	case "SCHEMAFULL", "SCHEMALESS":
	default:
		return fmt.Errorf("invalid mode: %s (must be SCHEMAFULL or SCHEMALESS)", o.Mode)
	}
	return nil
}
