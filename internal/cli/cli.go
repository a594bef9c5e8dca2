// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the generator's options.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/skellner/docfill/internal/generator"
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

// Config is the fully validated result of a CLI invocation.
type Config struct {
	Generator generator.Options
	LogLevel  string
}

// Level translates the validated log-level flag into a slog.Level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const usageHeader = `docfill - fill a DOCX template from a key=value file.

Usage:
  docfill -k <key-file> -t <template.docx> [-o <outdir>] [-n <name.docx>]

Options:
`

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("docfill", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageHeader)
		flagSet.PrintDefaults()
	}

	var (
		keyFile  string
		template string
		outDir   string
		name     string
		logLevel string
	)
	flagSet.StringVar(&keyFile, "kvfile", "", "Path to the key=value text file (required).")
	flagSet.StringVar(&keyFile, "k", "", "Path to the key=value text file (shorthand).")
	flagSet.StringVar(&template, "template", "", "Path to the DOCX template (required).")
	flagSet.StringVar(&template, "t", "", "Path to the DOCX template (shorthand).")
	flagSet.StringVar(&outDir, "outdir", generator.DefaultOutDir, "Output directory, created if missing.")
	flagSet.StringVar(&outDir, "o", generator.DefaultOutDir, "Output directory (shorthand).")
	flagSet.StringVar(&name, "name", "", "Output file name. Derived from the variable set when omitted.")
	flagSet.StringVar(&name, "n", "", "Output file name (shorthand).")
	flagSet.StringVar(&logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if len(args) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	if keyFile == "" {
		return nil, false, &ExitError{Code: 2, Message: "missing required flag: -k / --kvfile"}
	}
	if template == "" {
		return nil, false, &ExitError{Code: 2, Message: "missing required flag: -t / --template"}
	}

	logLevel = strings.ToLower(logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return &Config{
		Generator: generator.Options{
			KeyFile:  keyFile,
			Template: template,
			OutDir:   outDir,
			Name:     name,
		},
		LogLevel: logLevel,
	}, false, nil
}
