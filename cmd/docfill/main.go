package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/skellner/docfill/internal/cli"
	"github.com/skellner/docfill/internal/generator"
	"github.com/skellner/docfill/pkg/docx"
	"github.com/skellner/docfill/pkg/keyfile"
)

func main() {
	// minimal logger until the configured one is installed
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// run encapsulates the program logic for easier testing and error handling.
func run(out io.Writer, args []string) error {
	config, shouldExit, err := cli.Parse(args, out)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.Level(),
	}))
	slog.SetDefault(logger)

	outPath, err := generator.Run(config.Generator, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Generated: %s\n", outPath)
	return nil
}

// exitCode maps an error to the process exit status: usage errors carry their
// own code, a missing or unreadable template exits 2, key-file errors exit 3
// and everything else (substitution or write failures) exits 4.
func exitCode(err error) int {
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch {
	case errors.Is(err, docx.ErrTemplateNotFound), errors.Is(err, docx.ErrTemplateFormat):
		return 2
	case errors.Is(err, keyfile.ErrInputFormat):
		return 3
	default:
		return 4
	}
}
