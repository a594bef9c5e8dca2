package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skellner/docfill/internal/cli"
	"github.com/skellner/docfill/pkg/docx"
	"github.com/skellner/docfill/pkg/keyfile"
)

func TestExitCode(t *testing.T) {
	require.Equal(t, 2, exitCode(&cli.ExitError{Code: 2, Message: "bad flag"}))
	require.Equal(t, 5, exitCode(&cli.ExitError{Code: 5, Message: "custom"}))
	require.Equal(t, 2, exitCode(fmt.Errorf("opening template: %w", docx.ErrTemplateNotFound)))
	require.Equal(t, 2, exitCode(fmt.Errorf("opening template: %w", docx.ErrTemplateFormat)))
	require.Equal(t, 3, exitCode(fmt.Errorf("reading key file: %w", keyfile.ErrInputFormat)))
	require.Equal(t, 4, exitCode(fmt.Errorf("writing: %w", docx.ErrWrite)))
	require.Equal(t, 4, exitCode(fmt.Errorf("some other failure")))
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&out, nil))
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_MissingTemplate(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, []string{"-k", "data.txt"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
}
