// Package generator drives a single document generation run: it parses the
// key file, substitutes the values into the template and writes the populated
// document into the output directory.
package generator

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/skellner/docfill/pkg/docx"
	"github.com/skellner/docfill/pkg/keyfile"
)

// DefaultOutDir is used when no output directory is given.
const DefaultOutDir = "output_docs"

// maxFilenameLen caps auto-derived output file names.
const maxFilenameLen = 120

// nameKeys are probed in order when deriving an output name from the
// variable set.
var nameKeys = []string{"FIRSTNAME", "name", "Name", "FULLNAME", "FULL_NAME"}

// Options describes one generation run.
type Options struct {
	// KeyFile is the path to the key=value text file.
	KeyFile string
	// Template is the path to the docx template.
	Template string
	// OutDir is the output directory, created if missing.
	// Empty means DefaultOutDir.
	OutDir string
	// Name is the output file name including extension. Empty means the name
	// is derived from the variable set.
	Name string
}

// Run performs one generation run and returns the path of the written
// document. Any failure aborts the run; there are no retries.
func Run(opts Options, logger *slog.Logger) (string, error) {
	vars, err := keyfile.Parse(opts.KeyFile)
	if err != nil {
		return "", fmt.Errorf("reading key file: %w", err)
	}
	if len(vars) == 0 {
		logger.Warn("no key/value pairs found in key file", "path", opts.KeyFile)
	}

	doc, err := docx.Open(opts.Template)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	placeholderMap := make(docx.PlaceholderMap, len(vars))
	for key, value := range vars {
		placeholderMap[key] = value
	}
	if err := doc.ReplaceAll(placeholderMap); err != nil {
		return "", fmt.Errorf("substituting placeholders: %w", err)
	}

	for _, name := range doc.Unresolved() {
		logger.Warn("placeholder has no matching key and was left unresolved", "placeholder", name)
	}

	outName := opts.Name
	if outName == "" {
		outName = deriveName(vars)
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = DefaultOutDir
	}

	outPath := filepath.Join(outDir, outName)
	if err := doc.WriteToFile(outPath); err != nil {
		return "", err
	}

	logger.Info("document generated",
		"path", outPath,
		"replacements", doc.ReplaceCount(),
		"unresolved", len(doc.Unresolved()))
	return outPath, nil
}

// deriveName builds an output file name from the first name-like variable.
func deriveName(vars keyfile.Vars) string {
	for _, key := range nameKeys {
		if value := vars[key]; strings.TrimSpace(value) != "" {
			return safeFilename(value) + ".docx"
		}
	}
	return "document.docx"
}

var (
	unsafeRunes = regexp.MustCompile(`[^\w\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// safeFilename sanitizes a value for use as a file name: unsafe runes are
// dropped, whitespace collapses to underscores and the result is capped at
// maxFilenameLen runes.
func safeFilename(s string) string {
	s = strings.TrimSpace(s)
	s = unsafeRunes.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "_")
	if runes := []rune(s); len(runes) > maxFilenameLen {
		s = string(runes[:maxFilenameLen])
	}
	if s == "" {
		return "output"
	}
	return s
}
