// Package keyfile parses the plain-text key/value files which feed the
// document generator. The default format is one 'key=value' pair per line;
// files with a .yaml or .yml extension are parsed as a flat YAML mapping
// instead.
package keyfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInputFormat is returned for key files which cannot be read or parsed.
var ErrInputFormat = errors.New("malformed key file")

// Vars is the variable set parsed from a key file: placeholder names mapped
// to their replacement values.
type Vars map[string]string

// Parse reads the key file at path into a variable set.
//
// Line format: blank lines and lines starting with '#' are ignored, every
// other line must contain a '=' and is split on its first occurrence. Keys
// and values are whitespace-trimmed; one pair of matching surrounding single
// or double quotes is stripped from the value. Duplicate keys are resolved
// last-wins.
func Parse(path string) (Vars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputFormat, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(f)
	default:
		return parseLines(f)
	}
}

func parseLines(r io.Reader) (Vars, error) {
	vars := make(Vars)
	scanner := bufio.NewScanner(r)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, fmt.Errorf("%w: line %d: missing '=' separator", ErrInputFormat, lineno)
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" {
			return nil, fmt.Errorf("%w: line %d: empty key", ErrInputFormat, lineno)
		}
		vars[key] = unquote(strings.TrimSpace(line[idx+1:]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputFormat, err)
	}
	return vars, nil
}

func parseYAML(r io.Reader) (Vars, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputFormat, err)
	}

	raw := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputFormat, err)
	}

	vars := make(Vars, len(raw))
	for key, value := range raw {
		switch value.(type) {
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("%w: value of %q is not a scalar", ErrInputFormat, key)
		case nil:
			vars[key] = ""
		default:
			vars[key] = fmt.Sprint(value)
		}
	}
	return vars, nil
}

// unquote removes one pair of matching surrounding single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '\'' || s[0] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
