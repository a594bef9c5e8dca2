package keyfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writeKeyFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse(t *testing.T) {
	path := writeKeyFile(t, "data.txt", `
# letter variables
FIRSTNAME=John
LASTNAME = Doe
ADDRESS="Main Street 1"
NICKNAME='Johnny'
EMPTY=
EQUATION=a=b=c
`)

	vars, err := Parse(path)
	require.NoError(t, err)

	want := Vars{
		"FIRSTNAME": "John",
		"LASTNAME":  "Doe",
		"ADDRESS":   "Main Street 1",
		"NICKNAME":  "Johnny",
		"EMPTY":     "",
		"EQUATION":  "a=b=c",
	}
	if diff := cmp.Diff(want, vars); diff != "" {
		t.Errorf("parsed variables mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_UniqueKeyCount(t *testing.T) {
	path := writeKeyFile(t, "data.txt", "a=1\nb=2\nc=3\n")

	vars, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, vars, 3)
}

func TestParse_DuplicateKeysLastWins(t *testing.T) {
	path := writeKeyFile(t, "data.txt", "city=Berlin\ncity=Hamburg\n")

	vars, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, Vars{"city": "Hamburg"}, vars)
}

func TestParse_MalformedLine(t *testing.T) {
	path := writeKeyFile(t, "data.txt", "a=1\nthis line has no separator\nb=2\n")

	_, err := Parse(path)
	require.ErrorIs(t, err, ErrInputFormat)
	require.Contains(t, err.Error(), "line 2")
}

func TestParse_EmptyKey(t *testing.T) {
	path := writeKeyFile(t, "data.txt", "=value\n")

	_, err := Parse(path)
	require.ErrorIs(t, err, ErrInputFormat)
}

func TestParse_FileNotFound(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, ErrInputFormat)
}

func TestParse_YAML(t *testing.T) {
	path := writeKeyFile(t, "data.yaml", `
FIRSTNAME: John
AGE: 30
CITY: "Berlin"
BLANK:
`)

	vars, err := Parse(path)
	require.NoError(t, err)

	want := Vars{
		"FIRSTNAME": "John",
		"AGE":       "30",
		"CITY":      "Berlin",
		"BLANK":     "",
	}
	if diff := cmp.Diff(want, vars); diff != "" {
		t.Errorf("parsed variables mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_YAMLRejectsNestedValues(t *testing.T) {
	path := writeKeyFile(t, "data.yml", "person:\n  name: John\n")

	_, err := Parse(path)
	require.ErrorIs(t, err, ErrInputFormat)
}

func TestParse_YAMLMalformed(t *testing.T) {
	path := writeKeyFile(t, "data.yaml", ":\n\t- broken")

	_, err := Parse(path)
	require.ErrorIs(t, err, ErrInputFormat)
}

func TestUnquote(t *testing.T) {
	require.Equal(t, "plain", unquote("plain"))
	require.Equal(t, "quoted", unquote(`"quoted"`))
	require.Equal(t, "quoted", unquote("'quoted'"))
	require.Equal(t, `"mismatched'`, unquote(`"mismatched'`))
	require.Equal(t, "'inner' stays", unquote("'inner' stays"))
	require.Equal(t, `"`, unquote(`"`))
}
