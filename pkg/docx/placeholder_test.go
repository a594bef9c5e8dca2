package docx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parseFixture(t testing.TB, docBytes []byte) []*Placeholder {
	t.Helper()
	parser := NewRunParser(docBytes)
	require.NoError(t, parser.Execute())
	return ParsePlaceholders(parser.Runs(), docBytes)
}

func TestParsePlaceholders(t *testing.T) {
	docBytes := readFixture(t, testFile)

	placeholders := parseFixture(t, docBytes)
	require.Len(t, placeholders, 5)

	byKey := make(map[string]*Placeholder)
	for _, placeholder := range placeholders {
		byKey[placeholder.Key] = placeholder
	}
	for _, key := range []string{"firstname", "lastname", "order-id", "amount", "unmatched"} {
		require.Contains(t, byKey, key)
	}
}

func TestParsePlaceholders_FragmentedAcrossRuns(t *testing.T) {
	docBytes := readFixture(t, testFile)
	placeholders := parseFixture(t, docBytes)

	byKey := make(map[string]*Placeholder)
	for _, placeholder := range placeholders {
		byKey[placeholder.Key] = placeholder
	}

	// '{{' in one run, the name in the next, '}}' in a third
	orderID := byKey["order-id"]
	require.Len(t, orderID.Fragments, 3)
	require.Equal(t, "{{order-id}}", orderID.Text(docBytes))

	// the delimiters themselves are split across runs
	amount := byKey["amount"]
	require.Len(t, amount.Fragments, 3)
	require.Equal(t, "{{ amount }}", amount.Text(docBytes))
}

func TestParsePlaceholders_SameRun(t *testing.T) {
	doc := []byte(`<w:r><w:t>{{foo}} and {{bar}}</w:t></w:r>`)
	placeholders := parseFixture(t, doc)

	require.Len(t, placeholders, 2)
	require.Equal(t, "foo", placeholders[0].Key)
	require.Equal(t, "bar", placeholders[1].Key)
	require.Less(t, placeholders[0].StartPos(), placeholders[1].StartPos())
}

func TestParsePlaceholders_StrayDelimitersStayLiteral(t *testing.T) {
	doc := []byte(`<w:r><w:t>open {{ only, close }} only, {{valid}}</w:t></w:r>`)
	placeholders := parseFixture(t, doc)

	// '{{ only, close }}' parses as one placeholder named 'only, close';
	// the dangling '{{' before 'valid}}' must not swallow it
	require.Len(t, placeholders, 2)
	require.Equal(t, "only, close", placeholders[0].Key)
	require.Equal(t, "valid", placeholders[1].Key)
}

func TestParsePlaceholders_EmptyNameSkipped(t *testing.T) {
	doc := []byte(`<w:r><w:t>{{}} {{ }} {{real}}</w:t></w:r>`)
	placeholders := parseFixture(t, doc)

	require.Len(t, placeholders, 1)
	require.Equal(t, "real", placeholders[0].Key)
}

func TestPlaceholderDelimiterHelpers(t *testing.T) {
	require.Equal(t, "{{name}}", AddPlaceholderDelimiter("name"))
	require.Equal(t, "{{name}}", AddPlaceholderDelimiter("{{name}}"))
	require.Equal(t, "name", RemovePlaceholderDelimiter("{{name}}"))
	require.Equal(t, "name", RemovePlaceholderDelimiter("{{ name }}"))
	require.Equal(t, "name", RemovePlaceholderDelimiter("name"))
	require.True(t, IsDelimitedPlaceholder("{{x}}"))
	require.False(t, IsDelimitedPlaceholder("{x}"))
	require.False(t, IsDelimitedPlaceholder(""))
}
