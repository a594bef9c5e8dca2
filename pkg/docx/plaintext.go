package docx

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Plaintext returns the given document part with all tags stripped.
func (d *Document) Plaintext(data []byte) string {
	return bluemonday.StripTagsPolicy().Sanitize(string(data))
}

// stripXMLTags tokenizes the given data and concatenates everything which is
// not a tag. Unlike the sanitizer used for Plaintext it keeps the raw text
// bytes untouched, so placeholders fragmented across runs reassemble exactly.
func stripXMLTags(data string) string {
	var output strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(data))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return output.String()
		case html.TextToken:
			output.Write(tokenizer.Text())
		}
	}
}

// countPlaceholders returns the number of placeholder occurrences in data
// whose key appears in the placeholderMap. Reoccurring placeholders are
// counted every time. The count is taken on the tag-stripped text and is used
// to cross-check the replacer against the position-based parser.
func countPlaceholders(data []byte, placeholderMap PlaceholderMap) int {
	plaintext := stripXMLTags(string(data))
	var placeholderCount int
	for key := range placeholderMap {
		placeholderCount += len(delimitedPattern(key).FindAllStringIndex(plaintext, -1))
	}
	return placeholderCount
}

// delimitedPattern builds a pattern matching the delimited placeholder for
// the given key, allowing whitespace between the delimiters and the name.
func delimitedPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(key) + `\s*\}\}`)
}
