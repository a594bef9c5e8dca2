package docx

import (
	"regexp"
	"strings"
)

const (
	// OpenDelimiter marks the start of a placeholder inside the document.
	OpenDelimiter = "{{"
	// CloseDelimiter marks the end of a placeholder inside the document.
	CloseDelimiter = "}}"
)

// placeholderPattern matches a full delimited placeholder. Stray or nested
// delimiters are not matched and thus stay untouched in the document.
var placeholderPattern = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// PlaceholderMap maps placeholder names (without delimiters) to their
// replacement values.
type PlaceholderMap map[string]interface{}

// PlaceholderFragment is one piece of a placeholder inside a single run text.
// If the full placeholder is e.g. '{{foo-bar}}', WordprocessingML may rip it
// apart into multiple runs (e.g. '{{foo' and '-bar}}'), even in the middle of
// a delimiter. Position is the absolute byte range of the piece.
type PlaceholderFragment struct {
	Run      *Run
	Position Position
}

// Text returns the literal fragment text given the document bytes.
func (f *PlaceholderFragment) Text(docBytes []byte) string {
	if !f.Position.Valid() || f.Position.End > int64(len(docBytes)) {
		return ""
	}
	return string(docBytes[f.Position.Start:f.Position.End])
}

// Placeholder is the parsed representation of one delimited placeholder,
// assembled from one or more fragments.
type Placeholder struct {
	// Key is the placeholder name with delimiters stripped and surrounding
	// whitespace trimmed, so '{{ city }}' and '{{city}}' share the key 'city'.
	Key       string
	Fragments []*PlaceholderFragment
}

// Text assembles the full placeholder literal from its fragments.
func (p *Placeholder) Text(docBytes []byte) string {
	var str strings.Builder
	for _, fragment := range p.Fragments {
		str.WriteString(fragment.Text(docBytes))
	}
	return str.String()
}

// StartPos returns the absolute start position of the placeholder.
func (p *Placeholder) StartPos() int64 {
	return p.Fragments[0].Position.Start
}

// EndPos returns the absolute end position of the placeholder.
func (p *Placeholder) EndPos() int64 {
	return p.Fragments[len(p.Fragments)-1].Position.End
}

// Valid returns true if all fragments of the placeholder are well-formed.
func (p *Placeholder) Valid() bool {
	if len(p.Fragments) == 0 {
		return false
	}
	for _, fragment := range p.Fragments {
		if !fragment.Position.Valid() {
			return false
		}
	}
	return true
}

// ParsePlaceholders extracts all placeholders from the given runs.
//
// The run texts are concatenated in document order and the delimiter pattern
// is matched on the concatenation. Every match is then mapped back onto the
// byte ranges of the runs it touches, one fragment per run. This way a
// placeholder split across any number of runs is found, including splits
// inside the '{{' and '}}' delimiters themselves.
func ParsePlaceholders(runs DocumentRuns, docBytes []byte) []*Placeholder {
	type span struct {
		run     *Run
		abs     int64 // absolute start of the run text
		length  int64
		textOff int64 // offset of the run text within the concatenation
	}

	var (
		text  strings.Builder
		spans []span
	)
	for _, run := range runs.WithText() {
		ts := run.TextSpan()
		if !ts.Valid() || ts.End > int64(len(docBytes)) {
			continue
		}
		spans = append(spans, span{
			run:     run,
			abs:     ts.Start,
			length:  ts.Len(),
			textOff: int64(text.Len()),
		})
		text.Write(docBytes[ts.Start:ts.End])
	}

	var placeholders []*Placeholder
	for _, match := range placeholderPattern.FindAllStringIndex(text.String(), -1) {
		start, end := int64(match[0]), int64(match[1])
		literal := text.String()[start:end]
		key := strings.TrimSpace(literal[len(OpenDelimiter) : len(literal)-len(CloseDelimiter)])
		if key == "" {
			continue
		}

		placeholder := &Placeholder{Key: key}
		for _, s := range spans {
			from := max(start, s.textOff)
			to := min(end, s.textOff+s.length)
			if from >= to {
				continue
			}
			placeholder.Fragments = append(placeholder.Fragments, &PlaceholderFragment{
				Run: s.run,
				Position: Position{
					Start: s.abs + (from - s.textOff),
					End:   s.abs + (to - s.textOff),
				},
			})
		}
		if placeholder.Valid() {
			placeholders = append(placeholders, placeholder)
		}
	}
	return placeholders
}

// AddPlaceholderDelimiter wraps the given name with OpenDelimiter and
// CloseDelimiter. If the given string is already delimited, it is returned
// unchanged.
func AddPlaceholderDelimiter(s string) string {
	if IsDelimitedPlaceholder(s) {
		return s
	}
	return OpenDelimiter + s + CloseDelimiter
}

// RemovePlaceholderDelimiter strips the delimiters and any surrounding
// whitespace from a delimited placeholder. A plain name passes through.
func RemovePlaceholderDelimiter(s string) string {
	if !IsDelimitedPlaceholder(s) {
		return s
	}
	return strings.TrimSpace(s[len(OpenDelimiter) : len(s)-len(CloseDelimiter)])
}

// IsDelimitedPlaceholder returns true if the given string starts with the
// OpenDelimiter and ends with the CloseDelimiter.
func IsDelimitedPlaceholder(s string) bool {
	return len(s) >= len(OpenDelimiter)+len(CloseDelimiter) &&
		strings.HasPrefix(s, OpenDelimiter) &&
		strings.HasSuffix(s, CloseDelimiter)
}
