package docx

import (
	"bytes"
	"errors"
	"html"
	"sort"
)

// ErrPlaceholderNotFound is returned if the requested placeholder does not
// occur inside the document.
var ErrPlaceholderNotFound = errors.New("placeholder not found in document")

// Replacer applies placeholder values to the raw bytes of one document file.
//
// It never mutates the source bytes. Replace only records the pending value
// for a placeholder key; Bytes renders the document in a single pass, writing
// the value in place of the first fragment of each resolved placeholder and
// cutting the remaining fragments. The byte positions recorded during parsing
// therefore stay valid for the whole lifetime of the Replacer.
type Replacer struct {
	document     []byte
	placeholders []*Placeholder
	values       map[string]string

	// ReplaceCount is the total number of placeholder occurrences which will
	// be replaced when the document is rendered.
	ReplaceCount int
}

// NewReplacer returns a new Replacer over the given document bytes and the
// placeholders parsed from them.
func NewReplacer(docBytes []byte, placeholders []*Placeholder) *Replacer {
	sort.SliceStable(placeholders, func(i, j int) bool {
		return placeholders[i].StartPos() < placeholders[j].StartPos()
	})
	return &Replacer{
		document:     docBytes,
		placeholders: placeholders,
		values:       make(map[string]string),
	}
}

// Replace registers the value for all occurrences of the placeholder key.
// The key may be given with or without delimiters ('name' and '{{name}}' are
// equivalent). If the document has no such placeholder,
// ErrPlaceholderNotFound is returned.
func (r *Replacer) Replace(placeholderKey string, value string) error {
	key := RemovePlaceholderDelimiter(placeholderKey)

	found := 0
	for _, placeholder := range r.placeholders {
		if placeholder.Key == key {
			found++
		}
	}
	if found == 0 {
		return ErrPlaceholderNotFound
	}

	if _, exists := r.values[key]; !exists {
		r.ReplaceCount += found
	}
	r.values[key] = value
	return nil
}

// Unresolved returns the distinct, sorted keys of all placeholders for which
// no value has been registered.
func (r *Replacer) Unresolved() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, placeholder := range r.placeholders {
		if _, resolved := r.values[placeholder.Key]; resolved {
			continue
		}
		if _, ok := seen[placeholder.Key]; ok {
			continue
		}
		seen[placeholder.Key] = struct{}{}
		keys = append(keys, placeholder.Key)
	}
	sort.Strings(keys)
	return keys
}

// Bytes renders the document with all registered values applied.
// Values are escaped so that characters special to XML cannot break the
// document structure. Placeholders without a registered value are left
// completely untouched.
func (r *Replacer) Bytes() []byte {
	if len(r.values) == 0 {
		return r.document
	}

	var buf bytes.Buffer
	var cursor int64
	for _, placeholder := range r.placeholders {
		value, ok := r.values[placeholder.Key]
		if !ok {
			continue
		}

		// the value lands in place of the first fragment
		first := placeholder.Fragments[0]
		buf.Write(r.document[cursor:first.Position.Start])
		buf.WriteString(html.EscapeString(value))
		cursor = first.Position.End

		// the remaining fragments are cut, the XML between them stays
		for _, fragment := range placeholder.Fragments[1:] {
			buf.Write(r.document[cursor:fragment.Position.Start])
			cursor = fragment.Position.End
		}
	}
	buf.Write(r.document[cursor:])
	return buf.Bytes()
}
