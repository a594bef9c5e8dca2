package docx

// Position is a half-open byte range [Start, End) within the raw document.
type Position struct {
	Start int64
	End   int64
}

// Valid returns true if the range is well-formed.
func (p Position) Valid() bool {
	return p.Start >= 0 && p.End >= p.Start
}

// Len returns the length of the range in bytes.
func (p Position) Len() int64 {
	return p.End - p.Start
}

// TextRun marks the <w:t> element of a run by the byte positions of its open
// and close tags.
type TextRun struct {
	OpenTag  Position
	CloseTag Position
}

// Run describes a <w:r> element inside one of the document files.
// A run is a non-block region of text with a common set of properties; the
// WordprocessingML spec is free to split visually contiguous text into any
// number of runs, which is why placeholders have to be reassembled from them.
type Run struct {
	OpenTag  Position
	CloseTag Position
	Text     TextRun
	HasText  bool
}

// TextSpan returns the byte range of the literal run text, the bytes between
// the <w:t> open tag and the </w:t> close tag.
func (r *Run) TextSpan() Position {
	return Position{Start: r.Text.OpenTag.End, End: r.Text.CloseTag.Start}
}

// GetText returns the text of the run, if any.
// If the run has no text or the given byte slice is too small, an empty
// string is returned.
func (r *Run) GetText(documentBytes []byte) string {
	if !r.HasText {
		return ""
	}
	span := r.TextSpan()
	if !span.Valid() || span.End > int64(len(documentBytes)) {
		return ""
	}
	return string(documentBytes[span.Start:span.End])
}

// DocumentRuns is a convenience type used to describe a slice of runs.
type DocumentRuns []*Run

// WithText returns all runs with the HasText flag set.
func (dr DocumentRuns) WithText() DocumentRuns {
	var r DocumentRuns
	for _, run := range dr {
		if run.HasText {
			r = append(r, run)
		}
	}
	return r
}
