package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// RunParser locates all <w:r> elements inside a document file and records the
// byte positions of their tags and of the <w:t> text they may carry.
type RunParser struct {
	doc  []byte
	runs DocumentRuns
}

// NewRunParser returns a RunParser over the given document bytes.
func NewRunParser(doc []byte) *RunParser {
	return &RunParser{
		doc:  doc,
		runs: DocumentRuns{},
	}
}

// Execute will fire up the parser.
// The parser does two passes over the document. First, all <w:r> tags are
// located and marked. Then the <w:t> tags inside those runs are located.
func (parser *RunParser) Execute() error {
	if err := parser.findRuns(); err != nil {
		return err
	}
	if err := parser.findTextRuns(); err != nil {
		return err
	}
	return nil
}

// Runs returns all runs found by Execute, in document order.
func (parser *RunParser) Runs() DocumentRuns {
	return parser.runs
}

// findRuns locates the open and close tags of every run element.
// The text tags are not analyzed at this point, that's the next pass.
func (parser *RunParser) findRuns() error {
	docReader := newPositionReader(parser.doc)
	decoder := xml.NewDecoder(docReader)

	// runs never nest, so a single pending run is enough state
	var open *Run

	for {
		tok, err := decoder.Token()
		if tok == nil || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("error getting token: %w", err)
		}

		switch elem := tok.(type) {
		case xml.StartElement:
			if elem.Name.Local != "r" {
				continue
			}
			// docReader.Pos() points right behind the '>' of the open tag
			end := docReader.Pos()
			run := &Run{OpenTag: Position{Start: tagStart(parser.doc, end), End: end}}
			if selfClosing(parser.doc, end) {
				// an empty <w:r/> has no separate close tag
				run.CloseTag = run.OpenTag
				parser.runs = append(parser.runs, run)
				continue
			}
			open = run

		case xml.EndElement:
			if elem.Name.Local != "r" {
				continue
			}
			if open == nil {
				// synthetic end token of a self-closed run
				continue
			}
			end := docReader.Pos()
			open.CloseTag = Position{Start: tagStart(parser.doc, end), End: end}
			parser.runs = append(parser.runs, open)
			open = nil
		}
	}
	return nil
}

// findTextRuns locates the <w:t> elements within the runs found previously.
func (parser *RunParser) findTextRuns() error {
	docReader := newPositionReader(parser.doc)
	decoder := xml.NewDecoder(docReader)

	// The tokens arrive in document order and the runs are sorted by position,
	// so a single cursor is enough to resolve the enclosing run.
	idx := 0
	enclosingRun := func(pos int64) *Run {
		for idx < len(parser.runs) && pos > parser.runs[idx].CloseTag.End {
			idx++
		}
		if idx < len(parser.runs) &&
			parser.runs[idx].OpenTag.Start < pos && pos <= parser.runs[idx].CloseTag.End {
			return parser.runs[idx]
		}
		return nil
	}

	for {
		tok, err := decoder.Token()
		if tok == nil || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("error getting token: %w", err)
		}

		switch elem := tok.(type) {
		case xml.StartElement:
			if elem.Name.Local != "t" {
				continue
			}
			pos := docReader.Pos()
			run := enclosingRun(pos)
			if run == nil {
				continue
			}
			run.HasText = true
			run.Text.OpenTag = Position{Start: tagStart(parser.doc, pos), End: pos}
			if selfClosing(parser.doc, pos) {
				run.Text.CloseTag = Position{Start: pos, End: pos}
			}

		case xml.EndElement:
			if elem.Name.Local != "t" {
				continue
			}
			pos := docReader.Pos()
			if selfClosing(parser.doc, pos) {
				// synthetic end token of <w:t/>, already handled above
				continue
			}
			run := enclosingRun(pos)
			if run == nil {
				continue
			}
			run.Text.CloseTag = Position{Start: tagStart(parser.doc, pos), End: pos}
		}
	}
	return nil
}

// tagStart scans backwards from the end position of a tag to the '<' which
// opened it. Unlike assuming a fixed tag length this stays correct for tags
// carrying attributes such as <w:t xml:space="preserve">.
func tagStart(doc []byte, end int64) int64 {
	for i := end - 1; i >= 0; i-- {
		if doc[i] == '<' {
			return i
		}
	}
	return 0
}

// selfClosing reports whether the tag ending at pos is of the <w:r/> form.
func selfClosing(doc []byte, pos int64) bool {
	return pos >= 2 && doc[pos-2] == '/'
}
