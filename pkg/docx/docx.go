package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/natefinch/atomic"
)

const (
	// DocumentXml is the relative path of the actual document content inside
	// the docx archive.
	DocumentXml = "word/document.xml"
)

var (
	// HeaderPathRegex matches all header files inside the docx archive.
	HeaderPathRegex = regexp.MustCompile(`word/header[0-9]*.xml`)
	// FooterPathRegex matches all footer files inside the docx archive.
	FooterPathRegex = regexp.MustCompile(`word/footer[0-9]*.xml`)
)

var (
	// ErrTemplateNotFound is returned when the template path cannot be read.
	ErrTemplateNotFound = errors.New("template document not found")
	// ErrTemplateFormat is returned when the template is not a valid docx
	// archive.
	ErrTemplateFormat = errors.New("invalid docx archive")
	// ErrWrite is returned when the populated document cannot be written out.
	ErrWrite = errors.New("unable to write document")
)

// FileMap maps the editable file paths of the archive to their current bytes.
type FileMap map[string][]byte

// Document exposes the main API of the package. It represents a docx document
// which is going to be populated. Although a docx document actually consists
// of multiple xml files, that fact is not exposed via the Document API; all
// actions propagate through the editable files of the zip archive.
type Document struct {
	path    string
	closer  io.Closer
	zipFile *zip.Reader

	// all files from the zip archive which can be modified
	files       FileMap
	headerFiles []string
	footerFiles []string

	// one replacer per editable file, rebuilt whenever the file changes
	replacers map[string]*Replacer

	replaceCount int
}

// Open will open and parse the file pointed to by path.
// The file must be a valid docx archive or an error is returned.
func Open(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrTemplateFormat, path, err)
	}

	doc, err := newDocument(&rc.Reader, path, rc)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	return doc, nil
}

// OpenBytes allows creating a Document from a byte slice.
// It behaves just like Open.
func OpenBytes(b []byte) (*Document, error) {
	reader, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateFormat, err)
	}
	return newDocument(reader, "", nil)
}

// newDocument parses the archive and prepares a replacer for every editable
// file. A docx archive without a word/document.xml cannot be correct and is
// rejected.
func newDocument(zipFile *zip.Reader, path string, closer io.Closer) (*Document, error) {
	doc := &Document{
		path:      path,
		closer:    closer,
		zipFile:   zipFile,
		files:     make(FileMap),
		replacers: make(map[string]*Replacer),
	}

	if err := doc.parseArchive(); err != nil {
		return nil, err
	}

	if _, exists := doc.files[DocumentXml]; !exists {
		return nil, fmt.Errorf("%w: %s is missing", ErrTemplateFormat, DocumentXml)
	}

	for name, data := range doc.files {
		if err := doc.SetFile(name, data); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrTemplateFormat, err)
		}
	}
	return doc, nil
}

// parseArchive goes through the zip archive and reads the editable files into
// the FileMap. Editable are the main document, headers and footers; every
// other file is copied through verbatim on Write.
func (d *Document) parseArchive() error {
	readZipFile := func(file *zip.File) ([]byte, error) {
		readCloser, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: unable to open %s: %s", ErrTemplateFormat, file.Name, err)
		}
		defer readCloser.Close()
		fileBytes, err := io.ReadAll(readCloser)
		if err != nil {
			return nil, fmt.Errorf("%w: unable to read %s: %s", ErrTemplateFormat, file.Name, err)
		}
		return fileBytes, nil
	}

	for _, file := range d.zipFile.File {
		editable := file.Name == DocumentXml ||
			HeaderPathRegex.MatchString(file.Name) ||
			FooterPathRegex.MatchString(file.Name)
		if !editable {
			continue
		}

		data, err := readZipFile(file)
		if err != nil {
			return err
		}
		d.files[file.Name] = data

		switch {
		case HeaderPathRegex.MatchString(file.Name):
			d.headerFiles = append(d.headerFiles, file.Name)
		case FooterPathRegex.MatchString(file.Name):
			d.footerFiles = append(d.footerFiles, file.Name)
		}
	}
	return nil
}

// ReplaceAll replaces every placeholder whose key occurs in the
// PlaceholderMap, in every editable file of the archive. Placeholders without
// a matching key are left untouched and remain visible via Unresolved.
func (d *Document) ReplaceAll(placeholderMap PlaceholderMap) error {
	for name := range d.files {
		if _, err := d.replaceFile(name, placeholderMap); err != nil {
			return err
		}
	}
	return nil
}

// Replace will attempt to replace the given key with the value in every file.
// If no file contains the placeholder, ErrPlaceholderNotFound is returned.
func (d *Document) Replace(key, value string) error {
	var total int
	for name := range d.files {
		replaced, err := d.replaceFile(name, PlaceholderMap{key: value})
		if err != nil {
			return err
		}
		total += replaced
	}
	if total == 0 {
		return ErrPlaceholderNotFound
	}
	return nil
}

// replaceFile registers all matching values on the file's replacer, renders
// the result and re-parses it so that subsequent calls start from fresh
// positions. The rendered result is cross-checked against a plaintext count
// of the placeholders: if the two disagree, the document structure defeated
// the parser and the caller must not get a silently broken document.
func (d *Document) replaceFile(name string, placeholderMap PlaceholderMap) (int, error) {
	replacer, ok := d.replacers[name]
	if !ok {
		return 0, fmt.Errorf("no parser for file %s", name)
	}

	want := countPlaceholders(d.files[name], placeholderMap)
	for key, value := range placeholderMap {
		if err := replacer.Replace(key, fmt.Sprint(value)); err != nil {
			if errors.Is(err, ErrPlaceholderNotFound) {
				continue
			}
			return 0, err
		}
	}
	// The plaintext count can miss placeholders whose delimiters are split
	// across runs, so having replaced more than counted is fine. Fewer means
	// the parser missed something the document visibly contains.
	if replacer.ReplaceCount < want {
		return 0, fmt.Errorf("not all placeholders in %s were replaced, want=%d, have=%d", name, want, replacer.ReplaceCount)
	}

	replaced := replacer.ReplaceCount
	if err := d.SetFile(name, replacer.Bytes()); err != nil {
		return 0, err
	}
	d.replaceCount += replaced
	return replaced, nil
}

// Placeholders returns the distinct, sorted placeholder keys currently
// present in the document.
func (d *Document) Placeholders() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, replacer := range d.replacers {
		for _, placeholder := range replacer.placeholders {
			if _, ok := seen[placeholder.Key]; ok {
				continue
			}
			seen[placeholder.Key] = struct{}{}
			keys = append(keys, placeholder.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Unresolved returns the distinct, sorted keys of all placeholders which have
// no pending or applied replacement value.
func (d *Document) Unresolved() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, replacer := range d.replacers {
		for _, key := range replacer.Unresolved() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// ReplaceCount returns the total number of placeholder occurrences replaced
// on this document so far.
func (d *Document) ReplaceCount() int {
	return d.replaceCount
}

// GetFile returns the current content of the given editable file, or nil.
func (d *Document) GetFile(fileName string) []byte {
	if f, exists := d.files[fileName]; exists {
		return f
	}
	return nil
}

// DocumentBytes returns the current content of the main document file.
func (d *Document) DocumentBytes() []byte {
	return d.GetFile(DocumentXml)
}

// Headers returns the archive paths of all discovered header files.
func (d *Document) Headers() []string {
	return d.headerFiles
}

// Footers returns the archive paths of all discovered footer files.
func (d *Document) Footers() []string {
	return d.footerFiles
}

// SetFile replaces the content of the given editable file and re-parses its
// runs and placeholders. The fileName must be known, otherwise an error is
// returned.
func (d *Document) SetFile(fileName string, fileBytes []byte) error {
	if _, exists := d.files[fileName]; !exists {
		return fmt.Errorf("unregistered file %s", fileName)
	}

	parser := NewRunParser(fileBytes)
	if err := parser.Execute(); err != nil {
		return fmt.Errorf("error parsing %s: %w", fileName, err)
	}

	d.files[fileName] = fileBytes
	d.replacers[fileName] = NewReplacer(fileBytes, ParsePlaceholders(parser.Runs(), fileBytes))
	return nil
}

// Write assembles a new docx archive from the modified files. Files which
// cannot be modified through this package are copied from the source archive
// unchanged.
func (d *Document) Write(writer io.Writer) error {
	zipWriter := zip.NewWriter(writer)
	defer zipWriter.Close()

	for _, zipFile := range d.zipFile.File {
		fileWriter, err := zipWriter.Create(zipFile.Name)
		if err != nil {
			return fmt.Errorf("unable to create %s in archive: %s", zipFile.Name, err)
		}

		if modified, ok := d.files[zipFile.Name]; ok {
			if _, err := fileWriter.Write(modified); err != nil {
				return fmt.Errorf("unable to write %s: %s", zipFile.Name, err)
			}
			continue
		}

		readCloser, err := zipFile.Open()
		if err != nil {
			return fmt.Errorf("unable to open %s: %s", zipFile.Name, err)
		}
		if _, err := io.Copy(fileWriter, readCloser); err != nil {
			_ = readCloser.Close()
			return fmt.Errorf("unable to copy %s: %s", zipFile.Name, err)
		}
		if err := readCloser.Close(); err != nil {
			return fmt.Errorf("unable to close reader for %s: %s", zipFile.Name, err)
		}
	}
	return nil
}

// WriteToFile writes the document to the given path, creating missing
// directories along the way. The write itself is atomic: the document appears
// under its final name only once it is complete, and repeated runs overwrite
// the previous file deterministically.
//
// The target cannot be the same file as the opened source archive.
func (d *Document) WriteToFile(path string) error {
	if path == d.path {
		return fmt.Errorf("%w: cannot overwrite the opened template %s", ErrWrite, path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: unable to ensure path directories: %s", ErrWrite, err)
		}
	}

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return fmt.Errorf("%w: %s", ErrWrite, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("%w: %s", ErrWrite, err)
	}
	return nil
}

// Close releases the underlying archive, if the document was opened from a
// file.
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
