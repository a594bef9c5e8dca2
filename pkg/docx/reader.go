package docx

import "io"

// positionReader is a byte-wise reader over the raw document bytes which keeps
// track of how many bytes have been consumed so far.
//
// It implements io.ByteReader on purpose: encoding/xml will then read from it
// without an intermediate bufio.Reader, so Pos() is always the exact offset of
// the byte following the token the decoder just returned.
type positionReader struct {
	data []byte
	pos  int64
}

func newPositionReader(data []byte) *positionReader {
	return &positionReader{data: data}
}

// Pos returns the current byte offset into the underlying data.
func (r *positionReader) Pos() int64 {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *positionReader) Len() int {
	if r.pos >= int64(len(r.data)) {
		return 0
	}
	return int(int64(len(r.data)) - r.pos)
}

// Read hands out a single byte per call to keep the position exact even if a
// caller bypasses ReadByte.
func (r *positionReader) Read(p []byte) (int, error) {
	if r.pos >= int64(len(r.data)) {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}

func (r *positionReader) ReadByte() (byte, error) {
	if r.pos >= int64(len(r.data)) {
		return 0, io.EOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}
