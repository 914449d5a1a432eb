package tabshot

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
)

// Result holds an exported PDF together with the file name it should be
// saved under.
//
// It is safe to call its methods multiple times; the underlying data is
// never modified.
type Result struct {
	data     []byte
	filename string
	pages    int
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Filename returns the name the document should be downloaded as.
func (r *Result) Filename() string {
	return r.filename
}

// Pages returns the number of board items rendered into the document.
func (r *Result) Pages() int {
	return r.pages
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Save writes the PDF into dir under [Result.Filename] and returns the
// full path.
func (r *Result) Save(dir string) (string, error) {
	path := filepath.Join(dir, r.filename)
	if err := r.WriteToFile(path, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}
