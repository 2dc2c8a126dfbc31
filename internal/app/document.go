package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

// Document is the file being edited.
type Document struct {
	mu sync.Mutex

	// Path is empty for an unnamed buffer.
	Path string
	// Name is the display name.
	Name string

	Buffer *buffer.Buffer

	// savedTick is the buffer tick at the last load or write.
	savedTick uint64
	// noEOL is set when the file did not end in a newline.
	noEOL bool
}

// NewDocument creates a document holding text.
func NewDocument(path, text string) *Document {
	doc := &Document{
		Path:   path,
		Name:   displayName(path),
		Buffer: buffer.NewBufferFromString(text, buffer.WithName(path)),
	}
	doc.savedTick = doc.Buffer.ChangedTick()
	return doc
}

// OpenDocument reads path. A file that does not exist gives an empty
// document that is created by the first write.
func OpenDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDocument(path, ""), nil
		}
		return nil, &FileError{Op: "read", Path: path, Err: err}
	}
	text := string(data)
	noEOL := text != "" && !strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	doc := NewDocument(path, text)
	doc.noEOL = noEOL
	return doc, nil
}

func displayName(path string) string {
	if path == "" {
		return "[No Name]"
	}
	return filepath.Base(path)
}

// Modified reports whether the buffer changed since it was loaded or
// written.
func (d *Document) Modified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Buffer.ChangedTick() != d.savedTick
}

// Write writes lines to path, or to the document's own file when path is
// empty. Writing the whole buffer to its own file clears Modified.
func (d *Document) Write(path string, lines []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	own := path == "" || path == d.Path
	if path == "" {
		path = d.Path
	}
	if path == "" {
		return ErrNoFile
	}

	text := strings.Join(lines, "\n")
	if !(own && d.noEOL) {
		text += "\n"
	}
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}

	if own && len(lines) == d.Buffer.LineCount() {
		d.savedTick = d.Buffer.ChangedTick()
	}
	if d.Path == "" {
		d.Path = path
		d.Name = displayName(path)
	}
	return nil
}

// writeFileAtomic writes through a temporary file in the same directory
// so a failed write leaves the old file in place.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
