package ir

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Write marshals the document to path as indented JSON. I/O failures are
// returned to the caller, never swallowed.
func Write(path string, doc *Document) error {
	f, err := os.Create(path) //nolint:gosec // intentional: writing a user-specified output document
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Encode writes the document to w as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
