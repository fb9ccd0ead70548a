// Package render loads documents for the viewers and reports whether they
// can be displayed.
package render

import (
	"bytes"
	"context"
	"fmt"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"github.com/existflow/secureview/internal/model"
)

// MsgLoadFailed is shown inline when a document cannot be loaded
const MsgLoadFailed = "Unable to load document."

// Error reports a failed document load
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the text displayed to the viewer
func (e *Error) Message() string {
	return MsgLoadFailed
}

// Document is a successfully loaded PDF. The bytes themselves are not kept:
// front-ends only report what the rendering engine found.
type Document struct {
	Size      int
	PageCount int
}

// Source yields the raw bytes of a resource
type Source interface {
	Fetch(ctx context.Context, ref model.ResourceRef) ([]byte, error)
}

// Engine loads and inspects documents
type Engine struct {
	src Source
}

// NewEngine creates an engine reading from src
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// Load fetches the resource and counts its pages. Failures are returned as
// *Error.
func (e *Engine) Load(ctx context.Context, ref model.ResourceRef) (*Document, error) {
	data, err := e.src.Fetch(ctx, ref)
	if err != nil {
		return nil, &Error{Op: "fetch", Err: err}
	}
	n, err := Inspect(data)
	if err != nil {
		return nil, err
	}
	return &Document{Size: len(data), PageCount: n}, nil
}

// Inspect parses data as PDF and returns its page count
func Inspect(data []byte) (int, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, &Error{Op: "parse", Err: fmt.Errorf("not a PDF document")}
	}

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return 0, &Error{Op: "parse", Err: err}
	}
	defer doc.Close()

	n, err := pagetree.NumPages(doc)
	if err != nil {
		return 0, &Error{Op: "page tree", Err: err}
	}
	if n == 0 {
		return 0, &Error{Op: "page tree", Err: fmt.Errorf("document has no pages")}
	}
	return n, nil
}
