package issuer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/model"
	"github.com/existflow/secureview/internal/token"
)

// MaxUploadSize is the largest accepted upload (10 MiB)
const MaxUploadSize = 10 << 20

const pdfContentType = "application/pdf"

var (
	// ErrInvalidURL is returned for anything but an absolute URL with scheme and host
	ErrInvalidURL = errors.New("invalid document url")
	// ErrTooLarge is returned for uploads over MaxUploadSize
	ErrTooLarge = errors.New("document exceeds the 10 MiB limit")
	// ErrWrongType is returned for uploads that are not PDF documents
	ErrWrongType = errors.New("document is not a PDF")
)

// StorageError wraps a failure of the blob store
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storing document: " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// Store persists uploaded documents and returns the ID of the stored blob
type Store interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
}

// Upload is a document submitted for embedding
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Link is the result of issuing a token
type Link struct {
	Token    model.AccessToken
	Fragment string
	URL      string
}

// Issuer mints share links. It keeps no record of what it issued.
type Issuer struct {
	clock   clock.Clock
	store   Store
	baseURL string
}

// New creates an issuer. baseURL is the origin links are built on; any
// fragment is dropped. store may be nil when only URL mode is used.
func New(c clock.Clock, store Store, baseURL string) *Issuer {
	if c == nil {
		c = clock.System{}
	}
	return &Issuer{clock: c, store: store, baseURL: normalizeBase(baseURL)}
}

// BaseURL returns the origin links are built on
func (i *Issuer) BaseURL() string { return i.baseURL }

// IssueURL issues a link for a document hosted elsewhere
func (i *Issuer) IssueURL(raw string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Link{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	return i.issue(model.Remote{URL: u.String()}, nameFromURL(u)), nil
}

// IssueUpload validates an upload, stores it and issues a link for it.
// Validation happens before the store is touched.
func (i *Issuer) IssueUpload(ctx context.Context, up Upload) (Link, error) {
	if err := ValidateUpload(up); err != nil {
		return Link{}, err
	}
	if i.store == nil {
		return Link{}, &StorageError{Err: errors.New("no document store configured")}
	}

	id, err := i.store.Put(ctx, up.Data, pdfContentType)
	if err != nil {
		return Link{}, &StorageError{Err: err}
	}

	return i.issue(model.Embedded{ID: id}, displayName(path.Base(up.Filename))), nil
}

// ValidateUpload checks size and type of an upload without any I/O
func ValidateUpload(up Upload) error {
	if len(up.Data) > MaxUploadSize {
		return ErrTooLarge
	}
	if up.ContentType != "" {
		mt, _, err := mime.ParseMediaType(up.ContentType)
		if err != nil || mt != pdfContentType {
			return fmt.Errorf("%w: declared %q", ErrWrongType, up.ContentType)
		}
	}
	if http.DetectContentType(up.Data) != pdfContentType {
		return ErrWrongType
	}
	return nil
}

func (i *Issuer) issue(ref model.ResourceRef, name string) Link {
	tok := model.AccessToken{
		Resource:    ref,
		DisplayName: name,
		ExpiresAt:   i.clock.Now().Add(model.TTL).UnixMilli(),
	}
	frag := token.Encode(tok)
	return Link{
		Token:    tok,
		Fragment: frag,
		URL:      i.baseURL + frag,
	}
}

// nameFromURL takes the last path segment when it names a PDF
func nameFromURL(u *url.URL) string {
	p := u.EscapedPath()
	last := p[strings.LastIndexByte(p, '/')+1:]
	if decoded, err := url.PathUnescape(last); err == nil {
		last = decoded
	}
	return displayName(last)
}

func displayName(s string) string {
	if s == "" || s == "." || s == "/" || !strings.HasSuffix(strings.ToLower(s), ".pdf") {
		return model.DefaultDisplayName
	}
	return s
}

func normalizeBase(base string) string {
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
