package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/secureview/internal/model"
)

type stubSource struct {
	data []byte
	err  error
}

func (s stubSource) Fetch(context.Context, model.ResourceRef) ([]byte, error) {
	return s.data, s.err
}

// buildPDF writes a minimal document with n blank pages and a correct
// cross-reference table
func buildPDF(n int) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))
	for i := 0; i < n; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	for _, pages := range []int{1, 2, 5} {
		n, err := Inspect(buildPDF(pages))
		require.NoError(t, err, "pages=%d", pages)
		assert.Equal(t, pages, n)
	}
}

func TestInspect_Garbage(t *testing.T) {
	_, err := Inspect([]byte("%PDF-1.4\nthis is not a document\n"))

	var rerr *Error
	assert.ErrorAs(t, err, &rerr)
}

func TestEngine_Load(t *testing.T) {
	data := buildPDF(3)
	eng := NewEngine(stubSource{data: data})

	doc, err := eng.Load(context.Background(), model.Embedded{ID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 3, doc.PageCount)
	assert.Equal(t, len(data), doc.Size)
}

func TestEngine_FetchError(t *testing.T) {
	eng := NewEngine(stubSource{err: errors.New("connection refused")})

	_, err := eng.Load(context.Background(), model.Remote{URL: "https://example.com/a.pdf"})
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "fetch", rerr.Op)
	assert.Equal(t, MsgLoadFailed, rerr.Message())
}

func TestEngine_NotPDF(t *testing.T) {
	eng := NewEngine(stubSource{data: []byte("<html>not found</html>")})

	_, err := eng.Load(context.Background(), model.Remote{URL: "https://example.com/a.pdf"})
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "parse", rerr.Op)
}

func TestFetcher_Resolve(t *testing.T) {
	f, err := NewFetcher(FetcherConfig{Origin: "https://sv.example.com/#/view"})
	require.NoError(t, err)

	u, err := f.Resolve(model.Embedded{ID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "https://sv.example.com/blobs/abc", u)

	u, err = f.Resolve(model.Remote{URL: "https://cdn.example.com/a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.pdf", u)
}

func TestFetcher_EmbeddedWithoutOrigin(t *testing.T) {
	f, err := NewFetcher(FetcherConfig{})
	require.NoError(t, err)

	_, err = f.Resolve(model.Embedded{ID: "abc"})
	assert.Error(t, err)
}

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/blobs/abc":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.7"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, err := NewFetcher(FetcherConfig{Origin: srv.URL})
	require.NoError(t, err)

	data, err := f.Fetch(context.Background(), model.Embedded{ID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	_, err = f.Fetch(context.Background(), model.Embedded{ID: "missing"})
	assert.ErrorContains(t, err, "404")
}
