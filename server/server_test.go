package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/secureview/internal/blobstore"
	"github.com/existflow/secureview/internal/client"
	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/db"
	"github.com/existflow/secureview/internal/model"
	"github.com/existflow/secureview/internal/token"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const testPDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"

type testServer struct {
	*Server
	clock *clock.Fixed
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "secureview.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	clk := &clock.Fixed{T: epoch}
	opts.Clock = clk
	if opts.BaseURL == "" {
		opts.BaseURL = "http://sv.test"
	}

	s, err := New(blobstore.NewSQLStore(database), opts)
	require.NoError(t, err)
	return &testServer{Server: s, clock: clk}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeLink(t *testing.T, rec *httptest.ResponseRecorder) client.Link {
	t.Helper()
	var link client.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	return link
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateLink(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/links", `{"url":"https://example.com/brochure.pdf"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	link := decodeLink(t, rec)
	assert.Equal(t, "brochure.pdf", link.Name)
	assert.Equal(t, epoch.Add(time.Hour).UnixMilli(), link.ExpiresAt)
	assert.True(t, strings.HasPrefix(link.Link, "http://sv.test/#/view?url="))

	res := token.Decode(strings.TrimPrefix(link.Link, "http://sv.test/"))
	require.Equal(t, token.Valid, res.Kind)
	assert.Equal(t, model.Remote{URL: "https://example.com/brochure.pdf"}, res.Token.Resource)
}

func TestCreateLink_Invalid(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/links", `{"url":"not a url"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid document url")

	rec = s.do(jsonRequest(http.MethodPost, "/api/v1/links", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAndServeBlob(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(uploadRequest(t, "report.pdf", "application/pdf", []byte(testPDF)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	link := decodeLink(t, rec)
	assert.Equal(t, "report.pdf", link.Name)

	res := token.Decode(strings.TrimPrefix(link.Link, "http://sv.test/"))
	require.Equal(t, token.Valid, res.Kind)
	embedded, ok := res.Token.Resource.(model.Embedded)
	require.True(t, ok)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/blobs/"+embedded.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testPDF, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestUpload_Rejected(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(uploadRequest(t, "notes.txt", "text/plain", []byte("just some text")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 10<<20)...)
	rec = s.do(uploadRequest(t, "big.pdf", "application/pdf", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/v1/uploads", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlob_NotFound(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(httptest.NewRequest(http.MethodGet, "/blobs/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	s := newTestServer(t, Options{AdminKeyHash: string(hash)})

	body := `{"url":"https://example.com/brochure.pdf"}`

	rec := s.do(jsonRequest(http.MethodPost, "/api/v1/links", body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := jsonRequest(http.MethodPost, "/api/v1/links", body)
	req.Header.Set(client.AdminKeyHeader, "wrong")
	assert.Equal(t, http.StatusUnauthorized, s.do(req).Code)

	req = jsonRequest(http.MethodPost, "/api/v1/links", body)
	req.Header.Set(client.AdminKeyHeader, "hunter2")
	assert.Equal(t, http.StatusCreated, s.do(req).Code)
}

func TestView(t *testing.T) {
	s := newTestServer(t, Options{})
	link, err := s.Issuer().IssueURL("https://example.com/brochure.pdf")
	require.NoError(t, err)
	query := strings.TrimPrefix(link.Fragment, token.RoutePrefix)

	t.Run("valid", func(t *testing.T) {
		rec := s.do(httptest.NewRequest(http.MethodGet, "/view"+query, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "brochure.pdf")
		assert.Contains(t, body, `EXPIRES IN <span id="minutes">60</span>m`)
		assert.Contains(t, body, "CONFIDENTIAL • 2024-03-01 12:00:00 UTC • VIEW ONLY")
		assert.Contains(t, body, "Security Pause")
	})

	t.Run("expired", func(t *testing.T) {
		s.clock.Advance(time.Hour + time.Millisecond)
		defer s.clock.Set(epoch)

		rec := s.do(httptest.NewRequest(http.MethodGet, "/view"+query, nil))
		assert.Equal(t, http.StatusGone, rec.Code)
		assert.Contains(t, rec.Body.String(), "Access Expired")
		assert.Contains(t, rec.Body.String(), "Return Home")
		assert.NotContains(t, rec.Body.String(), "brochure.pdf")
	})

	t.Run("missing url", func(t *testing.T) {
		rec := s.do(httptest.NewRequest(http.MethodGet, "/view?name=x&exp=99999999999999", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid access link")
	})
}

func TestClassify(t *testing.T) {
	s := newTestServer(t, Options{})
	link, err := s.Issuer().IssueURL("https://example.com/brochure.pdf")
	require.NoError(t, err)

	classify := func(fragment string) classifyResponse {
		body, _ := json.Marshal(classifyRequest{Fragment: fragment})
		rec := s.do(jsonRequest(http.MethodPost, "/api/v1/classify", string(body)))
		require.Equal(t, http.StatusOK, rec.Code)
		var res classifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		return res
	}

	res := classify(link.Fragment)
	assert.Equal(t, "viewer", res.Surface)
	assert.Equal(t, "valid", res.Result)
	assert.Equal(t, "brochure.pdf", res.Name)
	assert.Equal(t, int64(60), res.MinutesLeft)

	res = classify("")
	assert.Equal(t, "admin", res.Surface)

	// Hand-edited expiry beyond the Duration range
	res = classify("#/view?url=https%3A%2F%2Fexample.com%2Fa.pdf&exp=11000000000000")
	assert.Equal(t, "viewer", res.Surface)
	assert.Equal(t, (11_000_000_000_000-epoch.UnixMilli())/60_000, res.MinutesLeft)

	res = classify("#/view?url=x")
	assert.Equal(t, "error", res.Surface)
	assert.Equal(t, "invalid", res.Result)
	assert.Equal(t, "Invalid access link", res.Message)

	s.clock.Advance(2 * time.Hour)
	res = classify(link.Fragment)
	assert.Equal(t, "error", res.Surface)
	assert.Equal(t, "expired", res.Result)
	assert.Equal(t, "Access Expired", res.Message)
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `window.location.replace("/view"`)
	assert.NotContains(t, rec.Body.String(), `id="admin-key"`)
}

func TestIndex_UploadCheckedBeforeSending(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := s.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	check := strings.Index(body, "file.size > maxBytes")
	send := strings.Index(body, `send("/api/v1/uploads"`)
	require.NotEqual(t, -1, check)
	require.NotEqual(t, -1, send)
	assert.Less(t, check, send)

	assert.Contains(t, body, "10485760")
	assert.Contains(t, body, `file.type !== "application/pdf"`)
	assert.Contains(t, body, "document is not a PDF")
	assert.Contains(t, body, "document exceeds the 10 MiB limit")
	assert.Contains(t, body, "b.disabled = on")
	assert.Contains(t, body, "navigator.clipboard.writeText(body.link)")
}
