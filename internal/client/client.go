// Package client talks to a SecureView server's issuance API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// AdminKeyHeader carries the admin key on issuance requests
const AdminKeyHeader = "X-Admin-Key"

// Link is the server's answer to an issuance request
type Link struct {
	Link      string `json:"link"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"expires_at"`
}

// Expiry returns ExpiresAt as a time.Time
func (l Link) Expiry() time.Time {
	return time.UnixMilli(l.ExpiresAt)
}

// Client is the API client
type Client struct {
	serverURL  string
	adminKey   string
	httpClient *retryablehttp.Client
}

// New creates a client for the server at serverURL
func New(serverURL, adminKey string) *Client {
	hc := retryablehttp.NewClient()
	hc.Logger = nil
	hc.RetryMax = 3
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	hc.HTTPClient.Timeout = 30 * time.Second

	return &Client{
		serverURL:  strings.TrimRight(serverURL, "/"),
		adminKey:   adminKey,
		httpClient: hc,
	}
}

// CreateLink asks the server to issue a link for a remote document URL
func (c *Client) CreateLink(ctx context.Context, documentURL string) (*Link, error) {
	body, _ := json.Marshal(map[string]string{"url": documentURL})

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/links", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "create link")
}

// Upload sends a PDF to the server and returns the issued link
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*Link, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/uploads", buf.Bytes())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, "upload")
}

func (c *Client) do(req *retryablehttp.Request, op string) (*Link, error) {
	if c.adminKey != "" {
		req.Header.Set(AdminKeyHeader, c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%s failed: %s", op, errorMessage(resp))
	}

	var link Link
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &link, nil
}

func errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if len(body) > 0 {
		return strings.TrimSpace(string(body))
	}
	return resp.Status
}
