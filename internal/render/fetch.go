package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/existflow/secureview/internal/logger"
	"github.com/existflow/secureview/internal/model"
)

// MaxDocumentSize bounds how much of a remote response is read
const MaxDocumentSize = 64 << 20

// Fetcher retrieves document bytes for a resource reference. Embedded
// resources are read from the blob endpoint of Origin.
type Fetcher struct {
	Origin *url.URL

	http *retryablehttp.Client
}

// FetcherConfig configures a Fetcher
type FetcherConfig struct {
	// Origin of the SecureView server holding embedded documents
	Origin string
	// Override default http transport
	Transport http.RoundTripper
	// Maximum number of retries on transient failures
	RetryMax int
}

// NewFetcher builds a fetcher that retries transient failures
func NewFetcher(cfg FetcherConfig) (*Fetcher, error) {
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}

	f := &Fetcher{}
	if cfg.Origin != "" {
		origin, err := url.Parse(cfg.Origin)
		if err != nil {
			return nil, fmt.Errorf("invalid origin: %w", err)
		}
		if !strings.HasSuffix(origin.Path, "/") {
			origin.Path += "/"
		}
		origin.Fragment = ""
		origin.RawQuery = ""
		f.Origin = origin
	}

	f.http = &retryablehttp.Client{
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
		HTTPClient:   &http.Client{Transport: cfg.Transport},
		RetryWaitMin: 250 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		RetryMax:     cfg.RetryMax,
		CheckRetry: func(ctx context.Context, resp *http.Response, err error) (bool, error) {
			retry, retryErr := retryablehttp.ErrorPropagatedRetryPolicy(ctx, resp, err)
			if retry {
				if retryErr != nil {
					err = retryErr
				}
				logger.Warn("Retrying document fetch", logger.F("error", err))
			}
			return retry, retryErr
		},
	}
	return f, nil
}

// Resolve returns the absolute URL a resource is fetched from
func (f *Fetcher) Resolve(ref model.ResourceRef) (string, error) {
	switch r := ref.(type) {
	case model.Remote:
		return r.URL, nil
	case model.Embedded:
		if f.Origin == nil {
			return "", fmt.Errorf("no origin configured for embedded document %s", r.ID)
		}
		return f.Origin.JoinPath("blobs", r.ID).String(), nil
	default:
		return "", fmt.Errorf("unsupported resource %T", ref)
	}
}

// Fetch downloads the document a reference points at
func (f *Fetcher) Fetch(ctx context.Context, ref model.ResourceRef) ([]byte, error) {
	u, err := f.Resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d bytes", MaxDocumentSize)
	}
	return data, nil
}
