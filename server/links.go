package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/existflow/secureview/internal/client"
	"github.com/existflow/secureview/internal/gate"
	"github.com/existflow/secureview/internal/issuer"
	"github.com/existflow/secureview/internal/logger"
	"github.com/existflow/secureview/internal/model"
	"github.com/existflow/secureview/internal/protect"
	"github.com/existflow/secureview/internal/token"
)

type createLinkRequest struct {
	URL string `json:"url"`
}

type classifyRequest struct {
	Fragment string `json:"fragment"`
}

type classifyResponse struct {
	Surface     string `json:"surface"`
	Result      string `json:"result,omitempty"`
	Message     string `json:"message,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Name        string `json:"name,omitempty"`
	Locator     string `json:"locator,omitempty"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
	MinutesLeft int64  `json:"minutes_left,omitempty"`
}

// handleCreateLink issues a link for a remote document
func (s *Server) handleCreateLink(c echo.Context) error {
	var req createLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url required"})
	}

	link, err := s.issuer.IssueURL(req.URL)
	if err != nil {
		return issueError(c, err)
	}

	linksIssued.WithLabelValues("remote").Inc()
	logger.Info("Link issued",
		logger.F("kind", "remote"),
		logger.F("name", link.Token.DisplayName),
		logger.F("expires_at", link.Token.ExpiresAt))

	return c.JSON(http.StatusCreated, linkResponse(link))
}

// handleUpload stores an uploaded PDF and issues a link for it
func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file required"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid upload"})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, issuer.MaxUploadSize+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid upload"})
	}

	link, err := s.issuer.IssueUpload(c.Request().Context(), issuer.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		return issueError(c, err)
	}

	linksIssued.WithLabelValues("embedded").Inc()
	logger.Info("Link issued",
		logger.F("kind", "embedded"),
		logger.F("name", link.Token.DisplayName),
		logger.F("size", len(data)),
		logger.F("expires_at", link.Token.ExpiresAt))

	return c.JSON(http.StatusCreated, linkResponse(link))
}

// handleClassify runs the gate on a fragment without rendering anything
func (s *Server) handleClassify(c echo.Context) error {
	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	d := s.classify(req.Fragment)
	res := classifyResponse{
		Surface: d.Surface.String(),
		Message: d.Message,
	}
	if token.IsViewRoute(req.Fragment) {
		res.Result = d.Result.Kind.String()
		res.Reason = d.Result.Reason
	}
	switch {
	case d.Expired():
		res.ExpiresAt = d.Result.ExpiresAt
	case d.Surface == gate.SurfaceViewer:
		res.Name = d.Token.DisplayName
		res.Locator = token.Locator(d.Token.Resource)
		res.ExpiresAt = d.Token.ExpiresAt
		res.MinutesLeft = protect.MinutesLeft(d.Token.ExpiresAt, s.clock.Now())
	}

	return c.JSON(http.StatusOK, res)
}

func linkResponse(l issuer.Link) client.Link {
	return client.Link{
		Link:      l.URL,
		Name:      l.Token.DisplayName,
		ExpiresAt: l.Token.ExpiresAt,
	}
}

// issueError maps issuance failures to a status and JSON error
func issueError(c echo.Context, err error) error {
	var storageErr *issuer.StorageError
	switch {
	case errors.Is(err, issuer.ErrInvalidURL):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": issuer.ErrInvalidURL.Error()})
	case errors.Is(err, issuer.ErrTooLarge):
		uploadsRejected.WithLabelValues("too_large").Inc()
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	case errors.Is(err, issuer.ErrWrongType):
		uploadsRejected.WithLabelValues("wrong_type").Inc()
		return c.JSON(http.StatusUnsupportedMediaType, map[string]string{"error": issuer.ErrWrongType.Error()})
	case errors.As(err, &storageErr):
		logger.Error("Failed to store document", logger.F("error", storageErr.Err))
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to store document"})
	default:
		logger.Error("Failed to issue link", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// documentURL is where the browser viewer fetches the document from
func documentURL(ref model.ResourceRef) string {
	switch r := ref.(type) {
	case model.Remote:
		return r.URL
	case model.Embedded:
		return "/blobs/" + r.ID
	default:
		return ""
	}
}
