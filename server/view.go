package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/existflow/secureview/internal/blobstore"
	"github.com/existflow/secureview/internal/gate"
	"github.com/existflow/secureview/internal/issuer"
	"github.com/existflow/secureview/internal/logger"
	"github.com/existflow/secureview/internal/model"
	"github.com/existflow/secureview/internal/protect"
	"github.com/existflow/secureview/internal/render"
	"github.com/existflow/secureview/internal/token"
)

// classify runs the gate and records the decision
func (s *Server) classify(fragment string) gate.Decision {
	d := s.gate.Classify(fragment)

	result := ""
	if d.Surface != gate.SurfaceAdmin {
		result = d.Result.Kind.String()
	}
	gateDecisions.WithLabelValues(d.Surface.String(), result).Inc()

	if d.Surface == gate.SurfaceError {
		logger.Warn("Link rejected",
			logger.F("result", d.Result.Kind.String()),
			logger.F("reason", d.Result.Reason))
	}
	return d
}

// handleIndex serves the admin page. Its script forwards #/view fragments to
// /view, since fragments never reach the server.
func (s *Server) handleIndex(c echo.Context) error {
	return s.render(c, http.StatusOK, "admin.html", adminPage{
		BaseURL:          s.issuer.BaseURL(),
		AdminKeyRequired: len(s.adminKeyHash) > 0,
		MaxUploadMB:      issuer.MaxUploadSize >> 20,
		MaxUploadBytes:   issuer.MaxUploadSize,
		TooLarge:         issuer.ErrTooLarge.Error(),
		WrongType:        issuer.ErrWrongType.Error(),
	})
}

// handleView runs the gate on the forwarded fragment
func (s *Server) handleView(c echo.Context) error {
	d := s.classify(token.RoutePrefix + "?" + c.QueryString())

	if d.Surface != gate.SurfaceViewer {
		status := http.StatusBadRequest
		if d.Expired() {
			status = http.StatusGone
		}
		return s.render(c, status, "error.html", errorPage{
			Message: d.Message,
			Expired: d.Expired(),
		})
	}

	return s.render(c, http.StatusOK, "viewer.html", s.viewerPage(d.Token))
}

func (s *Server) viewerPage(tok model.AccessToken) viewerPage {
	engine := protect.New(tok, s.clock, protect.DefaultLayout)
	frame := engine.Render()

	return viewerPage{
		Frame: frame,
		Config: viewerConfig{
			DocumentURL:     documentURL(tok.Resource),
			ExpiresAt:       tok.ExpiresAt,
			RefreshMillis:   protect.RefreshInterval.Milliseconds(),
			Padding:         protect.DefaultLayout.Padding,
			MaxWidth:        protect.DefaultLayout.MaxWidth,
			NoticePrint:     protect.NoticePrint,
			NoticeSave:      protect.NoticeSave,
			LoadFailed:      render.MsgLoadFailed,
			WatermarkPrefix: protect.LabelPrefix,
			WatermarkSuffix: protect.LabelSuffix,
		},
	}
}

// handleBlob serves a stored document inline
func (s *Server) handleBlob(c echo.Context) error {
	blob, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, blobstore.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "document not found"})
	}
	if err != nil {
		logger.Error("Failed to read document", logger.F("id", c.Param("id")), logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	blobBytesServed.Add(float64(len(blob.Data)))
	c.Response().Header().Set("Content-Disposition", "inline")
	return c.Blob(http.StatusOK, blob.ContentType, blob.Data)
}
