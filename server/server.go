package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/existflow/secureview/internal/blobstore"
	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/gate"
	"github.com/existflow/secureview/internal/issuer"
	"github.com/existflow/secureview/internal/logger"
)

// Options configures a Server
type Options struct {
	// BaseURL is the origin share links are built on
	BaseURL string
	// AdminKeyHash is a bcrypt hash; when set, issuance requires X-Admin-Key
	AdminKeyHash string
	// Clock defaults to the system clock
	Clock clock.Clock
	// Console echoes request lines to stdout
	Console bool
}

// Server is the SecureView HTTP server
type Server struct {
	store        blobstore.Store
	issuer       *issuer.Issuer
	gate         *gate.Gate
	clock        clock.Clock
	adminKeyHash []byte
	console      bool
	templates    *template.Template
	echo         *echo.Echo
}

// New creates a new server on top of store
func New(store blobstore.Store, opts Options) (*Server, error) {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		store:     store,
		issuer:    issuer.New(opts.Clock, store, opts.BaseURL),
		gate:      gate.New(opts.Clock),
		clock:     opts.Clock,
		console:   opts.Console,
		templates: tmpl,
	}
	if opts.AdminKeyHash != "" {
		s.adminKeyHash = []byte(opts.AdminKeyHash)
	}

	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(secureHeaders)

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Pages
	e.GET("/", s.handleIndex)
	e.GET("/view", s.handleView)
	e.GET("/blobs/:id", s.handleBlob)

	// API v1
	api := e.Group("/api/v1")
	api.POST("/classify", s.handleClassify)

	// Issuance endpoints
	issue := api.Group("")
	issue.Use(s.adminKeyMiddleware)
	issue.POST("/links", s.handleCreateLink)
	issue.POST("/uploads", s.handleUpload, middleware.BodyLimit(uploadBodyLimit))

	s.echo = e
}

// requestLogger logs every request and its response
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		logger.Debug("HTTP Request",
			logger.F("method", req.Method),
			logger.F("path", req.URL.Path),
			logger.F("remote", req.RemoteAddr))

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		res := c.Response()
		duration := time.Since(start)

		// The query carries share-link parameters, so only the path is logged
		logger.Info("HTTP Response",
			logger.F("method", req.Method),
			logger.F("path", req.URL.Path),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", duration.String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))

		if s.console {
			fmt.Printf("REQUEST: %s %s  status=%d  size=%d  duration=%s\n",
				req.Method, req.URL.Path, res.Status, res.Size, duration)
		}

		return nil
	}
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Issuer returns the issuer links are minted with
func (s *Server) Issuer() *issuer.Issuer {
	return s.issuer
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
