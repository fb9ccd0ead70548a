package server

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/labstack/echo/v4"

	"github.com/existflow/secureview/internal/protect"
)

//go:embed templates/*.html
var templateFS embed.FS

type adminPage struct {
	BaseURL          string
	AdminKeyRequired bool
	MaxUploadMB      int
	MaxUploadBytes   int
	TooLarge         string
	WrongType        string
}

type errorPage struct {
	Message string
	Expired bool
}

type viewerPage struct {
	protect.Frame
	Config viewerConfig
}

// viewerConfig is handed to the page script as JSON
type viewerConfig struct {
	DocumentURL     string `json:"documentUrl"`
	ExpiresAt       int64  `json:"expiresAt"`
	RefreshMillis   int64  `json:"refreshMillis"`
	Padding         int    `json:"padding"`
	MaxWidth        int    `json:"maxWidth"`
	NoticePrint     string `json:"noticePrint"`
	NoticeSave      string `json:"noticeSave"`
	LoadFailed      string `json:"loadFailed"`
	WatermarkPrefix string `json:"watermarkPrefix"`
	WatermarkSuffix string `json:"watermarkSuffix"`
}

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// render executes a template into a buffer first so a failure still yields
// a clean error response
func (s *Server) render(c echo.Context, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}
