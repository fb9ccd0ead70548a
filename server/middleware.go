package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/secureview/internal/client"
)

// uploadBodyLimit leaves room for multipart framing around a maximum-size
// document
const uploadBodyLimit = "11M"

// adminKeyMiddleware checks X-Admin-Key against the configured bcrypt hash.
// Without a hash every request passes.
func (s *Server) adminKeyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(s.adminKeyHash) == 0 {
			return next(c)
		}

		key := c.Request().Header.Get(client.AdminKeyHeader)
		if key == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "admin key required"})
		}

		if err := bcrypt.CompareHashAndPassword(s.adminKeyHash, []byte(key)); err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid admin key"})
		}

		return next(c)
	}
}

// secureHeaders keeps pages out of caches and frames
func secureHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Cache-Control", "no-store")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		return next(c)
	}
}
