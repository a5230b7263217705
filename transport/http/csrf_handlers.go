package http

import (
	"crypto/hmac"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CSRFHandlers contains HTTP handlers for explicit CSRF token management
type CSRFHandlers struct {
	guard *CSRFGuard
}

// NewCSRFHandlers creates new CSRF handlers
func NewCSRFHandlers(guard *CSRFGuard) *CSRFHandlers {
	return &CSRFHandlers{guard: guard}
}

// Token mints a fresh token pair on demand. The route sits on the rotation
// denylist, so the pair handed out here survives until the next qualifying GET.
func (h *CSRFHandlers) Token(c *gin.Context) {
	raw, signed, err := h.guard.Mint()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate CSRF token"})
		return
	}

	h.guard.SetCookie(c, raw, signed)
	c.JSON(http.StatusOK, gin.H{"csrf_token": raw})
}

// Validate reports whether the caller's current cookie/header pair would pass
// the guard, without consuming or rotating it.
func (h *CSRFHandlers) Validate(c *gin.Context) {
	signed, err := c.Cookie(CSRFCookie)
	header := c.GetHeader(CSRFHeader)
	if err != nil || signed == "" || header == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "CSRF token missing"})
		return
	}

	raw, ok := h.guard.verify(signed)
	if !ok || !hmac.Equal([]byte(raw), []byte(header)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid CSRF token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}
