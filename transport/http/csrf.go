package http

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const csrfCookieTTL = time.Hour

// CSRFGuard implements double-submit CSRF protection. The cookie carries
// `raw:hex(hmac-sha256(raw))` while the request header carries the bare raw
// value; a state-changing request is accepted only when the cookie's signature
// checks out and its raw part equals the header. The guard holds its own
// immutable secret handed in at startup.
type CSRFGuard struct {
	secret []byte

	// Path prefixes skipped during validation. Auth endpoints manage
	// their own integrity, so forged calls there are harmless no-ops.
	validationExempt []string

	// Path prefixes that never trigger rotation, so the token endpoints
	// do not invalidate the pair they just handed out.
	rotationDeny []string
}

// NewCSRFGuard creates a CSRF guard with the default path policy.
func NewCSRFGuard(secret []byte) *CSRFGuard {
	return &CSRFGuard{
		secret:           secret,
		validationExempt: []string{"/auth/"},
		rotationDeny:     []string{"/auth/", "/csrf/"},
	}
}

// Mint generates a fresh random token and its signed cookie form.
func (g *CSRFGuard) Mint() (raw, signed string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, raw + ":" + g.sign(raw), nil
}

func (g *CSRFGuard) sign(raw string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify checks a signed cookie value and returns its raw part. Malformed
// values and bad signatures are indistinguishable to the caller.
func (g *CSRFGuard) verify(signed string) (string, bool) {
	raw, sig, ok := strings.Cut(signed, ":")
	if !ok || raw == "" {
		return "", false
	}
	want, err := hex.DecodeString(sig)
	if err != nil {
		return "", false
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(raw))
	if !hmac.Equal(mac.Sum(nil), want) {
		return "", false
	}
	return raw, true
}

// SetCookie places a signed token in the CSRF cookie and exposes the raw
// value via the response header.
func (g *CSRFGuard) SetCookie(c *gin.Context, raw, signed string) {
	setSecureCookie(c, CSRFCookie, signed, "/", csrfCookieTTL)
	c.Header(CSRFHeader, raw)
}

// Middleware validates state-changing requests and rotates the token on
// qualifying reads. Validation runs before the handler; anonymous requests
// (no session cookie) pass through for downstream auth to reject.
func (g *CSRFGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if !isSafeMethod(c.Request.Method) {
			if !g.pathExempt(path) && hasSessionCookie(c) {
				if !g.validate(c) {
					return
				}
			}
			c.Next()
			return
		}

		// Response headers must be written before the body, so the
		// rotated pair is attached up front rather than after c.Next().
		if c.Request.Method == http.MethodGet && g.shouldRotate(path) && hasSessionCookie(c) {
			if raw, signed, err := g.Mint(); err == nil {
				g.SetCookie(c, raw, signed)
			}
		}
		c.Next()
	}
}

// validate enforces the double-submit check. It writes the failure response
// itself and reports whether the request may proceed.
func (g *CSRFGuard) validate(c *gin.Context) bool {
	signed, err := c.Cookie(CSRFCookie)
	header := c.GetHeader(CSRFHeader)
	if err != nil || signed == "" || header == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF token missing"})
		return false
	}

	raw, ok := g.verify(signed)
	if !ok || !hmac.Equal([]byte(raw), []byte(header)) {
		// Signature failure and value mismatch share one message so the
		// response does not reveal which stage failed.
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid CSRF token"})
		return false
	}
	return true
}

func (g *CSRFGuard) pathExempt(path string) bool {
	for _, prefix := range g.validationExempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *CSRFGuard) shouldRotate(path string) bool {
	for _, prefix := range g.rotationDeny {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func hasSessionCookie(c *gin.Context) bool {
	token, err := c.Cookie(AccessTokenCookie)
	return err == nil && token != ""
}
