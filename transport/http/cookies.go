package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie and header names used by the session and CSRF layers.
const (
	AccessTokenCookie  = "taskito_access_token"
	RefreshTokenCookie = "taskito_refresh_token"
	CSRFCookie         = "csrf_token"
	CSRFHeader         = "X-CSRF-Token"
)

// The refresh cookie is scoped to the refresh route only, so browsers never
// attach the long-lived token to ordinary requests.
const refreshCookiePath = "/auth/refresh"

func setSecureCookie(c *gin.Context, name, value, path string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, int(maxAge.Seconds()), path, "", true, true)
}

func setSessionCookies(c *gin.Context, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	setSecureCookie(c, AccessTokenCookie, accessToken, "/", accessTTL)
	setSecureCookie(c, RefreshTokenCookie, refreshToken, refreshCookiePath, refreshTTL)
}

func setAccessCookie(c *gin.Context, accessToken string, accessTTL time.Duration) {
	setSecureCookie(c, AccessTokenCookie, accessToken, "/", accessTTL)
}

func clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(RefreshTokenCookie, "", -1, refreshCookiePath, "", true, true)
}
