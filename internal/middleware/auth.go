package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/inkstream-app/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// LoginPath is where anonymous callers of protected routes are sent.
const LoginPath = "/auth/login/"

const viewerContextKey = "viewer"

// Session parses the session token from the cookie or the Authorization
// header and, when valid, stores the viewer claims in the request context.
// Anonymous and invalid-token requests pass through as anonymous; it is the
// per-route RequireAuth middleware that gates access.
func Session(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := tokenFromRequest(c)
			if tokenString == "" {
				return next(c)
			}

			claims := &models.JwtCustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				return next(c)
			}

			c.Set(viewerContextKey, claims)
			return next(c)
		}
	}
}

// RequireAuth redirects anonymous requests to the login route with a `next`
// parameter pointing back at the original target.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ViewerID(c) == 0 {
				return c.Redirect(http.StatusFound, LoginRedirectURL(c.Request().URL.RequestURI()))
			}
			return next(c)
		}
	}
}

// LoginRedirectURL builds the login URL carrying the original target.
func LoginRedirectURL(next string) string {
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// ViewerID returns the authenticated viewer's user id, or 0 for anonymous.
func ViewerID(c echo.Context) uint {
	claims, ok := c.Get(viewerContextKey).(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}

// ViewerUsername returns the authenticated viewer's username, or "".
func ViewerUsername(c echo.Context) string {
	claims, ok := c.Get(viewerContextKey).(*models.JwtCustomClaims)
	if !ok {
		return ""
	}
	return claims.Username
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
