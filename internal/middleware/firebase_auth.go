package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// PrincipalKey is the context key under which auth middleware stores the
// authenticated principal's email.
const PrincipalKey = "principal"

// Principal returns the authenticated email stored by the auth middleware,
// or "" when the request is unauthenticated.
func Principal(c echo.Context) string {
	if email, ok := c.Get(PrincipalKey).(string); ok {
		return email
	}
	return ""
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
	}
	return parts[1], nil
}

// FirebaseAuthMiddleware verifies Firebase ID tokens. A principal is only
// usable once their email is verified; unverified accounts are rejected.
func FirebaseAuthMiddleware(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			token, err := authClient.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("Invalid or expired ID token: %v", err))
			}

			if verified, ok := token.Claims["email_verified"].(bool); !ok || !verified {
				return echo.NewHTTPError(http.StatusForbidden, "Please verify your email before using Campus Quest")
			}
			email, ok := token.Claims["email"].(string)
			if !ok || email == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token carries no email claim")
			}

			c.Set("firebaseUID", token.UID)
			c.Set(PrincipalKey, email)
			return next(c)
		}
	}
}
