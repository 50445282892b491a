package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"akipsinv/internal/config"
)

// ContextKeyClaims is the key for storing JWT claims in the request context.
const ContextKeyClaims = "claims"

// Middleware enforces bearer authentication on serve-mode routes. With
// auth_enabled unset every request passes through.
type Middleware struct {
	jwtService *JWTService
	config     *config.Config
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{
		jwtService: NewJWTService(cfg),
		config:     cfg,
	}
}

// RequireRead requires any valid token.
func (m *Middleware) RequireRead(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, RoleRead, RoleWrite)
}

// RequireWrite requires a token with the write role.
func (m *Middleware) RequireWrite(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, RoleWrite)
}

func (m *Middleware) require(next echo.HandlerFunc, roles ...Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.config.Security.AuthEnabled {
			return next(c)
		}

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			if err == ErrExpiredToken {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		allowed := false
		for _, role := range roles {
			if claims.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}

		c.Set(ContextKeyClaims, claims)
		return next(c)
	}
}
