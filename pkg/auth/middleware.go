package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

const (
	contextKeyUser  = "user"
	contextKeyToken = "auth_token"
)

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate requires a valid token in the Authorization header and stores
// the token and its user in the echo context.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			return errcodes.Unauthorized("")
		}
		if err := m.setUser(c, token); err != nil {
			return err
		}
		return next(c)
	}
}

// AuthenticateOptional lets anonymous requests through, but a token that is
// presented must still be valid.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if token != "" {
			if err := m.setUser(c, token); err != nil {
				return err
			}
		}
		return next(c)
	}
}

// RequireStaff must run after Authenticate.
func (m *Middleware) RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := UserFromContext(c)
		if user == nil {
			return errcodes.Unauthorized("")
		}
		if !user.CanModerate() {
			return errcodes.PermissionDenied()
		}
		return next(c)
	}
}

func (m *Middleware) setUser(c echo.Context, token string) error {
	row, err := m.authService.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return err
	}
	c.Set(contextKeyToken, row)
	c.Set(contextKeyUser, row.User)
	return nil
}

// tokenFromHeader accepts both "Token <t>" and "Bearer <t>".
func tokenFromHeader(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1]
	default:
		return ""
	}
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(c echo.Context) *models.User {
	user, _ := c.Get(contextKeyUser).(*models.User)
	return user
}

// TokenFromContext returns the token row the request authenticated with.
func TokenFromContext(c echo.Context) *models.AuthToken {
	token, _ := c.Get(contextKeyToken).(*models.AuthToken)
	return token
}
