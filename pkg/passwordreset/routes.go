package passwordreset

import (
	"github.com/labstack/echo/v4"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
)

// RegisterRoutesWithGroup registers the reset routes under the auth group.
func RegisterRoutesWithGroup(g *echo.Group, resetService *Service, throttle *auth.Throttle) {
	h := &handler{
		resetService: resetService,
	}

	g.POST("/password_reset_email", h.request, throttle.Middleware)
	g.POST("/password_reset_confirm/:token", h.confirm)
}
