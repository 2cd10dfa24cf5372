package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers the login and session routes under g.
func RegisterRoutesWithGroup(g *echo.Group, authService *Service, authMiddleware *Middleware, throttle *Throttle) {
	h := &handler{
		authService: authService,
	}

	g.POST("/login", h.login, throttle.Middleware)
	g.POST("/logout", h.logout, authMiddleware.Authenticate)
	g.POST("/logoutall", h.logoutAll, authMiddleware.Authenticate)
	g.GET("/me", h.me, authMiddleware.Authenticate)
}
