package categories

import (
	"github.com/labstack/echo/v4"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
)

// RegisterRoutesWithGroup registers category routes. Reads are public;
// writes need a staff token.
func RegisterRoutesWithGroup(g *echo.Group, categoryService *Service, authMiddleware *auth.Middleware) {
	h := &handler{
		categoryService: categoryService,
	}

	staff := []echo.MiddlewareFunc{authMiddleware.Authenticate, authMiddleware.RequireStaff}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, staff...)
	g.PUT("/:id", h.update, staff...)
	g.PATCH("/:id", h.update, staff...)
	g.DELETE("/:id", h.delete, staff...)
}
