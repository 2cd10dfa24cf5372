package publications

import (
	"github.com/labstack/echo/v4"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
)

// RegisterRoutesWithGroup registers publication routes. Reads are public;
// writes need a staff token.
func RegisterRoutesWithGroup(g *echo.Group, publicationService *Service, authMiddleware *auth.Middleware) {
	h := &handler{
		publicationService: publicationService,
	}

	staff := []echo.MiddlewareFunc{authMiddleware.Authenticate, authMiddleware.RequireStaff}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, staff...)
	g.PUT("/:id", h.update, staff...)
	g.PATCH("/:id", h.update, staff...)
	g.DELETE("/:id", h.delete, staff...)
}
