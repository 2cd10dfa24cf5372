package lending

import (
	"github.com/labstack/echo/v4"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
)

// RegisterRoutesWithGroup registers the book instance routes. Every route
// needs a token; changes to the stock need staff.
func RegisterRoutesWithGroup(g *echo.Group, lendingService *Service, authMiddleware *auth.Middleware) {
	h := &handler{
		lendingService: lendingService,
	}

	g.GET("", h.list, authMiddleware.Authenticate)
	g.GET("/overdue", h.overdue, authMiddleware.Authenticate, authMiddleware.RequireStaff)
	g.GET("/:id", h.retrieve, authMiddleware.Authenticate)
	g.POST("", h.create, authMiddleware.Authenticate, authMiddleware.RequireStaff)
	g.DELETE("/:id", h.delete, authMiddleware.Authenticate, authMiddleware.RequireStaff)
}
