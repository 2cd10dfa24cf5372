package authors

import (
	"github.com/labstack/echo/v4"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
)

func RegisterRoutesWithGroup(g *echo.Group, authorService *Service, authMiddleware *auth.Middleware) {
	h := &handler{
		authorService: authorService,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)

	g.POST("", h.create, authMiddleware.Authenticate, authMiddleware.RequireStaff)
	g.PUT("/:id", h.update, authMiddleware.Authenticate, authMiddleware.RequireStaff)
	g.PATCH("/:id", h.update, authMiddleware.Authenticate, authMiddleware.RequireStaff)
	g.DELETE("/:id", h.delete, authMiddleware.Authenticate, authMiddleware.RequireStaff)
}
