package reviews

import (
	"github.com/labstack/echo/v4"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
)

// RegisterRoutesWithGroup registers the review routes. Reads are public; a
// token presented on a read must still be valid.
func RegisterRoutesWithGroup(g *echo.Group, reviewService *Service, authMiddleware *auth.Middleware) {
	h := &handler{
		reviewService: reviewService,
	}

	g.GET("", h.list, authMiddleware.AuthenticateOptional)
	g.GET("/:id", h.retrieve, authMiddleware.AuthenticateOptional)
	g.POST("", h.create, authMiddleware.Authenticate)
	g.PUT("/:id", h.update, authMiddleware.Authenticate)
	g.PATCH("/:id", h.update, authMiddleware.Authenticate)
	g.DELETE("/:id", h.delete, authMiddleware.Authenticate)
}
