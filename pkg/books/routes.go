package books

import (
	"github.com/labstack/echo/v4"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/lending"
)

// RegisterRoutesWithGroup registers the book catalog routes and the lending
// actions on a single book.
func RegisterRoutesWithGroup(g *echo.Group, bookService *Service, lendingService *lending.Service, authMiddleware *auth.Middleware) {
	h := &handler{
		bookService:    bookService,
		lendingService: lendingService,
	}

	staff := []echo.MiddlewareFunc{authMiddleware.Authenticate, authMiddleware.RequireStaff}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, staff...)
	g.PUT("/:id", h.update, staff...)
	g.PATCH("/:id", h.update, staff...)
	g.DELETE("/:id", h.delete, staff...)

	g.POST("/:id/borrow", h.borrow, authMiddleware.Authenticate)
	g.POST("/:id/return", h.giveBack, authMiddleware.Authenticate)
	g.DELETE("/:id/reservation", h.cancelReservation, authMiddleware.Authenticate)
	g.GET("/:id/reservations", h.reservations, staff...)
}
