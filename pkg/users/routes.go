package users

import (
	"github.com/labstack/echo/v4"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
)

// RegisterRoutesWithGroup registers sign-up under /auth and the account routes
// under /users of the api group.
func RegisterRoutesWithGroup(api *echo.Group, userService *Service, authMiddleware *auth.Middleware) {
	h := &handler{
		userService: userService,
	}

	api.POST("/auth/register", h.register)

	users := api.Group("/users", authMiddleware.Authenticate)
	users.GET("", h.list)
	users.GET("/:username", h.retrieve)
	users.DELETE("/:username", h.delete)
	users.PUT("/:username/email_change", h.changeEmail)
	users.PATCH("/:username/email_change", h.changeEmail)
	users.PUT("/:username/password_change", h.changePassword)
	users.PATCH("/:username/password_change", h.changePassword)
	users.POST("/:username/promote", h.promote)
	users.POST("/:username/demote", h.demote)
}
