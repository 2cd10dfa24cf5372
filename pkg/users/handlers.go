package users

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/logger"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

type handler struct {
	userService *Service
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()

	params := RegisterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Register(ctx, RegisterOptions(params))
	if err != nil {
		return err
	}

	echologger.FromEchoContext(c).Info("user registered", logger.Data{"user_id": user.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, user))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userService.Retrieve(ctx, auth.UserFromContext(c), c.Param("username"))
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, total, err := h.userService.List(ctx, auth.UserFromContext(c), ListOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Users []*models.User `json:"users"`
		Total int            `json:"total"`
	}{users, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.userService.Delete(ctx, auth.UserFromContext(c), c.Param("username"))
	if err != nil {
		return err
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) changeEmail(c echo.Context) error {
	ctx := c.Request().Context()

	params := EmailChangePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.ChangeEmail(ctx, auth.UserFromContext(c), c.Param("username"), params.Email, params.Password)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) changePassword(c echo.Context) error {
	ctx := c.Request().Context()

	params := PasswordChangePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	err := h.userService.ChangePassword(ctx, auth.UserFromContext(c), c.Param("username"), ChangePasswordOptions(params))
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": "Password changed."}))
}

func (h *handler) promote(c echo.Context) error {
	msg, err := h.userService.Promote(c.Request().Context(), auth.UserFromContext(c), c.Param("username"))
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": msg}))
}

func (h *handler) demote(c echo.Context) error {
	msg, err := h.userService.Demote(c.Request().Context(), auth.UserFromContext(c), c.Param("username"))
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": msg}))
}
