package passwordreset

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	resetService *Service
}

func (h *handler) request(c echo.Context) error {
	params := RequestPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.resetService.RequestReset(c.Request().Context(), params.Email); err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": "password reset email has been sent."}))
}

func (h *handler) confirm(c echo.Context) error {
	params := ConfirmPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	err := h.resetService.Confirm(c.Request().Context(), c.Param("token"), params.NewPassword, params.ConfirmPassword)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": "password reset success."}))
}
