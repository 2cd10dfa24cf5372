package publications

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

type handler struct {
	publicationService *Service
}

func (h *handler) create(c echo.Context) error {
	params := CreatePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publication, err := h.publicationService.Create(c.Request().Context(), params.Name)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, publication))
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publication")
	}

	publication, err := h.publicationService.Retrieve(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, publication))
}

func (h *handler) list(c echo.Context) error {
	params := ListQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publications, total, err := h.publicationService.List(c.Request().Context(), ListOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Publications []*models.Publication `json:"publications"`
		Total        int                   `json:"total"`
	}{publications, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publication")
	}

	params := UpdatePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publication, err := h.publicationService.Update(c.Request().Context(), id, UpdateOptions(params))
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, publication))
}

func (h *handler) delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publication")
	}

	if err := h.publicationService.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
