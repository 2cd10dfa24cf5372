package lending

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

type handler struct {
	lendingService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateInstancePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	instance, err := h.lendingService.CreateInstance(ctx, params.BookID)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, instance))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book instance")
	}

	instance, err := h.lendingService.RetrieveInstance(ctx, id)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, newInstanceResponse(instance, h.lendingService.now())))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListInstancesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	instances, total, err := h.lendingService.ListInstances(ctx, ListInstancesOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Instances []*instanceResponse `json:"book_instances"`
		Total     int                 `json:"total"`
	}{newInstanceResponses(instances, h.lendingService.now()), total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) overdue(c echo.Context) error {
	ctx := c.Request().Context()

	instances, err := h.lendingService.ListOverdue(ctx)
	if err != nil {
		return err
	}

	resp := struct {
		Instances []*instanceResponse `json:"book_instances"`
		Total     int                 `json:"total"`
	}{newInstanceResponses(instances, h.lendingService.now()), len(instances)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book instance")
	}

	if err := h.lendingService.DeleteInstance(ctx, id); err != nil {
		return err
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

type instanceResponse struct {
	*models.BookInstance
	IsOverdue bool `json:"is_overdue"`
}

func newInstanceResponse(instance *models.BookInstance, now time.Time) *instanceResponse {
	return &instanceResponse{instance, instance.IsOverdue(now)}
}

func newInstanceResponses(instances []*models.BookInstance, now time.Time) []*instanceResponse {
	resp := make([]*instanceResponse, len(instances))
	for i, instance := range instances {
		resp[i] = newInstanceResponse(instance, now)
	}
	return resp
}
