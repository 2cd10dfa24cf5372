package books

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/lending"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

var outcomeMessages = map[lending.Outcome]string{
	lending.OutcomeBorrowed:  "Book borrowed.",
	lending.OutcomeReserved:  "No copy is available right now, the book has been reserved for you.",
	lending.OutcomeReturned:  "Book returned.",
	lending.OutcomeHandedOff: "Book returned and passed on to the next reader in the queue.",
}

type lendingResponse struct {
	Status        lending.Outcome         `json:"status"`
	Message       string                  `json:"message"`
	Instance      *models.BookInstance    `json:"instance,omitempty"`
	Reservation   *models.BookReservation `json:"reservation,omitempty"`
	QueuePosition int                     `json:"queue_position,omitempty"`
}

func (h *handler) borrow(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := bookID(c)
	if err != nil {
		return err
	}

	result, err := h.lendingService.Borrow(ctx, auth.UserFromContext(c), id)
	if err != nil {
		return err
	}

	resp := lendingResponse{
		Status:        result.Outcome,
		Message:       outcomeMessages[result.Outcome],
		Instance:      result.Instance,
		Reservation:   result.Reservation,
		QueuePosition: result.QueuePosition,
	}
	code := http.StatusOK
	if result.Outcome == lending.OutcomeReserved {
		code = http.StatusAccepted
	}

	return errors.WithStack(c.JSON(code, resp))
}

func (h *handler) giveBack(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := bookID(c)
	if err != nil {
		return err
	}

	result, err := h.lendingService.Return(ctx, auth.UserFromContext(c), id)
	if err != nil {
		return err
	}

	// The caller no longer holds the copy, so it isn't echoed back.
	resp := lendingResponse{
		Status:  result.Outcome,
		Message: outcomeMessages[result.Outcome],
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) cancelReservation(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := bookID(c)
	if err != nil {
		return err
	}

	if err := h.lendingService.CancelReservation(ctx, auth.UserFromContext(c), id); err != nil {
		return err
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) reservations(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := bookID(c)
	if err != nil {
		return err
	}

	reservations, err := h.lendingService.ListReservations(ctx, id)
	if err != nil {
		return err
	}

	resp := struct {
		Reservations []*models.BookReservation `json:"reservations"`
		Total        int                       `json:"total"`
	}{reservations, len(reservations)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
