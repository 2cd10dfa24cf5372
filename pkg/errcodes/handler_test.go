package errcodes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error struct {
		Code       string            `json:"code"`
		Message    string            `json:"message"`
		StatusCode int               `json:"status_code"`
		Fields     map[string]string `json:"fields"`
	} `json:"error"`
}

func handle(t *testing.T, err error) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHandler().Handle(err, c)

	body := errorBody{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandle_CustomError(t *testing.T) {
	t.Parallel()

	rec, body := handle(t, errors.WithStack(Conflict("This user is already a staff member.")))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", body.Error.Code)
	assert.Equal(t, "This user is already a staff member.", body.Error.Message)
	assert.Equal(t, http.StatusConflict, body.Error.StatusCode)
	assert.Nil(t, body.Error.Fields)
}

func TestHandle_FieldErrors(t *testing.T) {
	t.Parallel()

	err := FieldsValidationError(
		[]string{"isbn", "title"},
		map[string]string{"isbn": "ISBN must be a string of digits of length 13.", "title": `"title" is required`},
	)
	rec, body := handle(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "ISBN must be a string of digits of length 13.", body.Error.Message)
	assert.Len(t, body.Error.Fields, 2)
	assert.Equal(t, `"title" is required`, body.Error.Fields["title"])
}

func TestHandle_EchoError(t *testing.T) {
	t.Parallel()

	rec, body := handle(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method_not_allowed", body.Error.Code)
}

func TestHandle_InternalError(t *testing.T) {
	t.Parallel()

	rec, body := handle(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_server_error", body.Error.Code)
	assert.Equal(t, "Internal Server Error", body.Error.Message)
}

func TestError_IsAndAs(t *testing.T) {
	t.Parallel()

	err := errors.Wrap(NotFound("Book"), "retrieving")
	assert.True(t, errors.Is(err, NotFound("Book")))
	assert.False(t, errors.Is(err, NotFound("Author")))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusNotFound, e.HTTPCode)
	assert.Equal(t, "Book not found.", e.Message)
}
