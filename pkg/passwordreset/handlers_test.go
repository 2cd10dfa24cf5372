package passwordreset

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/binder"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/testutils"
)

func TestRoutes(t *testing.T) {
	t.Parallel()
	svc, mailer, db := newTestService(t)
	testutils.CreateUser(t, db, "alice")

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	RegisterRoutesWithGroup(e.Group("/api/auth"), svc, auth.NewThrottle(60, 2))

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderXRealIP, "192.0.2.10")
		rr := httptest.NewRecorder()
		e.ServeHTTP(rr, req)
		return rr
	}

	rr := post("/api/auth/password_reset_email", `{"email":"alice@example.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "password reset email has been sent.")

	rr = post("/api/auth/password_reset_email", `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// The throttle allows a burst of two.
	rr = post("/api/auth/password_reset_email", `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	token := mailer.lastToken(t)
	rr = post("/api/auth/password_reset_confirm/"+token, `{"new_password":"violet-orchard-train","confirm_password":"violet-orchard-train"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "password reset success.")

	rr = post("/api/auth/password_reset_confirm/"+token, `{"new_password":"violet-orchard-train","confirm_password":"violet-orchard-train"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
