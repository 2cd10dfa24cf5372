package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EliasObeid9-02/library-system/pkg/binder"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/testutils"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	return e
}

func basic(credentials string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db, time.Hour)
	h := &handler{authService: svc}
	testutils.CreateUser(t, db, "alice")
	e := newTestEcho(t)

	cases := []string{
		"username:alice:" + testutils.DefaultPassword,
		"email:alice@example.com:" + testutils.DefaultPassword,
		"alice:" + testutils.DefaultPassword,
	}
	for _, credentials := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set(echo.HeaderAuthorization, basic(credentials))
		rr := httptest.NewRecorder()
		c := e.NewContext(req, rr)

		require.NoError(t, h.login(c), credentials)
		assert.Equal(t, http.StatusOK, rr.Code)

		resp := struct {
			Token  string    `json:"token"`
			Expiry time.Time `json:"expiry"`
			User   struct {
				Username string `json:"username"`
				Password string `json:"password_hash"`
			} `json:"user"`
		}{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp.Token, 64)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Empty(t, resp.User.Password)
		assert.False(t, resp.Expiry.IsZero())
	}
}

func TestHandler_Login_Failures(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	h := &handler{authService: NewService(db, time.Hour)}
	testutils.CreateUser(t, db, "alice")
	e := newTestEcho(t)

	cases := []struct {
		name   string
		header string
		code   int
		msg    string
	}{
		{"no header", "", http.StatusUnauthorized, "Authentication credentials were not provided."},
		{"no credentials", "Basic", http.StatusUnauthorized, "Invalid basic header. No credentials provided."},
		{"spaces", "Basic abc def", http.StatusUnauthorized, "Invalid basic header. Credentials string should not contain spaces."},
		{"not base64", "Basic !!!", http.StatusUnauthorized, "Invalid basic header. Credentials not correctly base64 encoded."},
		{"wrong password", basic("username:alice:wrong-password"), http.StatusUnauthorized, "Invalid username/password."},
		{"wrong email password", basic("email:alice@example.com:wrong-password"), http.StatusUnauthorized, "Invalid email/password."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(tt *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			err := h.login(c)
			require.Error(tt, err)
			var appErr *errcodes.Error
			require.ErrorAs(tt, err, &appErr)
			assert.Equal(tt, tc.code, appErr.HTTPCode)
			assert.Equal(tt, tc.msg, appErr.Message)
		})
	}
}

func TestRoutes_LogoutAndMe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, time.Hour)
	user := testutils.CreateUser(t, db, "alice")

	e := newTestEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/auth"), svc, NewMiddleware(svc), NewThrottle(60, 10))

	first, _, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)
	second, _, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)

	do := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(""))
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Token "+token)
		}
		rr := httptest.NewRecorder()
		e.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodGet, "/api/auth/me", first)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"alice"`)

	rr = do(http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(http.MethodPost, "/api/auth/logout", first)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(http.MethodGet, "/api/auth/me", first)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = do(http.MethodGet, "/api/auth/me", second)
	assert.Equal(t, http.StatusOK, rr.Code)

	third, _, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)
	rr = do(http.MethodPost, "/api/auth/logoutall", third)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(http.MethodGet, "/api/auth/me", second)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestParseBasicHeader_ColonInPassword(t *testing.T) {
	t.Parallel()

	scheme, id, password, err := parseBasicHeader(basic("alice:pa:ss"))
	require.NoError(t, err)
	assert.Equal(t, SchemeUsername, scheme)
	assert.Equal(t, "alice", id)
	assert.Equal(t, "pa:ss", password)

	scheme, id, password, err = parseBasicHeader(basic("EMAIL:a@b.c:x:y"))
	require.NoError(t, err)
	assert.Equal(t, SchemeEmail, scheme)
	assert.Equal(t, "a@b.c", id)
	assert.Equal(t, "x:y", password)
}
