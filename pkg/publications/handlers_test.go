package publications

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/testutils"
)

func TestRoutes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	authService := auth.NewService(db, time.Hour)

	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/library/publication"), NewService(db), auth.NewMiddleware(authService))

	librarian := testutils.CreateUser(t, db, "librarian", testutils.WithStaff())
	reader := testutils.CreateUser(t, db, "reader")
	staffToken, _, err := authService.IssueToken(ctx, librarian)
	require.NoError(t, err)
	readerToken, _, err := authService.IssueToken(ctx, reader)
	require.NoError(t, err)

	rr := testutils.Do(e, http.MethodPost, "/api/library/publication", "", `{"name":"Orbit"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = testutils.Do(e, http.MethodPost, "/api/library/publication", readerToken, `{"name":"Orbit"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = testutils.Do(e, http.MethodPost, "/api/library/publication", staffToken, `{"name":"Orbit"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Orbit"`)

	rr = testutils.Do(e, http.MethodPost, "/api/library/publication", staffToken, `{"name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = testutils.Do(e, http.MethodGet, "/api/library/publication?search=orb", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total":1`)

	rr = testutils.Do(e, http.MethodGet, "/api/library/publication/abc", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	pub := testutils.CreatePublication(t, db, "Tor")
	rr = testutils.Do(e, http.MethodPatch, "/api/library/publication/"+strconv.Itoa(pub.ID), staffToken, `{"name":"Tor Books"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Tor Books"`)

	rr = testutils.Do(e, http.MethodDelete, "/api/library/publication/"+strconv.Itoa(pub.ID), staffToken, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
