package reviews

import (
	"context"
	"fmt"
	"net/http"
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
	RegisterRoutesWithGroup(e.Group("/api/reviews"), NewService(db), auth.NewMiddleware(authService))

	alice := testutils.CreateUser(t, db, "alice")
	bob := testutils.CreateUser(t, db, "bob")
	aliceToken, _, err := authService.IssueToken(ctx, alice)
	require.NoError(t, err)
	bobToken, _, err := authService.IssueToken(ctx, bob)
	require.NoError(t, err)

	book := testutils.CreateBook(t, db, "Dune", nil)
	body := fmt.Sprintf(`{"book":%d,"stars":4,"review":"  Sand everywhere.  "}`, book.ID)

	rr := testutils.Do(e, http.MethodPost, "/api/reviews", "", body)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = testutils.Do(e, http.MethodPost, "/api/reviews", aliceToken, fmt.Sprintf(`{"book":%d,"stars":6,"review":"x"}`, book.ID))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), `"stars"`)

	rr = testutils.Do(e, http.MethodPost, "/api/reviews", aliceToken, body)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"review":"Sand everywhere."`)

	rr = testutils.Do(e, http.MethodPost, "/api/reviews", aliceToken, body)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = testutils.Do(e, http.MethodGet, fmt.Sprintf("/api/reviews?book=%d", book.ID), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total":1`)

	rr = testutils.Do(e, http.MethodGet, "/api/reviews", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	reviews, _, err := NewService(db).List(ctx, ListOptions{BookID: &book.ID})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	path := fmt.Sprintf("/api/reviews/%d", reviews[0].ID)

	rr = testutils.Do(e, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = testutils.Do(e, http.MethodGet, "/api/reviews/abc", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = testutils.Do(e, http.MethodPatch, path, bobToken, `{"stars":1}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = testutils.Do(e, http.MethodPatch, path, aliceToken, `{"stars":5}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"stars":5`)

	rr = testutils.Do(e, http.MethodDelete, path, aliceToken, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = testutils.Do(e, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
