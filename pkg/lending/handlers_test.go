package lending

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
	svc := NewService(db, loanPeriod)

	e := testutils.NewEcho(t)
	RegisterRoutesWithGroup(e.Group("/api/library/book_instance"), svc, auth.NewMiddleware(authService))

	librarian := testutils.CreateUser(t, db, "librarian", testutils.WithStaff())
	reader := testutils.CreateUser(t, db, "reader")
	staffToken, _, err := authService.IssueToken(ctx, librarian)
	require.NoError(t, err)
	readerToken, _, err := authService.IssueToken(ctx, reader)
	require.NoError(t, err)

	book := testutils.CreateBook(t, db, "Dune", nil)
	body := fmt.Sprintf(`{"book_id":%d}`, book.ID)

	rr := testutils.Do(e, http.MethodGet, "/api/library/book_instance", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = testutils.Do(e, http.MethodPost, "/api/library/book_instance", readerToken, body)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = testutils.Do(e, http.MethodPost, "/api/library/book_instance", staffToken, body)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"available"`)

	rr = testutils.Do(e, http.MethodPost, "/api/library/book_instance", staffToken, `{"book_id":9999}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	_, err = svc.Borrow(ctx, reader, book.ID)
	require.NoError(t, err)

	rr = testutils.Do(e, http.MethodGet, fmt.Sprintf("/api/library/book_instance?book=%d&status=borrowed", book.ID), readerToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total":1`)
	assert.Contains(t, rr.Body.String(), `"is_overdue":false`)

	rr = testutils.Do(e, http.MethodGet, "/api/library/book_instance?status=lost", readerToken, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = testutils.Do(e, http.MethodGet, "/api/library/book_instance/overdue", readerToken, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = testutils.Do(e, http.MethodGet, "/api/library/book_instance/overdue", staffToken, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total":0`)

	instances, _, err := svc.ListInstances(ctx, ListInstancesOptions{BookID: &book.ID})
	require.NoError(t, err)
	require.Len(t, instances, 1)
	rr = testutils.Do(e, http.MethodDelete, fmt.Sprintf("/api/library/book_instance/%d", instances[0].ID), staffToken, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}
