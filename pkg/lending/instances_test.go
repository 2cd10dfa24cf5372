package lending

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
	"github.com/EliasObeid9-02/library-system/pkg/testutils"
)

func TestService_CreateInstance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	book := testutils.CreateBook(t, db, "Dune", nil)
	alice := testutils.CreateUser(t, db, "alice")

	instance, err := svc.CreateInstance(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusAvailable, instance.Status)
	assert.Nil(t, instance.BorrowerID)

	_, err = svc.CreateInstance(ctx, 9999)
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))

	// With the only copy out and a queue, a new copy goes to the queue head.
	_, err = svc.Borrow(ctx, alice, book.ID)
	require.NoError(t, err)
	bob := testutils.CreateUser(t, db, "bob")
	_, err = svc.Borrow(ctx, bob, book.ID)
	require.NoError(t, err)

	instance, err = svc.CreateInstance(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusBorrowed, instance.Status)
	require.NotNil(t, instance.BorrowerID)
	assert.Equal(t, bob.ID, *instance.BorrowerID)
	assert.Empty(t, queue(t, db, book.ID))
}

func TestService_ListInstancesAndOverdue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, now := newTestService(t)

	dune := testutils.CreateBook(t, db, "Dune", nil)
	emma := testutils.CreateBook(t, db, "Emma", nil)
	testutils.CreateInstance(t, db, dune.ID)
	testutils.CreateInstance(t, db, dune.ID)
	testutils.CreateInstance(t, db, emma.ID)
	alice := testutils.CreateUser(t, db, "alice")
	bob := testutils.CreateUser(t, db, "bob")

	_, err := svc.Borrow(ctx, alice, dune.ID)
	require.NoError(t, err)
	*now = now.Add(5 * 24 * time.Hour)
	_, err = svc.Borrow(ctx, bob, emma.ID)
	require.NoError(t, err)

	instances, total, err := svc.ListInstances(ctx, ListInstancesOptions{Limit: 20, BookID: &dune.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, instances, 2)

	status := models.InstanceStatusBorrowed
	_, total, err = svc.ListInstances(ctx, ListInstancesOptions{Limit: 20, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	instances, total, err = svc.ListInstances(ctx, ListInstancesOptions{Limit: 20, BorrowerID: &bob.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Emma", instances[0].Book.Title)

	// alice's loan is due on day 21, bob's on day 26.
	*now = now.Add(20 * 24 * time.Hour)
	overdue := true
	instances, total, err = svc.ListInstances(ctx, ListInstancesOptions{Limit: 20, Overdue: &overdue})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, alice.ID, *instances[0].BorrowerID)
	assert.True(t, instances[0].IsOverdue(*now))

	overdue = false
	_, total, err = svc.ListInstances(ctx, ListInstancesOptions{Limit: 20, Overdue: &overdue})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	*now = now.Add(10 * 24 * time.Hour)
	late, err := svc.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, late, 2)
	assert.Equal(t, "alice", late[0].Borrower.Username)
	assert.Equal(t, "bob", late[1].Borrower.Username)
}

func TestService_RetrieveAndDeleteInstance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db, _ := newTestService(t)

	book := testutils.CreateBook(t, db, "Dune", nil)
	lent := testutils.CreateInstance(t, db, book.ID)
	spare := testutils.CreateInstance(t, db, book.ID)
	alice := testutils.CreateUser(t, db, "alice")
	_, err := svc.Borrow(ctx, alice, book.ID)
	require.NoError(t, err)

	got, err := svc.RetrieveInstance(ctx, lent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Book.Title)
	assert.Equal(t, "alice", got.Borrower.Username)

	err = svc.DeleteInstance(ctx, lent.ID)
	assert.ErrorIs(t, err, errcodes.Conflict(msgStillBorrowed))

	require.NoError(t, svc.DeleteInstance(ctx, spare.ID))
	_, err = svc.RetrieveInstance(ctx, spare.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Book instance"))
	assert.ErrorIs(t, svc.DeleteInstance(ctx, spare.ID), errcodes.NotFound("Book instance"))
}
