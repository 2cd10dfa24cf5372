package authors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
	"github.com/EliasObeid9-02/library-system/pkg/testutils"
)

func TestService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(testutils.NewDB(t))

	author, err := svc.Create(ctx, CreateOptions{FirstName: " ursula", LastName: "le guin"})
	require.NoError(t, err)
	assert.Equal(t, "Ursula", author.FirstName)
	assert.Equal(t, "Le Guin", author.LastName)
	assert.Equal(t, "Ursula Le Guin", author.FullName())

	// Same first name with a different last name is a different author.
	_, err = svc.Create(ctx, CreateOptions{FirstName: "Ursula", LastName: "Andress"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateOptions{FirstName: "URSULA", LastName: "LE GUIN"})
	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, msgNameTaken, e.Fields["first_name"])
	assert.Equal(t, msgNameTaken, e.Fields["last_name"])
}

func TestService_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db)

	leGuin := testutils.CreateAuthor(t, db, "Ursula", "Le Guin")
	testutils.CreateAuthor(t, db, "Terry", "Pratchett")
	testutils.CreateAuthor(t, db, "Iain", "Banks")
	book := testutils.CreateBook(t, db, "A Wizard of Earthsea", nil)
	testutils.LinkBook(t, db, book, []*models.Author{leGuin}, nil)

	list, total, err := svc.List(ctx, ListOptions{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, "Banks", list[0].LastName)
	assert.Equal(t, "Le Guin", list[1].LastName)
	assert.Equal(t, 1, list[1].BookCount)
	assert.Equal(t, "Pratchett", list[2].LastName)

	for _, search := range []string{"ursula", "GUIN", "ursula le"} {
		s := search
		list, total, err = svc.List(ctx, ListOptions{Limit: 20, Search: &s})
		require.NoError(t, err, search)
		assert.Equal(t, 1, total, search)
		assert.Equal(t, leGuin.ID, list[0].ID, search)
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db)

	pratchett := testutils.CreateAuthor(t, db, "Terry", "Pratchett")
	testutils.CreateAuthor(t, db, "Terry", "Brooks")

	first := "terence"
	got, err := svc.Update(ctx, pratchett.ID, UpdateOptions{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Terence", got.FirstName)
	assert.Equal(t, "Pratchett", got.LastName)

	first, last := "Terry", "brooks"
	_, err = svc.Update(ctx, pratchett.ID, UpdateOptions{FirstName: &first, LastName: &last})
	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, msgNameTaken, e.Fields["last_name"])

	require.NoError(t, svc.Delete(ctx, pratchett.ID))
	_, err = svc.Retrieve(ctx, pratchett.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Author"))
	assert.ErrorIs(t, svc.Delete(ctx, pratchett.ID), errcodes.NotFound("Author"))
}
