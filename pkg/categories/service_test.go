package categories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
	"github.com/EliasObeid9-02/library-system/pkg/testutils"
)

func TestService_Create_Capitalizes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(testutils.NewDB(t))

	category, err := svc.Create(ctx, "science FICTION")
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", category.Name)

	_, err = svc.Create(ctx, "Science fiction")
	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, msgNameTaken, e.Fields["name"])
}

func TestService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db)

	fantasy := testutils.CreateCategory(t, db, "Fantasy")
	testutils.CreateCategory(t, db, "Horror")

	name := "high fantasy"
	got, err := svc.Update(ctx, fantasy.ID, UpdateOptions{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "High Fantasy", got.Name)

	name = "HORROR"
	_, err = svc.Update(ctx, fantasy.ID, UpdateOptions{Name: &name})
	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, msgNameTaken, e.Fields["name"])

	got, err = svc.Update(ctx, fantasy.ID, UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "High Fantasy", got.Name)
}

func TestService_ListAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db)

	fantasy := testutils.CreateCategory(t, db, "Fantasy")
	testutils.CreateCategory(t, db, "Horror")
	book := testutils.CreateBook(t, db, "The Hobbit", nil)
	testutils.LinkBook(t, db, book, nil, []*models.Category{fantasy})

	list, total, err := svc.List(ctx, ListOptions{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "Fantasy", list[0].Name)
	assert.Equal(t, 1, list[0].BookCount)
	assert.Equal(t, 0, list[1].BookCount)

	search := "HOR"
	list, total, err = svc.List(ctx, ListOptions{Limit: 20, Search: &search})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Horror", list[0].Name)

	require.NoError(t, svc.Delete(ctx, fantasy.ID))
	links, err := db.NewSelect().Model((*models.BookCategory)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, links)

	err = svc.Delete(ctx, fantasy.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Category"))
}
