// Package testutils builds migrated in-memory databases and fixture rows for
// package tests.
package testutils

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/EliasObeid9-02/library-system/pkg/config"
	"github.com/EliasObeid9-02/library-system/pkg/database"
	"github.com/EliasObeid9-02/library-system/pkg/migrations"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

// DefaultPassword is the plain-text password of every fixture user unless
// WithPassword overrides it.
const DefaultPassword = "quiet-lantern-47"

var isbnSeq atomic.Int64

// NewDB returns a migrated in-memory database that is closed when the test
// ends.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

type UserOption func(*models.User, *string)

func WithStaff() UserOption {
	return func(u *models.User, _ *string) { u.IsStaff = true }
}

func WithSuperuser() UserOption {
	return func(u *models.User, _ *string) {
		u.IsStaff = true
		u.IsSuperuser = true
	}
}

func Inactive() UserOption {
	return func(u *models.User, _ *string) { u.IsActive = false }
}

func WithPassword(password string) UserOption {
	return func(_ *models.User, p *string) { *p = password }
}

func WithNickname(nickname string) UserOption {
	return func(u *models.User, _ *string) { u.Nickname = &nickname }
}

// CreateUser inserts an active user with username@example.com as its email.
func CreateUser(t testing.TB, db bun.IDB, username string, opts ...UserOption) *models.User {
	t.Helper()

	now := time.Now().UTC()
	password := DefaultPassword
	user := &models.User{
		CreatedAt: now,
		UpdatedAt: now,
		Username:  username,
		Email:     username + "@example.com",
		IsActive:  true,
	}
	for _, opt := range opts {
		opt(user, &password)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user.PasswordHash = string(hash)

	_, err = db.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)
	return user
}

func CreatePublication(t testing.TB, db bun.IDB, name string) *models.Publication {
	t.Helper()

	now := time.Now().UTC()
	pub := &models.Publication{CreatedAt: now, UpdatedAt: now, Name: name}
	_, err := db.NewInsert().Model(pub).Exec(context.Background())
	require.NoError(t, err)
	return pub
}

func CreateAuthor(t testing.TB, db bun.IDB, firstName, lastName string) *models.Author {
	t.Helper()

	now := time.Now().UTC()
	author := &models.Author{CreatedAt: now, UpdatedAt: now, FirstName: firstName, LastName: lastName}
	_, err := db.NewInsert().Model(author).Exec(context.Background())
	require.NoError(t, err)
	return author
}

func CreateCategory(t testing.TB, db bun.IDB, name string) *models.Category {
	t.Helper()

	now := time.Now().UTC()
	category := &models.Category{CreatedAt: now, UpdatedAt: now, Name: name}
	_, err := db.NewInsert().Model(category).Exec(context.Background())
	require.NoError(t, err)
	return category
}

// CreateBook inserts an English book with a generated ISBN. A publication is
// created for it when pub is nil.
func CreateBook(t testing.TB, db bun.IDB, title string, pub *models.Publication) *models.Book {
	t.Helper()

	if pub == nil {
		pub = CreatePublication(t, db, "Publisher of "+title)
	}

	now := time.Now().UTC()
	book := &models.Book{
		CreatedAt:     now,
		UpdatedAt:     now,
		ISBN:          fmt.Sprintf("978%010d", isbnSeq.Add(1)),
		Title:         title,
		Language:      models.LanguageEnglish,
		PublicationID: pub.ID,
	}
	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)
	return book
}

// CreateInstance inserts an available copy of the book.
func CreateInstance(t testing.TB, db bun.IDB, bookID int) *models.BookInstance {
	t.Helper()

	now := time.Now().UTC()
	instance := &models.BookInstance{
		CreatedAt: now,
		UpdatedAt: now,
		BookID:    bookID,
		Status:    models.InstanceStatusAvailable,
	}
	_, err := db.NewInsert().Model(instance).Exec(context.Background())
	require.NoError(t, err)
	return instance
}

// LinkBook attaches authors and categories to a book.
func LinkBook(t testing.TB, db bun.IDB, book *models.Book, authors []*models.Author, categories []*models.Category) {
	t.Helper()

	ctx := context.Background()
	for _, a := range authors {
		_, err := db.NewInsert().Model(&models.BookAuthor{BookID: book.ID, AuthorID: a.ID}).Exec(ctx)
		require.NoError(t, err)
	}
	for _, c := range categories {
		_, err := db.NewInsert().Model(&models.BookCategory{BookID: book.ID, CategoryID: c.ID}).Exec(ctx)
		require.NoError(t, err)
	}
}
