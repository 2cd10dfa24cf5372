package books

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/database"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

const (
	msgISBNTaken      = "Book with this ISBN already exists."
	msgBorrowedCopies = "This book has borrowed copies that must be returned first."
)

type CreateOptions struct {
	ISBN          string
	Title         string
	Summary       string
	Pages         *int
	Edition       *int
	PublishDate   *string
	Language      string
	PublicationID int
	AuthorIDs     []int
	CategoryIDs   []int
}

// UpdateOptions changes only the fields that are set. Setting AuthorIDs or
// CategoryIDs replaces the whole set of links.
type UpdateOptions struct {
	ISBN          *string
	Title         *string
	Summary       *string
	Pages         *int
	Edition       *int
	PublishDate   *string
	Language      *string
	PublicationID *int
	AuthorIDs     []int
	CategoryIDs   []int
}

type ListOptions struct {
	Limit          int
	Offset         int
	Language       *string
	AuthorID       *int
	CategoryID     *int
	PublicationID  *int
	PublishDateGTE *string
	PublishDateLTE *string
	Search         *string
}

type Service struct {
	db  *bun.DB
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (svc *Service) Create(ctx context.Context, opts CreateOptions) (*models.Book, error) {
	now := svc.now()
	book := &models.Book{
		CreatedAt:     now,
		UpdatedAt:     now,
		ISBN:          opts.ISBN,
		Title:         opts.Title,
		Summary:       opts.Summary,
		Pages:         opts.Pages,
		Edition:       opts.Edition,
		PublishDate:   opts.PublishDate,
		Language:      opts.Language,
		PublicationID: opts.PublicationID,
	}
	if book.Language == "" {
		book.Language = models.LanguageEnglish
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := checkReferences(ctx, tx, &opts.PublicationID, opts.AuthorIDs, opts.CategoryIDs); err != nil {
			return err
		}
		if err := checkISBN(ctx, tx, book.ISBN, 0); err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(book).Returning("*").Exec(ctx); err != nil {
			if database.IsUniqueViolation(err) {
				return errcodes.FieldValidationError("isbn", msgISBNTaken)
			}
			return errors.WithStack(err)
		}

		return replaceLinks(ctx, tx, book.ID, opts.AuthorIDs, opts.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}

	return svc.Retrieve(ctx, book.ID)
}

func (svc *Service) Retrieve(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}
	err := svc.selectQuery(book).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}
	return book, nil
}

func (svc *Service) List(ctx context.Context, opts ListOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}

	q := svc.selectQuery(&books).
		Order("b.title ASC", "b.id ASC")

	if opts.Language != nil {
		q = q.Where("b.language = ?", *opts.Language)
	}
	if opts.AuthorID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM book_authors AS ba WHERE ba.book_id = b.id AND ba.author_id = ?)", *opts.AuthorID)
	}
	if opts.CategoryID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM book_categories AS bc WHERE bc.book_id = b.id AND bc.category_id = ?)", *opts.CategoryID)
	}
	if opts.PublicationID != nil {
		q = q.Where("b.publication_id = ?", *opts.PublicationID)
	}
	if opts.PublishDateGTE != nil {
		q = q.Where("b.publish_date >= ?", *opts.PublishDateGTE)
	}
	if opts.PublishDateLTE != nil {
		q = q.Where("b.publish_date <= ?", *opts.PublishDateLTE)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = applySearch(q, *opts.Search)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return books, total, nil
}

func (svc *Service) Update(ctx context.Context, id int, opts UpdateOptions) (*models.Book, error) {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		book := &models.Book{}
		err := tx.NewSelect().Model(book).Where("b.id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book")
			}
			return errors.WithStack(err)
		}

		if err := checkReferences(ctx, tx, opts.PublicationID, opts.AuthorIDs, opts.CategoryIDs); err != nil {
			return err
		}

		columns := []string{}
		if opts.ISBN != nil && *opts.ISBN != book.ISBN {
			if err := checkISBN(ctx, tx, *opts.ISBN, id); err != nil {
				return err
			}
			book.ISBN = *opts.ISBN
			columns = append(columns, "isbn")
		}
		if opts.Title != nil {
			book.Title = *opts.Title
			columns = append(columns, "title")
		}
		if opts.Summary != nil {
			book.Summary = *opts.Summary
			columns = append(columns, "summary")
		}
		if opts.Pages != nil {
			book.Pages = opts.Pages
			columns = append(columns, "pages")
		}
		if opts.Edition != nil {
			book.Edition = opts.Edition
			columns = append(columns, "edition")
		}
		if opts.PublishDate != nil {
			// The empty string clears the date.
			if *opts.PublishDate == "" {
				book.PublishDate = nil
			} else {
				book.PublishDate = opts.PublishDate
			}
			columns = append(columns, "publish_date")
		}
		if opts.Language != nil {
			book.Language = *opts.Language
			columns = append(columns, "language")
		}
		if opts.PublicationID != nil {
			book.PublicationID = *opts.PublicationID
			columns = append(columns, "publication_id")
		}

		if opts.AuthorIDs != nil || opts.CategoryIDs != nil {
			if err := replaceLinks(ctx, tx, id, opts.AuthorIDs, opts.CategoryIDs); err != nil {
				return err
			}
		}

		book.UpdatedAt = svc.now()
		columns = append(columns, "updated_at")
		_, err = tx.NewUpdate().
			Model(book).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return errcodes.FieldValidationError("isbn", msgISBNTaken)
			}
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return svc.Retrieve(ctx, id)
}

// Delete removes the book along with its copies, reservations and reviews.
// A book with copies out on loan can't be deleted.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		borrowed, err := tx.NewSelect().
			Model((*models.BookInstance)(nil)).
			Where("bi.book_id = ?", id).
			Where("bi.status = ?", models.InstanceStatusBorrowed).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if borrowed {
			return errcodes.Conflict(msgBorrowedCopies)
		}

		res, err := tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Book")
		}
		return nil
	})
}

func (svc *Service) selectQuery(model interface{}) *bun.SelectQuery {
	return svc.db.NewSelect().
		Model(model).
		ColumnExpr("b.*").
		ColumnExpr("CAST(COALESCE((SELECT AVG(r.stars) FROM reviews AS r WHERE r.book_id = b.id), 0) AS REAL) AS reviews_star_average").
		ColumnExpr("(SELECT COUNT(*) FROM book_instances AS bi WHERE bi.book_id = b.id AND bi.status = ?) AS available_instances", models.InstanceStatusAvailable).
		ColumnExpr("(SELECT COUNT(*) FROM book_instances AS bi WHERE bi.book_id = b.id) AS total_instances").
		Relation("Publication").
		Relation("Authors", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("a.last_name ASC", "a.first_name ASC")
		}).
		Relation("Categories", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("cat.name ASC")
		})
}

// applySearch matches every word of the search against the title, ISBN,
// summary, author names, category names and publication name. All words must
// match, each in any of those places.
func applySearch(q *bun.SelectQuery, search string) *bun.SelectQuery {
	for _, word := range strings.Fields(strings.ToLower(search)) {
		like := "%" + word + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(b.title) LIKE ?", like).
				WhereOr("b.isbn LIKE ?", like).
				WhereOr("LOWER(b.summary) LIKE ?", like).
				WhereOr("EXISTS (SELECT 1 FROM book_authors AS ba JOIN authors AS sa ON sa.id = ba.author_id WHERE ba.book_id = b.id AND (LOWER(sa.first_name) LIKE ? OR LOWER(sa.last_name) LIKE ?))", like, like).
				WhereOr("EXISTS (SELECT 1 FROM book_categories AS bc JOIN categories AS sc ON sc.id = bc.category_id WHERE bc.book_id = b.id AND LOWER(sc.name) LIKE ?)", like).
				WhereOr("EXISTS (SELECT 1 FROM publications AS sp WHERE sp.id = b.publication_id AND LOWER(sp.name) LIKE ?)", like)
		})
	}
	return q
}

func checkISBN(ctx context.Context, tx bun.Tx, isbn string, exceptID int) error {
	exists, err := tx.NewSelect().
		Model((*models.Book)(nil)).
		Where("b.isbn = ?", isbn).
		Where("b.id != ?", exceptID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.FieldValidationError("isbn", msgISBNTaken)
	}
	return nil
}

// checkReferences reports every referenced row that doesn't exist as a
// field error.
func checkReferences(ctx context.Context, tx bun.Tx, publicationID *int, authorIDs, categoryIDs []int) error {
	order := []string{}
	fields := map[string]string{}

	if publicationID != nil {
		missing, err := missingIDs(ctx, tx, "publications", []int{*publicationID})
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			order = append(order, "publication")
			fields["publication"] = invalidPK(missing[0])
		}
	}
	for _, ref := range []struct {
		field string
		table string
		ids   []int
	}{
		{"authors", "authors", authorIDs},
		{"categories", "categories", categoryIDs},
	} {
		missing, err := missingIDs(ctx, tx, ref.table, ref.ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			order = append(order, ref.field)
			fields[ref.field] = invalidPK(missing[0])
		}
	}

	if len(order) > 0 {
		return errcodes.FieldsValidationError(order, fields)
	}
	return nil
}

func missingIDs(ctx context.Context, tx bun.Tx, table string, ids []int) ([]int, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	var found []int
	err := tx.NewSelect().
		TableExpr("?", bun.Ident(table)).
		Column("id").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx, &found)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	seen := make(map[int]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	missing := []int{}
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func invalidPK(id int) string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", fmt.Sprint(id))
}

// replaceLinks swaps the book's author and category links for the given
// ids. A nil slice leaves that set alone.
func replaceLinks(ctx context.Context, tx bun.Tx, bookID int, authorIDs, categoryIDs []int) error {
	if authorIDs != nil {
		_, err := tx.NewDelete().
			Model((*models.BookAuthor)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		links := []*models.BookAuthor{}
		for _, id := range uniqueIDs(authorIDs) {
			links = append(links, &models.BookAuthor{BookID: bookID, AuthorID: id})
		}
		if len(links) > 0 {
			if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	if categoryIDs != nil {
		_, err := tx.NewDelete().
			Model((*models.BookCategory)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		links := []*models.BookCategory{}
		for _, id := range uniqueIDs(categoryIDs) {
			links = append(links, &models.BookCategory{BookID: bookID, CategoryID: id})
		}
		if len(links) > 0 {
			if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	return nil
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
