package authors

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/database"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
	"github.com/EliasObeid9-02/library-system/pkg/textutils"
)

const msgNameTaken = "Author with this first name and last name already exists."

type CreateOptions struct {
	FirstName string
	LastName  string
}

type ListOptions struct {
	Limit  int
	Offset int
	Search *string
}

type UpdateOptions struct {
	FirstName *string
	LastName  *string
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

func normalizeName(name string) string {
	return textutils.CapitalizeWords(strings.TrimSpace(name))
}

func (svc *Service) Create(ctx context.Context, opts CreateOptions) (*models.Author, error) {
	now := svc.now()
	author := &models.Author{
		CreatedAt: now,
		UpdatedAt: now,
		FirstName: normalizeName(opts.FirstName),
		LastName:  normalizeName(opts.LastName),
	}
	if err := svc.checkUnique(ctx, author, 0); err != nil {
		return nil, err
	}

	_, err := svc.db.
		NewInsert().
		Model(author).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, nameTakenError()
		}
		return nil, errors.WithStack(err)
	}
	return author, nil
}

func (svc *Service) Retrieve(ctx context.Context, id int) (*models.Author, error) {
	author := &models.Author{}
	err := svc.selectQuery().
		Model(author).
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}
	return author, nil
}

// List orders authors by last name, then first name. Search matches either
// name or the full "first last" form.
func (svc *Service) List(ctx context.Context, opts ListOptions) ([]*models.Author, int, error) {
	var authors []*models.Author

	q := svc.selectQuery().
		Model(&authors).
		Order("a.last_name ASC", "a.first_name ASC", "a.id ASC")

	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(*opts.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(a.first_name) LIKE ?", search).
				WhereOr("LOWER(a.last_name) LIKE ?", search).
				WhereOr("LOWER(a.first_name || ' ' || a.last_name) LIKE ?", search)
		})
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
	return authors, total, nil
}

func (svc *Service) Update(ctx context.Context, id int, opts UpdateOptions) (*models.Author, error) {
	author, err := svc.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := []string{}
	if opts.FirstName != nil {
		if name := normalizeName(*opts.FirstName); name != author.FirstName {
			author.FirstName = name
			columns = append(columns, "first_name")
		}
	}
	if opts.LastName != nil {
		if name := normalizeName(*opts.LastName); name != author.LastName {
			author.LastName = name
			columns = append(columns, "last_name")
		}
	}
	if len(columns) == 0 {
		return author, nil
	}

	if err := svc.checkUnique(ctx, author, id); err != nil {
		return nil, err
	}

	author.UpdatedAt = svc.now()
	_, err = svc.db.
		NewUpdate().
		Model(author).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, nameTakenError()
		}
		return nil, errors.WithStack(err)
	}
	return author, nil
}

// Delete removes the author and unlinks it from its books.
func (svc *Service) Delete(ctx context.Context, id int) error {
	res, err := svc.db.NewDelete().
		Model((*models.Author)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Author")
	}
	return nil
}

func (svc *Service) selectQuery() *bun.SelectQuery {
	return svc.db.NewSelect().
		ColumnExpr("a.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_authors AS ba WHERE ba.author_id = a.id) AS book_count")
}

func (svc *Service) checkUnique(ctx context.Context, author *models.Author, exceptID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Author)(nil)).
		Where("LOWER(a.first_name) = LOWER(?)", author.FirstName).
		Where("LOWER(a.last_name) = LOWER(?)", author.LastName).
		Where("a.id != ?", exceptID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return nameTakenError()
	}
	return nil
}

func nameTakenError() error {
	return errcodes.FieldsValidationError(
		[]string{"first_name", "last_name"},
		map[string]string{"first_name": msgNameTaken, "last_name": msgNameTaken},
	)
}
