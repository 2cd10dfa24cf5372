package categories

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

const msgNameTaken = "Category with this name already exists."

type ListOptions struct {
	Limit  int
	Offset int
	Search *string
}

type UpdateOptions struct {
	Name *string
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

// normalizeName trims and word-capitalizes a category name before it is
// stored or compared.
func normalizeName(name string) string {
	return textutils.CapitalizeWords(strings.TrimSpace(name))
}

func (svc *Service) Create(ctx context.Context, name string) (*models.Category, error) {
	name = normalizeName(name)
	if err := svc.checkUnique(ctx, name, 0); err != nil {
		return nil, err
	}

	now := svc.now()
	category := &models.Category{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
	}
	_, err := svc.db.
		NewInsert().
		Model(category).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errcodes.FieldValidationError("name", msgNameTaken)
		}
		return nil, errors.WithStack(err)
	}
	return category, nil
}

func (svc *Service) Retrieve(ctx context.Context, id int) (*models.Category, error) {
	category := &models.Category{}
	err := svc.selectQuery().
		Model(category).
		Where("cat.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Category")
		}
		return nil, errors.WithStack(err)
	}
	return category, nil
}

func (svc *Service) List(ctx context.Context, opts ListOptions) ([]*models.Category, int, error) {
	var categories []*models.Category

	q := svc.selectQuery().
		Model(&categories).
		Order("cat.name ASC", "cat.id ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(cat.name) LIKE ?", "%"+strings.ToLower(*opts.Search)+"%")
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
	return categories, total, nil
}

func (svc *Service) Update(ctx context.Context, id int, opts UpdateOptions) (*models.Category, error) {
	category, err := svc.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	if opts.Name == nil {
		return category, nil
	}

	name := normalizeName(*opts.Name)
	if name == category.Name {
		return category, nil
	}
	if err := svc.checkUnique(ctx, name, id); err != nil {
		return nil, err
	}

	category.Name = name
	category.UpdatedAt = svc.now()
	_, err = svc.db.
		NewUpdate().
		Model(category).
		Column("name", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errcodes.FieldValidationError("name", msgNameTaken)
		}
		return nil, errors.WithStack(err)
	}
	return category, nil
}

// Delete removes the category. Its book links go with it.
func (svc *Service) Delete(ctx context.Context, id int) error {
	res, err := svc.db.NewDelete().
		Model((*models.Category)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Category")
	}
	return nil
}

func (svc *Service) selectQuery() *bun.SelectQuery {
	return svc.db.NewSelect().
		ColumnExpr("cat.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_categories AS bc WHERE bc.category_id = cat.id) AS book_count")
}

func (svc *Service) checkUnique(ctx context.Context, name string, exceptID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Category)(nil)).
		Where("LOWER(cat.name) = LOWER(?)", name).
		Where("cat.id != ?", exceptID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.FieldValidationError("name", msgNameTaken)
	}
	return nil
}
