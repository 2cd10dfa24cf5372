package publications

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
)

const (
	msgNameTaken = "Publication with this name already exists."
	msgHasBooks  = "This publication still has books and can't be deleted."
)

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

func (svc *Service) Create(ctx context.Context, name string) (*models.Publication, error) {
	name = strings.TrimSpace(name)
	if err := svc.checkUnique(ctx, name, 0); err != nil {
		return nil, err
	}

	now := svc.now()
	publication := &models.Publication{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
	}
	_, err := svc.db.
		NewInsert().
		Model(publication).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errcodes.FieldValidationError("name", msgNameTaken)
		}
		return nil, errors.WithStack(err)
	}
	return publication, nil
}

func (svc *Service) Retrieve(ctx context.Context, id int) (*models.Publication, error) {
	publication := &models.Publication{}
	err := svc.selectQuery().
		Model(publication).
		Where("pub.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Publication")
		}
		return nil, errors.WithStack(err)
	}
	return publication, nil
}

func (svc *Service) List(ctx context.Context, opts ListOptions) ([]*models.Publication, int, error) {
	var publications []*models.Publication

	q := svc.selectQuery().
		Model(&publications).
		Order("pub.name ASC", "pub.id ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(pub.name) LIKE ?", "%"+strings.ToLower(*opts.Search)+"%")
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
	return publications, total, nil
}

func (svc *Service) Update(ctx context.Context, id int, opts UpdateOptions) (*models.Publication, error) {
	publication, err := svc.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	if opts.Name == nil {
		return publication, nil
	}

	name := strings.TrimSpace(*opts.Name)
	if name == publication.Name {
		return publication, nil
	}
	if err := svc.checkUnique(ctx, name, id); err != nil {
		return nil, err
	}

	publication.Name = name
	publication.UpdatedAt = svc.now()
	_, err = svc.db.
		NewUpdate().
		Model(publication).
		Column("name", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errcodes.FieldValidationError("name", msgNameTaken)
		}
		return nil, errors.WithStack(err)
	}
	return publication, nil
}

// Delete removes a publication. Books restrict the delete, so a publication
// that still has any fails with Conflict.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		books, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("publication_id = ?", id).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if books > 0 {
			return errcodes.Conflict(msgHasBooks)
		}

		res, err := tx.NewDelete().
			Model((*models.Publication)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return errcodes.Conflict(msgHasBooks)
			}
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Publication")
		}
		return nil
	})
}

func (svc *Service) selectQuery() *bun.SelectQuery {
	return svc.db.NewSelect().
		ColumnExpr("pub.*").
		ColumnExpr("(SELECT COUNT(*) FROM books AS b WHERE b.publication_id = pub.id) AS book_count")
}

func (svc *Service) checkUnique(ctx context.Context, name string, exceptID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Publication)(nil)).
		Where("LOWER(pub.name) = LOWER(?)", name).
		Where("pub.id != ?", exceptID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.FieldValidationError("name", msgNameTaken)
	}
	return nil
}
