package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/database"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

const msgAlreadyReviewed = "Review with this book and author already exists."

type CreateOptions struct {
	BookID int
	Stars  int
	Review string
}

type UpdateOptions struct {
	Stars  *int
	Review *string
}

type ListOptions struct {
	Limit    int
	Offset   int
	BookID   *int
	AuthorID *int
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

// Create stores actor's review of a book. Each user reviews a book at most
// once.
func (svc *Service) Create(ctx context.Context, actor *models.User, opts CreateOptions) (*models.Review, error) {
	if err := authorize(actionCreate, actor, nil); err != nil {
		return nil, err
	}

	now := svc.now()
	review := &models.Review{
		CreatedAt: now,
		UpdatedAt: now,
		BookID:    opts.BookID,
		AuthorID:  actor.ID,
		Stars:     opts.Stars,
		Review:    opts.Review,
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("b.id = ?", opts.BookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.FieldValidationError("book", fmt.Sprintf(`Invalid pk "%d" - object does not exist.`, opts.BookID))
		}

		reviewed, err := tx.NewSelect().
			Model((*models.Review)(nil)).
			Where("r.book_id = ?", opts.BookID).
			Where("r.author_id = ?", actor.ID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if reviewed {
			return errcodes.ValidationError(msgAlreadyReviewed)
		}

		if _, err := tx.NewInsert().Model(review).Returning("*").Exec(ctx); err != nil {
			if database.IsUniqueViolation(err) {
				return errcodes.ValidationError(msgAlreadyReviewed)
			}
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	review.Author = actor
	return review, nil
}

func (svc *Service) Retrieve(ctx context.Context, id int) (*models.Review, error) {
	if err := authorize(actionRetrieve, nil, nil); err != nil {
		return nil, err
	}
	return svc.retrieve(ctx, id)
}

func (svc *Service) retrieve(ctx context.Context, id int) (*models.Review, error) {
	review := &models.Review{}
	err := svc.db.NewSelect().
		Model(review).
		Relation("Author").
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Review")
		}
		return nil, errors.WithStack(err)
	}
	return review, nil
}

// List returns reviews newest first.
func (svc *Service) List(ctx context.Context, opts ListOptions) ([]*models.Review, int, error) {
	if err := authorize(actionList, nil, nil); err != nil {
		return nil, 0, err
	}

	reviews := []*models.Review{}
	q := svc.db.NewSelect().
		Model(&reviews).
		Relation("Author").
		Order("r.created_at DESC", "r.id DESC")

	if opts.BookID != nil {
		q = q.Where("r.book_id = ?", *opts.BookID)
	}
	if opts.AuthorID != nil {
		q = q.Where("r.author_id = ?", *opts.AuthorID)
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
	return reviews, total, nil
}

func (svc *Service) Update(ctx context.Context, actor *models.User, id int, opts UpdateOptions) (*models.Review, error) {
	review, err := svc.retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actionUpdate, actor, review); err != nil {
		return nil, err
	}

	columns := []string{}
	if opts.Stars != nil {
		review.Stars = *opts.Stars
		columns = append(columns, "stars")
	}
	if opts.Review != nil {
		review.Review = *opts.Review
		columns = append(columns, "review")
	}
	if len(columns) == 0 {
		return review, nil
	}

	review.UpdatedAt = svc.now()
	_, err = svc.db.NewUpdate().
		Model(review).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return review, nil
}

func (svc *Service) Delete(ctx context.Context, actor *models.User, id int) error {
	review, err := svc.retrieve(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actionDelete, actor, review); err != nil {
		return err
	}

	_, err = svc.db.NewDelete().
		Model(review).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// StarAverage is the mean rating of a book, or 0 when it has no reviews.
func (svc *Service) StarAverage(ctx context.Context, bookID int) (float64, error) {
	var avg float64
	err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("CAST(COALESCE((SELECT AVG(r.stars) FROM reviews AS r WHERE r.book_id = b.id), 0) AS REAL)").
		Where("b.id = ?", bookID).
		Scan(ctx, &avg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errcodes.NotFound("Book")
		}
		return 0, errors.WithStack(err)
	}
	return avg, nil
}
