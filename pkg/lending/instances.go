package lending

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

type ListInstancesOptions struct {
	Limit      int
	Offset     int
	BookID     *int
	Status     *string
	BorrowerID *int
	Overdue    *bool
}

// CreateInstance adds a copy of the book. If readers are queued for the book,
// the new copy is lent to the head of the queue right away.
func (svc *Service) CreateInstance(ctx context.Context, bookID int) (*models.BookInstance, error) {
	instance := &models.BookInstance{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockBook(ctx, tx, bookID); err != nil {
			return err
		}

		now := svc.now()
		instance.CreatedAt = now
		instance.UpdatedAt = now
		instance.BookID = bookID
		instance.Release()
		if _, err := tx.NewInsert().Model(instance).Returning("*").Exec(ctx); err != nil {
			return errors.WithStack(err)
		}

		next, err := nextReservation(ctx, tx, bookID)
		if err != nil || next == nil {
			return err
		}
		logger.FromContext(ctx).Info("new copy handed to queued reader", logger.Data{
			"book_id":     bookID,
			"instance_id": instance.ID,
			"borrower_id": next.BorrowerID,
		})
		return svc.handOff(ctx, tx, instance, next, now)
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func (svc *Service) RetrieveInstance(ctx context.Context, id int) (*models.BookInstance, error) {
	instance := &models.BookInstance{}
	err := svc.db.NewSelect().
		Model(instance).
		Relation("Book").
		Relation("Borrower").
		Where("bi.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book instance")
		}
		return nil, errors.WithStack(err)
	}
	return instance, nil
}

func (svc *Service) ListInstances(ctx context.Context, opts ListInstancesOptions) ([]*models.BookInstance, int, error) {
	instances := []*models.BookInstance{}

	q := svc.db.NewSelect().
		Model(&instances).
		Relation("Book").
		Relation("Borrower").
		Order("bi.id ASC")

	if opts.BookID != nil {
		q = q.Where("bi.book_id = ?", *opts.BookID)
	}
	if opts.Status != nil {
		q = q.Where("bi.status = ?", *opts.Status)
	}
	if opts.BorrowerID != nil {
		q = q.Where("bi.borrower_id = ?", *opts.BorrowerID)
	}
	if opts.Overdue != nil {
		if *opts.Overdue {
			q = q.Where("bi.status = ? AND bi.due_date < ?", models.InstanceStatusBorrowed, svc.now())
		} else {
			q = q.Where("NOT (bi.status = ? AND bi.due_date < ?)", models.InstanceStatusBorrowed, svc.now())
		}
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
	return instances, total, nil
}

// ListOverdue returns every copy that is out past its due date, the most
// overdue first.
func (svc *Service) ListOverdue(ctx context.Context) ([]*models.BookInstance, error) {
	instances := []*models.BookInstance{}
	err := svc.db.NewSelect().
		Model(&instances).
		Relation("Book").
		Relation("Borrower").
		Where("bi.status = ?", models.InstanceStatusBorrowed).
		Where("bi.due_date < ?", svc.now()).
		Order("bi.due_date ASC", "bi.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return instances, nil
}

// DeleteInstance removes a copy that is on the shelf.
func (svc *Service) DeleteInstance(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		instance := &models.BookInstance{}
		err := tx.NewSelect().
			Model(instance).
			Where("bi.id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book instance")
			}
			return errors.WithStack(err)
		}
		if err := lockBook(ctx, tx, instance.BookID); err != nil {
			return err
		}
		if instance.Status == models.InstanceStatusBorrowed {
			return errcodes.Conflict(msgStillBorrowed)
		}

		_, err = tx.NewDelete().
			Model(instance).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
}
