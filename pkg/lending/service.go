// Package lending implements the borrow, return and reservation workflow for
// book copies.
//
// Every workflow call is a single transaction that starts by taking the
// book's write lock, so concurrent calls on the same book are serialized and
// the instance and reservation rows it reads can't change underneath it.
package lending

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/database"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

// Outcome says what a borrow or return did.
type Outcome string

const (
	OutcomeBorrowed  Outcome = "borrowed"
	OutcomeReserved  Outcome = "reserved"
	OutcomeHandedOff Outcome = "handed_off"
	OutcomeReturned  Outcome = "returned"
)

const (
	msgAlreadyBorrowed = "You have already borrowed this book."
	msgAlreadyReserved = "You have already reserved this book."
	msgNotBorrowed     = "You have not borrowed this book."
	msgStillBorrowed   = "This copy is currently borrowed and can't be deleted."
)

// BorrowResult holds the lent copy for OutcomeBorrowed, or the reservation
// and its 1-based place in the queue for OutcomeReserved.
type BorrowResult struct {
	Outcome       Outcome
	Instance      *models.BookInstance
	Reservation   *models.BookReservation
	QueuePosition int
}

// ReturnResult describes the returned copy after the return.
type ReturnResult struct {
	Outcome  Outcome
	Instance *models.BookInstance
	// NextBorrowerID is set when the copy went straight to the next
	// reservation in the queue.
	NextBorrowerID *int
}

// Service runs the borrow, return and reservation workflow and manages book
// copies.
type Service struct {
	db         *bun.DB
	loanPeriod time.Duration
	now        func() time.Time
}

// NewService creates a lending service that lends copies for loanPeriod.
func NewService(db *bun.DB, loanPeriod time.Duration) *Service {
	return &Service{
		db:         db,
		loanPeriod: loanPeriod,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Borrow lends the first available copy of the book to the user or, when
// every copy is out, puts the user in the book's reservation queue.
func (svc *Service) Borrow(ctx context.Context, user *models.User, bookID int) (*BorrowResult, error) {
	log := logger.FromContext(ctx)
	result := &BorrowResult{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockBook(ctx, tx, bookID); err != nil {
			return err
		}

		held, err := tx.NewSelect().
			Model((*models.BookInstance)(nil)).
			Where("bi.book_id = ?", bookID).
			Where("bi.borrower_id = ?", user.ID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if held {
			return errcodes.Conflict(msgAlreadyBorrowed)
		}

		now := svc.now()
		instance := &models.BookInstance{}
		err = tx.NewSelect().
			Model(instance).
			Where("bi.book_id = ?", bookID).
			Where("bi.status = ?", models.InstanceStatusAvailable).
			Order("bi.id ASC").
			Limit(1).
			Scan(ctx)
		if err == nil {
			if err := svc.lend(ctx, tx, instance, user.ID, now); err != nil {
				return err
			}
			// A reservation left over from an earlier wait is satisfied now.
			_, err = tx.NewDelete().
				Model((*models.BookReservation)(nil)).
				Where("book_id = ?", bookID).
				Where("borrower_id = ?", user.ID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			result.Outcome = OutcomeBorrowed
			result.Instance = instance
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return errors.WithStack(err)
		}

		reserved, err := tx.NewSelect().
			Model((*models.BookReservation)(nil)).
			Where("br.book_id = ?", bookID).
			Where("br.borrower_id = ?", user.ID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if reserved {
			return errcodes.Conflict(msgAlreadyReserved)
		}

		reservation := &models.BookReservation{
			CreatedAt:  now,
			BookID:     bookID,
			BorrowerID: user.ID,
		}
		if _, err := tx.NewInsert().Model(reservation).Returning("*").Exec(ctx); err != nil {
			if database.IsUniqueViolation(err) {
				return errcodes.Conflict(msgAlreadyReserved)
			}
			return errors.WithStack(err)
		}

		position, err := tx.NewSelect().
			Model((*models.BookReservation)(nil)).
			Where("br.book_id = ?", bookID).
			Where("(br.created_at < ?) OR (br.created_at = ? AND br.id <= ?)", reservation.CreatedAt, reservation.CreatedAt, reservation.ID).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		result.Outcome = OutcomeReserved
		result.Reservation = reservation
		result.QueuePosition = position
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("borrow processed", logger.Data{"book_id": bookID, "user_id": user.ID, "outcome": result.Outcome})
	return result, nil
}

// Return takes the user's copy of the book back. If anyone is waiting for the
// book, the copy goes straight to the head of the queue and is never marked
// available in between.
func (svc *Service) Return(ctx context.Context, user *models.User, bookID int) (*ReturnResult, error) {
	log := logger.FromContext(ctx)
	result := &ReturnResult{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockBook(ctx, tx, bookID); err != nil {
			return err
		}

		instance := &models.BookInstance{}
		err := tx.NewSelect().
			Model(instance).
			Where("bi.book_id = ?", bookID).
			Where("bi.borrower_id = ?", user.ID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.BadRequest(msgNotBorrowed)
			}
			return errors.WithStack(err)
		}

		now := svc.now()
		next, err := nextReservation(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if next != nil {
			if err := svc.handOff(ctx, tx, instance, next, now); err != nil {
				return err
			}
			result.Outcome = OutcomeHandedOff
			result.Instance = instance
			result.NextBorrowerID = &next.BorrowerID
			return nil
		}

		instance.Release()
		instance.UpdatedAt = now
		if err := updateLoan(ctx, tx, instance); err != nil {
			return err
		}
		result.Outcome = OutcomeReturned
		result.Instance = instance
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := logger.Data{"book_id": bookID, "user_id": user.ID, "outcome": result.Outcome}
	if result.NextBorrowerID != nil {
		data["next_borrower_id"] = *result.NextBorrowerID
	}
	log.Info("return processed", data)
	return result, nil
}

// CancelReservation takes the user out of the book's queue.
func (svc *Service) CancelReservation(ctx context.Context, user *models.User, bookID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockBook(ctx, tx, bookID); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*models.BookReservation)(nil)).
			Where("book_id = ?", bookID).
			Where("borrower_id = ?", user.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Reservation")
		}
		return nil
	})
}

// ListReservations returns the book's queue, head first.
func (svc *Service) ListReservations(ctx context.Context, bookID int) ([]*models.BookReservation, error) {
	exists, err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("b.id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !exists {
		return nil, errcodes.NotFound("Book")
	}

	reservations := []*models.BookReservation{}
	err = svc.db.NewSelect().
		Model(&reservations).
		Relation("Borrower").
		Where("br.book_id = ?", bookID).
		Order("br.created_at ASC", "br.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return reservations, nil
}

// lockBook takes the book's write lock for the rest of the transaction with a
// no-op update. A missing book is NotFound.
func lockBook(ctx context.Context, tx bun.Tx, bookID int) error {
	res, err := tx.NewUpdate().
		Model((*models.Book)(nil)).
		Set("updated_at = updated_at").
		Where("id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

// nextReservation returns the head of the book's queue, or nil when nobody is
// waiting. Reservations of users that already hold a copy are skipped.
func nextReservation(ctx context.Context, tx bun.Tx, bookID int) (*models.BookReservation, error) {
	reservation := &models.BookReservation{}
	err := tx.NewSelect().
		Model(reservation).
		Where("br.book_id = ?", bookID).
		Where("NOT EXISTS (SELECT 1 FROM book_instances AS held WHERE held.book_id = br.book_id AND held.borrower_id = br.borrower_id)").
		Order("br.created_at ASC", "br.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return reservation, nil
}

// handOff lends instance to the reservation's borrower and consumes the
// reservation.
func (svc *Service) handOff(ctx context.Context, tx bun.Tx, instance *models.BookInstance, reservation *models.BookReservation, now time.Time) error {
	if err := svc.lend(ctx, tx, instance, reservation.BorrowerID, now); err != nil {
		return err
	}
	_, err := tx.NewDelete().
		Model(reservation).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) lend(ctx context.Context, tx bun.Tx, instance *models.BookInstance, borrowerID int, now time.Time) error {
	instance.Lend(borrowerID, now.Add(svc.loanPeriod))
	instance.UpdatedAt = now
	return updateLoan(ctx, tx, instance)
}

func updateLoan(ctx context.Context, tx bun.Tx, instance *models.BookInstance) error {
	_, err := tx.NewUpdate().
		Model(instance).
		Column("borrower_id", "due_date", "status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict(msgAlreadyBorrowed)
		}
		return errors.WithStack(err)
	}
	return nil
}
