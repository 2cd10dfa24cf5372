package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	InstanceStatusAvailable = "available"
	InstanceStatusBorrowed  = "borrowed"
)

type BookInstance struct {
	bun.BaseModel `bun:"table:book_instances,alias:bi"`

	ID         int        `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	BookID     int        `bun:",nullzero" json:"book_id"`
	BorrowerID *int       `json:"borrower_id"`
	DueDate    *time.Time `json:"due_date"`
	Status     string     `bun:",nullzero" json:"status"`

	Book     *Book `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Borrower *User `bun:"rel:belongs-to,join:borrower_id=id" json:"borrower,omitempty"`
}

// IsOverdue reports whether the instance is out on loan past its due date.
func (bi *BookInstance) IsOverdue(now time.Time) bool {
	if bi.Status != InstanceStatusBorrowed || bi.DueDate == nil {
		return false
	}
	return now.After(*bi.DueDate)
}

// Lend assigns the instance to borrowerID until due.
func (bi *BookInstance) Lend(borrowerID int, due time.Time) {
	bi.BorrowerID = &borrowerID
	bi.DueDate = &due
	bi.Status = InstanceStatusBorrowed
}

// Release puts the instance back on the shelf.
func (bi *BookInstance) Release() {
	bi.BorrowerID = nil
	bi.DueDate = nil
	bi.Status = InstanceStatusAvailable
}

type BookReservation struct {
	bun.BaseModel `bun:"table:book_reservations,alias:br"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	BookID     int       `bun:",nullzero" json:"book_id"`
	BorrowerID int       `bun:",nullzero" json:"borrower_id"`

	Borrower *User `bun:"rel:belongs-to,join:borrower_id=id" json:"borrower,omitempty"`
}
