package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			// The CHECK keeps status and borrower in lockstep: a borrowed copy
			// always has a borrower and a due date, an available one has neither.
			`CREATE TABLE book_instances (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
				borrower_id INTEGER REFERENCES users (id) ON DELETE RESTRICT,
				due_date TIMESTAMPTZ,
				status TEXT NOT NULL DEFAULT 'available',
				UNIQUE (book_id, borrower_id),
				CHECK (
					(status = 'available' AND borrower_id IS NULL AND due_date IS NULL) OR
					(status = 'borrowed' AND borrower_id IS NOT NULL AND due_date IS NOT NULL)
				)
			)`,
			`CREATE INDEX ix_book_instances_book_id_status ON book_instances (book_id, status)`,
			`CREATE INDEX ix_book_instances_borrower_id ON book_instances (borrower_id)`,
			`CREATE INDEX ix_book_instances_due_date ON book_instances (due_date)`,
			`CREATE TABLE book_reservations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
				borrower_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				UNIQUE (book_id, borrower_id)
			)`,
			`CREATE INDEX ix_book_reservations_queue ON book_reservations (book_id, created_at, id)`,
			`CREATE TABLE reviews (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
				author_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				stars INTEGER NOT NULL CHECK (stars BETWEEN 1 AND 5),
				review TEXT NOT NULL DEFAULT '',
				UNIQUE (book_id, author_id)
			)`,
			`CREATE INDEX ix_reviews_book_id_stars ON reviews (book_id, stars)`,
		)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			`DROP TABLE IF EXISTS reviews`,
			`DROP TABLE IF EXISTS book_reservations`,
			`DROP TABLE IF EXISTS book_instances`,
		)
	}

	Migrations.MustRegister(up, down)
}
