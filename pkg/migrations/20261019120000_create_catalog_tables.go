package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			`CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				username TEXT NOT NULL COLLATE NOCASE,
				email TEXT NOT NULL COLLATE NOCASE,
				nickname TEXT,
				password_hash TEXT NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				is_staff BOOLEAN NOT NULL DEFAULT FALSE,
				is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
				last_login_at TIMESTAMPTZ
			)`,
			`CREATE UNIQUE INDEX ux_users_username ON users (username COLLATE NOCASE)`,
			`CREATE UNIQUE INDEX ux_users_email ON users (email COLLATE NOCASE)`,
			`CREATE TABLE auth_tokens (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL,
				expires_at TIMESTAMPTZ NOT NULL,
				user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				token_key TEXT NOT NULL,
				digest TEXT NOT NULL UNIQUE
			)`,
			`CREATE INDEX ix_auth_tokens_user_id ON auth_tokens (user_id)`,
			`CREATE INDEX ix_auth_tokens_token_key ON auth_tokens (token_key)`,
			`CREATE TABLE reset_tokens (
				token TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL,
				expires_at TIMESTAMPTZ NOT NULL,
				user_id INTEGER NOT NULL UNIQUE REFERENCES users (id) ON DELETE CASCADE
			)`,
			`CREATE TABLE authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX ux_authors_full_name ON authors (LOWER(first_name), LOWER(last_name))`,
			`CREATE TABLE categories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX ux_categories_name ON categories (LOWER(name))`,
			`CREATE TABLE publications (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX ux_publications_name ON publications (LOWER(name))`,
			`CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				isbn TEXT NOT NULL UNIQUE CHECK (length(isbn) = 13),
				title TEXT NOT NULL,
				summary TEXT NOT NULL DEFAULT '',
				pages INTEGER CHECK (pages IS NULL OR pages > 0),
				edition INTEGER CHECK (edition IS NULL OR edition > 0),
				publish_date TEXT CHECK (publish_date IS NULL OR date(publish_date) = publish_date),
				language TEXT NOT NULL DEFAULT 'en' CHECK (language IN ('en', 'zh', 'de', 'es', 'ja', 'ru', 'ar')),
				publication_id INTEGER NOT NULL REFERENCES publications (id) ON DELETE RESTRICT
			)`,
			`CREATE INDEX ix_books_language ON books (language)`,
			`CREATE INDEX ix_books_publication_id ON books (publication_id)`,
			`CREATE INDEX ix_books_title ON books (title COLLATE NOCASE)`,
			`CREATE TABLE book_authors (
				book_id INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
				author_id INTEGER NOT NULL REFERENCES authors (id) ON DELETE CASCADE,
				PRIMARY KEY (book_id, author_id)
			)`,
			`CREATE INDEX ix_book_authors_author_id ON book_authors (author_id)`,
			`CREATE TABLE book_categories (
				book_id INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
				category_id INTEGER NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
				PRIMARY KEY (book_id, category_id)
			)`,
			`CREATE INDEX ix_book_categories_category_id ON book_categories (category_id)`,
		)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			`DROP TABLE IF EXISTS book_categories`,
			`DROP TABLE IF EXISTS book_authors`,
			`DROP TABLE IF EXISTS books`,
			`DROP TABLE IF EXISTS publications`,
			`DROP TABLE IF EXISTS categories`,
			`DROP TABLE IF EXISTS authors`,
			`DROP TABLE IF EXISTS reset_tokens`,
			`DROP TABLE IF EXISTS auth_tokens`,
			`DROP TABLE IF EXISTS users`,
		)
	}

	Migrations.MustRegister(up, down)
}
