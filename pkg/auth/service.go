package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = 12
	// TokenKeyLength is how many leading characters of a token are stored in
	// the clear to find its row.
	TokenKeyLength = 8

	tokenBytes = 32
)

type Scheme string

const (
	SchemeUsername Scheme = "username"
	SchemeEmail    Scheme = "email"
)

// Service handles authentication operations.
type Service struct {
	db       *bun.DB
	tokenTTL time.Duration
	now      func() time.Time
}

// NewService creates a new auth service.
func NewService(db *bun.DB, tokenTTL time.Duration) *Service {
	return &Service{
		db:       db,
		tokenTTL: tokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate checks a password against the user found by identifier, which
// is a username or an email depending on scheme.
func (svc *Service) Authenticate(ctx context.Context, scheme Scheme, identifier, password string) (*models.User, error) {
	invalid := errcodes.AuthenticationFailed("Invalid username/password.")
	if scheme == SchemeEmail {
		invalid = errcodes.AuthenticationFailed("Invalid email/password.")
	}

	if identifier == "" || password == "" {
		return nil, invalid
	}

	user := &models.User{}
	q := svc.db.NewSelect().Model(user)
	// Both columns are COLLATE NOCASE.
	switch scheme {
	case SchemeEmail:
		q = q.Where("u.email = ?", identifier)
	default:
		q = q.Where("u.username = ?", identifier)
	}
	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Hash anyway so a missing user takes as long as a wrong password.
			_, _ = bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
			return nil, invalid
		}
		return nil, errors.WithStack(err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, errcodes.AuthenticationFailed("User inactive or deleted.")
	}

	return user, nil
}

// IssueToken creates a login token for user and records the login time. The
// plain token is only ever returned here.
func (svc *Service) IssueToken(ctx context.Context, user *models.User) (string, *models.AuthToken, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, errors.WithStack(err)
	}
	token := hex.EncodeToString(buf)

	now := svc.now()
	row := &models.AuthToken{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(svc.tokenTTL),
		UserID:    user.ID,
		TokenKey:  token[:TokenKeyLength],
		Digest:    digest(token),
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		user.LastLoginAt = &now
		_, err := tx.NewUpdate().
			Model(user).
			Column("last_login_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return "", nil, err
	}

	return token, row, nil
}

// VerifyToken resolves a token to its row and active user. Expired tokens are
// deleted when they are found.
func (svc *Service) VerifyToken(ctx context.Context, token string) (*models.AuthToken, error) {
	invalid := errcodes.AuthenticationFailed("Invalid token.")
	if len(token) != 2*tokenBytes {
		return nil, invalid
	}

	candidates := []*models.AuthToken{}
	err := svc.db.NewSelect().
		Model(&candidates).
		Relation("User").
		Where("at.token_key = ?", token[:TokenKeyLength]).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	want := digest(token)
	for _, candidate := range candidates {
		if subtle.ConstantTimeCompare([]byte(candidate.Digest), []byte(want)) != 1 {
			continue
		}
		if candidate.IsExpired(svc.now()) {
			if _, err := svc.db.NewDelete().Model(candidate).WherePK().Exec(ctx); err != nil {
				return nil, errors.WithStack(err)
			}
			return nil, errcodes.Unauthorized("Token has expired.")
		}
		if candidate.User == nil || !candidate.User.IsActive {
			return nil, errcodes.AuthenticationFailed("User inactive or deleted.")
		}
		return candidate, nil
	}

	return nil, invalid
}

// RevokeToken deletes a single token row.
func (svc *Service) RevokeToken(ctx context.Context, tokenID string) error {
	_, err := svc.db.NewDelete().
		Model((*models.AuthToken)(nil)).
		Where("id = ?", tokenID).
		Exec(ctx)
	return errors.WithStack(err)
}

// RevokeAllTokens deletes every token of the user and returns how many there
// were.
func (svc *Service) RevokeAllTokens(ctx context.Context, userID int) (int, error) {
	res, err := svc.db.NewDelete().
		Model((*models.AuthToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	return int(n), errors.WithStack(err)
}

// PurgeExpiredTokens deletes every expired token.
func (svc *Service) PurgeExpiredTokens(ctx context.Context) (int, error) {
	res, err := svc.db.NewDelete().
		Model((*models.AuthToken)(nil)).
		Where("expires_at <= ?", svc.now()).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	return int(n), errors.WithStack(err)
}

func digest(token string) string {
	sum := sha512.Sum512([]byte(token))
	return hex.EncodeToString(sum[:])
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
