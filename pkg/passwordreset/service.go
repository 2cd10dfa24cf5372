package passwordreset

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/database"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/mail"
	"github.com/EliasObeid9-02/library-system/pkg/models"
	"github.com/EliasObeid9-02/library-system/pkg/users"
)

const (
	tokenBytes = 20

	msgAlreadySent = "password reset email already sent before. Retry later."
	msgExpired     = "reset token is expired!"
)

type Service struct {
	db          *bun.DB
	userService *users.Service
	mailer      mail.Mailer
	ttl         time.Duration
	resetURL    string
	now         func() time.Time
}

// NewService builds the service. resetURL is a format string with a single
// %s verb for the token.
func NewService(db *bun.DB, userService *users.Service, mailer mail.Mailer, ttl time.Duration, resetURL string) *Service {
	return &Service{
		db:          db,
		userService: userService,
		mailer:      mailer,
		ttl:         ttl,
		resetURL:    resetURL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RequestReset issues a reset token for the account with this email and mails
// it. A user can only hold one live token at a time.
func (svc *Service) RequestReset(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)
	email = users.NormalizeEmail(email)

	user := &models.User{}
	err := svc.db.NewSelect().
		Model(user).
		Where("u.email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.FieldValidationError("email", "No user with this email exists.")
		}
		return errors.WithStack(err)
	}

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return errors.WithStack(err)
	}
	now := svc.now()
	token := &models.ResetToken{
		Token:     hex.EncodeToString(buf),
		CreatedAt: now,
		ExpiresAt: now.Add(svc.ttl),
		UserID:    user.ID,
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing := &models.ResetToken{}
		err := tx.NewSelect().
			Model(existing).
			Where("rt.user_id = ?", user.ID).
			Scan(ctx)
		switch {
		case err == nil:
			if !existing.IsExpired(now) {
				return errcodes.Conflict(msgAlreadySent)
			}
			if _, err := tx.NewDelete().Model(existing).WherePK().Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
		case !errors.Is(err, sql.ErrNoRows):
			return errors.WithStack(err)
		}

		if _, err := tx.NewInsert().Model(token).Exec(ctx); err != nil {
			if database.IsUniqueViolation(err) {
				return errcodes.Conflict(msgAlreadySent)
			}
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n\nIf you didn't ask for this, you can ignore this email.\n",
		user.Username, svc.ttl, fmt.Sprintf(svc.resetURL, token.Token),
	)
	if err := svc.mailer.Send(ctx, user.Email, "Password reset", body); err != nil {
		if _, delErr := svc.db.NewDelete().Model(token).WherePK().Exec(ctx); delErr != nil {
			log.Err(delErr).Error("failed to delete unsent reset token")
		}
		return err
	}

	log.Info("password reset requested", logger.Data{"user_id": user.ID})
	return nil
}

// Confirm sets a new password using a reset token and consumes the token.
// Expired tokens are deleted and rejected.
func (svc *Service) Confirm(ctx context.Context, tokenValue, newPassword, confirmPassword string) error {
	token := &models.ResetToken{}
	err := svc.db.NewSelect().
		Model(token).
		Relation("User").
		Where("rt.token = ?", tokenValue).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Reset token")
		}
		return errors.WithStack(err)
	}

	if token.IsExpired(svc.now()) {
		if _, err := svc.db.NewDelete().Model(token).WherePK().Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		return errcodes.Unauthorized(msgExpired)
	}

	if err := users.ValidateNewPassword(token.User, newPassword, confirmPassword); err != nil {
		return err
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model(token).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		// Someone else confirmed it between the read and now.
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Reset token")
		}
		return svc.userService.SetPassword(ctx, tx, token.User, newPassword)
	})
}

// PurgeExpired deletes every expired reset token.
func (svc *Service) PurgeExpired(ctx context.Context) (int, error) {
	res, err := svc.db.NewDelete().
		Model((*models.ResetToken)(nil)).
		Where("expires_at <= ?", svc.now()).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	return int(n), errors.WithStack(err)
}
