package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/database"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
	"github.com/EliasObeid9-02/library-system/pkg/passwords"
)

const (
	msgUsernameTaken     = "A user with that username already exists."
	msgEmailTaken        = "A user with that email already exists"
	msgPasswordIncorrect = "Password is incorrect."
)

// Service handles user operations.
type Service struct {
	db  *bun.DB
	now func() time.Time
}

// NewService creates a new users service.
func NewService(db *bun.DB) *Service {
	return &Service{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// RegisterOptions contains options for creating a user.
type RegisterOptions struct {
	Username        string
	Email           string
	Nickname        *string
	Password        string
	ConfirmPassword string
}

// Register creates a regular, active user.
func (svc *Service) Register(ctx context.Context, opts RegisterOptions) (*models.User, error) {
	return svc.create(ctx, opts, false)
}

// CreateSuperuser creates an active user with staff and superuser rights.
func (svc *Service) CreateSuperuser(ctx context.Context, opts RegisterOptions) (*models.User, error) {
	return svc.create(ctx, opts, true)
}

func (svc *Service) create(ctx context.Context, opts RegisterOptions, superuser bool) (*models.User, error) {
	opts.Email = NormalizeEmail(opts.Email)

	fields := newFieldErrors()
	if opts.Password != opts.ConfirmPassword {
		fields.add("confirm_password", "Passwords are not equal.")
	}
	attrs := passwords.Attributes{Username: opts.Username, Email: opts.Email}
	if opts.Nickname != nil {
		attrs.Nickname = *opts.Nickname
	}
	if problems := passwords.Validate(opts.Password, attrs); len(problems) > 0 {
		fields.add("password", strings.Join(problems, " "))
	}

	if err := svc.checkUnique(ctx, svc.db, opts.Username, opts.Email, 0, fields); err != nil {
		return nil, err
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := svc.now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     opts.Username,
		Email:        opts.Email,
		Nickname:     opts.Nickname,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}

	_, err = svc.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, uniqueViolationError(err)
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func (svc *Service) checkUnique(ctx context.Context, db bun.IDB, username, email string, excludeID int, fields *fieldErrors) error {
	if username != "" {
		exists, err := db.NewSelect().
			Model((*models.User)(nil)).
			Where("username = ?", username).
			Where("id != ?", excludeID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			fields.add("username", msgUsernameTaken)
		}
	}
	if email != "" {
		exists, err := db.NewSelect().
			Model((*models.User)(nil)).
			Where("email = ?", email).
			Where("id != ?", excludeID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			fields.add("email", msgEmailTaken)
		}
	}
	return nil
}

// Retrieve gets a user by username.
func (svc *Service) Retrieve(ctx context.Context, actor *models.User, username string) (*models.User, error) {
	if err := authorize(actionRetrieve, actor, nil); err != nil {
		return nil, err
	}
	return svc.retrieve(ctx, svc.db, username)
}

func (svc *Service) retrieve(ctx context.Context, db bun.IDB, username string) (*models.User, error) {
	user := &models.User{}
	err := db.NewSelect().
		Model(user).
		Where("u.username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// ListOptions contains options for listing users.
type ListOptions struct {
	Limit  int
	Offset int
	Search *string
}

// List returns a page of users ordered by username.
func (svc *Service) List(ctx context.Context, actor *models.User, opts ListOptions) ([]*models.User, int, error) {
	if err := authorize(actionList, actor, nil); err != nil {
		return nil, 0, err
	}

	users := []*models.User{}
	query := svc.db.NewSelect().
		Model(&users).
		Order("u.username ASC")

	if opts.Search != nil && *opts.Search != "" {
		pattern := "%" + *opts.Search + "%"
		query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("u.username LIKE ?", pattern).
				WhereOr("u.email LIKE ?", pattern).
				WhereOr("u.nickname LIKE ?", pattern)
		})
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	total, err := query.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return users, total, nil
}

// Delete removes a user. Users who still hold borrowed copies can't be
// deleted until they return them.
func (svc *Service) Delete(ctx context.Context, actor *models.User, username string) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		user, err := svc.retrieve(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := authorize(actionDelete, actor, user); err != nil {
			return err
		}

		borrowing, err := tx.NewSelect().
			Model((*models.BookInstance)(nil)).
			Where("borrower_id = ?", user.ID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if borrowing {
			return errcodes.Conflict("This user has borrowed books that must be returned first.")
		}

		_, err = tx.NewDelete().Model(user).WherePK().Exec(ctx)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return errcodes.Conflict("This user has borrowed books that must be returned first.")
			}
			return errors.WithStack(err)
		}
		return nil
	})
}

// ChangeEmail sets a new email after re-checking the owner's password.
func (svc *Service) ChangeEmail(ctx context.Context, actor *models.User, username, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	var user *models.User
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = svc.retrieve(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := authorize(actionChangeEmail, actor, user); err != nil {
			return err
		}

		fields := newFieldErrors()
		if !auth.CheckPassword(password, user.PasswordHash) {
			fields.add("password", msgPasswordIncorrect)
		}
		if err := svc.checkUnique(ctx, tx, "", email, user.ID, fields); err != nil {
			return err
		}
		if err := fields.err(); err != nil {
			return err
		}

		user.Email = email
		user.UpdatedAt = svc.now()
		_, err = tx.NewUpdate().
			Model(user).
			Column("email", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return errcodes.FieldValidationError("email", msgEmailTaken)
			}
			return errors.WithStack(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePasswordOptions contains the fields of a password change request.
type ChangePasswordOptions struct {
	Password        string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword sets a new password after re-checking the current one.
func (svc *Service) ChangePassword(ctx context.Context, actor *models.User, username string, opts ChangePasswordOptions) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		user, err := svc.retrieve(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := authorize(actionChangePassword, actor, user); err != nil {
			return err
		}

		if !auth.CheckPassword(opts.Password, user.PasswordHash) {
			return errcodes.FieldValidationError("password", msgPasswordIncorrect)
		}
		if err := ValidateNewPassword(user, opts.NewPassword, opts.ConfirmPassword); err != nil {
			return err
		}
		return svc.SetPassword(ctx, tx, user, opts.NewPassword)
	})
}

// ValidateNewPassword checks a new password and its confirmation against the
// strength rules for user.
func ValidateNewPassword(user *models.User, newPassword, confirmPassword string) error {
	fields := newFieldErrors()
	attrs := passwords.Attributes{Username: user.Username, Email: user.Email}
	if user.Nickname != nil {
		attrs.Nickname = *user.Nickname
	}
	if problems := passwords.Validate(newPassword, attrs); len(problems) > 0 {
		fields.add("new_password", strings.Join(problems, " "))
	}
	if newPassword != confirmPassword {
		fields.add("confirm_password", "New passwords are not equal.")
	}
	return fields.err()
}

// SetPassword hashes and stores a password that has already been validated.
func (svc *Service) SetPassword(ctx context.Context, db bun.IDB, user *models.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = svc.now()
	_, err = db.NewUpdate().
		Model(user).
		Column("password_hash", "updated_at").
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// Promote gives a user staff rights and returns the outcome message.
func (svc *Service) Promote(ctx context.Context, actor *models.User, username string) (string, error) {
	return svc.setStaff(ctx, actor, username, actionPromote)
}

// Demote removes a user's staff rights. Superusers can't be demoted.
func (svc *Service) Demote(ctx context.Context, actor *models.User, username string) (string, error) {
	return svc.setStaff(ctx, actor, username, actionDemote)
}

func (svc *Service) setStaff(ctx context.Context, actor *models.User, username string, a action) (string, error) {
	var msg string
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		user, err := svc.retrieve(ctx, tx, username)
		if err != nil {
			return err
		}
		if err := authorize(a, actor, user); err != nil {
			return err
		}

		switch a {
		case actionPromote:
			if user.IsStaff {
				return errcodes.Conflict("This user is already a staff member.")
			}
			user.IsStaff = true
			msg = "User promoted to staff member."
		case actionDemote:
			if user.IsSuperuser {
				return errcodes.Conflict("This user is the main admin, can't demote.")
			}
			if !user.IsStaff {
				return errcodes.Conflict("This user is not a staff member.")
			}
			user.IsStaff = false
			msg = "User demoted."
		default:
			return errors.Errorf("unexpected staff action %d", a)
		}

		user.UpdatedAt = svc.now()
		_, err = tx.NewUpdate().
			Model(user).
			Column("is_staff", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}

// NormalizeEmail lower-cases the domain part of an address.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

func uniqueViolationError(err error) error {
	if strings.Contains(err.Error(), "email") {
		return errcodes.FieldValidationError("email", msgEmailTaken)
	}
	return errcodes.FieldValidationError("username", msgUsernameTaken)
}

type fieldErrors struct {
	order  []string
	fields map[string]string
}

func newFieldErrors() *fieldErrors {
	return &fieldErrors{fields: map[string]string{}}
}

func (f *fieldErrors) add(field, msg string) {
	if _, ok := f.fields[field]; ok {
		return
	}
	f.order = append(f.order, field)
	f.fields[field] = msg
}

func (f *fieldErrors) err() error {
	if len(f.order) == 0 {
		return nil
	}
	return errcodes.FieldsValidationError(f.order, f.fields)
}
