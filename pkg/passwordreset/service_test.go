package passwordreset

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
	"github.com/EliasObeid9-02/library-system/pkg/testutils"
	"github.com/EliasObeid9-02/library-system/pkg/users"
)

const newPassword = "violet-orchard-train"

var tokenRE = regexp.MustCompile(`/reset/([0-9a-f]{40})`)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func (m *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	match := tokenRE.FindStringSubmatch(m.sent[len(m.sent)-1].body)
	require.Len(t, match, 2)
	return match[1]
}

func newTestService(t *testing.T) (*Service, *fakeMailer, *bun.DB) {
	t.Helper()
	db := testutils.NewDB(t)
	mailer := &fakeMailer{}
	svc := NewService(db, users.NewService(db), mailer, time.Hour, "https://library.test/reset/%s")
	return svc, mailer, db
}

func countTokens(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*models.ResetToken)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestService_RequestReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, mailer, db := newTestService(t)
	testutils.CreateUser(t, db, "alice")

	err := svc.RequestReset(ctx, "nobody@example.com")
	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "No user with this email exists.", e.Fields["email"])

	require.NoError(t, svc.RequestReset(ctx, "alice@EXAMPLE.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)
	assert.Len(t, mailer.lastToken(t), 40)

	err = svc.RequestReset(ctx, "alice@example.com")
	assert.ErrorIs(t, err, errcodes.Conflict("password reset email already sent before. Retry later."))
	assert.Equal(t, 1, countTokens(t, db))
}

func TestService_RequestReset_ReplacesExpiredToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, mailer, db := newTestService(t)
	testutils.CreateUser(t, db, "alice")

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.RequestReset(ctx, "alice@example.com"))
	first := mailer.lastToken(t)

	now = now.Add(61 * time.Minute)
	require.NoError(t, svc.RequestReset(ctx, "alice@example.com"))
	second := mailer.lastToken(t)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, countTokens(t, db))
}

func TestService_RequestReset_MailFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, mailer, db := newTestService(t)
	testutils.CreateUser(t, db, "alice")

	mailer.err = errors.New("smtp down")
	err := svc.RequestReset(ctx, "alice@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Equal(t, 0, countTokens(t, db))

	// The failed attempt doesn't block a retry.
	mailer.err = nil
	require.NoError(t, svc.RequestReset(ctx, "alice@example.com"))
}

func TestService_Confirm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, mailer, db := newTestService(t)
	alice := testutils.CreateUser(t, db, "alice")

	err := svc.Confirm(ctx, "0000000000000000000000000000000000000000", newPassword, newPassword)
	assert.ErrorIs(t, err, errcodes.NotFound("Reset token"))

	require.NoError(t, svc.RequestReset(ctx, "alice@example.com"))
	token := mailer.lastToken(t)

	err = svc.Confirm(ctx, token, newPassword, "something-else")
	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "New passwords are not equal.", e.Fields["confirm_password"])

	err = svc.Confirm(ctx, token, "alice123", "alice123")
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Fields["new_password"], "too similar to the username")

	require.NoError(t, svc.Confirm(ctx, token, newPassword, newPassword))
	assert.Equal(t, 0, countTokens(t, db))

	stored := &models.User{}
	require.NoError(t, db.NewSelect().Model(stored).Where("id = ?", alice.ID).Scan(ctx))
	assert.True(t, auth.CheckPassword(newPassword, stored.PasswordHash))

	err = svc.Confirm(ctx, token, newPassword, newPassword)
	assert.ErrorIs(t, err, errcodes.NotFound("Reset token"))
}

func TestService_Confirm_Expired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, mailer, db := newTestService(t)
	testutils.CreateUser(t, db, "alice")

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	require.NoError(t, svc.RequestReset(ctx, "alice@example.com"))
	token := mailer.lastToken(t)

	now = now.Add(time.Hour)
	err := svc.Confirm(ctx, token, newPassword, newPassword)
	assert.ErrorIs(t, err, errcodes.Unauthorized("reset token is expired!"))
	assert.Equal(t, 0, countTokens(t, db))

	err = svc.Confirm(ctx, token, newPassword, newPassword)
	assert.ErrorIs(t, err, errcodes.NotFound("Reset token"))
}

func TestService_PurgeExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, db := newTestService(t)
	testutils.CreateUser(t, db, "alice")
	testutils.CreateUser(t, db, "bob")

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	require.NoError(t, svc.RequestReset(ctx, "alice@example.com"))
	now = now.Add(30 * time.Minute)
	require.NoError(t, svc.RequestReset(ctx, "bob@example.com"))

	now = now.Add(45 * time.Minute)
	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, countTokens(t, db))
}
