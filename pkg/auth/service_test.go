package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
	"github.com/EliasObeid9-02/library-system/pkg/testutils"
)

func TestService_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, time.Hour)

	alice := testutils.CreateUser(t, db, "alice")
	testutils.CreateUser(t, db, "mallory", testutils.Inactive())

	t.Run("by username", func(tt *testing.T) {
		user, err := svc.Authenticate(ctx, SchemeUsername, "alice", testutils.DefaultPassword)
		require.NoError(tt, err)
		assert.Equal(tt, alice.ID, user.ID)
	})

	t.Run("by email, case-insensitively", func(tt *testing.T) {
		user, err := svc.Authenticate(ctx, SchemeEmail, "ALICE@example.com", testutils.DefaultPassword)
		require.NoError(tt, err)
		assert.Equal(tt, alice.ID, user.ID)
	})

	t.Run("wrong password", func(tt *testing.T) {
		_, err := svc.Authenticate(ctx, SchemeUsername, "alice", "nope")
		assert.ErrorIs(tt, err, errcodes.AuthenticationFailed("Invalid username/password."))

		_, err = svc.Authenticate(ctx, SchemeEmail, "alice@example.com", "nope")
		assert.ErrorIs(tt, err, errcodes.AuthenticationFailed("Invalid email/password."))
	})

	t.Run("unknown user", func(tt *testing.T) {
		_, err := svc.Authenticate(ctx, SchemeUsername, "nobody", "whatever")
		assert.ErrorIs(tt, err, errcodes.AuthenticationFailed("Invalid username/password."))
	})

	t.Run("inactive user", func(tt *testing.T) {
		_, err := svc.Authenticate(ctx, SchemeUsername, "mallory", testutils.DefaultPassword)
		assert.ErrorIs(tt, err, errcodes.AuthenticationFailed("User inactive or deleted."))
	})
}

func TestService_IssueAndVerifyToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, time.Hour)
	user := testutils.CreateUser(t, db, "reader")

	token, row, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, token[:TokenKeyLength], row.TokenKey)
	assert.NotContains(t, row.Digest, token)
	assert.NotNil(t, user.LastLoginAt)

	verified, err := svc.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, row.ID, verified.ID)
	require.NotNil(t, verified.User)
	assert.Equal(t, "reader", verified.User.Username)

	// Same key, different secret.
	forged := token[:len(token)-1] + "x"
	_, err = svc.VerifyToken(ctx, forged)
	assert.ErrorIs(t, err, errcodes.AuthenticationFailed("Invalid token."))

	_, err = svc.VerifyToken(ctx, "short")
	assert.ErrorIs(t, err, errcodes.AuthenticationFailed("Invalid token."))
}

func TestService_VerifyToken_DeletesExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, time.Hour)
	user := testutils.CreateUser(t, db, "reader")

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	token, _, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.VerifyToken(ctx, token)
	assert.ErrorIs(t, err, errcodes.Unauthorized("Token has expired."))

	count, err := db.NewSelect().Model((*models.AuthToken)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestService_VerifyToken_InactiveUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, time.Hour)
	user := testutils.CreateUser(t, db, "reader")

	token, _, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)

	_, err = db.NewUpdate().Model(user).Set("is_active = ?", false).WherePK().Exec(ctx)
	require.NoError(t, err)

	_, err = svc.VerifyToken(ctx, token)
	assert.ErrorIs(t, err, errcodes.AuthenticationFailed("User inactive or deleted."))
}

func TestService_RevokeTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, time.Hour)
	user := testutils.CreateUser(t, db, "reader")
	other := testutils.CreateUser(t, db, "other")

	first, firstRow, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)
	second, _, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)
	otherToken, _, err := svc.IssueToken(ctx, other)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(ctx, firstRow.ID))
	_, err = svc.VerifyToken(ctx, first)
	require.Error(t, err)
	_, err = svc.VerifyToken(ctx, second)
	require.NoError(t, err)

	n, err := svc.RevokeAllTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = svc.VerifyToken(ctx, second)
	require.Error(t, err)

	_, err = svc.VerifyToken(ctx, otherToken)
	assert.NoError(t, err)
}

func TestService_PurgeExpiredTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutils.NewDB(t)
	svc := NewService(db, time.Hour)
	user := testutils.CreateUser(t, db, "reader")

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	_, _, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	fresh, _, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	n, err := svc.PurgeExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.VerifyToken(ctx, fresh)
	assert.NoError(t, err)
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong horse", hash))
}
