package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"election_portal/internal/dao"
	"election_portal/internal/models"
	"election_portal/internal/testutil"
)

func newService(t *testing.T) *CredentialService {
	t.Helper()
	return NewCredentialService(dao.NewAccountDao(testutil.NewDB(t)), bcrypt.MinCost)
}

func TestRegisterThenVerify(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	account, err := s.Register(ctx, "alice", "secret1", models.Account{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.NotEqual(t, "secret1", account.PasswordDigest)

	got, err := s.Verify(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestVerify_Failures(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	_, err := s.Register(ctx, "alice", "secret1", models.Account{Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = s.Verify(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Verify(ctx, "mallory", "secret1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestRegister_Rejections(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.Register(ctx, "alice", "1234", models.Account{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = s.Register(ctx, "alice", strings.Repeat("a", MaxPasswordLength+1), models.Account{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = s.Register(ctx, "alice", "secret1", models.Account{Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = s.Register(ctx, "alice", "secret2", models.Account{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, dao.ErrDuplicateUsername)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	created, err := s.EnsureAdmin(ctx, "root", "rootpass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureAdmin(ctx, "root", "other-pass")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = s.Verify(ctx, "root", "rootpass")
	assert.NoError(t, err)
}

func TestNewCredentialService_ClampsCost(t *testing.T) {
	s := NewCredentialService(nil, 99)
	assert.Equal(t, bcrypt.DefaultCost, s.cost)
}

func TestRegister_LongestPassword(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	password := strings.Repeat("a", MaxPasswordLength)

	_, err := s.Register(ctx, "alice", password, models.Account{Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = s.Verify(ctx, "alice", password)
	assert.NoError(t, err)
}
