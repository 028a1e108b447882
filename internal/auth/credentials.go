package auth

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"election_portal/internal/dao"
	"election_portal/internal/models"
)

var (
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWeakPassword is returned for passwords shorter than MinPasswordLength.
	ErrWeakPassword = errors.New("password too short")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password too long")
)

const (
	// MinPasswordLength is the shortest password accepted at registration.
	MinPasswordLength = 5
	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
)

// CredentialService verifies and registers username/password pairs against
// bcrypt digests stored in the accounts table.
type CredentialService struct {
	accounts *dao.AccountDao
	cost     int
}

func NewCredentialService(accounts *dao.AccountDao, cost int) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialService{accounts: accounts, cost: cost}
}

// WithDao returns a copy of s that persists through accounts, typically a
// dao bound to an open transaction.
func (s *CredentialService) WithDao(accounts *dao.AccountDao) *CredentialService {
	c := *s
	c.accounts = accounts
	return &c
}

// Hash returns the bcrypt digest of plaintext using the configured cost.
func (s *CredentialService) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// Verify looks the account up by username and compares the password.
// It returns dao.ErrNotFound for an unknown username and
// ErrInvalidCredentials for a wrong password.
func (s *CredentialService) Verify(ctx context.Context, username, plaintext string) (*models.Account, error) {
	account, err := s.accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordDigest), []byte(plaintext)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// Register hashes plaintext and persists a new account. link carries the
// role and the voter or candidate the account belongs to.
func (s *CredentialService) Register(ctx context.Context, username, plaintext string, link models.Account) (*models.Account, error) {
	if len(plaintext) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(plaintext) > MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}
	digest, err := s.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	account := link
	account.Username = username
	account.PasswordDigest = digest
	if err := s.accounts.CreateAccount(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// EnsureAdmin creates an admin account for username unless one already
// exists. It reports whether an account was created.
func (s *CredentialService) EnsureAdmin(ctx context.Context, username, plaintext string) (bool, error) {
	exists, err := s.accounts.AccountExists(ctx, username)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.Register(ctx, username, plaintext, models.Account{Role: models.RoleAdmin}); err != nil {
		return false, errors.Wrap(err, "create admin account")
	}
	return true, nil
}
