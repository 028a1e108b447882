package dao

import (
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername is returned when an account or voter username is taken.
	ErrDuplicateUsername = errors.New("user name is already taken")
	// ErrAlreadyVoted is returned on a second vote by the same voter.
	ErrAlreadyVoted = errors.New("voter has already cast a vote")
	// ErrUnknownCandidate is returned when a vote names a candidate that does not exist.
	ErrUnknownCandidate = errors.New("unknown candidate")
	// ErrUnknownReference is returned when a position or party id does not exist.
	ErrUnknownReference = errors.New("unknown position or party")
)

// postgres unique_violation
const pqUniqueViolation = "23505"

// IsDuplicateKey reports whether err is a unique-constraint violation from
// any of the supported drivers.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
