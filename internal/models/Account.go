package models

import "gorm.io/gorm"

// Account is the credential pair used for login. Exactly one of VoterID or
// CandidateID is set, depending on the role chosen at registration.
type Account struct {
	gorm.Model
	Username       string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordDigest string `json:"-" gorm:"not null"`
	Role           Role   `json:"role" gorm:"not null;default:1"`

	VoterID     *uint `json:"voter_id,omitempty" gorm:"index"`
	CandidateID *uint `json:"candidate_id,omitempty" gorm:"index"`
}
