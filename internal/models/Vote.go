package models

import "gorm.io/gorm"

// DefaultVoteWeight is the weight of a single ballot.
const DefaultVoteWeight = 1

// Vote links a Voter to the Candidate they chose. The unique index on
// VoterID keeps it to one row per voter.
type Vote struct {
	gorm.Model
	CandidateID uint      `json:"candidate_id" gorm:"not null;index"`
	Candidate   Candidate `json:"-" gorm:"foreignKey:CandidateID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Weight      int       `json:"weight" gorm:"not null;default:1"`
	VoterID     uint      `json:"voter_id" gorm:"uniqueIndex;not null"`
	Voter       Voter     `json:"-" gorm:"foreignKey:VoterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{&Position{}, &Party{}, &Voter{}, &Candidate{}, &Account{}, &Vote{}}
}
