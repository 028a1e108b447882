package models

import (
	"strings"

	"gorm.io/gorm"
)

// Candidate is a registrant contesting a Position under a Party.
type Candidate struct {
	gorm.Model
	FirstName  string `json:"first_name" gorm:"not null"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	PhotoPath  string `json:"photo_path"`

	PositionID uint     `json:"position_id" gorm:"not null;index"`
	Position   Position `json:"-" gorm:"foreignKey:PositionID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	PartyID    uint     `json:"party_id" gorm:"not null;index"`
	Party      Party    `json:"-" gorm:"foreignKey:PartyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}

func (c Candidate) FullName() string {
	return joinName(c.FirstName, c.MiddleName, c.LastName)
}

// CandidateResult is one dashboard row: a candidate with its tally.
type CandidateResult struct {
	CandidateID uint   `json:"candidate_id"`
	Name        string `json:"name" gorm:"-"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	PhotoPath   string `json:"photo_path"`
	Position    string `json:"position" gorm:"column:position_label"`
	Party       string `json:"party" gorm:"column:party_name"`
	Votes       int64  `json:"votes" gorm:"column:vote_total"`
}

func (r CandidateResult) FullName() string {
	return joinName(r.FirstName, r.MiddleName, r.LastName)
}

func joinName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
