package models

import "gorm.io/gorm"

// Voter is a registered person eligible to cast one vote.
type Voter struct {
	gorm.Model
	FirstName   string `json:"first_name" gorm:"not null"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	Role        Role   `json:"role" gorm:"not null;default:1"`
	DateOfBirth string `json:"date_of_birth"`
	Phone       string `json:"phone"`
	PhotoPath   string `json:"photo_path"`
	Username    string `json:"username" gorm:"uniqueIndex;not null"`
	Voted       bool   `json:"voted" gorm:"not null;default:false"`
}

// FullName joins the non-empty name parts.
func (v Voter) FullName() string {
	return joinName(v.FirstName, v.MiddleName, v.LastName)
}
