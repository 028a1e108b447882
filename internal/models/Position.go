package models

import "gorm.io/gorm"

// Position is an electoral office candidates run for, e.g. "President".
type Position struct {
	gorm.Model
	Label string `json:"label" gorm:"uniqueIndex;not null"`
}
