package models

import "gorm.io/gorm"

// Party is static reference data.
type Party struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}
