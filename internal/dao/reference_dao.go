package dao

import (
	"context"

	"gorm.io/gorm"

	"election_portal/internal/models"
)

// ReferenceDao reads the static position and party tables.
type ReferenceDao struct {
	DB *gorm.DB
}

func NewReferenceDao(db *gorm.DB) *ReferenceDao {
	return &ReferenceDao{
		DB: db,
	}
}

func (d *ReferenceDao) ListPositions(ctx context.Context) ([]models.Position, error) {
	var positions []models.Position
	err := d.DB.WithContext(ctx).Order("id").Find(&positions).Error
	return positions, err
}

func (d *ReferenceDao) ListParties(ctx context.Context) ([]models.Party, error) {
	var parties []models.Party
	err := d.DB.WithContext(ctx).Order("id").Find(&parties).Error
	return parties, err
}

func (d *ReferenceDao) GetPosition(ctx context.Context, id uint) (*models.Position, error) {
	var p models.Position
	if err := d.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
