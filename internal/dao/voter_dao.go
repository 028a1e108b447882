package dao

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"election_portal/internal/models"
)

type VoterDao struct {
	DB *gorm.DB
}

func NewVoterDao(db *gorm.DB) *VoterDao {
	return &VoterDao{
		DB: db,
	}
}

func (d *VoterDao) CreateVoter(ctx context.Context, v *models.Voter) error {
	err := d.DB.WithContext(ctx).Omit(clause.Associations).Create(v).Error
	if IsDuplicateKey(err) {
		return ErrDuplicateUsername
	}
	return errors.Wrap(err, "create voter")
}

func (d *VoterDao) GetVoterByID(ctx context.Context, id uint) (*models.Voter, error) {
	var v models.Voter
	if err := d.DB.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (d *VoterDao) ListVoters(ctx context.Context) ([]models.Voter, error) {
	var voters []models.Voter
	err := d.DB.WithContext(ctx).Order("id").Find(&voters).Error
	return voters, err
}

func (d *VoterDao) CountVoters(ctx context.Context) (int64, error) {
	var n int64
	err := d.DB.WithContext(ctx).Model(&models.Voter{}).Count(&n).Error
	return n, err
}
