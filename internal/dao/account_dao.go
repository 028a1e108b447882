package dao

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"election_portal/internal/models"
)

type AccountDao struct {
	DB *gorm.DB
}

func NewAccountDao(db *gorm.DB) *AccountDao {
	return &AccountDao{
		DB: db,
	}
}

// CreateAccount inserts a, mapping a username collision to ErrDuplicateUsername.
func (d *AccountDao) CreateAccount(ctx context.Context, a *models.Account) error {
	err := d.DB.WithContext(ctx).Omit(clause.Associations).Create(a).Error
	if IsDuplicateKey(err) {
		return ErrDuplicateUsername
	}
	return errors.Wrap(err, "create account")
}

func (d *AccountDao) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var a models.Account
	err := d.DB.WithContext(ctx).Where("username = ?", username).Take(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (d *AccountDao) AccountExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := d.DB.WithContext(ctx).Model(&models.Account{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}
