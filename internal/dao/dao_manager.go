package dao

import (
	"context"

	"gorm.io/gorm"
)

type DaoManager struct {
	*AccountDao
	*VoterDao
	*CandidateDao
	*VoteDao
	*ReferenceDao

	db *gorm.DB
}

func NewDaoManager(db *gorm.DB) *DaoManager {
	return &DaoManager{
		AccountDao:   NewAccountDao(db),
		VoterDao:     NewVoterDao(db),
		CandidateDao: NewCandidateDao(db),
		VoteDao:      NewVoteDao(db),
		ReferenceDao: NewReferenceDao(db),
		db:           db,
	}
}

// Transaction runs fn with a manager whose daos all share one transaction.
// Any error returned by fn rolls the transaction back.
func (m *DaoManager) Transaction(ctx context.Context, fn func(tx *DaoManager) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewDaoManager(tx))
	})
}
