package dao

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"election_portal/internal/models"
)

type VoteDao struct {
	DB *gorm.DB
}

func NewVoteDao(db *gorm.DB) *VoteDao {
	return &VoteDao{
		DB: db,
	}
}

// CastVote marks the voter as having voted and records their vote in one
// transaction. The flag is only flipped when it was still false, so a
// resubmission returns ErrAlreadyVoted and leaves every tally untouched.
func (d *VoteDao) CastVote(ctx context.Context, voterID, candidateID uint) (*models.Vote, error) {
	var vote *models.Vote
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Candidate{}).Where("id = ?", candidateID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrUnknownCandidate
		}

		res := tx.Model(&models.Voter{}).
			Where("id = ? AND voted = ?", voterID, false).
			Update("voted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Model(&models.Voter{}).Where("id = ?", voterID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrAlreadyVoted
		}

		v := models.Vote{
			CandidateID: candidateID,
			Weight:      models.DefaultVoteWeight,
			VoterID:     voterID,
		}
		if err := tx.Omit(clause.Associations).Create(&v).Error; err != nil {
			if IsDuplicateKey(err) {
				return ErrAlreadyVoted
			}
			return errors.Wrap(err, "insert vote")
		}
		vote = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vote, nil
}

func (d *VoteDao) CountVotes(ctx context.Context) (int64, error) {
	var n int64
	err := d.DB.WithContext(ctx).Model(&models.Vote{}).Count(&n).Error
	return n, err
}

// HasVoted reports whether a vote row exists for the voter.
func (d *VoteDao) HasVoted(ctx context.Context, voterID uint) (bool, error) {
	var n int64
	err := d.DB.WithContext(ctx).Model(&models.Vote{}).Where("voter_id = ?", voterID).Count(&n).Error
	return n > 0, err
}
