package dao

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"election_portal/internal/models"
)

type CandidateDao struct {
	DB *gorm.DB
}

func NewCandidateDao(db *gorm.DB) *CandidateDao {
	return &CandidateDao{
		DB: db,
	}
}

// CreateCandidate inserts c after checking its position and party exist.
func (d *CandidateDao) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	db := d.DB.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Position{}).Where("id = ?", c.PositionID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrUnknownReference
	}
	if err := db.Model(&models.Party{}).Where("id = ?", c.PartyID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrUnknownReference
	}

	return errors.Wrap(db.Omit(clause.Associations).Create(c).Error, "create candidate")
}

func (d *CandidateDao) GetCandidateByID(ctx context.Context, id uint) (*models.Candidate, error) {
	var c models.Candidate
	if err := d.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (d *CandidateDao) ListCandidatesByPosition(ctx context.Context, positionID uint) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := d.DB.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("id").
		Find(&candidates).Error
	return candidates, err
}

const candidateResultsQuery = `
SELECT
	candidates.id AS candidate_id,
	candidates.first_name,
	candidates.middle_name,
	candidates.last_name,
	candidates.photo_path,
	positions.label AS position_label,
	parties.name AS party_name,
	COALESCE(SUM(votes.weight), 0) AS vote_total
FROM candidates
INNER JOIN positions ON candidates.position_id = positions.id
INNER JOIN parties ON candidates.party_id = parties.id
LEFT JOIN votes ON votes.candidate_id = candidates.id AND votes.deleted_at IS NULL
WHERE candidates.position_id = ? AND candidates.deleted_at IS NULL
GROUP BY
	candidates.id, candidates.first_name, candidates.middle_name, candidates.last_name,
	candidates.photo_path, positions.label, parties.name
ORDER BY vote_total DESC, candidates.id
`

// CandidateResults tallies every candidate for a position. Candidates with
// no votes are included with a zero total.
func (d *CandidateDao) CandidateResults(ctx context.Context, positionID uint) ([]models.CandidateResult, error) {
	var results []models.CandidateResult
	if err := d.DB.WithContext(ctx).Raw(candidateResultsQuery, positionID).Scan(&results).Error; err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Name = results[i].FullName()
	}
	return results, nil
}
