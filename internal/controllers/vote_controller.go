package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"election_portal/internal/dao"
	"election_portal/internal/middleware"
	"election_portal/internal/models"
)

// BallotView feeds the voting page.
type BallotView struct {
	UserID     uint               `json:"user_id"`
	Voted      bool               `json:"voted"`
	Candidates []models.Candidate `json:"candidates"`
}

type voteForm struct {
	UserID      uint `form:"userId" json:"userId"`
	CandidateID uint `form:"candidate_id" json:"candidate_id"`
}

type VoteController struct {
	Deps
}

func NewVoteController(d Deps) *VoteController {
	return &VoteController{Deps: d}
}

// ShowBallot handles GET /cast_vote[?user_id=]
func (h *VoteController) ShowBallot(c *gin.Context) {
	claims, ok := middleware.SessionFromContext(c)
	if !ok || claims.VoterID == 0 {
		forbidden(c)
		return
	}

	voterID := claims.VoterID
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, fieldError("user_id", "Invalid user_id"), "ShowBallot: invalid user id")
			return
		}
		if uint(id) != claims.VoterID {
			forbidden(c)
			return
		}
	}

	ctx := c.Request.Context()
	voter, err := h.Daos.GetVoterByID(ctx, voterID)
	if err != nil {
		respondError(c, err, "ShowBallot: error fetching voter")
		return
	}
	candidates, err := h.Daos.ListCandidatesByPosition(ctx, h.BallotPosition)
	if err != nil {
		respondError(c, err, "ShowBallot: error fetching candidates")
		return
	}

	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: "vote.html",
		Data: BallotView{
			UserID:     voter.ID,
			Voted:      voter.Voted,
			Candidates: candidates,
		},
	})
}

// CastVote handles POST /cast_vote_complete. The submitted userId must be
// the voter owning the session.
func (h *VoteController) CastVote(c *gin.Context) {
	var form voteForm
	if err := c.ShouldBind(&form); err != nil || form.UserID == 0 || form.CandidateID == 0 {
		h.Metrics.IncVoteRejected("missing_parameter")
		respondError(c, errMissingParameter, "CastVote: missing parameter")
		return
	}

	claims, ok := middleware.SessionFromContext(c)
	if !ok || claims.VoterID == 0 || claims.VoterID != form.UserID {
		h.Metrics.IncVoteRejected("forbidden")
		forbidden(c)
		return
	}

	ctx := c.Request.Context()
	candidate, err := h.Daos.GetCandidateByID(ctx, form.CandidateID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			err = dao.ErrUnknownCandidate
		}
		h.rejected(err)
		respondError(c, err, "CastVote: error fetching candidate")
		return
	}
	if candidate.PositionID != h.BallotPosition {
		h.Metrics.IncVoteRejected("unknown_candidate")
		respondError(c, dao.ErrUnknownCandidate, "CastVote: candidate not on ballot")
		return
	}

	vote, err := h.Daos.CastVote(ctx, form.UserID, form.CandidateID)
	if err != nil {
		h.rejected(err)
		respondError(c, err, "CastVote: error recording vote")
		return
	}

	h.Metrics.IncVoteCast()
	logrus.WithFields(logrus.Fields{
		"vote_id":      vote.ID,
		"candidate_id": vote.CandidateID,
	}).Info("vote recorded")

	c.Redirect(http.StatusSeeOther, "/voters")
}

func (h *VoteController) rejected(err error) {
	switch {
	case errors.Is(err, dao.ErrUnknownCandidate):
		h.Metrics.IncVoteRejected("unknown_candidate")
	case errors.Is(err, dao.ErrAlreadyVoted):
		h.Metrics.IncVoteRejected("already_voted")
	case errors.Is(err, dao.ErrNotFound):
		h.Metrics.IncVoteRejected("unknown_voter")
	}
}
