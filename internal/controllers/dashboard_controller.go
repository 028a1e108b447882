package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"election_portal/internal/dao"
	"election_portal/internal/models"
)

// DashboardView is the point-in-time snapshot rendered on the dashboard.
type DashboardView struct {
	TotalRegVoters int64                    `json:"total_reg_voters"`
	TotalVote      int64                    `json:"total_vote"`
	PositionID     uint                     `json:"position_id"`
	CandidateInfo  []models.CandidateResult `json:"candidate_info"`
	Voters         []models.Voter           `json:"voters"`
	Parties        []models.Party           `json:"parties"`
}

type CandidatesView struct {
	Position   *models.Position   `json:"position"`
	Candidates []models.Candidate `json:"candidates"`
}

type VotersView struct {
	VotersData []models.Voter `json:"voters_data"`
}

type DashboardController struct {
	Deps
}

func NewDashboardController(d Deps) *DashboardController {
	return &DashboardController{Deps: d}
}

// Dashboard handles GET /dashboard[?position_id=]
func (h *DashboardController) Dashboard(c *gin.Context) {
	positionID, err := positionParam(c, h.BallotPosition)
	if err != nil {
		respondError(c, err, "Dashboard: invalid position")
		return
	}

	view, err := h.snapshot(c.Request.Context(), positionID)
	if err != nil {
		respondError(c, err, "Dashboard: error fetching data")
		return
	}
	renderDashboard(c, view)
}

// ListCandidates handles GET /candidates[?position_id=]
func (h *DashboardController) ListCandidates(c *gin.Context) {
	positionID, err := positionParam(c, h.BallotPosition)
	if err != nil {
		respondError(c, err, "ListCandidates: invalid position")
		return
	}

	ctx := c.Request.Context()
	position, err := h.Daos.GetPosition(ctx, positionID)
	if err != nil {
		respondError(c, err, "ListCandidates: error fetching position")
		return
	}
	candidates, err := h.Daos.ListCandidatesByPosition(ctx, positionID)
	if err != nil {
		respondError(c, err, "ListCandidates: error fetching candidates")
		return
	}

	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: "candidates.html",
		Data:     CandidatesView{Position: position, Candidates: candidates},
	})
}

// ListVoters handles GET /voters
func (h *DashboardController) ListVoters(c *gin.Context) {
	voters, err := h.Daos.ListVoters(c.Request.Context())
	if err != nil {
		respondError(c, err, "ListVoters: error fetching voters")
		return
	}

	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: "voters.html",
		Data:     VotersView{VotersData: voters},
	})
}

func (h *DashboardController) snapshot(ctx context.Context, positionID uint) (*DashboardView, error) {
	start := time.Now()
	view, err := buildDashboard(ctx, h.Daos, positionID)
	if err == nil {
		h.Metrics.ObserveDashboard(time.Since(start))
	}
	return view, err
}

func buildDashboard(ctx context.Context, daos *dao.DaoManager, positionID uint) (*DashboardView, error) {
	view := &DashboardView{PositionID: positionID}
	var err error

	if view.TotalRegVoters, err = daos.CountVoters(ctx); err != nil {
		return nil, err
	}
	if view.TotalVote, err = daos.CountVotes(ctx); err != nil {
		return nil, err
	}
	if view.CandidateInfo, err = daos.CandidateResults(ctx, positionID); err != nil {
		return nil, err
	}
	if view.Voters, err = daos.ListVoters(ctx); err != nil {
		return nil, err
	}
	if view.Parties, err = daos.ListParties(ctx); err != nil {
		return nil, err
	}
	if view.CandidateInfo == nil {
		view.CandidateInfo = []models.CandidateResult{}
	}
	return view, nil
}

func renderDashboard(c *gin.Context, view *DashboardView) {
	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: "dashboard.html",
		Data:     view,
	})
}
