package controllers

import (
	"election_portal/internal/auth"
	"election_portal/internal/dao"
	"election_portal/internal/metrics"
	"election_portal/internal/middleware"
	"election_portal/internal/upload"
)

// Deps bundles the collaborators shared by every controller.
type Deps struct {
	Daos        *dao.DaoManager
	Credentials *auth.CredentialService
	Sessions    *middleware.SessionManager
	Photos      *upload.PhotoStore
	Metrics     *metrics.MetricService

	// BallotPosition is the position voters choose a candidate for and
	// the default position of the dashboard and candidate list.
	BallotPosition uint
}
