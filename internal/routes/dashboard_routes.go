package routes

import (
	"github.com/gin-gonic/gin"

	"election_portal/internal/controllers"
)

// DashboardRoutes registers the read-only reporting pages.
func DashboardRoutes(r *gin.Engine, deps controllers.Deps) {
	dashboard := controllers.NewDashboardController(deps)
	r.GET("/dashboard", dashboard.Dashboard)
	r.GET("/candidates", dashboard.ListCandidates)
	r.GET("/voters", dashboard.ListVoters)
}
