package routes

import (
	"io"
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"election_portal/internal/controllers"
	"election_portal/internal/middleware"
	"election_portal/internal/upload"
	"election_portal/internal/views"
)

// SetupRouter builds the engine with every route registered. Request logs
// go to logWriter.
func SetupRouter(deps controllers.Deps, logWriter io.Writer) *gin.Engine {
	r := gin.New()

	// Recovery middleware
	r.Use(middleware.Recovery())

	// Request logging middleware
	if logWriter != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(logWriter),
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/health", "/metrics"}),
		))
	}

	r.SetHTMLTemplate(views.Templates())
	r.MaxMultipartMemory = deps.Photos.MaxBytes() + 1<<20

	SystemRoutes(r, deps)
	AuthRoutes(r, deps)
	RegistrationRoutes(r, deps)
	DashboardRoutes(r, deps)
	VoteRoutes(r, deps)

	return r
}

// SystemRoutes serves stored photos, liveness and metrics.
func SystemRoutes(r *gin.Engine, deps controllers.Deps) {
	r.Static("/"+upload.URLPrefix, deps.Photos.Dir())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
}
