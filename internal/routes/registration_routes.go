package routes

import (
	"github.com/gin-gonic/gin"

	"election_portal/internal/controllers"
)

func RegistrationRoutes(r *gin.Engine, deps controllers.Deps) {
	registration := controllers.NewRegistrationController(deps)
	r.GET("/complete_registration", registration.ShowRegistration)
	r.POST("/complete_registration", registration.LimitBody(), registration.CompleteRegistration)
}
