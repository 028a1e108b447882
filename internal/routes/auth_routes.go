package routes

import (
	"github.com/gin-gonic/gin"

	"election_portal/internal/controllers"
)

func AuthRoutes(r *gin.Engine, deps controllers.Deps) {
	auth := controllers.NewAuthController(deps)
	r.GET("/", auth.ShowLogin)
	r.POST("/login", auth.Login)
	r.GET("/logout", auth.Logout)
	r.POST("/logout", auth.Logout)
}
