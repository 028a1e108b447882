package routes

import (
	"github.com/gin-gonic/gin"

	"election_portal/internal/controllers"
)

func VoteRoutes(r *gin.Engine, deps controllers.Deps) {
	vote := controllers.NewVoteController(deps)
	ballot := r.Group("/")
	ballot.Use(deps.Sessions.RequireAuth())
	{
		ballot.GET("/cast_vote", vote.ShowBallot)
		ballot.POST("/cast_vote_complete", vote.CastVote)
	}
}
