package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"election_portal/internal/auth"
	"election_portal/internal/dao"
)

// LoginView feeds the login page.
type LoginView struct {
	Message string `json:"message,omitempty"`
}

type AuthController struct {
	Deps
}

func NewAuthController(d Deps) *AuthController {
	return &AuthController{Deps: d}
}

// ShowLogin handles GET /
func (h *AuthController) ShowLogin(c *gin.Context) {
	renderLogin(c, http.StatusOK, LoginView{})
}

// Login handles POST /login. On success it sets the session cookie and
// renders the dashboard.
func (h *AuthController) Login(c *gin.Context) {
	var body struct {
		Username string `form:"username" json:"username"`
		Password string `form:"password" json:"password"`
	}
	if err := c.ShouldBind(&body); err != nil || body.Username == "" || body.Password == "" {
		h.Metrics.IncLogin("failure")
		respondError(c, auth.ErrInvalidCredentials, "Login")
		return
	}

	ctx := c.Request.Context()
	account, err := h.Credentials.Verify(ctx, body.Username, body.Password)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			err = auth.ErrInvalidCredentials
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Metrics.IncLogin("failure")
			logrus.WithField("username", body.Username).Info("Login: rejected credentials")
		}
		respondError(c, err, "Login: error fetching user data")
		return
	}

	token, err := h.Sessions.GenerateToken(account)
	if err != nil {
		respondError(c, errors.Wrap(err, "generate token"), "Login: could not generate token")
		return
	}
	h.Sessions.SetCookie(c, token)
	h.Metrics.IncLogin("success")

	view, err := buildDashboard(ctx, h.Daos, h.BallotPosition)
	if err != nil {
		respondError(c, err, "Login: error fetching dashboard data")
		return
	}
	renderDashboard(c, view)
}

// Logout handles GET|POST /logout
func (h *AuthController) Logout(c *gin.Context) {
	h.Sessions.ClearCookie(c)
	renderLogin(c, http.StatusOK, LoginView{Message: "You have been logged out."})
}

func renderLogin(c *gin.Context, code int, view LoginView) {
	c.Negotiate(code, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: "login.html",
		Data:     view,
	})
}
