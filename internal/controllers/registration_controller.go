package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"election_portal/internal/auth"
	"election_portal/internal/dao"
	"election_portal/internal/models"
	"election_portal/internal/upload"
)

type registrationForm struct {
	FirstName   string `form:"first_name" json:"first_name" binding:"required"`
	MiddleName  string `form:"middle_name" json:"middle_name"`
	LastName    string `form:"last_name" json:"last_name"`
	Role        string `form:"role" json:"role"`
	DateOfBirth string `form:"date_of_birth" json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Phone       string `form:"phone" json:"phone"`
	Position    uint   `form:"position" json:"position"`
	Party       uint   `form:"party" json:"party"`
	UserName    string `form:"user_name" json:"user_name" binding:"required"`
	Password    string `form:"password" json:"password" binding:"required,min=5,max=72"`
}

var registrationMessages = map[string]string{
	"first_name.required":    "First name is required",
	"user_name.required":     "User name is required",
	"password.required":      "Password must be at least 5 characters long",
	"password.min":           "Password must be at least 5 characters long",
	"password.max":           "Password must be at most 72 bytes long",
	"date_of_birth.datetime": "Date of birth must be YYYY-MM-DD",
}

// formFieldsAllowance is the body room left for the text fields and
// multipart framing on top of the photo limit.
const formFieldsAllowance = 1 << 20

// RegistrationFormView feeds the registration page.
type RegistrationFormView struct {
	Roles     []models.Role     `json:"roles"`
	Positions []models.Position `json:"positions"`
	Parties   []models.Party    `json:"parties"`
}

// RegistrationResult is the JSON answer to a successful registration.
type RegistrationResult struct {
	Message   string      `json:"message"`
	AccountID uint        `json:"account_id"`
	Role      models.Role `json:"role"`
	VoterID   *uint       `json:"voter_id,omitempty"`
	Candidate *uint       `json:"candidate_id,omitempty"`
}

type RegistrationController struct {
	Deps
}

func NewRegistrationController(d Deps) *RegistrationController {
	return &RegistrationController{Deps: d}
}

// ShowRegistration handles GET /complete_registration
func (h *RegistrationController) ShowRegistration(c *gin.Context) {
	ctx := c.Request.Context()
	positions, err := h.Daos.ListPositions(ctx)
	if err != nil {
		respondError(c, err, "ShowRegistration: error fetching positions")
		return
	}
	parties, err := h.Daos.ListParties(ctx)
	if err != nil {
		respondError(c, err, "ShowRegistration: error fetching parties")
		return
	}

	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: "voters_registration.html",
		Data: RegistrationFormView{
			Roles:     models.Roles(),
			Positions: positions,
			Parties:   parties,
		},
	})
}

// CompleteRegistration handles POST /complete_registration. The photo is
// stored first; the person record and its account are then written in one
// transaction, and the photo is removed again if that fails.
func (h *RegistrationController) CompleteRegistration(c *gin.Context) {
	var form registrationForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, h.bodyTooLarge(tooLarge.Limit+1), "CompleteRegistration: body too large")
			return
		}
		respondError(c, bindingErrors(err, &form, registrationMessages), "CompleteRegistration: bind")
		return
	}
	role, err := models.ParseRole(form.Role)
	if err != nil {
		respondError(c, fieldError("role", "Unknown role"), "CompleteRegistration: role")
		return
	}

	photo, err := h.savePhoto(c)
	if err != nil {
		respondError(c, err, "CompleteRegistration: error saving photo")
		return
	}

	ctx := c.Request.Context()
	var account *models.Account
	err = h.Daos.Transaction(ctx, func(tx *dao.DaoManager) error {
		link := models.Account{Role: role}
		if !role.CastsBallot() {
			candidate := models.Candidate{
				FirstName:  form.FirstName,
				MiddleName: form.MiddleName,
				LastName:   form.LastName,
				PhotoPath:  photo,
				PositionID: form.Position,
				PartyID:    form.Party,
			}
			if err := tx.CreateCandidate(ctx, &candidate); err != nil {
				return err
			}
			link.CandidateID = &candidate.ID
		} else {
			voter := models.Voter{
				FirstName:   form.FirstName,
				MiddleName:  form.MiddleName,
				LastName:    form.LastName,
				Role:        role,
				DateOfBirth: form.DateOfBirth,
				Phone:       form.Phone,
				PhotoPath:   photo,
				Username:    form.UserName,
			}
			if err := tx.CreateVoter(ctx, &voter); err != nil {
				return err
			}
			link.VoterID = &voter.ID
		}

		var err error
		account, err = h.Credentials.WithDao(tx.AccountDao).Register(ctx, form.UserName, form.Password, link)
		return err
	})
	if err != nil {
		if rmErr := h.Photos.Remove(photo); rmErr != nil {
			logrus.WithError(rmErr).WithField("photo", photo).Warn("CompleteRegistration: could not remove photo")
		}
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			err = fieldError("password", registrationMessages["password.min"])
		case errors.Is(err, auth.ErrPasswordTooLong):
			err = fieldError("password", registrationMessages["password.max"])
		}
		respondError(c, err, "CompleteRegistration: error saving registration")
		return
	}

	h.Metrics.IncRegistration(role.String())
	logrus.WithFields(logrus.Fields{
		"username": account.Username,
		"role":     role.String(),
	}).Info("registration completed")

	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: "login.html",
		HTMLData: LoginView{Message: "Registration complete. Please log in."},
		JSONData: RegistrationResult{
			Message:   "registered",
			AccountID: account.ID,
			Role:      account.Role,
			VoterID:   account.VoterID,
			Candidate: account.CandidateID,
		},
	})
}

// LimitBody caps the registration body at the photo limit plus room for
// the text fields, so oversized uploads are refused before being spooled.
func (h *RegistrationController) LimitBody() gin.HandlerFunc {
	limit := h.Photos.MaxBytes() + formFieldsAllowance
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			respondError(c, h.bodyTooLarge(c.Request.ContentLength), "CompleteRegistration: body too large")
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func (h *RegistrationController) bodyTooLarge(size int64) error {
	tooLarge := &upload.TooLargeError{Size: size, Limit: h.Photos.MaxBytes()}
	return fieldError("user_image", tooLarge.Error())
}

// savePhoto stores the optional user_image upload and returns its reference.
func (h *RegistrationController) savePhoto(c *gin.Context) (string, error) {
	fh, err := c.FormFile("user_image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", errors.Wrap(err, "read user_image")
	}

	ref, err := h.Photos.Save(fh)
	if err != nil {
		var tooLarge *upload.TooLargeError
		switch {
		case errors.Is(err, upload.ErrNotImage):
			return "", fieldError("user_image", "Only images are allowed")
		case errors.As(err, &tooLarge):
			return "", fieldError("user_image", tooLarge.Error())
		}
		return "", err
	}
	return ref, nil
}
