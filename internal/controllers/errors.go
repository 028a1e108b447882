package controllers

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"election_portal/internal/auth"
	"election_portal/internal/dao"
)

// errMissingParameter is returned when a required query or body value is absent.
var errMissingParameter = errors.New("missing parameter")

// FieldError is one entry of a 400 validation response.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError carries field-level messages for a rejected form.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return e.Errors[0].Field + ": " + e.Errors[0].Msg
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Msg: msg}}}
}

// respondError maps domain and store errors to a status and a short body.
// Anything unrecognised is logged with action and reported as a 500.
func respondError(c *gin.Context, err error, action string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr)
	case errors.Is(err, errMissingParameter):
		c.String(http.StatusBadRequest, "User ID and candidate ID are required")
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.String(http.StatusUnauthorized, "Invalid credentials.")
	case errors.Is(err, dao.ErrNotFound):
		c.String(http.StatusNotFound, "Not found.")
	case errors.Is(err, dao.ErrDuplicateUsername):
		c.String(http.StatusConflict, "User name is already taken")
	case errors.Is(err, dao.ErrAlreadyVoted):
		c.String(http.StatusConflict, "Voter has already cast a vote")
	case errors.Is(err, dao.ErrUnknownCandidate):
		c.String(http.StatusBadRequest, "Unknown candidate.")
	case errors.Is(err, dao.ErrUnknownReference):
		c.JSON(http.StatusBadRequest, fieldError("position", "Unknown position or party"))
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error(action)
		c.String(http.StatusInternalServerError, "Server error.")
	}
}

func forbidden(c *gin.Context) {
	c.String(http.StatusForbidden, "Forbidden.")
}

// bindingErrors converts gin binding failures into field errors named
// after the form tags of target.
func bindingErrors(err error, target interface{}, messages map[string]string) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fieldError("form", err.Error())
	}

	t := reflect.TypeOf(target)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		name := fe.Field()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if tag := sf.Tag.Get("form"); tag != "" {
				name = tag
			}
		}
		msg, ok := messages[name+"."+fe.Tag()]
		if !ok {
			msg = name + " is invalid"
		}
		out.Errors = append(out.Errors, FieldError{Field: name, Msg: msg})
	}
	return out
}

// positionParam reads ?position_id=, falling back to def when absent.
func positionParam(c *gin.Context, def uint) (uint, error) {
	raw := c.Query("position_id")
	if raw == "" {
		return def, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fieldError("position_id", "Invalid position_id")
	}
	return uint(id), nil
}
