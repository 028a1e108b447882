package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"election_portal/internal/auth"
	"election_portal/internal/controllers"
	"election_portal/internal/dao"
	"election_portal/internal/metrics"
	"election_portal/internal/middleware"
	"election_portal/internal/models"
	"election_portal/internal/testutil"
	"election_portal/internal/upload"
)

var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

type routerSuite struct {
	suite.Suite
	db        *gorm.DB
	uploadDir string
	router    *gin.Engine
}

func TestRouterSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(routerSuite))
}

func (s *routerSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.uploadDir = s.T().TempDir()

	daos := dao.NewDaoManager(s.db)
	deps := controllers.Deps{
		Daos:           daos,
		Credentials:    auth.NewCredentialService(daos.AccountDao, bcrypt.MinCost),
		Sessions:       middleware.NewSessionManager("test-secret", time.Hour, false),
		Photos:         upload.NewPhotoStore(s.uploadDir, 5<<20),
		Metrics:        metrics.NewMetricService(),
		BallotPosition: 1,
	}
	s.router = SetupRouter(deps, io.Discard)
}

type photo struct {
	name    string
	content []byte
}

func (s *routerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *routerSuite) registerRequest(fields map[string]string, img *photo) *http.Request {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		s.Require().NoError(w.WriteField(k, v))
	}
	if img != nil {
		part, err := w.CreateFormFile("user_image", img.name)
		s.Require().NoError(err)
		_, err = part.Write(img.content)
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, "/complete_registration", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", gin.MIMEJSON)
	return req
}

func (s *routerSuite) register(fields map[string]string, img *photo) controllers.RegistrationResult {
	w := s.do(s.registerRequest(fields, img))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var res controllers.RegistrationResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func (s *routerSuite) registerVoter(username string) uint {
	res := s.register(map[string]string{
		"first_name": "Alice",
		"last_name":  "Smith",
		"role":       "1",
		"user_name":  username,
		"password":   "secret1",
	}, nil)
	s.Require().NotNil(res.VoterID)
	return *res.VoterID
}

func (s *routerSuite) registerCandidate(username, first string) uint {
	res := s.register(map[string]string{
		"first_name": first,
		"last_name":  "Doe",
		"role":       "3",
		"position":   "1",
		"party":      "1",
		"user_name":  username,
		"password":   "secret1",
	}, nil)
	s.Require().NotNil(res.Candidate)
	return *res.Candidate
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", gin.MIMEJSON)
	return req
}

// login returns the session cookie and the dashboard rendered on success.
func (s *routerSuite) login(username, password string) (*http.Cookie, controllers.DashboardView) {
	w := s.do(formRequest(http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}}))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var view controllers.DashboardView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &view))
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c, view
		}
	}
	s.FailNow("no session cookie")
	return nil, view
}

func (s *routerSuite) vote(cookie *http.Cookie, userID, candidateID string) *httptest.ResponseRecorder {
	values := url.Values{}
	if userID != "" {
		values.Set("userId", userID)
	}
	if candidateID != "" {
		values.Set("candidate_id", candidateID)
	}
	req := formRequest(http.MethodPost, "/cast_vote_complete", values)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return s.do(req)
}

func (s *routerSuite) dashboard() controllers.DashboardView {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", gin.MIMEJSON)
	w := s.do(req)
	s.Require().Equal(http.StatusOK, w.Code)

	var view controllers.DashboardView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func (s *routerSuite) count(model interface{}) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Count(&n).Error)
	return n
}

func (s *routerSuite) TestElectionScenario() {
	johnID := s.registerCandidate("john", "John")

	res := s.register(map[string]string{
		"first_name":    "Alice",
		"last_name":     "Smith",
		"role":          "1",
		"date_of_birth": "1990-04-01",
		"phone":         "0700000000",
		"user_name":     "alice",
		"password":      "pass1234",
	}, &photo{name: "alice.gif", content: gifBytes})
	s.Require().NotNil(res.VoterID)
	aliceID := *res.VoterID

	voter, err := dao.NewDaoManager(s.db).GetVoterByID(context.Background(), aliceID)
	s.Require().NoError(err)
	s.Require().True(strings.HasPrefix(voter.PhotoPath, "uploads/"), voter.PhotoPath)
	s.Require().FileExists(s.uploadDir + "/" + strings.TrimPrefix(voter.PhotoPath, "uploads/"))

	cookie, view := s.login("alice", "pass1234")
	s.Require().Equal(int64(1), view.TotalRegVoters)
	s.Require().Equal(int64(0), view.TotalVote)
	s.Require().Len(view.CandidateInfo, 1)
	s.Require().Equal(int64(0), view.CandidateInfo[0].Votes)

	req := httptest.NewRequest(http.MethodGet, "/cast_vote", nil)
	req.Header.Set("Accept", gin.MIMEJSON)
	req.AddCookie(cookie)
	w := s.do(req)
	s.Require().Equal(http.StatusOK, w.Code)
	var ballot controllers.BallotView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &ballot))
	s.Require().Equal(aliceID, ballot.UserID)
	s.Require().False(ballot.Voted)
	s.Require().Len(ballot.Candidates, 1)

	w = s.vote(cookie, fmt.Sprint(aliceID), fmt.Sprint(johnID))
	s.Require().Equal(http.StatusSeeOther, w.Code)
	s.Require().Equal("/voters", w.Header().Get("Location"))

	view = s.dashboard()
	s.Require().Equal(int64(1), view.TotalVote)
	s.Require().Equal(johnID, view.CandidateInfo[0].CandidateID)
	s.Require().Equal(int64(1), view.CandidateInfo[0].Votes)
	s.Require().Equal("John Doe", view.CandidateInfo[0].Name)

	w = s.vote(cookie, fmt.Sprint(aliceID), fmt.Sprint(johnID))
	s.Require().Equal(http.StatusConflict, w.Code)
	s.Require().Equal("Voter has already cast a vote", w.Body.String())

	view = s.dashboard()
	s.Require().Equal(int64(1), view.TotalVote)
	s.Require().Equal(int64(1), view.CandidateInfo[0].Votes)
}

func (s *routerSuite) TestRegistration_DuplicateUsername() {
	s.registerVoter("alice")

	w := s.do(s.registerRequest(map[string]string{
		"first_name": "Another",
		"user_name":  "alice",
		"password":   "secret2",
	}, nil))
	s.Require().Equal(http.StatusConflict, w.Code)
	s.Require().Equal("User name is already taken", w.Body.String())

	s.Require().Equal(int64(1), s.count(&models.Voter{}))
	s.Require().Equal(int64(1), s.count(&models.Account{}))

	// a candidate may not take a voter's name either
	w = s.do(s.registerRequest(map[string]string{
		"first_name": "Cand",
		"role":       "3",
		"position":   "1",
		"party":      "1",
		"user_name":  "alice",
		"password":   "secret2",
	}, &photo{name: "c.gif", content: gifBytes}))
	s.Require().Equal(http.StatusConflict, w.Code)
	s.Require().Zero(s.count(&models.Candidate{}))

	entries, err := os.ReadDir(s.uploadDir)
	s.Require().NoError(err)
	s.Require().Empty(entries)
}

func (s *routerSuite) TestRegistration_RejectsNonImage() {
	w := s.do(s.registerRequest(map[string]string{
		"first_name": "Alice",
		"user_name":  "alice",
		"password":   "secret1",
	}, &photo{name: "notes.txt", content: []byte("plain text")}))
	s.Require().Equal(http.StatusBadRequest, w.Code)

	var verr controllers.ValidationError
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &verr))
	s.Require().Len(verr.Errors, 1)
	s.Require().Equal("user_image", verr.Errors[0].Field)

	s.Require().Zero(s.count(&models.Voter{}))
	s.Require().Zero(s.count(&models.Account{}))
	entries, err := os.ReadDir(s.uploadDir)
	s.Require().NoError(err)
	s.Require().Empty(entries)
}

func (s *routerSuite) TestRegistration_Validation() {
	w := s.do(s.registerRequest(map[string]string{
		"user_name": "alice",
		"password":  "123",
	}, nil))
	s.Require().Equal(http.StatusBadRequest, w.Code)

	var verr controllers.ValidationError
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &verr))
	fields := map[string]string{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = fe.Msg
	}
	s.Require().Equal("First name is required", fields["first_name"])
	s.Require().Equal("Password must be at least 5 characters long", fields["password"])

	w = s.do(s.registerRequest(map[string]string{
		"first_name": "Cand",
		"role":       "3",
		"position":   "99",
		"party":      "1",
		"user_name":  "cand",
		"password":   "secret1",
	}, nil))
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Require().Zero(s.count(&models.Candidate{}))
	s.Require().Zero(s.count(&models.Account{}))

	w = s.do(s.registerRequest(map[string]string{
		"first_name": "X",
		"role":       "7",
		"user_name":  "x",
		"password":   "secret1",
	}, nil))
	s.Require().Equal(http.StatusBadRequest, w.Code)
}

func (s *routerSuite) TestLogin_Failures() {
	s.registerVoter("alice")

	w := s.do(formRequest(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}))
	s.Require().Equal(http.StatusUnauthorized, w.Code)
	s.Require().Equal("Invalid credentials.", w.Body.String())

	w = s.do(formRequest(http.MethodPost, "/login", url.Values{"username": {"bob"}, "password": {"secret1"}}))
	s.Require().Equal(http.StatusUnauthorized, w.Code)
	s.Require().Equal("Invalid credentials.", w.Body.String())
}

func (s *routerSuite) TestCastVote_Rejections() {
	johnID := s.registerCandidate("john", "John")
	govID := func() uint {
		res := s.register(map[string]string{
			"first_name": "Gov", "role": "3", "position": "2", "party": "2",
			"user_name": "gov", "password": "secret1",
		}, nil)
		return *res.Candidate
	}()
	aliceID := s.registerVoter("alice")
	bobID := s.registerVoter("bob")
	cookie, _ := s.login("alice", "secret1")

	w := s.vote(nil, fmt.Sprint(aliceID), fmt.Sprint(johnID))
	s.Require().Equal(http.StatusUnauthorized, w.Code)

	w = s.vote(cookie, fmt.Sprint(aliceID), "")
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Require().Equal("User ID and candidate ID are required", w.Body.String())

	w = s.vote(cookie, "", fmt.Sprint(johnID))
	s.Require().Equal(http.StatusBadRequest, w.Code)

	w = s.vote(cookie, fmt.Sprint(bobID), fmt.Sprint(johnID))
	s.Require().Equal(http.StatusForbidden, w.Code)

	w = s.vote(cookie, fmt.Sprint(aliceID), "9999")
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Require().Equal("Unknown candidate.", w.Body.String())

	w = s.vote(cookie, fmt.Sprint(aliceID), fmt.Sprint(govID))
	s.Require().Equal(http.StatusBadRequest, w.Code)

	s.Require().Zero(s.count(&models.Vote{}))
	voter, err := dao.NewDaoManager(s.db).GetVoterByID(context.Background(), aliceID)
	s.Require().NoError(err)
	s.Require().False(voter.Voted)
}

func (s *routerSuite) TestShowBallot_ForeignVoter() {
	s.registerCandidate("john", "John")
	s.registerVoter("alice")
	bobID := s.registerVoter("bob")
	cookie, _ := s.login("alice", "secret1")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/cast_vote?user_id=%d", bobID), nil)
	req.AddCookie(cookie)
	s.Require().Equal(http.StatusForbidden, s.do(req).Code)

	// candidates own no voter record
	candidateCookie, _ := s.login("john", "secret1")
	req = httptest.NewRequest(http.MethodGet, "/cast_vote", nil)
	req.AddCookie(candidateCookie)
	s.Require().Equal(http.StatusForbidden, s.do(req).Code)
}

func (s *routerSuite) TestLogout() {
	w := s.do(httptest.NewRequest(http.MethodPost, "/logout", nil))
	s.Require().Equal(http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Require().Equal(middleware.SessionCookie, cookies[0].Name)
	s.Require().Less(cookies[0].MaxAge, 0)
}

func (s *routerSuite) TestPagesRender() {
	johnID := s.registerCandidate("john", "John")
	s.registerVoter("alice")

	pages := map[string]string{
		"/":                         "<h1>Login</h1>",
		"/complete_registration":    "President",
		"/dashboard":                "John Doe",
		"/candidates":               "John Doe",
		"/candidates?position_id=2": "No candidates registered.",
		"/voters":                   "alice",
	}
	for path, want := range pages {
		w := s.do(httptest.NewRequest(http.MethodGet, path, nil))
		s.Require().Equal(http.StatusOK, w.Code, path)
		s.Require().Contains(w.Body.String(), want, path)
	}

	s.Require().Equal(http.StatusNotFound, s.do(httptest.NewRequest(http.MethodGet, "/candidates?position_id=42", nil)).Code)
	s.Require().Equal(http.StatusBadRequest, s.do(httptest.NewRequest(http.MethodGet, "/dashboard?position_id=abc", nil)).Code)

	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	req.Header.Set("Accept", gin.MIMEJSON)
	w := s.do(req)
	var list controllers.CandidatesView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Require().Len(list.Candidates, 1)
	s.Require().Equal(johnID, list.Candidates[0].ID)
}

func (s *routerSuite) TestSystemRoutes() {
	s.registerVoter("alice")
	s.login("alice", "secret1")

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Contains(w.Body.String(), `registrations_total{role="voter"} 1`)
	s.Require().Contains(w.Body.String(), `logins_total{result="success"} 1`)
}

func (s *routerSuite) TestUploadsServed() {
	res := s.register(map[string]string{
		"first_name": "Alice", "user_name": "alice", "password": "secret1",
	}, &photo{name: "a.gif", content: gifBytes})
	voter, err := dao.NewDaoManager(s.db).GetVoterByID(context.Background(), *res.VoterID)
	s.Require().NoError(err)

	w := s.do(httptest.NewRequest(http.MethodGet, "/"+voter.PhotoPath, nil))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Equal(gifBytes, w.Body.Bytes())
}

func (s *routerSuite) TestRegistration_PasswordTooLong() {
	for _, password := range []string{
		strings.Repeat("a", 80),
		// 40 runes but 80 bytes
		strings.Repeat("é", 40),
	} {
		w := s.do(s.registerRequest(map[string]string{
			"first_name": "Alice",
			"user_name":  "alice",
			"password":   password,
		}, nil))
		s.Require().Equal(http.StatusBadRequest, w.Code, w.Body.String())

		var verr controllers.ValidationError
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &verr))
		s.Require().Len(verr.Errors, 1)
		s.Require().Equal("password", verr.Errors[0].Field)
		s.Require().Equal("Password must be at most 72 bytes long", verr.Errors[0].Msg)
	}

	s.Require().Zero(s.count(&models.Voter{}))
	s.Require().Zero(s.count(&models.Account{}))

	// the longest accepted password still logs in
	s.register(map[string]string{
		"first_name": "Alice",
		"user_name":  "alice",
		"password":   strings.Repeat("a", 72),
	}, nil)
	s.login("alice", strings.Repeat("a", 72))
}

func (s *routerSuite) TestRegistration_BodyTooLarge() {
	big := append(append([]byte{}, gifBytes...), bytes.Repeat([]byte{0}, 7<<20)...)

	w := s.do(s.registerRequest(map[string]string{
		"first_name": "Alice",
		"user_name":  "alice",
		"password":   "secret1",
	}, &photo{name: "big.gif", content: big}))
	s.Require().Equal(http.StatusBadRequest, w.Code)

	var verr controllers.ValidationError
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &verr))
	s.Require().Len(verr.Errors, 1)
	s.Require().Equal("user_image", verr.Errors[0].Field)

	// without a Content-Length the body is cut off while reading
	req := s.registerRequest(map[string]string{
		"first_name": "Alice",
		"user_name":  "alice",
		"password":   "secret1",
	}, &photo{name: "big.gif", content: big})
	req.Body = io.NopCloser(io.MultiReader(req.Body))
	req.ContentLength = -1
	w = s.do(req)
	s.Require().Equal(http.StatusBadRequest, w.Code)

	s.Require().Zero(s.count(&models.Voter{}))
	s.Require().Zero(s.count(&models.Account{}))
	entries, err := os.ReadDir(s.uploadDir)
	s.Require().NoError(err)
	s.Require().Empty(entries)
}

func (s *routerSuite) TestRegistration_ImageExtensionMismatch() {
	w := s.do(s.registerRequest(map[string]string{
		"first_name": "Alice",
		"user_name":  "alice",
		"password":   "secret1",
	}, &photo{name: "alice.png", content: gifBytes}))
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Require().Zero(s.count(&models.Voter{}))

	entries, err := os.ReadDir(s.uploadDir)
	s.Require().NoError(err)
	s.Require().Empty(entries)
}
