package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"election_portal/internal/models"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "session"

	sessionKey = "session"
)

// SessionClaims identify the logged-in account. VoterID is zero for
// accounts that own no voter record.
type SessionClaims struct {
	AccountID uint        `json:"account_id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	VoterID   uint        `json:"voter_id,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessionManager(secret string, ttl time.Duration, secureCookie bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, secure: secureCookie}
}

// GenerateToken signs a session for the account.
func (m *SessionManager) GenerateToken(account *models.Account) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	if account.VoterID != nil {
		claims.VoterID = *account.VoterID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken checks the signature, algorithm and expiry of tokenStr.
func (m *SessionManager) ValidateToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.AccountID == 0 || claims.Username == "" {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}

// SetCookie stores token in an HTTP-only cookie that expires with the session.
func (m *SessionManager) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

func (m *SessionManager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.secure, true)
}

// RequireAuth ensures a valid session is present, either as the session
// cookie or as a Bearer Authorization header.
func (m *SessionManager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString, _ = c.Cookie(SessionCookie)
		}
		if tokenString == "" {
			c.String(http.StatusUnauthorized, "Authentication required.")
			c.Abort()
			return
		}

		claims, err := m.ValidateToken(tokenString)
		if err != nil {
			c.String(http.StatusUnauthorized, "Authentication required.")
			c.Abort()
			return
		}

		// Store claims in context for downstream handlers
		c.Set(sessionKey, claims)
		c.Next()
	}
}

// SessionFromContext returns the claims stored by RequireAuth.
func SessionFromContext(c *gin.Context) (*SessionClaims, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*SessionClaims)
	return claims, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}
