package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CookieName = "interview_session"

// Manager issues and verifies the signed session cookie. The session id is
// a grouping key for log correlation only; it carries no authentication
// meaning, so a lost or tampered cookie just starts a new group.
type Manager struct {
	secret []byte
	logger *zap.Logger
}

func NewManager(secret string, logger *zap.Logger) *Manager {
	return &Manager{secret: []byte(secret), logger: logger}
}

// Resolve returns the session id carried by the request cookie, or mints a
// fresh one and sets the cookie for subsequent requests from this client.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		if sid, ok := m.verify(c.Value); ok {
			return sid
		}
	}

	sid := uuid.NewString()

	token, err := m.sign(sid)
	if err != nil {
		// The turn still proceeds; this client just won't be grouped.
		m.logger.Warn("failed to sign session cookie", zap.Error(err))
		return sid
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sid
}

func (m *Manager) sign(sid string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) verify(tokenStr string) (string, bool) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", false
	}

	return sid, true
}
