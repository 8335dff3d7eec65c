// Package session verifies operator session tokens and the CSRF token they
// carry.
package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/louisbranch/backoffice/internal/platform/errors"
	"github.com/louisbranch/backoffice/internal/platform/requestctx"
)

const (
	// CookieName holds the operator session token.
	CookieName = "bo_session"
	// minKeyLength rejects trivially short signing keys.
	minKeyLength = 16
)

// Config defines how session tokens are signed and verified.
type Config struct {
	Key []byte
	Now func() time.Time
}

// claims is the JWT body issued for operators.
type claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name,omitempty"`
	Admin bool     `json:"admin,omitempty"`
	Perms []string `json:"perms,omitempty"`
	CSRF  string   `json:"csrf"`
}

// Manager issues and verifies operator sessions.
type Manager struct {
	key []byte
	now func() time.Time
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Key) < minKeyLength {
		return nil, errors.New("session key must be at least 16 bytes")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{key: append([]byte(nil), cfg.Key...), now: now}, nil
}

// Issue signs a session token for operator valid for ttl. A missing CSRF
// token is generated.
func (m *Manager) Issue(operator requestctx.Operator, ttl time.Duration) (string, error) {
	if strings.TrimSpace(operator.UserID) == "" {
		return "", errors.New("operator user id is required")
	}
	if ttl <= 0 {
		return "", errors.New("session ttl must be positive")
	}
	csrf := strings.TrimSpace(operator.CSRFToken)
	if csrf == "" {
		csrf = uuid.NewString()
	}
	now := m.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Name:  operator.Name,
		Admin: operator.Admin,
		Perms: operator.Permissions,
		CSRF:  csrf,
	})
	return token.SignedString(m.key)
}

// Verify parses a session token into the operator it names.
func (m *Manager) Verify(token string) (requestctx.Operator, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return requestctx.Operator{}, apperrors.New(apperrors.CodeUnauthenticated, "session token is required")
	}
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return requestctx.Operator{}, mapJWTError(err)
	}
	if parsed.ExpiresAt == nil {
		return requestctx.Operator{}, apperrors.New(apperrors.CodeUnauthenticated, "session exp is required")
	}
	if !parsed.ExpiresAt.Time.After(m.now()) {
		return requestctx.Operator{}, apperrors.New(apperrors.CodeUnauthenticated, "session is expired")
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return requestctx.Operator{}, apperrors.New(apperrors.CodeUnauthenticated, "session subject is required")
	}
	return requestctx.Operator{
		UserID:      parsed.Subject,
		Name:        parsed.Name,
		Admin:       parsed.Admin,
		Permissions: parsed.Perms,
		CSRFToken:   parsed.CSRF,
	}, nil
}

// TokenFromRequest returns the session token from the session cookie or an
// Authorization bearer header.
func TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if cookie, err := r.Cookie(CookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "session signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "session alg is invalid", err)
	default:
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "session token is malformed", err)
	}
}
