// Package session implements the anonymous ownership gate: the list of demo
// page ids a browser created, carried in a signed HTTP-only cookie.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vibe_demo_server/internal/common"
)

const (
	CookieName = "demo_session"

	DefaultTTL    = 7 * 24 * time.Hour
	DefaultMaxIDs = 20
)

// Claims carries the owned page ids, oldest first.
type Claims struct {
	jwt.RegisteredClaims
	IDs []string `json:"ids"`
}

// Manager signs and verifies ownership tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	maxIDs int
	secure bool
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, maxIDs int, secure bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxIDs <= 0 {
		maxIDs = DefaultMaxIDs
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		maxIDs: maxIDs,
		secure: secure,
		now:    time.Now,
	}
}

// Sign encodes ids into an HS256 token, keeping at most maxIDs of the most recent.
func (m *Manager) Sign(ids []string) (string, error) {
	ids = Append(nil, m.maxIDs, ids...)
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		IDs: ids,
	})
	s, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return s, nil
}

// Parse verifies a token and returns its ids. The signing method is pinned
// to HS256.
func (m *Manager) Parse(tokenString string) ([]string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims.IDs, nil
}

// OwnedIDs reads the ownership cookie from the request. A missing, tampered
// or expired cookie yields an empty list; present reports whether a cookie
// was sent at all.
func (m *Manager) OwnedIDs(r *http.Request) (ids []string, present bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	ids, err = m.Parse(c.Value)
	if err != nil {
		return nil, true
	}
	return ids, true
}

// Write sets the ownership cookie on the response.
func (m *Manager) Write(w http.ResponseWriter, ids []string) error {
	token, err := m.Sign(ids)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// MaxIDs returns the cap applied when signing.
func (m *Manager) MaxIDs() int { return m.maxIDs }

// Owns reports whether id is in the owned list.
func Owns(ids []string, id string) bool {
	return slices.Contains(ids, id)
}

// Append adds ids to the list, moving duplicates to the end, and drops the
// oldest entries beyond max.
func Append(list []string, max int, ids ...string) []string {
	out := make([]string, 0, len(list)+len(ids))
	for _, existing := range list {
		if existing != "" && !slices.Contains(ids, existing) {
			out = append(out, existing)
		}
	}
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}
