package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe_demo_server/internal/common"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSignParse_RoundTrip(t *testing.T) {
	m := NewManager(testSecret, time.Hour, 5, false)

	token, err := m.Sign([]string{"abc12345", "def67890"})
	require.NoError(t, err)

	ids, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc12345", "def67890"}, ids)
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	token, err := NewManager(testSecret, time.Hour, 5, false).Sign([]string{"a"})
	require.NoError(t, err)

	_, err = NewManager("another-secret-another-secret-xx", time.Hour, 5, false).Parse(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_RejectsExpired(t *testing.T) {
	m := NewManager(testSecret, time.Hour, 5, false)
	base := time.Now()
	m.now = func() time.Time { return base }
	token, err := m.Sign([]string{"a"})
	require.NoError(t, err)

	m.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	m := NewManager(testSecret, time.Hour, 5, false)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{IDs: []string{"a"}})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = m.Parse(s)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestSign_CapsList(t *testing.T) {
	m := NewManager(testSecret, time.Hour, 3, false)
	token, err := m.Sign([]string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)

	ids, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "e"}, ids)
}

func TestAppend(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Append(nil, 10, "a", "b"))
	assert.Equal(t, []string{"b", "a"}, Append([]string{"a", "b"}, 10, "a"))
	assert.Equal(t, []string{"b", "c"}, Append([]string{"a", "b"}, 2, "c"))
	assert.Equal(t, []string{"a"}, Append([]string{"", "a"}, 0, ""))
}

func TestOwns(t *testing.T) {
	assert.True(t, Owns([]string{"a", "b"}, "b"))
	assert.False(t, Owns([]string{"a", "b"}, "c"))
	assert.False(t, Owns(nil, "a"))
}

func TestWriteAndOwnedIDs(t *testing.T) {
	m := NewManager(testSecret, 7*24*time.Hour, 5, true)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Write(rec, []string{"abc12345"}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7*24*3600, c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	ids, present := m.OwnedIDs(req)
	assert.True(t, present)
	assert.Equal(t, []string{"abc12345"}, ids)
}

func TestOwnedIDs_MissingOrTampered(t *testing.T) {
	m := NewManager(testSecret, time.Hour, 5, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ids, present := m.OwnedIDs(req)
	assert.False(t, present)
	assert.Empty(t, ids)

	// A raw JSON list (the legacy unsigned format) is not accepted.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: `["abc12345"]`})
	ids, present = m.OwnedIDs(req)
	assert.True(t, present)
	assert.Empty(t, ids)

	token, err := m.Sign([]string{"abc12345"})
	require.NoError(t, err)
	tampered := token[:strings.LastIndex(token, ".")] + ".bad"
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tampered})
	ids, _ = m.OwnedIDs(req)
	assert.Empty(t, ids)
}
