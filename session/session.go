// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/DaBaiHeDaBaiCai/sound-survey-project/auth"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/stimuli"
)

// CookieName carries the session token between requests.
const CookieName = "survey_session"

// Session is the server-side state of one browser session: either a
// participant run (shuffled order plus cursor) or an admin login.
type Session struct {
	mu sync.Mutex

	ParticipantID string
	Version       string
	RunID         string
	Order         []stimuli.Stimulus // fixed at run start, never reshuffled
	Cursor        int
	Admin         bool

	expiresAt time.Time
}

// Lock serializes access to the session's mutable fields. The cursor
// advance must be read-modify-write under this lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// HasRun reports whether the session was initialized by a run start.
func (s *Session) HasRun() bool {
	return s.RunID != ""
}

// Store is an in-memory token-keyed session store with TTL expiry.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*Session
}

// NewStore creates a session store. Sessions expire ttl after their
// last Get.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new empty session and returns its token.
func (st *Store) Create() (string, *Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}

	sess := &Session{expiresAt: time.Now().Add(st.ttl)}

	st.mu.Lock()
	st.sessions[token] = sess
	st.mu.Unlock()

	return token, sess, nil
}

// Get returns the session for a token, if present and unexpired.
// A hit slides the expiry forward.
func (st *Store) Get(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Now().After(sess.expiresAt) {
		delete(st.sessions, token)
		return nil, false
	}
	sess.expiresAt = time.Now().Add(st.ttl)
	return sess, true
}

// Delete removes a session. Missing tokens are a no-op.
func (st *Store) Delete(token string) {
	st.mu.Lock()
	delete(st.sessions, token)
	st.mu.Unlock()
}

// Len returns the number of live sessions, expired entries included
// until the next purge.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// PurgeExpired drops expired sessions and reports how many were removed.
func (st *Store) PurgeExpired() int {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for token, sess := range st.sessions {
		if now.After(sess.expiresAt) {
			delete(st.sessions, token)
			removed++
		}
	}
	return removed
}

// StartPurge runs PurgeExpired on a timer until done is closed.
func (st *Store) StartPurge(done <-chan struct{}, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				st.PurgeExpired()
			}
		}
	}()
}

// SetCookie attaches the session token to the response. Lax still
// sends the cookie from a frontend on another port of the same host;
// a frontend on a different site would need SameSite=None plus TLS.
func SetCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest extracts the session token, or "" when absent.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
