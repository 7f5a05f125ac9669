// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DaBaiHeDaBaiCai/sound-survey-project/auth"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/cliparse"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/db"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/session"
)

// DefaultStimuliCSV is a small stimulus list covering both versions.
const DefaultStimuliCSV = `version,label,person,url
cn,cn_a,alice,https://cdn.example.com/cn_a.wav
cn,cn_b,bob,https://cdn.example.com/cn_b.wav
cn,cn_c,carol,https://cdn.example.com/cn_c.wav
jp,jp_a,alice,https://cdn.example.com/jp_a.wav
jp,jp_b,bob,https://cdn.example.com/jp_b.wav
`

// SetupTestDB creates a fresh sqlite database in a temp dir with the
// full schema and returns it with a config pointing at it.
func SetupTestDB(t *testing.T) (*sql.DB, cliparse.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := GetTestConfig(filepath.Join(dir, "experiment.db"))
	cfg.StimuliPath = WriteStimuliCSV(t, dir, DefaultStimuliCSV)

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
	})

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := db.Migrate(conn, cfg.DatabaseType); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	return conn, cfg
}

// GetTestConfig returns a standard test configuration for a database path
func GetTestConfig(dbPath string) cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  dbPath,
		DatabaseType: "sqlite",
		AdminUser:    "admin",
		AdminPass:    "test-password",
		SessionTTL:   2 * time.Hour,
	}
}

// WriteStimuliCSV writes a stimulus list file into dir and returns its path
func WriteStimuliCSV(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "stimuli_list.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write stimuli CSV: %v", err)
	}
	return path
}

// NewSessionStore returns a session store with a test-friendly TTL
func NewSessionStore() *session.Store {
	return session.NewStore(2 * time.Hour)
}

// SeedResponse inserts one response row and returns its run ID
func SeedResponse(t *testing.T, conn *sql.DB, runID string, trialIndex int, complete bool) string {
	t.Helper()

	if runID == "" {
		runID = auth.NewRunID()
	}

	_, err := conn.Exec(`
		INSERT INTO response (participant_id, version, stimulus_label, person, trial_index,
		                      start_time, end_time, q1, q2, q3, q4, q5, run_id, is_complete)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, "seed0001", "cn", "cn_a", "alice", trialIndex,
		"2025-01-01T00:00:00Z", "2025-01-01T00:00:30Z",
		1, 2, 3, 4, 5, runID, complete)
	if err != nil {
		t.Fatalf("Failed to seed response: %v", err)
	}

	return runID
}

// CreateAdminSession registers an admin session and returns its token
func CreateAdminSession(t *testing.T, sessions *session.Store) string {
	t.Helper()

	token, sess, err := sessions.Create()
	if err != nil {
		t.Fatalf("Failed to create admin session: %v", err)
	}
	sess.Lock()
	sess.Admin = true
	sess.Unlock()

	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// WithSessionCookie attaches a session token to the request
func WithSessionCookie(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	return req
}

// SessionTokenFromResponse extracts the session cookie set by a handler
func SessionTokenFromResponse(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	t.Fatal("No session cookie in response")
	return ""
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
