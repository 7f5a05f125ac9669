// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DaBaiHeDaBaiCai/sound-survey-project/cliparse"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/models"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/session"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/testutil"
)

func newTestEnv(t *testing.T) (*sql.DB, cliparse.Config, *session.Store) {
	t.Helper()
	conn, cfg := testutil.SetupTestDB(t)
	return conn, cfg, testutil.NewSessionStore()
}

// startTestRun drives StartRun and returns the session token and response
func startTestRun(t *testing.T, h *RunHandler, version string) (string, models.StartRunResponse) {
	t.Helper()

	req := testutil.MakeRequest("POST", "/runs/"+version, nil, nil)
	req.SetPathValue("version", version)
	w := httptest.NewRecorder()
	h.StartRun(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.StartRunResponse
	testutil.AssertJSON(t, w, &resp)
	return testutil.SessionTokenFromResponse(t, w), resp
}

func intPtr(n int) *int { return &n }

// submitBody builds a full valid submission
func submitBody(trialIndex int) models.SubmitTrialRequest {
	return models.SubmitTrialRequest{
		TrialIndex: intPtr(trialIndex),
		StartTime:  "2025-01-01T00:00:00Z",
		Q1:         intPtr(4), Q2: intPtr(5), Q3: intPtr(3), Q4: intPtr(2), Q5: intPtr(1),
	}
}

func TestStartRun(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	handler := NewRunHandler(conn, cfg, sessions)

	tests := []struct {
		name           string
		version        string
		expectedStatus int
		expectedTotal  int
	}{
		{"cn run", "cn", http.StatusCreated, 3},
		{"jp run", "jp", http.StatusCreated, 2},
		{"upper case version accepted", "CN", http.StatusCreated, 3},
		{"invalid version", "en", http.StatusBadRequest, 0},
		{"empty version", "", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/runs/"+tt.version, nil, nil)
			req.SetPathValue("version", tt.version)
			w := httptest.NewRecorder()
			handler.StartRun(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.StartRunResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Total != tt.expectedTotal {
				t.Errorf("Expected total %d, got %d", tt.expectedTotal, resp.Total)
			}
			if len(resp.ParticipantID) != 8 {
				t.Errorf("Expected 8-char participant ID, got %q", resp.ParticipantID)
			}
			if resp.RunID == "" {
				t.Error("Expected non-empty run ID")
			}

			// Session is live and initialized
			token := testutil.SessionTokenFromResponse(t, w)
			sess, ok := sessions.Get(token)
			if !ok {
				t.Fatal("Expected session for returned token")
			}
			sess.Lock()
			if len(sess.Order) != tt.expectedTotal || sess.Cursor != 0 {
				t.Errorf("Unexpected session state: %d stimuli, cursor %d", len(sess.Order), sess.Cursor)
			}
			sess.Unlock()
		})
	}
}

func TestStartRunNoStimuliForVersion(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	// Stimulus file with cn rows only
	cfg.StimuliPath = testutil.WriteStimuliCSV(t, t.TempDir(), "version,label,person,url\ncn,a,alice,u1\n")
	handler := NewRunHandler(conn, cfg, sessions)

	req := testutil.MakeRequest("POST", "/runs/jp", nil, nil)
	req.SetPathValue("version", "jp")
	w := httptest.NewRecorder()
	handler.StartRun(w, req)

	testutil.AssertStatus(t, w, http.StatusInternalServerError)
}

func TestStartRunMissingStimuliFile(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	cfg.StimuliPath = "/nonexistent/stimuli_list.csv"
	handler := NewRunHandler(conn, cfg, sessions)

	req := testutil.MakeRequest("POST", "/runs/cn", nil, nil)
	req.SetPathValue("version", "cn")
	w := httptest.NewRecorder()
	handler.StartRun(w, req)

	testutil.AssertStatus(t, w, http.StatusInternalServerError)
}

func TestCurrentTrial(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	handler := NewRunHandler(conn, cfg, sessions)
	token, _ := startTestRun(t, handler, "cn")

	// No session: 401
	w := httptest.NewRecorder()
	handler.CurrentTrial(w, testutil.MakeRequest("GET", "/trials/current", nil, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	// Repeated GETs serve the same trial without advancing
	var first models.CurrentTrialResponse
	for i := 0; i < 2; i++ {
		req := testutil.WithSessionCookie(testutil.MakeRequest("GET", "/trials/current", nil, nil), token)
		w := httptest.NewRecorder()
		handler.CurrentTrial(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CurrentTrialResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Finished {
			t.Fatal("Run should not be finished at the first trial")
		}
		if resp.Index != 1 || resp.Total != 3 {
			t.Errorf("Expected trial 1/3, got %d/%d", resp.Index, resp.Total)
		}
		if resp.Stimulus == nil || resp.Stimulus.StimulusLabel == "" {
			t.Fatal("Expected a stimulus payload")
		}
		if resp.StartTime == "" {
			t.Error("Expected a start_time")
		}

		if i == 0 {
			first = resp
		} else if resp.Stimulus.StimulusLabel != first.Stimulus.StimulusLabel {
			t.Error("Repeated GET advanced the cursor")
		}
	}
}

func TestSubmitTrialValidation(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	handler := NewRunHandler(conn, cfg, sessions)
	token, _ := startTestRun(t, handler, "cn")

	missingQ5 := submitBody(0)
	missingQ5.Q5 = nil
	lowRating := submitBody(0)
	lowRating.Q2 = intPtr(0)
	highRating := submitBody(0)
	highRating.Q4 = intPtr(8)

	tests := []struct {
		name           string
		token          string
		body           interface{}
		expectedStatus int
	}{
		{"no session", "", submitBody(0), http.StatusUnauthorized},
		{"missing rating", token, missingQ5, http.StatusBadRequest},
		{"rating below range", token, lowRating, http.StatusBadRequest},
		{"rating above range", token, highRating, http.StatusBadRequest},
		{"valid submission", token, submitBody(0), http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/trials", tt.body, nil)
			if tt.token != "" {
				req = testutil.WithSessionCookie(req, tt.token)
			}
			w := httptest.NewRecorder()
			handler.SubmitTrial(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	// Rejected submissions must not write rows
	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM response`).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 row after one accepted submission, got %d", count)
	}
}

func TestStartRunAssignsPositionalLabels(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	// Rows with no label at all
	cfg.StimuliPath = testutil.WriteStimuliCSV(t, t.TempDir(), `version,label,person,url
cn,,p1,u1
cn,,p2,u2
cn,,p3,u3
`)

	handler := NewRunHandler(conn, cfg, sessions)
	token, start := startTestRun(t, handler, "cn")

	// Positional labels track the shuffled presentation order
	for i := 0; i < start.Total; i++ {
		req := testutil.WithSessionCookie(testutil.MakeRequest("GET", "/trials/current", nil, nil), token)
		w := httptest.NewRecorder()
		handler.CurrentTrial(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CurrentTrialResponse
		testutil.AssertJSON(t, w, &resp)
		want := fmt.Sprintf("item%d", i+1)
		if resp.Stimulus == nil || resp.Stimulus.StimulusLabel != want {
			t.Errorf("Trial %d: expected label %q, got %+v", i, want, resp.Stimulus)
		}

		sreq := testutil.WithSessionCookie(testutil.MakeRequest("POST", "/trials", submitBody(i), nil), token)
		sw := httptest.NewRecorder()
		handler.SubmitTrial(sw, sreq)
		testutil.AssertStatus(t, sw, http.StatusCreated)
	}
}

func TestSubmitTrialRunlessSession(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	handler := NewRunHandler(conn, cfg, sessions)

	// A live session that never started a run, e.g. admin login only
	token := testutil.CreateAdminSession(t, sessions)

	// Even a malformed body gets the no-run 401, not a JSON 400
	req := httptest.NewRequest("POST", "/trials", strings.NewReader("{not json"))
	req = testutil.WithSessionCookie(req, token)
	w := httptest.NewRecorder()
	handler.SubmitTrial(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	req = testutil.WithSessionCookie(testutil.MakeRequest("POST", "/trials", submitBody(0), nil), token)
	w = httptest.NewRecorder()
	handler.SubmitTrial(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestSubmitTrialAdvancesCursor(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	handler := NewRunHandler(conn, cfg, sessions)
	token, start := startTestRun(t, handler, "cn")

	for i := 0; i < start.Total; i++ {
		req := testutil.WithSessionCookie(testutil.MakeRequest("POST", "/trials", submitBody(i), nil), token)
		w := httptest.NewRecorder()
		handler.SubmitTrial(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.SubmitTrialResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Recorded {
			t.Fatalf("Trial %d not recorded", i)
		}
		if resp.TrialIndex != i {
			t.Errorf("Expected trial index %d, got %d", i, resp.TrialIndex)
		}
		wantDone := i == start.Total-1
		if resp.Done != wantDone {
			t.Errorf("Trial %d: expected done=%v, got %v", i, wantDone, resp.Done)
		}
		if resp.Remaining != start.Total-i-1 {
			t.Errorf("Trial %d: expected remaining %d, got %d", i, start.Total-i-1, resp.Remaining)
		}
	}

	// One row per trial, all tagged with the run and incomplete
	var count int
	err := conn.QueryRow(`SELECT COUNT(*) FROM response WHERE run_id = $1 AND is_complete = $2`,
		start.RunID, false).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != start.Total {
		t.Errorf("Expected %d rows for run, got %d", start.Total, count)
	}

	// Submitting past the end records nothing
	req := testutil.WithSessionCookie(testutil.MakeRequest("POST", "/trials", submitBody(99), nil), token)
	w := httptest.NewRecorder()
	handler.SubmitTrial(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubmitTrialResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Recorded || !resp.Done {
		t.Errorf("Expected unrecorded done response, got %+v", resp)
	}

	err = conn.QueryRow(`SELECT COUNT(*) FROM response WHERE run_id = $1`, start.RunID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != start.Total {
		t.Errorf("Row count changed after past-the-end submit: %d", count)
	}
}

func TestSubmitTrialIndexFallsBackToCursor(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	handler := NewRunHandler(conn, cfg, sessions)
	token, _ := startTestRun(t, handler, "cn")

	body := submitBody(0)
	body.TrialIndex = nil
	req := testutil.WithSessionCookie(testutil.MakeRequest("POST", "/trials", body, nil), token)
	w := httptest.NewRecorder()
	handler.SubmitTrial(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.SubmitTrialResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.TrialIndex != 0 {
		t.Errorf("Expected cursor fallback trial index 0, got %d", resp.TrialIndex)
	}
}

func TestCompleteRun(t *testing.T) {
	conn, cfg, sessions := newTestEnv(t)
	defer conn.Close()

	handler := NewRunHandler(conn, cfg, sessions)

	// No session: 401
	w := httptest.NewRecorder()
	handler.CompleteRun(w, testutil.MakeRequest("POST", "/runs/complete", nil, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	token, start := startTestRun(t, handler, "jp")

	// Record both trials, then complete
	for i := 0; i < start.Total; i++ {
		req := testutil.WithSessionCookie(testutil.MakeRequest("POST", "/trials", submitBody(i), nil), token)
		w := httptest.NewRecorder()
		handler.SubmitTrial(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	req := testutil.WithSessionCookie(testutil.MakeRequest("POST", "/runs/complete", nil, nil), token)
	w = httptest.NewRecorder()
	handler.CompleteRun(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CompleteRunResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Completed || resp.RunID != start.RunID || resp.Version != "jp" {
		t.Errorf("Unexpected completion response: %+v", resp)
	}
	if resp.Trials != int64(start.Total) {
		t.Errorf("Expected %d trials marked complete, got %d", start.Total, resp.Trials)
	}

	var incomplete int
	err := conn.QueryRow(`SELECT COUNT(*) FROM response WHERE run_id = $1 AND is_complete = $2`,
		start.RunID, false).Scan(&incomplete)
	if err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if incomplete != 0 {
		t.Errorf("Expected all rows complete, %d still incomplete", incomplete)
	}
}
