// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DaBaiHeDaBaiCai/sound-survey-project/auth"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/cliparse"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/middleware"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/models"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/session"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/stimuli"
)

type RunHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *session.Store
}

func NewRunHandler(db *sql.DB, cfg cliparse.Config, sessions *session.Store) *RunHandler {
	return &RunHandler{db: db, cfg: cfg, sessions: sessions}
}

// StartRun handles POST /runs/{version}
// Draws the shuffled stimulus order exactly once and binds it to a new session.
func (h *RunHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	version := strings.ToLower(strings.TrimSpace(r.PathValue("version")))
	if version != models.VersionCN && version != models.VersionJP {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid version (use 'cn' or 'jp')")
		return
	}

	list, err := stimuli.Load(h.cfg.StimuliPath)
	if err != nil {
		slog.Error("failed to load stimulus list", "error", err, "path", h.cfg.StimuliPath)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load stimulus list")
		return
	}

	sub, err := stimuli.FilterVersion(list, version)
	if err != nil {
		if errors.Is(err, stimuli.ErrNoStimuli) {
			middleware.ErrorResponse(w, http.StatusInternalServerError, "No stimuli found for version="+version)
			return
		}
		slog.Error("failed to filter stimulus list", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load stimulus list")
		return
	}

	order := stimuli.Shuffle(sub)
	stimuli.FillLabels(order)

	token, sess, err := h.sessions.Create()
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start run")
		return
	}

	sess.Lock()
	sess.ParticipantID = auth.NewParticipantID()
	sess.Version = version
	sess.RunID = auth.NewRunID()
	sess.Order = order
	sess.Cursor = 0
	participantID := sess.ParticipantID
	runID := sess.RunID
	sess.Unlock()

	session.SetCookie(w, token, h.cfg.SessionTTL)

	slog.Info("run started",
		"run_id", runID,
		"participant_id", participantID,
		"version", version,
		"total", len(order),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.StartRunResponse{
		ParticipantID: participantID,
		RunID:         runID,
		Version:       version,
		Total:         len(order),
	})
}

// CurrentTrial handles GET /trials/current
// Serves the stimulus at the session cursor without advancing it.
func (h *RunHandler) CurrentTrial(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(session.TokenFromRequest(r))
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "No active run")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if !sess.HasRun() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "No active run")
		return
	}

	idx := sess.Cursor
	total := len(sess.Order)

	if idx >= total {
		middleware.JSONResponse(w, http.StatusOK, models.CurrentTrialResponse{
			Finished: true,
			Total:    total,
			Version:  sess.Version,
		})
		return
	}

	stim := sess.Order[idx]
	middleware.JSONResponse(w, http.StatusOK, models.CurrentTrialResponse{
		Finished: false,
		Stimulus: &models.StimulusView{
			StimulusLabel: stim.StimulusLabel,
			Person:        stim.Person,
			URL:           stim.URL,
			Index:         idx,
		},
		Index:     idx + 1,
		Total:     total,
		Version:   sess.Version,
		StartTime: time.Now().UTC().Format(time.RFC3339),
	})
}

// SubmitTrial handles POST /trials
// Appends one response row and advances the cursor by exactly one.
func (h *RunHandler) SubmitTrial(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(session.TokenFromRequest(r))
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "No active run")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if !sess.HasRun() {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "No active run")
		return
	}

	var req models.SubmitTrialRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	idx := sess.Cursor
	total := len(sess.Order)

	// Past the end: nothing to record, the run is already finished
	if idx < 0 || idx >= total {
		middleware.JSONResponse(w, http.StatusOK, models.SubmitTrialResponse{
			Recorded:  false,
			Done:      true,
			Remaining: 0,
		})
		return
	}

	ratings := [5]*int{req.Q1, req.Q2, req.Q3, req.Q4, req.Q5}
	for _, q := range ratings {
		if q == nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "q1-q5 ratings are required")
			return
		}
		if *q < models.RatingMin || *q > models.RatingMax {
			middleware.ErrorResponse(w, http.StatusBadRequest, "ratings must be between 1 and 7")
			return
		}
	}

	// Client may echo back the trial index it was shown; fall back to the cursor
	trialIndex := idx
	if req.TrialIndex != nil {
		trialIndex = *req.TrialIndex
	}

	stim := sess.Order[idx]
	endTime := time.Now().UTC().Format(time.RFC3339)

	_, err := h.db.Exec(`
		INSERT INTO response (participant_id, version, stimulus_label, person, trial_index,
		                      start_time, end_time, q1, q2, q3, q4, q5, run_id, is_complete)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, sess.ParticipantID, sess.Version, stim.StimulusLabel, stim.Person, trialIndex,
		req.StartTime, endTime, *req.Q1, *req.Q2, *req.Q3, *req.Q4, *req.Q5,
		sess.RunID, false)

	if err != nil {
		slog.Error("failed to insert response", "error", err, "run_id", sess.RunID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record response")
		return
	}

	sess.Cursor = idx + 1
	done := sess.Cursor >= total

	slog.Info("trial recorded",
		"run_id", sess.RunID,
		"trial_index", trialIndex,
		"done", done,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitTrialResponse{
		Recorded:   true,
		TrialIndex: trialIndex,
		Done:       done,
		Remaining:  total - sess.Cursor,
	})
}

// CompleteRun handles POST /runs/complete
// Marks every row of the session's run complete. Best-effort: the
// participant still gets the thank-you response if the update fails.
func (h *RunHandler) CompleteRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(session.TokenFromRequest(r))
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "No active run")
		return
	}

	sess.Lock()
	if !sess.HasRun() {
		sess.Unlock()
		middleware.ErrorResponse(w, http.StatusUnauthorized, "No active run")
		return
	}
	runID := sess.RunID
	version := sess.Version
	sess.Unlock()

	var trials int64
	res, err := h.db.Exec(`UPDATE response SET is_complete = $1 WHERE run_id = $2`, true, runID)
	if err != nil {
		slog.Warn("failed to mark run complete", "error", err, "run_id", runID)
	} else {
		trials, _ = res.RowsAffected()
		slog.Info("run completed", "run_id", runID, "version", version, "trials", trials)
	}

	middleware.JSONResponse(w, http.StatusOK, models.CompleteRunResponse{
		Version:   version,
		RunID:     runID,
		Completed: err == nil,
		Trials:    trials,
	})
}
