// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/DaBaiHeDaBaiCai/sound-survey-project/auth"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/cliparse"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/db"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/middleware"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/models"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/session"
)

// Exported CSV column headers. The question labels match the original
// questionnaire wording so downstream analysis scripts keep working.
var csvHeader = []string{
	"participant_id", "version", "stimulus_label", "person", "trial_index",
	"start_time", "end_time",
	"Q1_清晰", "Q2_喜欢", "Q3_亲切", "Q4_违和", "Q5_冷淡",
}

type AdminHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *session.Store
}

func NewAdminHandler(conn *sql.DB, cfg cliparse.Config, sessions *session.Store) *AdminHandler {
	return &AdminHandler{db: conn, cfg: cfg, sessions: sessions}
}

// requireAdmin returns true when the request carries an admin session.
// Writes the 401 itself so callers can just return.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	sess, ok := h.sessions.Get(session.TokenFromRequest(r))
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Admin login required")
		return false
	}

	sess.Lock()
	admin := sess.Admin
	sess.Unlock()

	if !admin {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Admin login required")
		return false
	}
	return true
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.CheckCredentials(req.Username, req.Password, h.cfg.AdminUser, h.cfg.AdminPass); err != nil {
		slog.Warn("admin login rejected", "username", req.Username, "remote", r.RemoteAddr)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	// Reuse an existing session so an admin mid-run keeps their run state
	sess, ok := h.sessions.Get(session.TokenFromRequest(r))
	if !ok {
		token, created, err := h.sessions.Create()
		if err != nil {
			slog.Error("failed to create admin session", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
			return
		}
		sess = created
		session.SetCookie(w, token, h.cfg.SessionTTL)
	}

	sess.Lock()
	sess.Admin = true
	sess.Unlock()

	slog.Info("admin logged in", "username", req.Username)

	middleware.JSONResponse(w, http.StatusOK, models.AdminLoginResponse{Message: "Logged in"})
}

// Logout handles POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(session.TokenFromRequest(r))
	session.ClearCookie(w)
	middleware.JSONResponse(w, http.StatusOK, models.AdminLoginResponse{Message: "Logged out"})
}

// Summary handles GET /admin/summary
// Reports completed and partial response row counts.
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var completed, partial int

	err := h.db.QueryRow(`SELECT COUNT(*) FROM response WHERE is_complete = $1`, true).Scan(&completed)
	if err != nil {
		slog.Error("failed to count completed responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Rows from pre-migration databases can have NULL is_complete
	err = h.db.QueryRow(`SELECT COUNT(*) FROM response WHERE is_complete = $1 OR is_complete IS NULL`, false).Scan(&partial)
	if err != nil {
		slog.Error("failed to count partial responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SummaryResponse{
		Completed: completed,
		Partial:   partial,
	})
}

// ExportCSV handles GET /admin/export/csv
// Streams completed rows as a CSV attachment with a UTF-8 BOM so
// spreadsheet tools pick up the Chinese headers.
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	rows, err := h.db.Query(`
		SELECT COALESCE(participant_id, ''), COALESCE(version, ''),
		       COALESCE(stimulus_label, ''), COALESCE(person, ''),
		       COALESCE(trial_index, 0),
		       COALESCE(start_time, ''), COALESCE(end_time, ''),
		       COALESCE(q1, 0), COALESCE(q2, 0), COALESCE(q3, 0),
		       COALESCE(q4, 0), COALESCE(q5, 0)
		FROM response
		WHERE is_complete = $1
		ORDER BY id
	`, true)
	if err != nil {
		slog.Error("failed to query responses for export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="responses.csv"`)
	w.WriteHeader(http.StatusOK)

	// BOM first so Excel detects UTF-8
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		slog.Error("failed to write CSV export", "error", err)
		return
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		slog.Error("failed to write CSV header", "error", err)
		return
	}

	count := 0
	for rows.Next() {
		var rec models.Response
		if err := rows.Scan(
			&rec.ParticipantID, &rec.Version, &rec.StimulusLabel, &rec.Person,
			&rec.TrialIndex, &rec.StartTime, &rec.EndTime,
			&rec.Q1, &rec.Q2, &rec.Q3, &rec.Q4, &rec.Q5,
		); err != nil {
			slog.Error("failed to scan response row", "error", err)
			return
		}

		record := []string{
			rec.ParticipantID, rec.Version, rec.StimulusLabel, rec.Person,
			strconv.Itoa(rec.TrialIndex), rec.StartTime, rec.EndTime,
			strconv.Itoa(rec.Q1), strconv.Itoa(rec.Q2), strconv.Itoa(rec.Q3),
			strconv.Itoa(rec.Q4), strconv.Itoa(rec.Q5),
		}
		if err := writer.Write(record); err != nil {
			slog.Error("failed to write CSV row", "error", err)
			return
		}
		count++
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate response rows", "error", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Error("failed to flush CSV export", "error", err)
		return
	}

	slog.Info("csv export served", "rows", count)
}

// DownloadDB handles GET /admin/export/db
// Serves the raw sqlite file. Unavailable under postgres.
func (h *AdminHandler) DownloadDB(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	if h.cfg.DatabaseType != "sqlite" {
		middleware.ErrorResponse(w, http.StatusConflict, "Database download is only available with sqlite")
		return
	}

	// Fold the WAL into the main file so the download alone is a full snapshot
	if _, err := h.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		slog.Warn("wal checkpoint before download failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="experiment.db"`)
	http.ServeFile(w, r, h.cfg.DatabaseURL)

	slog.Info("database file served", "path", h.cfg.DatabaseURL)
}

// ClearResponses handles POST /admin/responses/clear
// Deletes every response row. Requires really=yes; there is no undo.
func (h *AdminHandler) ClearResponses(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.ConfirmRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Really != "yes" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing confirmation")
		return
	}

	res, err := h.db.Exec(`DELETE FROM response`)
	if err != nil {
		slog.Error("failed to clear responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to clear responses")
		return
	}
	deleted, _ := res.RowsAffected()

	if err := db.Vacuum(h.db); err != nil {
		slog.Warn("vacuum after clear failed", "error", err)
	}

	slog.Info("responses cleared", "deleted", deleted)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{Deleted: deleted})
}

// DeletePartials handles POST /admin/responses/delete-partials
// Deletes incomplete rows only, same confirmation contract as clear.
func (h *AdminHandler) DeletePartials(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.ConfirmRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Really != "yes" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing confirmation")
		return
	}

	res, err := h.db.Exec(`DELETE FROM response WHERE is_complete = $1 OR is_complete IS NULL`, false)
	if err != nil {
		slog.Error("failed to delete partial responses", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete partial responses")
		return
	}
	deleted, _ := res.RowsAffected()

	if err := db.Vacuum(h.db); err != nil {
		slog.Warn("vacuum after partial delete failed", "error", err)
	}

	slog.Info("partial responses deleted", "deleted", deleted)

	middleware.JSONResponse(w, http.StatusOK, models.DeleteResponse{Deleted: deleted})
}
