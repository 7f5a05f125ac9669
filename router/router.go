// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/DaBaiHeDaBaiCai/sound-survey-project/cliparse"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/handlers"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/middleware"
	"github.com/DaBaiHeDaBaiCai/sound-survey-project/session"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, sessions *session.Store) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	runHandler := handlers.NewRunHandler(db, cfg, sessions)
	adminHandler := handlers.NewAdminHandler(db, cfg, sessions)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Participant flow (public)
	mux.HandleFunc("POST /runs/{version}", middleware.WithLogging(runHandler.StartRun))
	mux.HandleFunc("GET /trials/current", middleware.WithLogging(runHandler.CurrentTrial))
	mux.HandleFunc("POST /trials", middleware.WithLogging(runHandler.SubmitTrial))
	mux.HandleFunc("POST /runs/complete", middleware.WithLogging(runHandler.CompleteRun))

	// Admin surface
	mux.HandleFunc("POST /admin/login", middleware.WithLogging(adminHandler.Login))
	mux.HandleFunc("POST /admin/logout", middleware.WithLogging(adminHandler.Logout))
	mux.HandleFunc("GET /admin/summary", middleware.WithLogging(adminHandler.Summary))
	mux.HandleFunc("GET /admin/export/csv", middleware.WithLogging(adminHandler.ExportCSV))
	mux.HandleFunc("GET /admin/export/db", middleware.WithLogging(adminHandler.DownloadDB))
	// Kept for bookmarks from the old download path
	mux.HandleFunc("GET /admin/download/db", middleware.WithLogging(adminHandler.DownloadDB))
	mux.HandleFunc("POST /admin/responses/clear", middleware.WithLogging(adminHandler.ClearResponses))
	mux.HandleFunc("POST /admin/responses/delete-partials", middleware.WithLogging(adminHandler.DeletePartials))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sound-survey API v1"))
	})

	return mux
}
