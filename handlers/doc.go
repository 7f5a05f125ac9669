// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the sound-survey API.

# Handler Types

Each handler is a struct with database, config, and session store
dependencies:

  - RunHandler: participant flow (start run, serve trials, record
    submissions, mark completion)
  - AdminHandler: admin login and the data surface (counts, CSV export,
    database download, destructive cleanup)

Handlers are created via constructor functions:

	runHandler := handlers.NewRunHandler(db, cfg, sessions)

# Participant Flow

A run is one pass through the shuffled stimulus list:

	POST /runs/{version}  → StartRun (shuffles once, sets session cookie)
	GET  /trials/current  → CurrentTrial (stimulus at the cursor)
	POST /trials          → SubmitTrial (one row, cursor advances by one)
	POST /runs/complete   → CompleteRun (marks the run's rows complete)

The stimulus order is drawn exactly once at run start and lives in the
session; the cursor is session-local. Every accepted submission appends
one row tagged with the session's run_id; rows stay is_complete=false
until CompleteRun flips them.

# Admin Flow

	POST /admin/login                     → Login (session gains Admin)
	POST /admin/logout                    → Logout
	GET  /admin/summary                   → Summary (completed / partial counts)
	GET  /admin/export/csv                → ExportCSV (completed rows only)
	GET  /admin/export/db                 → DownloadDB (sqlite file; 409 on postgres)
	POST /admin/responses/clear           → ClearResponses
	POST /admin/responses/delete-partials → DeletePartials

The destructive operations require the confirmation flag really=yes and
run a best-effort VACUUM afterwards.
*/
package handlers
