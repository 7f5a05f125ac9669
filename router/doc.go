// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP route table.

# Routes

NewRouter wires handlers onto a http.ServeMux using Go 1.22+ method
patterns:

	mux := router.NewRouter(db, cfg, sessions)

Participant flow:

	POST /runs/{version}
	GET  /trials/current
	POST /trials
	POST /runs/complete

Admin surface:

	POST /admin/login
	POST /admin/logout
	GET  /admin/summary
	GET  /admin/export/csv
	GET  /admin/export/db   (also GET /admin/download/db, legacy)
	POST /admin/responses/clear
	POST /admin/responses/delete-partials

Utility:

	GET /health  → "OK"
	GET /        → API banner

All application routes are wrapped with middleware.WithLogging.
*/
package router
