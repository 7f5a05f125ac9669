// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the sound-survey API server.

sound-survey runs a browser-based listening experiment: each participant
hears a randomized sequence of audio stimuli and rates every one on five
Likert scales. Responses collect in a single relational table and an
admin surface exports them.

# Starting the Server

The server reads configuration from a .env file, environment variables,
or CLI flags:

	ADMIN_PASS=... go run main.go

Or with flags:

	go run main.go -p 3318 -d data/experiment.db -admin-pass ...

# Configuration

Required settings:

  - ADMIN_PASS (-admin-pass): Admin password

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_URL (-d): SQLite path or PostgreSQL URL
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - STIMULI_FILE (-s): Stimulus list CSV (default: stimuli_list.csv)
  - ADMIN_USER (-admin-user): Admin username (default: admin)
  - SESSION_TTL_MINUTES (-session-ttl): Session lifetime (default: 120)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (participant flow, admin surface)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - session: Server-side per-run session store
  - stimuli: Stimulus list loading and shuffling
  - auth: Token generation and credential checks
  - db: Connection setup, schema, soft migration
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
