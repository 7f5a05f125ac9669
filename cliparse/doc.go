// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite file path or PostgreSQL connection string
  - DatabaseType: "sqlite" (default) or "postgres"
  - StimuliPath: Stimulus list CSV file (default: stimuli_list.csv)
  - AdminUser: Admin username (default: admin)
  - AdminPass: Admin password (required)
  - SessionTTL: Session lifetime (default: 120 minutes)

# CLI Flags

	-p            Server port
	-d            Database path or URL
	-t            Database type
	-s            Stimulus list CSV file
	-session-ttl  Session lifetime in minutes
	-admin-user   Admin username
	-admin-pass   Admin password

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	STIMULI_FILE        → -s
	SESSION_TTL_MINUTES → -session-ttl
	ADMIN_USER          → -admin-user
	ADMIN_PASS          → -admin-pass

CLI flags take precedence over environment variables. main loads a .env
file (if present) before parsing, so deployments can keep secrets there.

# Validation

ParseFlags returns an error if required values are missing:

  - ADMIN_PASS must be provided (there is no default password)
  - DATABASE_URL must be provided when DATABASE_TYPE is postgres
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
