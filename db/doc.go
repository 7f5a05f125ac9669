// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection setup, schema creation, and the
soft migration for pre-run-tracking databases.

# Opening

Open connects according to Config.DatabaseType:

	conn, err := db.Open(cfg)

For sqlite (the default) it creates the parent directory, limits the pool
to a single writer connection, and applies WAL, foreign_keys, and
busy_timeout pragmas. For postgres it opens the URL as-is.

# Schema Creation

CreateSchema initializes the response table:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

One table only:

  - response: one row per accepted trial submission, tagged with the
    run_id of the session that produced it and an is_complete flag that
    flips when the run reaches the thank-you step

Indexes on response.run_id and response.is_complete.

# Migration

Migrate adds run_id and is_complete to databases created before those
columns existed, preserving old rows:

	if err := db.Migrate(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

# Vacuum

Vacuum reclaims file space after the destructive admin operations.
Callers treat a failure as non-fatal.
*/
package db
