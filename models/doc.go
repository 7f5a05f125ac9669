// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SubmitTrialRequest: trial_index, start_time, q1-q5
  - AdminLoginRequest: username, password
  - ConfirmRequest: really ("yes" to confirm destructive operations)

# Response Types

Types for JSON responses:

  - StartRunResponse: participant_id, run_id, version, total
  - CurrentTrialResponse: stimulus, index, total, start_time, finished
  - SubmitTrialResponse: recorded, trial_index, done, remaining
  - CompleteRunResponse: version, run_id, completed
  - SummaryResponse: completed, partial
  - DeleteResponse: deleted
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Response: one persisted rating row (participant, stimulus, q1-q5,
    run_id, is_complete)
  - StimulusView: per-trial payload served to the frontend

# Constants

Experiment versions:

	VersionCN = "cn"
	VersionJP = "jp"

Likert bounds for the five ratings:

	RatingMin = 1
	RatingMax = 7
*/
package models
