package models

// Experiment version constants
const (
	VersionCN = "cn"
	VersionJP = "jp"
)

// Likert rating bounds for q1-q5
const (
	RatingMin = 1
	RatingMax = 7
)

// Request types

type SubmitTrialRequest struct {
	TrialIndex *int   `json:"trial_index"`
	StartTime  string `json:"start_time"`
	Q1         *int   `json:"q1"`
	Q2         *int   `json:"q2"`
	Q3         *int   `json:"q3"`
	Q4         *int   `json:"q4"`
	Q5         *int   `json:"q5"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Destructive admin operations carry this confirmation flag
type ConfirmRequest struct {
	Really string `json:"really"`
}

// Response types

type StartRunResponse struct {
	ParticipantID string `json:"participant_id"`
	RunID         string `json:"run_id"`
	Version       string `json:"version"`
	Total         int    `json:"total"`
}

type CurrentTrialResponse struct {
	Finished  bool          `json:"finished"`
	Stimulus  *StimulusView `json:"stimulus,omitempty"`
	Index     int           `json:"index,omitempty"` // 1-based position shown to the participant
	Total     int           `json:"total"`
	Version   string        `json:"version"`
	StartTime string        `json:"start_time,omitempty"`
}

type SubmitTrialResponse struct {
	Recorded   bool `json:"recorded"`
	TrialIndex int  `json:"trial_index"`
	Done       bool `json:"done"`
	Remaining  int  `json:"remaining"`
}

type CompleteRunResponse struct {
	Version   string `json:"version"`
	RunID     string `json:"run_id"`
	Completed bool   `json:"completed"`
	Trials    int64  `json:"trials"` // rows marked complete for the run
}

type AdminLoginResponse struct {
	Message string `json:"message"`
}

type SummaryResponse struct {
	Completed int `json:"completed"`
	Partial   int `json:"partial"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// Domain types

// StimulusView is the per-trial payload served to the frontend.
type StimulusView struct {
	StimulusLabel string `json:"stimulus_label"`
	Person        string `json:"person"`
	URL           string `json:"url"`
	Index         int    `json:"index"` // 0-based position within the shuffled run
}

// Response is one persisted rating row.
type Response struct {
	ID            int64  `json:"id"`
	ParticipantID string `json:"participant_id"`
	Version       string `json:"version"`
	StimulusLabel string `json:"stimulus_label"`
	Person        string `json:"person"`
	TrialIndex    int    `json:"trial_index"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Q1            int    `json:"q1"`
	Q2            int    `json:"q2"`
	Q3            int    `json:"q3"`
	Q4            int    `json:"q4"`
	Q5            int    `json:"q5"`
	RunID         string `json:"run_id"`
	IsComplete    bool   `json:"is_complete"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
