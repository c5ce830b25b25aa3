package models

import "time"

// WorkItem is one rendition request submitted by a workflow.
type WorkItem struct {
	ID              string            `json:"id"`
	PayloadPath     string            `json:"payload"`
	ProcessArgs     string            `json:"process_args"`
	UserID          string            `json:"user_id"`
	WorkflowID      string            `json:"workflow_id,omitempty"`
	CallbackURL     string            `json:"callback,omitempty"`
	CallbackHeaders map[string]string `json:"callback_headers,omitempty"`
	SubmittedAt     time.Time         `json:"submitted_at"`
}

// PairOutcome is the result of one planned pair.
type PairOutcome string

const (
	OutcomeGenerated PairOutcome = "generated"
	OutcomeSkipped   PairOutcome = "skipped"
	OutcomeMalformed PairOutcome = "malformed"
	OutcomeFailed    PairOutcome = "failed"
	OutcomeCancelled PairOutcome = "cancelled"
)

type PairResult struct {
	PlannedPair
	Outcome PairOutcome `json:"outcome"`
	Error   string      `json:"error,omitempty"`
}

// ExecutionReport summarizes one planner run over an asset.
type ExecutionReport struct {
	AssetPath   string             `json:"asset_path"`
	Pairs       []PairResult       `json:"pairs"`
	Attribution *AttributionRecord `json:"attribution,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
}

// Count returns how many pairs ended with the given outcome.
func (r ExecutionReport) Count(o PairOutcome) int {
	n := 0
	for _, p := range r.Pairs {
		if p.Outcome == o {
			n++
		}
	}
	return n
}

// SubmitClaims are the JWT claims on submission routes; Subject is the acting user.
type SubmitClaims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
