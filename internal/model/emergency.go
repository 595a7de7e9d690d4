package model

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyRequest is an incoming alert request. RequesterID is the
// client's network origin and is used only for rate limiting; the
// remaining fields feed message rendering.
type EmergencyRequest struct {
	RequesterID   string
	BloodGroup    string
	City          string
	State         string
	HospitalName  string
	Address       string
	RequesterName string
	Notes         string
}

// DispatchOutcome is the result of one delivery attempt.
type DispatchOutcome struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	OK          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
}

// AlertResult aggregates a whole fan-out. Sent+Failed always equals Total.
type AlertResult struct {
	Total    int               `json:"total"`
	Sent     int               `json:"sent"`
	Failed   int               `json:"failed"`
	Duration time.Duration     `json:"duration"`
	Outcomes []DispatchOutcome `json:"outcomes,omitempty"`
}

// RateLimitRecord is one row of a requester's emergency history. The
// history is append-only; the limiter reads it and never edits it.
type RateLimitRecord struct {
	RequesterID string    `db:"requester_ip"`
	CreatedAt   time.Time `db:"created_at"`
}

// EmergencyAudit is the persisted record of a processed emergency
// request, including how the fan-out went. Its CreatedAt doubles as the
// rate-limit history timestamp for the requester.
type EmergencyAudit struct {
	ID            uuid.UUID `db:"id"`
	RequesterID   string    `db:"requester_ip"`
	RequesterName string    `db:"requester_name"`
	HospitalName  string    `db:"hospital_name"`
	BloodGroup    string    `db:"blood_group"`
	City          string    `db:"city"`
	State         string    `db:"state"`
	Address       string    `db:"address"`
	Notes         string    `db:"notes"`
	AlertsSent    int       `db:"alerts_sent"`
	AlertsFailed  int       `db:"alerts_failed"`
	CreatedAt     time.Time `db:"created_at"`
}
