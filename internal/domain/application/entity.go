package application

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusApplied            Status = "applied"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusAccepted           Status = "accepted"
	StatusRejected           Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusInterviewScheduled, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

var transitions = map[Status][]Status{
	StatusApplied:            {StatusInterviewScheduled, StatusAccepted, StatusRejected},
	StatusInterviewScheduled: {StatusAccepted, StatusRejected},
}

// CanTransition reports whether an application may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Application is unique per (JobID, CandidateID).
type Application struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"job_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Status      Status    `json:"status"`
	AppliedAt   time.Time `json:"applied_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Interview struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Interviewer   string    `json:"interviewer"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// Set when listed for a candidate.
	JobTitle    string `json:"job_title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}
