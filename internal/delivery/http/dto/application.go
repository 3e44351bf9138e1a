package dto

import (
	"time"

	"github.com/google/uuid"
)

type ApplyRequest struct {
	JobID uuid.UUID `json:"job_id" validate:"required"`
}

type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=interview_scheduled accepted rejected"`
}

type ScheduleInterviewRequest struct {
	ApplicationID uuid.UUID `json:"application_id" validate:"required"`
	ScheduledTime time.Time `json:"scheduled_time" validate:"required"`
	Interviewer   string    `json:"interviewer" validate:"required,max=200"`
	Notes         string    `json:"notes" validate:"omitempty,max=2000"`
}
