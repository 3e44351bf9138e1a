package resume

import (
	"time"

	"jobmatch/internal/domain"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusAnalyzed   Status = "analyzed"
	StatusFailed     Status = "failed"
)

type Resume struct {
	ID            uuid.UUID    `json:"id"`
	CandidateID   uuid.UUID    `json:"candidate_id"`
	StorageRef    string       `json:"-"`
	FileName      string       `json:"file_name"`
	ContentType   string       `json:"content_type"`
	SizeBytes     int64        `json:"size_bytes"`
	UploadedAt    time.Time    `json:"uploaded_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Status        Status       `json:"status"`
	Stage         domain.Stage `json:"stage"`
	FailureReason string       `json:"failure_reason,omitempty"`
}

type ContactInfo struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// ExtractedProfile is the structured output of document extraction.
type ExtractedProfile struct {
	RawText         string
	CandidateSkills []string
	ExperienceHint  string
	Contact         ContactInfo
}

type JobMatch struct {
	JobID uuid.UUID `json:"job_id"`
	Score int       `json:"score"`
}

// Analysis is immutable once stored; there is at most one per Resume.
type Analysis struct {
	ID              uuid.UUID  `json:"id"`
	ResumeID        uuid.UUID  `json:"resume_id"`
	CandidateID     uuid.UUID  `json:"candidate_id"`
	CreatedAt       time.Time  `json:"created_at"`
	Summary         string     `json:"summary"`
	Strengths       []string   `json:"strengths"`
	Gaps            []string   `json:"gaps"`
	ExtractedSkills []string   `json:"extracted_skills"`
	ExperienceLevel string     `json:"experience_level"`
	JobMatches      []JobMatch `json:"job_matches"`
	ProcessingSecs  float64    `json:"processing_time"`
}

// HistoryEntry pairs an Analysis with the file it was produced from.
type HistoryEntry struct {
	Analysis Analysis
	FileName string
}
