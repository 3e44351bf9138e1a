package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stage is a step of a résumé analysis run.
type Stage string

const (
	StageUploaded   Stage = "uploaded"
	StageExtracting Stage = "extracting"
	StageAnalyzing  Stage = "analyzing"
	StageMatching   Stage = "matching"
	StageComplete   Stage = "complete"
	StageFailed     Stage = "failed"
)

var stageOrder = map[Stage]int{
	StageUploaded:   0,
	StageExtracting: 1,
	StageAnalyzing:  2,
	StageMatching:   3,
	StageComplete:   4,
}

func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageFailed
}

// Cancellable reports whether a run in this stage may still be cancelled.
func (s Stage) Cancellable() bool {
	return s == StageUploaded || s == StageExtracting || s == StageAnalyzing
}

// CanAdvance reports whether a run may move from one stage to another.
// Stages only move forward one step at a time; failed is reachable from any
// non-terminal stage.
func CanAdvance(from, to Stage) bool {
	if from.Terminal() {
		return false
	}
	if to == StageFailed {
		return true
	}
	f, ok := stageOrder[from]
	if !ok {
		return false
	}
	t, ok := stageOrder[to]
	if !ok {
		return false
	}
	return t == f+1
}

// Progress is a rough completion percentage for a stage.
func (s Stage) Progress() int {
	switch s {
	case StageUploaded:
		return 0
	case StageExtracting:
		return 25
	case StageAnalyzing:
		return 50
	case StageMatching:
		return 75
	case StageComplete, StageFailed:
		return 100
	default:
		return 0
	}
}

// RunState is the observable state of one analysis run.
type RunState struct {
	ResumeID    uuid.UUID `json:"resume_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Stage       Stage     `json:"stage"`
	Progress    int       `json:"progress"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Elapsed     float64   `json:"elapsed_seconds"`
	Error       string    `json:"error,omitempty"`
}

// StageEvent is pushed to subscribers on every stage change.
type StageEvent struct {
	Type        string    `json:"type"`
	ResumeID    uuid.UUID `json:"resume_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Stage       Stage     `json:"stage"`
	Progress    int       `json:"progress"`
	Error       string    `json:"error,omitempty"`
	Timestamp   string    `json:"timestamp"`
}
