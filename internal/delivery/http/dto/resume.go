package dto

import "github.com/google/uuid"

type AnalyzeResponse struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	ResumeID uuid.UUID `json:"resume_id"`
}

type LatestAnalysisResponse struct {
	HasAnalysis bool `json:"has_analysis"`
	Data        any  `json:"data,omitempty"`
}

type HistoryEntryResponse struct {
	ID              uuid.UUID `json:"id"`
	ResumeID        uuid.UUID `json:"resume_id"`
	FileName        string    `json:"file_name"`
	Summary         string    `json:"summary"`
	ExtractedSkills []string  `json:"extracted_skills"`
	ExperienceLevel string    `json:"experience_level"`
	ProcessingTime  float64   `json:"processing_time"`
	CreatedAt       string    `json:"created_at"`
}
