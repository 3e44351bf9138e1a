package dto

import "github.com/google/uuid"

type CreateCompanyRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Industry string `json:"industry" validate:"omitempty,max=100"`
	Location string `json:"location" validate:"omitempty,max=200"`
	Website  string `json:"website" validate:"omitempty,url"`
}

type CreateJobRequest struct {
	CompanyID    *uuid.UUID `json:"company_id"`
	Title        string     `json:"title" validate:"required,max=200"`
	Location     string     `json:"location" validate:"omitempty,max=200"`
	Type         string     `json:"type" validate:"omitempty,oneof=full_time part_time contract internship remote"`
	SalaryRange  string     `json:"salary_range" validate:"omitempty,max=100"`
	Description  string     `json:"description"`
	Requirements []string   `json:"requirements" validate:"dive,max=100"`
	Benefits     []string   `json:"benefits" validate:"dive,max=200"`
}

type JobMatchResponse struct {
	HasResume     bool     `json:"has_resume"`
	MatchScore    int      `json:"match_score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Strengths     []string `json:"strengths"`
	Gaps          []string `json:"gaps"`
	Message       string   `json:"message,omitempty"`
}
