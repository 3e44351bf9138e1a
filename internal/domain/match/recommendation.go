package match

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation is the stored best-match record for a (candidate, job) pair,
// refreshed after each completed analysis.
type Recommendation struct {
	ID          uuid.UUID `json:"id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	JobID       uuid.UUID `json:"job_id"`
	JobTitle    string    `json:"job_title,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Score       int       `json:"score"`
	Explanation string    `json:"explanation"`
	CreatedAt   time.Time `json:"created_at"`
}
