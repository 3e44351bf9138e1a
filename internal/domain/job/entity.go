package job

import (
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry,omitempty"`
	Location  string    `json:"location,omitempty"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type EmploymentType string

const (
	TypeFullTime   EmploymentType = "full_time"
	TypePartTime   EmploymentType = "part_time"
	TypeContract   EmploymentType = "contract"
	TypeInternship EmploymentType = "internship"
	TypeRemote     EmploymentType = "remote"
)

func (t EmploymentType) Valid() bool {
	switch t {
	case TypeFullTime, TypePartTime, TypeContract, TypeInternship, TypeRemote:
		return true
	default:
		return false
	}
}

// Posting is a job advertised by a company. Requirements are free-form skill
// names as the recruiter wrote them.
type Posting struct {
	ID           uuid.UUID      `json:"id"`
	CompanyID    uuid.UUID      `json:"company_id"`
	CompanyName  string         `json:"company_name,omitempty"`
	Title        string         `json:"title"`
	Location     string         `json:"location"`
	Type         EmploymentType `json:"type"`
	SalaryRange  string         `json:"salary_range,omitempty"`
	Description  string         `json:"description"`
	Requirements []string       `json:"requirements"`
	Benefits     []string       `json:"benefits"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
}
