package auth

import (
	"jobmatch/internal/domain/principal"

	"github.com/google/uuid"
)

type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

type ResourceKind string

const (
	// Candidate-owned.
	KindCandidateProfile ResourceKind = "candidate_profile"
	KindResume           ResourceKind = "resume"
	KindApplication      ResourceKind = "application"

	// Recruiter-owned, through the company.
	KindCompany         ResourceKind = "company"
	KindJobPosting      ResourceKind = "job_posting"
	KindJobApplications ResourceKind = "job_applications"
)

// Resource names what is being accessed and the principal that owns it.
// For recruiter-owned kinds OwnerID is the owner of the company.
type Resource struct {
	Kind    ResourceKind
	OwnerID uuid.UUID
}

// Authorize reports ErrForbidden unless p may perform action on res. Job
// postings are public to read.
func Authorize(p principal.Principal, action Action, res Resource) error {
	if p.ID == uuid.Nil {
		return ErrUnauthorized
	}

	switch res.Kind {
	case KindCandidateProfile, KindResume, KindApplication:
		if p.Role == principal.RoleCandidate && res.OwnerID == p.ID {
			return nil
		}
	case KindJobPosting:
		if action == ActionRead {
			return nil
		}
		fallthrough
	case KindCompany, KindJobApplications:
		if p.Role == principal.RoleRecruiter && res.OwnerID == p.ID {
			return nil
		}
	}
	return ErrForbidden
}
