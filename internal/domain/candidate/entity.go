package candidate

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobmatch/internal/domain/matching"
)

type Profile struct {
	ID              uuid.UUID  `json:"id"`
	PrincipalID     uuid.UUID  `json:"principal_id"`
	FullName        string     `json:"full_name"`
	Phone           string     `json:"phone,omitempty"`
	Location        string     `json:"location,omitempty"`
	ExperienceLevel string     `json:"experience_level,omitempty"`
	Skills          []string   `json:"skills"`
	ActiveResumeID  *uuid.UUID `json:"active_resume_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MergeSkills returns the sorted union of existing and incoming skill names.
// Names are compared by their normalized form and the first spelling wins.
func MergeSkills(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			key := matching.Normalize(s)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

const (
	LevelEntry  = "Entry-level"
	LevelMid    = "Mid-level"
	LevelSenior = "Senior"
)

// ValidLevel reports whether level is one of the known levels. Empty clears
// the level.
func ValidLevel(level string) bool {
	switch level {
	case "", LevelEntry, LevelMid, LevelSenior:
		return true
	}
	return false
}

// LevelForYears buckets years of experience. Negative years mean unknown.
func LevelForYears(years int) string {
	switch {
	case years < 0:
		return ""
	case years >= 7:
		return LevelSenior
	case years >= 3:
		return LevelMid
	default:
		return LevelEntry
	}
}

// YearsFromHint reads the leading number of an experience hint such as
// "6 years" or "5+ years". It returns -1 when there is none.
func YearsFromHint(hint string) int {
	fields := strings.Fields(hint)
	if len(fields) == 0 {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSuffix(fields[0], "+"))
	if err != nil {
		return -1
	}
	return n
}
