package matching

import (
	"bytes"
	"iter"
	"math"
	"sort"
	"time"

	"jobmatch/internal/domain/job"

	"github.com/google/uuid"
)

// NeutralScore is returned for a job that lists no recognisable requirements.
const NeutralScore = 50

type Candidate struct {
	ID              uuid.UUID
	Skills          []string
	ExperienceLevel string
}

type Result struct {
	JobID         uuid.UUID `json:"job_id"`
	CandidateID   uuid.UUID `json:"candidate_id"`
	Score         int       `json:"score"`
	MatchedSkills []string  `json:"matched_skills"`
	MissingSkills []string  `json:"missing_skills"`

	jobCreatedAt time.Time
}

// Score compares a candidate's skills with a job's requirements. Matched and
// missing skills are reported in the job's spelling. Experience level does
// not influence the score.
func Score(c Candidate, j job.Posting) Result {
	have := make(map[string]struct{}, len(c.Skills))
	for _, s := range NormalizeAll(c.Skills) {
		have[s] = struct{}{}
	}

	tokens := requirementTokens(j.Requirements)
	matched := make([]string, 0, len(tokens))
	missing := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := have[t.key]; ok {
			matched = append(matched, t.display)
		} else {
			missing = append(missing, t.display)
		}
	}

	score := NeutralScore
	if len(tokens) > 0 {
		score = clampInt(int(math.Round(100*float64(len(matched))/float64(len(tokens)))), 0, 100)
	}

	return Result{
		JobID:         j.ID,
		CandidateID:   c.ID,
		Score:         score,
		MatchedSkills: matched,
		MissingSkills: missing,
		jobCreatedAt:  j.CreatedAt,
	}
}

// Rank scores every job and yields results best first. Ties go to the newer
// job, then to the lower job id. The sequence does no work until ranged over
// and may be ranged over any number of times.
func Rank(c Candidate, jobs []job.Posting) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		results := make([]Result, 0, len(jobs))
		for _, j := range jobs {
			results = append(results, Score(c, j))
		}

		sort.SliceStable(results, func(i, k int) bool {
			return less(results[i], results[k])
		})

		for _, r := range results {
			if !yield(r) {
				return
			}
		}
	}
}

// Top collects at most n results from seq. n <= 0 collects everything.
func Top(seq iter.Seq[Result], n int) []Result {
	out := make([]Result, 0)
	for r := range seq {
		if n > 0 && len(out) >= n {
			break
		}
		out = append(out, r)
	}
	return out
}

func less(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.jobCreatedAt.Equal(b.jobCreatedAt) {
		return a.jobCreatedAt.After(b.jobCreatedAt)
	}
	return bytes.Compare(a.JobID[:], b.JobID[:]) < 0
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
