package reasoning

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/matching"
)

const maxGaps = 5

// Heuristic derives an Insight from detected skills and market demand
// without calling a model.
type Heuristic struct{}

func (Heuristic) Analyze(ctx context.Context, req Request) (Insight, error) {
	if err := ctx.Err(); err != nil {
		return Insight{}, err
	}

	have := make(map[string]struct{}, len(req.CandidateSkills))
	for _, s := range matching.NormalizeAll(req.CandidateSkills) {
		have[s] = struct{}{}
	}

	type demand struct {
		display string
		count   int
	}
	wanted := make(map[string]*demand)
	for _, j := range req.Market {
		seen := make(map[string]struct{})
		for _, r := range j.Requirements {
			for _, part := range strings.FieldsFunc(r, func(c rune) bool { return c == ',' || c == ';' || c == '|' || c == '\n' }) {
				key := matching.Normalize(part)
				if key == "" {
					continue
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				if d, ok := wanted[key]; ok {
					d.count++
				} else {
					wanted[key] = &demand{display: strings.TrimSpace(part), count: 1}
				}
			}
		}
	}

	var strengths []string
	for _, s := range req.CandidateSkills {
		if _, ok := wanted[matching.Normalize(s)]; ok {
			strengths = append(strengths, s)
		}
	}

	gapKeys := make([]string, 0, len(wanted))
	for k := range wanted {
		if _, ok := have[k]; !ok {
			gapKeys = append(gapKeys, k)
		}
	}
	sort.Slice(gapKeys, func(i, j int) bool {
		a, b := wanted[gapKeys[i]], wanted[gapKeys[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return gapKeys[i] < gapKeys[j]
	})
	if len(gapKeys) > maxGaps {
		gapKeys = gapKeys[:maxGaps]
	}
	gaps := make([]string, 0, len(gapKeys))
	for _, k := range gapKeys {
		gaps = append(gaps, wanted[k].display)
	}

	level := candidate.LevelForYears(candidate.YearsFromHint(req.ExperienceHint))
	if level == "" {
		level = candidate.LevelMid
	}

	return Insight{
		Summary:         summarize(req.CandidateSkills, level, len(strengths)),
		Strengths:       nonNil(strengths),
		Gaps:            gaps,
		Skills:          nonNil(append([]string(nil), req.CandidateSkills...)),
		ExperienceLevel: level,
	}, nil
}

func summarize(skills []string, level string, inDemand int) string {
	if len(skills) == 0 {
		return fmt.Sprintf("%s candidate. No recognised technical skills were found in the résumé.", level)
	}
	shown := skills
	if len(shown) > 5 {
		shown = shown[:5]
	}
	return fmt.Sprintf("%s candidate with %d recognised skills including %s. %d of them are requested by active job postings.",
		level, len(skills), strings.Join(shown, ", "), inDemand)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
