package reasoning

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobmatch/internal/domain/candidate"

	"github.com/xeipuuv/gojsonschema"
)

const insightSchema = `{
  "type": "object",
  "required": ["summary", "strengths", "gaps", "skills"],
  "properties": {
    "summary": {"type": "string", "minLength": 1},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "gaps": {"type": "array", "items": {"type": "string"}},
    "skills": {"type": "array", "items": {"type": "string"}},
    "experience_level": {"type": "string"}
  }
}`

var insightSchemaLoader = gojsonschema.NewStringLoader(insightSchema)

// Decode validates a model reply against the insight schema and returns the
// cleaned Insight. Markdown code fences around the JSON are ignored.
func Decode(raw string) (Insight, error) {
	body := stripFence(raw)
	if body == "" {
		return Insight{}, fmt.Errorf("%w: empty response", ErrInvalidInsight)
	}

	result, err := gojsonschema.Validate(insightSchemaLoader, gojsonschema.NewStringLoader(body))
	if err != nil {
		return Insight{}, fmt.Errorf("%w: %v", ErrInvalidInsight, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.Field()+": "+e.Description())
		}
		return Insight{}, fmt.Errorf("%w: %s", ErrInvalidInsight, strings.Join(msgs, "; "))
	}

	var in Insight
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return Insight{}, fmt.Errorf("%w: %v", ErrInvalidInsight, err)
	}

	in.Summary = strings.TrimSpace(in.Summary)
	in.Strengths = cleanList(in.Strengths)
	in.Gaps = cleanList(in.Gaps)
	in.Skills = cleanList(in.Skills)
	in.ExperienceLevel = normalizeLevel(in.ExperienceLevel)
	return in, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

func normalizeLevel(level string) string {
	switch l := strings.ToLower(strings.TrimSpace(level)); {
	case l == "":
		return ""
	case strings.Contains(l, "senior"), strings.Contains(l, "lead"), strings.Contains(l, "principal"):
		return candidate.LevelSenior
	case strings.Contains(l, "mid"), strings.Contains(l, "intermediate"):
		return candidate.LevelMid
	case strings.Contains(l, "entry"), strings.Contains(l, "junior"), strings.Contains(l, "graduate"):
		return candidate.LevelEntry
	default:
		return ""
	}
}
