package reasoning

import (
	"strings"
	"text/template"

	"jobmatch/internal/logger"
)

const (
	maxResumeChars = 12000
	maxMarketJobs  = 25
)

var promptTemplate = template.Must(template.New("insight").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`You are reviewing a candidate's résumé for a job-matching platform.

Reply with a single JSON object and nothing else:
{"summary": string, "strengths": [string], "gaps": [string], "skills": [string], "experience_level": "Entry-level" | "Mid-level" | "Senior"}

- summary: two or three sentences about the candidate.
- strengths: skills or experience the candidate shows that the market below asks for.
- gaps: skills the market below asks for that the candidate lacks.
- skills: every technical skill the candidate demonstrably has, short canonical names.

Skills already detected: {{ join .CandidateSkills ", " }}
{{- if .ExperienceHint }}
Experience noted: {{ .ExperienceHint }}
{{- end }}
{{ if .Market }}
Active job postings:
{{- range .Market }}
- {{ .Title }}: {{ join .Requirements ", " }}
{{- end }}
{{ end }}
Résumé:
"""
{{ .RawText }}
"""
`))

// BuildPrompt renders the reasoning prompt for req. The résumé text and the
// market list are truncated to keep the prompt bounded.
func BuildPrompt(req Request) (string, error) {
	req.RawText = logger.Truncate(req.RawText, maxResumeChars)
	if len(req.Market) > maxMarketJobs {
		req.Market = req.Market[:maxMarketJobs]
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, req); err != nil {
		return "", err
	}
	return b.String(), nil
}
