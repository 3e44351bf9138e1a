package extraction

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"jobmatch/internal/domain/resume"
	"jobmatch/internal/domain/skill"

	"go.uber.org/zap"
)

const vocabularyTTL = 5 * time.Minute

var (
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern      = regexp.MustCompile(`\+?\d[\d ().\-]{7,}\d`)
	experiencePattern = regexp.MustCompile(`(?i)(\d{1,2})\s*\+?\s*(?:years?|yrs?)(?:\s+of)?(?:\s+\w+)?\s+experience|experience\s*(?:of|:)?\s*(\d{1,2})\s*\+?\s*(?:years?|yrs?)`)
	locationPattern   = regexp.MustCompile(`(?im)^\s*(?:location|address|based in)\s*[:\-]\s*(.+)$`)
)

// VocabularySource lists the skills the extractor looks for.
type VocabularySource interface {
	ListAll(ctx context.Context) ([]skill.Skill, error)
}

type matcher struct {
	name    string
	pattern *regexp.Regexp
}

// Extractor turns résumé documents into an ExtractedProfile using a skill
// vocabulary and a few text patterns.
type Extractor struct {
	source VocabularySource
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	matchers []matcher
	loadedAt time.Time
}

func New(source VocabularySource, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{source: source, logger: logger, now: time.Now}
}

func (e *Extractor) Extract(ctx context.Context, contentType string, data []byte) (resume.ExtractedProfile, error) {
	if err := ctx.Err(); err != nil {
		return resume.ExtractedProfile{}, resume.Transient(err)
	}

	text, err := plainText(contentType, data)
	if err != nil {
		return resume.ExtractedProfile{}, err
	}

	matchers := e.vocabulary(ctx)
	if err := ctx.Err(); err != nil {
		return resume.ExtractedProfile{}, resume.Transient(err)
	}

	return resume.ExtractedProfile{
		RawText:         text,
		CandidateSkills: detectSkills(text, matchers),
		ExperienceHint:  experienceHint(text),
		Contact:         contact(text),
	}, nil
}

// vocabulary returns the cached matchers, reloading them from the source
// when stale. The built-in vocabulary is used when the source fails or is
// empty.
func (e *Extractor) vocabulary(ctx context.Context) []matcher {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.matchers != nil && e.now().Sub(e.loadedAt) < vocabularyTTL {
		return e.matchers
	}

	var skills []skill.Skill
	if e.source != nil {
		loaded, err := e.source.ListAll(ctx)
		if err != nil {
			e.logger.Warn("load skill vocabulary", zap.Error(err))
		}
		skills = loaded
	}
	if len(skills) == 0 {
		skills = skill.Defaults()
	}

	e.matchers = compile(skills)
	e.loadedAt = e.now()
	return e.matchers
}

func compile(skills []skill.Skill) []matcher {
	out := make([]matcher, 0, len(skills))
	for _, s := range skills {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		expr := `(?:^|[^\pL\pN+#.])` + regexp.QuoteMeta(name) + `(?:$|[^\pL\pN+#])`
		// short names and acronyms like "Go" or "REST" only count in their exact casing
		if !caseSensitive(name) {
			expr = `(?i)` + expr
		}
		out = append(out, matcher{name: name, pattern: regexp.MustCompile(expr)})
	}
	return out
}

func caseSensitive(name string) bool {
	n := len([]rune(name))
	return n <= 2 || (n <= 4 && name == strings.ToUpper(name))
}

func detectSkills(text string, matchers []matcher) []string {
	seen := make(map[string]struct{}, len(matchers))
	out := make([]string, 0)
	for _, m := range matchers {
		if !m.pattern.MatchString(text) {
			continue
		}
		key := strings.ToLower(m.name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m.name)
	}
	sort.Strings(out)
	return out
}

// experienceHint reports the largest "N years" figure tied to experience,
// e.g. "6 years".
func experienceHint(text string) string {
	best := -1
	for _, m := range experiencePattern.FindAllStringSubmatch(text, -1) {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if n, err := strconv.Atoi(g); err == nil && n > best {
				best = n
			}
		}
	}
	if best < 0 {
		return ""
	}
	if best == 1 {
		return "1 year"
	}
	return strconv.Itoa(best) + " years"
}

func contact(text string) resume.ContactInfo {
	var c resume.ContactInfo
	c.Email = emailPattern.FindString(text)
	for _, p := range phonePattern.FindAllString(text, -1) {
		if digits(p) >= 9 {
			c.Phone = strings.TrimSpace(p)
			break
		}
	}
	if m := locationPattern.FindStringSubmatch(text); len(m) == 2 {
		c.Location = strings.TrimSpace(m[1])
	}
	return c
}

func digits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
