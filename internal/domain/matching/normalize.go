package matching

import (
	"strings"
)

// aliases maps common spellings to a canonical lower-case token.
var aliases = map[string]string{
	"golang":              "go",
	"go lang":             "go",
	"reactjs":             "react",
	"react.js":            "react",
	"vuejs":               "vue",
	"vue.js":              "vue",
	"nodejs":              "node.js",
	"node":                "node.js",
	"js":                  "javascript",
	"ts":                  "typescript",
	"k8s":                 "kubernetes",
	"postgres":            "postgresql",
	"psql":                "postgresql",
	"amazon web services": "aws",
	"google cloud":        "gcp",
	"ml":                  "machine learning",
	"ci cd":               "ci/cd",
	"cicd":                "ci/cd",
}

// Normalize returns the canonical token for a skill name, or "" when the
// name is blank.
func Normalize(name string) string {
	t := strings.ToLower(strings.Join(strings.Fields(name), " "))
	t = strings.TrimRight(t, ".,;:")
	if t == "" {
		return ""
	}
	if canonical, ok := aliases[t]; ok {
		return canonical
	}
	return t
}

// NormalizeAll normalizes and dedupes a list of skill names, keeping order of
// first appearance.
func NormalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		t := Normalize(n)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// token is a normalized requirement with the spelling the job used.
type token struct {
	key     string
	display string
}

// requirementTokens splits requirement entries on list separators and
// returns deduped tokens in order of first appearance.
func requirementTokens(reqs []string) []token {
	out := make([]token, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		parts := strings.FieldsFunc(r, func(c rune) bool {
			return c == ',' || c == ';' || c == '|' || c == '\n'
		})
		for _, p := range parts {
			key := Normalize(p)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, token{key: key, display: strings.Join(strings.Fields(p), " ")})
		}
	}
	return out
}
