package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patchJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestProfile_Access(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "no token", token: "", status: fiber.StatusUnauthorized},
		{name: "recruiter", token: s.owner, status: fiber.StatusForbidden},
		{name: "candidate", token: s.candidate, status: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/candidates/me", nil), tt.token)
			assert.Equal(t, tt.status, status)

			status, _ = s.do(t, patchJSON("/candidates/me", `{"location":"Turin"}`), tt.token)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestProfile_PatchKeepsOmittedFields(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, patchJSON("/candidates/me", `{"location":"Turin","experience_level":"Mid-level"}`), s.candidate)
	require.Equal(t, fiber.StatusOK, status)
	data := env.Data.(map[string]any)
	assert.Equal(t, "Ada", data["full_name"])
	assert.Equal(t, "Turin", data["location"])
	assert.Equal(t, "Mid-level", data["experience_level"])
	assert.Equal(t, []any{"go", "sql"}, data["skills"])

	status, env = s.do(t, httptest.NewRequest(http.MethodGet, "/candidates/me", nil), s.candidate)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Turin", env.Data.(map[string]any)["location"])
}

func TestProfile_PatchRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, patchJSON("/candidates/me", `{"experience_level":"Principal"}`), s.candidate)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Bad request", env.Message)

	status, _ = s.do(t, patchJSON("/candidates/me", `{}`), s.candidate)
	assert.Equal(t, fiber.StatusBadRequest, status)

	long := strings.Repeat("x", 201)
	status, env = s.do(t, patchJSON("/candidates/me", `{"full_name":"`+long+`"}`), s.candidate)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Equal(t, map[string]any{"FullName": "max=200"}, env.Data)
}

func TestInterviews_CandidateList(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, httptest.NewRequest(http.MethodGet, "/candidates/interviews", nil), s.candidate)
	require.Equal(t, fiber.StatusOK, status)
	items, ok := env.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "Grace", first["interviewer"])
	assert.Equal(t, "Backend", first["job_title"])
	assert.Equal(t, "Acme", first["company_name"])

	status, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/candidates/interviews", nil), s.owner)
	assert.Equal(t, fiber.StatusForbidden, status)
}
