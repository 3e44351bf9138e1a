package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/domain/application"
	"jobmatch/internal/domain/candidate"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/principal"
	"jobmatch/internal/pkg/response"
	"jobmatch/internal/repository"
	"jobmatch/internal/usecase/analysis"
	"jobmatch/internal/usecase/auth"
	"jobmatch/internal/usecase/profile"
	resumeuc "jobmatch/internal/usecase/resume"
	"jobmatch/internal/usecase/tracker"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator map[string]principal.Principal

func (f fakeAuthenticator) CurrentPrincipal(ctx context.Context, token string) (principal.Principal, error) {
	p, ok := f[token]
	if !ok {
		return principal.Principal{}, errors.New("unknown token")
	}
	return p, nil
}

type fakeApplications struct {
	repository.ApplicationRepository
	byJob      map[uuid.UUID][]application.Application
	interviews map[uuid.UUID][]application.Interview
}

func (f *fakeApplications) ListInterviewsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]application.Interview, error) {
	return f.interviews[candidateID], nil
}

func (f *fakeApplications) ListByJob(ctx context.Context, id uuid.UUID) ([]application.Application, error) {
	return f.byJob[id], nil
}

type fakeJobs struct {
	repository.JobRepository
	byID map[uuid.UUID]job.Posting
}

func (f *fakeJobs) GetByID(ctx context.Context, id uuid.UUID) (job.Posting, error) {
	j, ok := f.byID[id]
	if !ok {
		return job.Posting{}, repository.ErrJobNotFound
	}
	return j, nil
}

type fakeCompanies struct {
	repository.CompanyRepository
	byID map[uuid.UUID]job.Company
}

func (f *fakeCompanies) GetByID(ctx context.Context, id uuid.UUID) (job.Company, error) {
	c, ok := f.byID[id]
	if !ok {
		return job.Company{}, repository.ErrCompanyNotFound
	}
	return c, nil
}

type fakeCandidates struct {
	repository.CandidateRepository
	byID map[uuid.UUID]candidate.Profile
}

func (f *fakeCandidates) GetByPrincipalID(ctx context.Context, id uuid.UUID) (candidate.Profile, error) {
	for _, p := range f.byID {
		if p.PrincipalID == id {
			return p, nil
		}
	}
	return candidate.Profile{}, repository.ErrCandidateNotFound
}

func (f *fakeCandidates) UpdateDetails(ctx context.Context, id uuid.UUID, d repository.ProfileDetails) (candidate.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return candidate.Profile{}, repository.ErrCandidateNotFound
	}
	p.FullName = d.FullName
	p.Phone = d.Phone
	p.Location = d.Location
	p.ExperienceLevel = d.ExperienceLevel
	f.byID[id] = p
	return p, nil
}

func (f *fakeCandidates) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]candidate.Profile, error) {
	out := make(map[uuid.UUID]candidate.Profile, len(ids))
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type testServer struct {
	app       *fiber.App
	jobID     uuid.UUID
	owner     string
	stranger  string
	candidate string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	owner := principal.Principal{ID: uuid.New(), Role: principal.RoleRecruiter}
	stranger := principal.Principal{ID: uuid.New(), Role: principal.RoleRecruiter}
	cand := principal.Principal{ID: uuid.New(), Role: principal.RoleCandidate}

	company := job.Company{ID: uuid.New(), OwnerID: owner.ID, Name: "Acme"}
	posting := job.Posting{ID: uuid.New(), CompanyID: company.ID, Title: "Backend", Requirements: []string{"Go", "SQL", "Kafka"}, IsActive: true}
	ada := candidate.Profile{ID: uuid.New(), PrincipalID: cand.ID, FullName: "Ada", Skills: []string{"go", "sql"}}
	applied := application.Application{ID: uuid.New(), JobID: posting.ID, CandidateID: ada.ID, Status: application.StatusInterviewScheduled}
	day := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	candidates := &fakeCandidates{byID: map[uuid.UUID]candidate.Profile{ada.ID: ada}}
	tr := tracker.NewService(
		&fakeApplications{
			byJob: map[uuid.UUID][]application.Application{posting.ID: {applied}},
			interviews: map[uuid.UUID][]application.Interview{ada.ID: {
				{ID: uuid.New(), ApplicationID: applied.ID, ScheduledTime: day.Add(24 * time.Hour), Interviewer: "Grace", JobTitle: "Backend", CompanyName: "Acme"},
				{ID: uuid.New(), ApplicationID: applied.ID, ScheduledTime: day, Interviewer: "Linus", JobTitle: "Backend", CompanyName: "Acme"},
			}},
		},
		&fakeJobs{byID: map[uuid.UUID]job.Posting{posting.ID: posting}},
		&fakeCompanies{byID: map[uuid.UUID]job.Company{company.ID: company}},
		candidates,
		nil,
	)

	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())

	authMW := middleware.NewAuthMiddleware(fakeAuthenticator{
		"owner":     owner,
		"stranger":  stranger,
		"candidate": cand,
	})
	NewJobHandler(nil, nil, tr).RegisterRoutes(app.Group("/jobs", authMW.Middleware()))

	apps := NewApplicationHandler(tr)
	app.Post("/candidates/applications", authMW.Middleware(), apps.Apply)

	mine := app.Group("/candidates", authMW.Middleware(), middleware.RequireRole(principal.RoleCandidate))
	NewProfileHandler(profile.NewService(candidates, nil)).RegisterRoutes(mine)
	mine.Get("/interviews", apps.ListInterviews)

	return &testServer{app: app, jobID: posting.ID, owner: "owner", stranger: "stranger", candidate: "candidate"}
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) (int, response.SemanticResponse) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env response.SemanticResponse
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp.StatusCode, env
}

func TestJobApplications_Access(t *testing.T) {
	s := newTestServer(t)
	path := "/jobs/" + s.jobID.String() + "/applications"

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "no token", token: "", status: fiber.StatusUnauthorized},
		{name: "bad token", token: "nope", status: fiber.StatusUnauthorized},
		{name: "candidate", token: s.candidate, status: fiber.StatusForbidden},
		{name: "other recruiter", token: s.stranger, status: fiber.StatusForbidden},
		{name: "owner", token: s.owner, status: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, httptest.NewRequest(http.MethodGet, path, nil), tt.token)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status, env.Status)
		})
	}
}

func TestJobApplications_OwnerSeesScoredApplicants(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, httptest.NewRequest(http.MethodGet, "/jobs/"+s.jobID.String()+"/applications", nil), s.owner)
	require.Equal(t, fiber.StatusOK, status)

	items, ok := env.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "Ada", first["candidate_name"])
	assert.EqualValues(t, 67, first["match_score"])
}

func TestJobApplications_BadAndUnknownID(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/jobs/not-a-uuid/applications", nil), s.owner)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env := s.do(t, httptest.NewRequest(http.MethodGet, "/jobs/"+uuid.NewString()+"/applications", nil), s.owner)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Job not found", env.Message)
}

func TestApply_ValidationFailed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/candidates/applications", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	status, env := s.do(t, req, s.candidate)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Equal(t, map[string]any{"JobID": "required"}, env.Data)
}

func TestMapAnalysisError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: resumeuc.ErrTooLarge, status: fiber.StatusRequestEntityTooLarge},
		{err: resumeuc.ErrUnsupportedFormat, status: fiber.StatusUnsupportedMediaType},
		{err: resumeuc.ErrEmptyDocument, status: fiber.StatusBadRequest},
		{err: analysis.ErrAnalysisInProgress, status: fiber.StatusConflict},
		{err: analysis.ErrBusy, status: fiber.StatusTooManyRequests},
		{err: analysis.ErrNotCancellable, status: fiber.StatusConflict},
		{err: analysis.ErrNoResume, status: fiber.StatusNotFound},
		{err: auth.ErrForbidden, status: fiber.StatusForbidden},
		{err: errors.New("boom"), status: fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			var appErr *middleware.AppError
			require.ErrorAs(t, mapAnalysisError(tt.err), &appErr)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}
