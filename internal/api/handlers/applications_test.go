package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/domain/applications"
	"github.com/internhub/server/internal/domain/internships"
	"github.com/internhub/server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) Apply(ctx context.Context, caller auth.Identity, params applications.ApplyParams) (*applications.Application, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applications.Application), args.Error(1)
}

func (m *MockApplicationService) ListMine(ctx context.Context, caller auth.Identity) ([]applications.Application, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).([]applications.Application), args.Error(1)
}

func (m *MockApplicationService) ListForInternship(ctx context.Context, caller auth.Identity, internshipID string) ([]applications.Application, error) {
	args := m.Called(ctx, caller, internshipID)
	return args.Get(0).([]applications.Application), args.Error(1)
}

func (m *MockApplicationService) UpdateStatus(ctx context.Context, caller auth.Identity, id string, status string) (*applications.Application, error) {
	args := m.Called(ctx, caller, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*applications.Application), args.Error(1)
}

func sampleApplication() *applications.Application {
	return &applications.Application{
		ID:           testApplicationID,
		InternshipID: testPostingID,
		StudentID:    testStudentID,
		CoverLetter:  "hello",
		Answers:      []applications.Answer{{Question: "Why us?", Answer: "Mission"}},
		Status:       applications.StatusApplied,
		AppliedAt:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestApply(t *testing.T) {
	svc := new(MockApplicationService)
	svc.On("Apply", mock.Anything, studentIdentity, applications.ApplyParams{
		InternshipID: testPostingID,
		CoverLetter:  "hello",
		Answers:      []applications.Answer{{Question: "Why us?", Answer: "Mission"}},
	}).Return(sampleApplication(), nil)
	handler := NewApplicationsHandler(svc, "test")

	req := withIdentity(jsonRequest(t, http.MethodPost, "/api/applications", map[string]any{
		"internshipId": testPostingID,
		"coverLetter":  "hello",
		"answers":      []map[string]string{{"question": "Why us?", "answer": "Mission"}},
	}), studentIdentity)
	rec := httptest.NewRecorder()
	handler.Apply(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, testPostingID, resp["internship"])
	assert.Equal(t, testStudentID, resp["student"])
	assert.Equal(t, "applied", resp["status"])
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate", applications.ErrAlreadyApplied, http.StatusBadRequest, "AlreadyApplied"},
		{"missing posting", internships.ErrNotFound, http.StatusNotFound, "NotFound"},
		{"employer", applications.ErrForbidden, http.StatusForbidden, "Forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockApplicationService)
			svc.On("Apply", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := httptest.NewRecorder()
			NewApplicationsHandler(svc, "test").Apply(rec,
				withIdentity(jsonRequest(t, http.MethodPost, "/api/applications", map[string]string{"internshipId": testPostingID}), studentIdentity))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeProblem(t, rec).Code)
		})
	}
}

func TestMyApplications_PopulatesPosting(t *testing.T) {
	svc := new(MockApplicationService)
	application := sampleApplication()
	application.Internship = &applications.InternshipSummary{
		ID: testPostingID, Title: "Backend Intern", Company: "Acme", Status: internships.StatusActive,
		Type: internships.WorkModeRemote, Location: "Pune", Stipend: "10000",
	}
	svc.On("ListMine", mock.Anything, studentIdentity).Return([]applications.Application{*application}, nil)

	rec := httptest.NewRecorder()
	NewApplicationsHandler(svc, "test").Mine(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/api/applications/my-applications", nil), studentIdentity))

	require.Equal(t, http.StatusOK, rec.Code)
	var list []struct {
		Internship InternshipSummaryResponse `json:"internship"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Internship.Company)
	assert.Equal(t, "Remote", list[0].Internship.Type)
}

func TestApplicantsForInternship_PopulatesStudent(t *testing.T) {
	svc := new(MockApplicationService)
	application := sampleApplication()
	application.Student = &applications.StudentSummary{ID: testStudentID, Name: "Sam", Email: "sam@uni.test", Skills: []string{"go"}}
	application.InternshipTitle = "Backend Intern"
	svc.On("ListForInternship", mock.Anything, employerIdentity, testPostingID).Return([]applications.Application{*application}, nil)
	handler := withPathID("GET /api/applications/internship/{id}", NewApplicationsHandler(svc, "test").ForInternship)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/api/applications/internship/"+testPostingID, nil), employerIdentity))

	require.Equal(t, http.StatusOK, rec.Code)
	var list []struct {
		Student    StudentSummaryResponse    `json:"student"`
		Internship InternshipSummaryResponse `json:"internship"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "sam@uni.test", list[0].Student.Email)
	assert.Equal(t, "Backend Intern", list[0].Internship.Title)
}

func TestUpdateApplicationStatus(t *testing.T) {
	svc := new(MockApplicationService)
	shortlisted := sampleApplication()
	shortlisted.Status = applications.StatusShortlisted
	svc.On("UpdateStatus", mock.Anything, employerIdentity, testApplicationID, "shortlisted").Return(shortlisted, nil)
	svc.On("UpdateStatus", mock.Anything, employerIdentity, testApplicationID, "bogus").
		Return(nil, validation.Fail("status", "must be one of: applied, viewed, shortlisted, hired, rejected"))
	handler := withPathID("PUT /api/applications/{id}/status", NewApplicationsHandler(svc, "test").UpdateStatus)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(jsonRequest(t, http.MethodPut, "/api/applications/"+testApplicationID+"/status", StatusRequest{Status: "shortlisted"}), employerIdentity))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ApplicationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "shortlisted", resp.Status)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withIdentity(jsonRequest(t, http.MethodPut, "/api/applications/"+testApplicationID+"/status", StatusRequest{Status: "bogus"}), employerIdentity))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeProblem(t, rec).Errors, "status")
}
