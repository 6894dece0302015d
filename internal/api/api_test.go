package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"advisor-routing/internal/common/auth"
	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/common/logger"
	"advisor-routing/internal/models"
	"advisor-routing/internal/pipeline"
	"advisor-routing/internal/routing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==========================
// Fakes
// ==========================

type fakeSubmitter struct {
	result *pipeline.Result
	err    error
	got    models.LeadPayload
}

func (f *fakeSubmitter) Submit(_ context.Context, lead models.LeadPayload) (*pipeline.Result, error) {
	f.got = lead
	return f.result, f.err
}

type fakeAdvisors struct {
	mu       sync.Mutex
	nextID   int64
	advisors map[int64]models.Advisor
}

func newFakeAdvisors(advisors ...models.Advisor) *fakeAdvisors {
	f := &fakeAdvisors{advisors: make(map[int64]models.Advisor), nextID: 100}
	for _, a := range advisors {
		f.advisors[a.ID] = a
	}
	return f
}

func (f *fakeAdvisors) List(context.Context) ([]models.Advisor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Advisor, 0, len(f.advisors))
	for _, a := range f.advisors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAdvisors) Get(_ context.Context, id int64) (*models.Advisor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.advisors[id]
	if !ok {
		return nil, apperrors.NewAdvisorNotFoundError(id)
	}
	return &a, nil
}

func (f *fakeAdvisors) Save(_ context.Context, a *models.Advisor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == 0 {
		f.nextID++
		a.ID = f.nextID
	} else if _, ok := f.advisors[a.ID]; !ok {
		return apperrors.NewAdvisorNotFoundError(a.ID)
	}
	f.advisors[a.ID] = *a
	return nil
}

func (f *fakeAdvisors) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.advisors[id]; !ok {
		return apperrors.NewAdvisorNotFoundError(id)
	}
	delete(f.advisors, id)
	return nil
}

type fakeSubmissions struct {
	subs    map[int64]*models.Submission
	updates []models.SubmissionUpdate
}

func (f *fakeSubmissions) List(_ context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	out := make([]models.Submission, 0)
	for _, s := range f.subs {
		if filter.Status == "" || s.Status == filter.Status {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSubmissions) Get(_ context.Context, id int64) (*models.Submission, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, apperrors.NewSubmissionNotFoundError(id)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSubmissions) Update(_ context.Context, id int64, upd models.SubmissionUpdate) error {
	if upd.Empty() {
		return apperrors.NewInvalidRequestError("No data to update", "")
	}
	s, ok := f.subs[id]
	if !ok {
		return apperrors.NewSubmissionNotFoundError(id)
	}
	f.updates = append(f.updates, upd)
	if upd.Status != nil {
		s.Status = *upd.Status
	}
	if upd.ClearAdvisor {
		s.AdvisorID = nil
	} else if upd.AdvisorID != nil {
		s.AdvisorID = upd.AdvisorID
	}
	return nil
}

func (f *fakeSubmissions) Delete(_ context.Context, id int64) error {
	if _, ok := f.subs[id]; !ok {
		return apperrors.NewSubmissionNotFoundError(id)
	}
	delete(f.subs, id)
	return nil
}

func (f *fakeSubmissions) Dashboard(context.Context) (*models.DashboardStats, error) {
	return &models.DashboardStats{TotalSubmissions: len(f.subs), NewSubmissions: len(f.subs), TotalAdvisors: 2}, nil
}

type fakeSettings struct {
	settings  models.RoutingSettings
	templates []models.NotificationTemplate
}

func (f *fakeSettings) Get(context.Context) (*models.RoutingSettings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) SetAssignmentMethod(_ context.Context, m models.AssignmentMethod) error {
	f.settings.Method = m
	return nil
}

func (f *fakeSettings) SetDefaultAdvisor(_ context.Context, id int64) error {
	f.settings.DefaultAdvisorID = id
	return nil
}

func (f *fakeSettings) ListTemplates(context.Context) ([]models.NotificationTemplate, error) {
	return f.templates, nil
}

func (f *fakeSettings) SaveTemplate(_ context.Context, t models.NotificationTemplate) error {
	f.templates = append(f.templates, t)
	return nil
}

type fakeIntrospector struct {
	principals map[string]*auth.Principal
}

func (f fakeIntrospector) Introspect(_ context.Context, token string) (*auth.Principal, error) {
	p, ok := f.principals[token]
	if !ok {
		return nil, apperrors.NewAuthenticationError("token inactive")
	}
	return p, nil
}

// ==========================
// Test Helper Functions
// ==========================

const adminToken = "admin-token"

type fixture struct {
	router      *gin.Engine
	submitter   *fakeSubmitter
	advisors    *fakeAdvisors
	submissions *fakeSubmissions
	settings    *fakeSettings
	cursor      *routing.MemoryCursor
}

func int64Ptr(v int64) *int64 {
	return &v
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		submitter: &fakeSubmitter{},
		advisors: newFakeAdvisors(
			models.Advisor{ID: 1, Name: "Alice", Email: "alice@example.com", Territories: models.Territories{"AK": models.AllZips()}},
			models.Advisor{ID: 2, Name: "Bob", Email: "bob@example.com"},
		),
		submissions: &fakeSubmissions{subs: map[int64]*models.Submission{
			10: {ID: 10, FirstName: "Jane", LastName: "Doe", Status: models.StatusNew, AdvisorID: int64Ptr(1)},
		}},
		settings: &fakeSettings{settings: models.RoutingSettings{PolicyConfig: models.PolicyConfig{Method: models.MethodRoundRobin}}},
		cursor:   routing.NewMemoryCursor(3),
	}

	server := NewServer(Deps{
		Submitter:   f.submitter,
		Advisors:    f.advisors,
		Submissions: f.submissions,
		Settings:    f.settings,
		Cursor:      f.cursor,
		Introspector: fakeIntrospector{principals: map[string]*auth.Principal{
			adminToken:   {Subject: "u1", Roles: []string{"lead-admin"}},
			"user-token": {Subject: "u2", Roles: []string{"viewer"}},
		}},
		AdminRole: "lead-admin",
		Readiness: map[string]ReadinessCheck{},
		Logger:    logger.NewTestLogger(t),
	})
	f.router = server.Router()
	return f
}

func (f *fixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ==========================
// Public Submission Endpoint
// ==========================

func TestCreateSubmission_Success(t *testing.T) {
	f := newFixture(t)
	f.submitter.result = &pipeline.Result{Submission: &models.Submission{
		ID: 55, Status: models.StatusNew, AdvisorID: int64Ptr(1), AdvisorName: "Alice",
	}}

	w := f.do(http.MethodPost, "/api/v1/submissions", "", `{
		"personal": {"firstName": "Jane", "lastName": "Doe", "email": "jane@example.com", "phone": "555"},
		"location": {"zipCode": "99502", "state": "AK"},
		"results": {"recommendedCoverage": 100000}
	}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp submissionCreatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(55), resp.SubmissionID)
	assert.Equal(t, int64(1), *resp.AdvisorID)
	assert.Equal(t, "Alice", resp.AdvisorName)
	assert.Equal(t, "Jane", f.submitter.got.Personal.FirstName)
	assert.Equal(t, "99502", f.submitter.got.Location.ZipCode)
}

func TestCreateSubmission_AcceptsFormEncodedOptionalFields(t *testing.T) {
	tests := []struct {
		name        string
		age         string
		email       string
		expectedAge models.Age
	}{
		{name: "age as numeric string", age: `"45"`, email: "jane@example.com", expectedAge: 45},
		{name: "age left blank", age: `""`, email: "jane@example.com", expectedAge: 0},
		{name: "age as number", age: `38`, email: "jane@example.com", expectedAge: 38},
		{name: "email without domain", age: `""`, email: "jane.doe", expectedAge: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.submitter.result = &pipeline.Result{Submission: &models.Submission{ID: 56, Status: models.StatusNew}}

			w := f.do(http.MethodPost, "/api/v1/submissions", "", `{
				"personal": {"firstName": "Jane", "lastName": "Doe", "email": "`+tt.email+`", "phone": "555", "age": `+tt.age+`},
				"location": {"zipCode": "99502", "state": "AK"}
			}`)

			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedAge, f.submitter.got.Personal.Age)
			assert.Equal(t, tt.email, f.submitter.got.Personal.Email)
		})
	}
}

func TestCreateSubmission_Errors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		result         *pipeline.Result
		err            error
		expectedStatus int
		expectedCode   apperrors.ErrorCode
		expectedError  string
	}{
		{
			name:           "malformed json",
			body:           `{"personal":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apperrors.ErrCodeInvalidRequest,
			expectedError:  "Invalid submission payload",
		},
		{
			name:           "validation failure",
			body:           `{"personal":{},"location":{}}`,
			err:            apperrors.NewSubmissionValidationError("personal.firstName: required field missing"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apperrors.ErrCodeSubmissionValidationFailed,
			expectedError:  "Required fields are missing",
		},
		{
			name:           "stored but not routed",
			body:           `{"personal":{},"location":{}}`,
			result:         &pipeline.Result{Submission: &models.Submission{ID: 9}},
			err:            apperrors.NewAssignmentPersistFailedError(9, errors.New("deadlock")),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apperrors.ErrCodeAssignmentPersistFailed,
			expectedError:  "Failed to store advisor assignment",
		},
		{
			name:           "insert failure",
			body:           `{"personal":{},"location":{}}`,
			err:            apperrors.NewDatabaseInsertFailedError(errors.New("disk full")),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apperrors.ErrCodeDatabaseInsertFailed,
			expectedError:  "Failed to save submission",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.submitter.result, f.submitter.err = tt.result, tt.err

			w := f.do(http.MethodPost, "/api/v1/submissions", "", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, string(tt.expectedCode), resp.Code)
			assert.Equal(t, tt.expectedError, resp.Error)
		})
	}
}

// ==========================
// Admin Authentication
// ==========================

func TestAdmin_RequiresToken(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/admin/advisors", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/admin/advisors", "expired", nil).Code)

	w := f.do(http.MethodGet, "/api/v1/admin/advisors", "user-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You do not have permission to do this", decodeError(t, w).Error)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/admin/advisors", adminToken, nil).Code)
}

func TestAdmin_AuthDisabled(t *testing.T) {
	server := NewServer(Deps{
		Advisors:     newFakeAdvisors(),
		AuthDisabled: true,
		Logger:       logger.NewTestLogger(t),
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/advisors", nil)
	w := httptest.NewRecorder()

	server.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = bearerToken("bearer  xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}

// ==========================
// Advisors
// ==========================

func TestCreateAdvisor(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "object territories",
			body:           `{"name":"Carol","email":"carol@example.com","territories":{"ca":"*","AK":["99501","99502"]}}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "string encoded territories",
			body:           `{"name":"Carol","email":"carol@example.com","territories":"{\"WA\":\"*\"}"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "no territories",
			body:           `{"name":"Carol","email":"carol@example.com"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing email",
			body:           `{"name":"Carol","email":"  "}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Name and email are required",
		},
		{
			name:           "bad email",
			body:           `{"name":"Carol","email":"carol"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid advisor details",
		},
		{
			name:           "territory value not list or star",
			body:           `{"name":"Carol","email":"carol@example.com","territories":{"CA":"all"}}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid territories format",
		},
		{
			name:           "territories not an object",
			body:           `{"name":"Carol","email":"carol@example.com","territories":"not json"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid territories format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			w := f.do(http.MethodPost, "/api/v1/admin/advisors", adminToken, tt.body)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, w).Error)
			}
		})
	}
}

func TestCreateAdvisor_StoresDecodedTerritories(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/admin/advisors", adminToken,
		`{"name":"Carol","email":"carol@example.com","territories":{"ca":"*","AK":["99502"]}}`)

	require.Equal(t, http.StatusCreated, w.Code)
	stored, err := f.advisors.Get(context.Background(), 101)
	require.NoError(t, err)
	assert.True(t, stored.Territories.Covers("CA", "90210"))
	assert.True(t, stored.Territories.Covers("AK", "99502"))
	assert.False(t, stored.Territories.Covers("AK", "99501"))
}

func TestUpdateAndDeleteAdvisor(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/v1/admin/advisors/2", adminToken, `{"name":"Robert","email":"bob@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated, _ := f.advisors.Get(context.Background(), 2)
	assert.Equal(t, "Robert", updated.Name)

	assert.Equal(t, http.StatusNotFound,
		f.do(http.MethodPut, "/api/v1/admin/advisors/99", adminToken, `{"name":"X","email":"x@example.com"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodDelete, "/api/v1/admin/advisors/abc", adminToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/v1/admin/advisors/2", adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/v1/admin/advisors/2", adminToken, nil).Code)
}

// ==========================
// Submissions
// ==========================

func TestUpdateSubmission(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		expectedStatus  int
		expectedError   string
		expectedAdvisor *int64
	}{
		{name: "empty body", body: `{}`, expectedStatus: http.StatusBadRequest, expectedError: "No data to update"},
		{name: "bad status", body: `{"status":"won"}`, expectedStatus: http.StatusBadRequest, expectedError: "Invalid status"},
		{name: "status only", body: `{"status":"contacted"}`, expectedStatus: http.StatusOK, expectedAdvisor: int64Ptr(1)},
		{name: "reassign", body: `{"advisorId":2}`, expectedStatus: http.StatusOK, expectedAdvisor: int64Ptr(2)},
		{name: "unassign", body: `{"advisorId":null}`, expectedStatus: http.StatusOK, expectedAdvisor: nil},
		{name: "unknown advisor", body: `{"advisorId":77}`, expectedStatus: http.StatusNotFound, expectedError: "Advisor not found"},
		{name: "zero advisor", body: `{"advisorId":0}`, expectedStatus: http.StatusBadRequest, expectedError: "Invalid advisor ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			w := f.do(http.MethodPatch, "/api/v1/admin/submissions/10", adminToken, tt.body)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, w).Error)
				return
			}
			var sub models.Submission
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
			assert.Equal(t, tt.expectedAdvisor, sub.AdvisorID)
		})
	}
}

func TestListSubmissions_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/admin/submissions?status=lost", adminToken, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/admin/submissions?status=new&limit=5", adminToken, nil).Code)
}

func TestSearchSubmissions_Disabled(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/admin/submissions/search?q=jane", adminToken, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDeleteSubmission(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/v1/admin/submissions/10", adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/v1/admin/submissions/10", adminToken, nil).Code)
}

// ==========================
// Settings
// ==========================

func TestSettings_ReportsCursorValue(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/admin/settings", adminToken, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp settingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.MethodRoundRobin, resp.AssignmentMethod)
	assert.Equal(t, 3, resp.LastAssignedIndex)
}

func TestSetAssignmentMethod(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/v1/admin/settings/assignment-method", adminToken, `{"method":"weighted"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperrors.ErrCodeInvalidAssignmentMethod), decodeError(t, w).Code)

	w = f.do(http.MethodPut, "/api/v1/admin/settings/assignment-method", adminToken, `{"method":"first-match"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.MethodFirstMatch, f.settings.settings.Method)
}

func TestSetDefaultAdvisor(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusNotFound,
		f.do(http.MethodPut, "/api/v1/admin/settings/default-advisor", adminToken, `{"advisorId":42}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		f.do(http.MethodPut, "/api/v1/admin/settings/default-advisor", adminToken, `{}`).Code)

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPut, "/api/v1/admin/settings/default-advisor", adminToken, `{"advisorId":2}`).Code)
	assert.Equal(t, int64(2), f.settings.settings.DefaultAdvisorID)

	require.Equal(t, http.StatusOK,
		f.do(http.MethodPut, "/api/v1/admin/settings/default-advisor", adminToken, `{"advisorId":0}`).Code)
	assert.Zero(t, f.settings.settings.DefaultAdvisorID)
}

func TestResetCursor(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/admin/settings/cursor/reset", adminToken, nil)

	require.Equal(t, http.StatusOK, w.Code)
	v, err := f.cursor.Value(context.Background())
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestSaveTemplate(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest,
		f.do(http.MethodPut, "/api/v1/admin/settings/templates/manager", adminToken, `{"subject":"x"}`).Code)

	w := f.do(http.MethodPut, "/api/v1/admin/settings/templates/advisor", adminToken,
		`{"subject":"New lead","body":"Hello {advisor_name}"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, f.settings.templates, 1)
	assert.Equal(t, models.TemplateAdvisor, f.settings.templates[0].Kind)
	assert.Equal(t, "Hello {advisor_name}", f.settings.templates[0].Body)
}

// ==========================
// Health
// ==========================

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ready", "", nil).Code)

	server := NewServer(Deps{
		Readiness: map[string]ReadinessCheck{
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		},
		AuthDisabled: true,
		Logger:       logger.NewTestLogger(t),
	})
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/admin/dashboard", adminToken, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var stats models.DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalSubmissions)
}
