package v1

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shenikar/crisis_connect/internal/config"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/realtime"
	"github.com/shenikar/crisis_connect/internal/service"
	"github.com/shenikar/crisis_connect/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testMocks struct {
	incidents  *mocks.MockIncidentService
	requests   *mocks.MockHelpRequestService
	tasks      *mocks.MockTaskService
	volunteers *mocks.MockVolunteerService
	alerts     *mocks.MockAlertService
	resources  *mocks.MockResourceService
	sms        *mocks.MockSMSService
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard) // Отключаем вывод логов в тестах
	return logger
}

func testConfig() *config.Config {
	return &config.Config{APIKeys: []string{"test-api-key"}}
}

// newTestHandler создает Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*testMocks, *gin.Engine) {
	return newTestHandlerWith(t, testConfig(), nil, nil)
}

func newTestHandlerWith(t *testing.T, cfg *config.Config, rt *realtime.Server, sessions SessionCounter) (*testMocks, *gin.Engine) {
	ctrl := gomock.NewController(t)
	m := &testMocks{
		incidents:  mocks.NewMockIncidentService(ctrl),
		requests:   mocks.NewMockHelpRequestService(ctrl),
		tasks:      mocks.NewMockTaskService(ctrl),
		volunteers: mocks.NewMockVolunteerService(ctrl),
		alerts:     mocks.NewMockAlertService(ctrl),
		resources:  mocks.NewMockResourceService(ctrl),
		sms:        mocks.NewMockSMSService(ctrl),
	}

	handler := NewHandler(HandlerDeps{
		Incidents:  m.incidents,
		Requests:   m.requests,
		Tasks:      m.tasks,
		Volunteers: m.volunteers,
		Alerts:     m.alerts,
		Resources:  m.resources,
		SMS:        m.sms,
		Realtime:   rt,
		Sessions:   sessions,
		Logger:     quietLogger(),
		Config:     cfg,
	})

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return m, router
}

// asCaller - заголовки аутентифицированного вызывающего
func asCaller(caller models.Caller) map[string]string {
	return map[string]string{
		"X-API-Key":   "test-api-key",
		"X-User-ID":   caller.ID.String(),
		"X-User-Role": string(caller.Role),
	}
}

func newCaller(role models.Role) models.Caller {
	return models.Caller{ID: uuid.New(), Role: role}
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck_NoAuthRequired(t *testing.T) {
	_, router := newTestHandlerWith(t, testConfig(), nil, fixedSessions(3))

	w := makeRequest(router, http.MethodGet, "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Sessions)
}

type fixedSessions int

func (f fixedSessions) SessionCount() int { return int(f) }

func TestAuth_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no api key", headers: map[string]string{"X-User-ID": uuid.NewString(), "X-User-Role": "admin"}},
		{name: "wrong api key", headers: map[string]string{"X-API-Key": "nope", "X-User-ID": uuid.NewString(), "X-User-Role": "admin"}},
		{name: "no caller", headers: map[string]string{"X-API-Key": "test-api-key"}},
		{name: "malformed caller id", headers: map[string]string{"X-API-Key": "test-api-key", "X-User-ID": "42", "X-User-Role": "admin"}},
		{name: "unknown role", headers: map[string]string{"X-API-Key": "test-api-key", "X-User-ID": uuid.NewString(), "X-User-Role": "mayor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, router := newTestHandler(t)
			m.incidents.EXPECT().ListIncidents(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			w := makeRequest(router, http.MethodGet, "/api/v1/incidents", nil, tt.headers)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuth_BearerTokenAccepted(t *testing.T) {
	m, router := newTestHandler(t)
	caller := newCaller(models.RoleAdmin)
	m.alerts.EXPECT().ListActiveAlerts(gomock.Any(), caller).Return([]*models.Alert{}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/alerts", nil, map[string]string{
		"Authorization": "Bearer test-api-key",
		"X-User-ID":     caller.ID.String(),
		"X-User-Role":   "ADMIN",
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportIncident_Success(t *testing.T) {
	m, router := newTestHandler(t)
	// Подготовка
	caller := newCaller(models.RoleCivilian)
	severity := 4
	lat, lon := 28.6139, 77.2090
	input := service.IncidentInput{
		Location: "Connaught Place", Type: "fire", Severity: &severity,
		Description: "Smoke from the market", Latitude: &lat, Longitude: &lon,
	}
	created := &models.Incident{ID: uuid.New(), Type: "fire", Severity: 4, Status: models.IncidentPending, ReportedBy: models.UserRef{ID: caller.ID}}

	// Ожидания
	m.incidents.EXPECT().ReportIncident(gomock.Any(), caller, input).Return(created, nil)

	// Действие
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/report", jsonBody(t, input), asCaller(caller))

	// Проверки
	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.Incident
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, models.IncidentPending, resp.Status)
}

func TestReportIncident_InvalidJSON(t *testing.T) {
	m, router := newTestHandler(t)
	m.incidents.EXPECT().ReportIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/report", bytes.NewBufferString(`{"type": "fire"`), asCaller(newCaller(models.RoleCivilian)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestReportIncident_ValidationErrorListsFields(t *testing.T) {
	m, router := newTestHandler(t)
	verr := &models.ValidationError{}
	verr.Add("severity", "required", "severity is required")
	verr.Add("latitude", "required", "latitude is required")
	m.incidents.EXPECT().ReportIncident(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, verr)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents/report", bytes.NewBufferString(`{}`), asCaller(newCaller(models.RoleCivilian)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, codeValidation, resp.Code)
	require.Len(t, resp.Fields, 2)
	assert.Equal(t, "severity", resp.Fields[0].Field)
	assert.Equal(t, "latitude", resp.Fields[1].Field)
}

func TestIncidentErrors_MapToStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "forbidden", err: models.ErrForbidden, wantCode: http.StatusForbidden, wantBody: codeForbidden},
		{name: "not found", err: fmt.Errorf("incident %s: %w", uuid.Nil, models.ErrNotFound), wantCode: http.StatusNotFound, wantBody: codeNotFound},
		{name: "invalid state", err: fmt.Errorf("verify: %w", models.ErrInvalidState), wantCode: http.StatusConflict, wantBody: codeInvalidState},
		{name: "conflict", err: models.ErrConflict, wantCode: http.StatusConflict, wantBody: codeConflict},
		{name: "internal", err: errors.New("pool closed"), wantCode: http.StatusInternalServerError, wantBody: codeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, router := newTestHandler(t)
			id := uuid.New()
			m.incidents.EXPECT().VerifyIncident(gomock.Any(), gomock.Any(), id).Return(nil, tt.err)

			w := makeRequest(router, http.MethodPut, "/api/v1/incidents/"+id.String()+"/verify", nil, asCaller(newCaller(models.RoleAdmin)))

			assert.Equal(t, tt.wantCode, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantBody, resp.Code)
			assert.NotContains(t, w.Body.String(), "pool closed")
		})
	}
}

func TestIncidentTransitions_RouteToService(t *testing.T) {
	m, router := newTestHandler(t)
	admin := newCaller(models.RoleAdmin)
	id := uuid.New()

	gomock.InOrder(
		m.incidents.EXPECT().MarkIncidentOngoing(gomock.Any(), admin, id).Return(&models.Incident{ID: id, Status: models.IncidentOngoing}, nil),
		m.incidents.EXPECT().MarkIncidentCompleted(gomock.Any(), admin, id).Return(&models.Incident{ID: id, Status: models.IncidentCompleted}, nil),
	)

	w := makeRequest(router, http.MethodPut, "/api/v1/incidents/"+id.String()+"/ongoing", nil, asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	w = makeRequest(router, http.MethodPut, "/api/v1/incidents/"+id.String()+"/complete", nil, asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":3`)
}

func TestGetIncident_InvalidID(t *testing.T) {
	m, router := newTestHandler(t)
	m.incidents.EXPECT().GetIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/not-a-uuid", nil, asCaller(newCaller(models.RoleAdmin)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid id format")
}

func TestIncidentStaticRoutes(t *testing.T) {
	m, router := newTestHandler(t)
	admin := newCaller(models.RoleAdmin)

	m.incidents.EXPECT().ListPendingIncidents(gomock.Any(), admin).Return([]*models.Incident{{Severity: 5}, {Severity: 2}}, nil)
	m.incidents.EXPECT().ListVerifiedIncidents(gomock.Any(), admin).Return([]*models.Incident{}, nil)
	m.incidents.EXPECT().MapIncidents(gomock.Any(), admin).Return([]*models.IncidentSummary{{Type: "flood"}}, nil)
	m.incidents.EXPECT().GetIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/pending", nil, asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	w = makeRequest(router, http.MethodGet, "/api/v1/incidents/verified", nil, asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	w = makeRequest(router, http.MethodGet, "/api/v1/incidents/map-data", nil, asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flood")
}

func TestListIncidents_FilterFromQuery(t *testing.T) {
	m, router := newTestHandler(t)
	caller := newCaller(models.RoleVolunteer)

	m.incidents.EXPECT().ListIncidents(gomock.Any(), caller, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Caller, f query.IncidentFilter) ([]*models.Incident, error) {
			assert.Equal(t, "bridge", f.Search)
			assert.Equal(t, "flood", f.Type)
			require.NotNil(t, f.Status)
			assert.Equal(t, models.IncidentVerified, *f.Status)
			assert.Equal(t, 3, f.MinSeverity)
			require.NotNil(t, f.Created.Start)
			require.NotNil(t, f.Created.End)
			assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *f.Created.Start)
			// Дата без времени в endDate покрывает весь день
			assert.True(t, f.Created.End.After(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)))
			return []*models.Incident{}, nil
		})

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?search=bridge&type=flood&status=verified&minSeverity=3&startDate=2024-01-01&endDate=2024-01-31", nil, asCaller(caller))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListIncidents_BadQuery(t *testing.T) {
	m, router := newTestHandler(t)
	m.incidents.EXPECT().ListIncidents(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?status=7&minSeverity=9&startDate=yesterday", nil, asCaller(newCaller(models.RoleAdmin)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	require.Len(t, resp.Fields, 3)
	assert.Equal(t, "status", resp.Fields[0].Field)
	assert.Equal(t, "minSeverity", resp.Fields[1].Field)
	assert.Equal(t, "startDate", resp.Fields[2].Field)
}

func TestCreateHelpRequest_Success(t *testing.T) {
	m, router := newTestHandler(t)
	caller := newCaller(models.RoleCivilian)
	lat, lon := 28.62, 77.21
	input := service.HelpRequestInput{
		Title: "Need water", Description: "Family of four",
		Location: service.RequestLocationInput{Latitude: &lat, Longitude: &lon},
		Category: models.CategoryFood,
	}

	m.requests.EXPECT().CreateHelpRequest(gomock.Any(), caller, input).
		Return(&models.HelpRequest{ID: uuid.New(), Title: input.Title, Status: models.RequestPending}, nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/requests", jsonBody(t, input), asCaller(caller))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestClaimHelpRequest_LostRace(t *testing.T) {
	m, router := newTestHandler(t)
	id := uuid.New()
	m.requests.EXPECT().ClaimHelpRequest(gomock.Any(), gomock.Any(), id).
		Return(nil, fmt.Errorf("claim %s: %w", id, models.ErrConflict))

	w := makeRequest(router, http.MethodPost, "/api/v1/requests/"+id.String()+"/claim", nil, asCaller(newCaller(models.RoleVolunteer)))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, codeConflict, decodeError(t, w).Code)
}

func TestListNearbyRequests_QueryToInput(t *testing.T) {
	m, router := newTestHandler(t)
	caller := newCaller(models.RoleVolunteer)

	m.requests.EXPECT().ListNearbyRequests(gomock.Any(), caller, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Caller, in service.NearbyInput) ([]*models.HelpRequest, error) {
			require.NotNil(t, in.Latitude)
			require.NotNil(t, in.Longitude)
			require.NotNil(t, in.RadiusKm)
			assert.InDelta(t, 28.6139, *in.Latitude, 1e-9)
			assert.InDelta(t, 77.2090, *in.Longitude, 1e-9)
			assert.InDelta(t, 10.0, *in.RadiusKm, 1e-9)
			return []*models.HelpRequest{}, nil
		})

	w := makeRequest(router, http.MethodGet, "/api/v1/requests/nearby?latitude=28.6139&longitude=77.2090&radius=10", nil, asCaller(caller))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListNearbyRequests_MissingRadiusStaysNil(t *testing.T) {
	m, router := newTestHandler(t)
	m.requests.EXPECT().ListNearbyRequests(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Caller, in service.NearbyInput) ([]*models.HelpRequest, error) {
			assert.Nil(t, in.RadiusKm)
			return []*models.HelpRequest{}, nil
		})

	w := makeRequest(router, http.MethodGet, "/api/v1/requests/nearby?latitude=1&longitude=2", nil, asCaller(newCaller(models.RoleVolunteer)))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateHelpRequest_PatchMapping(t *testing.T) {
	m, router := newTestHandler(t)
	admin := newCaller(models.RoleAdmin)
	id := uuid.New()

	m.requests.EXPECT().UpdateHelpRequest(gomock.Any(), admin, id, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Caller, _ uuid.UUID, p models.RequestPatch) (*models.HelpRequest, error) {
			require.NotNil(t, p.IsVerified)
			assert.True(t, *p.IsVerified)
			require.NotNil(t, p.Location)
			assert.Equal(t, models.NewGeoPoint(10, 20), p.Location.Coordinates)
			assert.Nil(t, p.Title)
			assert.Nil(t, p.Status)
			return &models.HelpRequest{ID: id, IsVerified: true}, nil
		})

	body := `{"is_verified": true, "location": {"latitude": 10, "longitude": 20}}`
	w := makeRequest(router, http.MethodPut, "/api/v1/requests/"+id.String(), bytes.NewBufferString(body), asCaller(admin))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateHelpRequest_PartialLocationRejected(t *testing.T) {
	m, router := newTestHandler(t)
	m.requests.EXPECT().UpdateHelpRequest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPut, "/api/v1/requests/"+uuid.NewString(),
		bytes.NewBufferString(`{"location": {"latitude": 10}}`), asCaller(newCaller(models.RoleCivilian)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "location.longitude", resp.Fields[0].Field)
}

func TestAddRequestNote_PassesText(t *testing.T) {
	m, router := newTestHandler(t)
	id := uuid.New()
	m.requests.EXPECT().AddRequestNote(gomock.Any(), gomock.Any(), id, "on my way").Return(&models.HelpRequest{ID: id}, nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/requests/"+id.String()+"/notes",
		jsonBody(t, AddNoteRequest{Text: "on my way"}), asCaller(newCaller(models.RoleVolunteer)))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteHelpRequest(t *testing.T) {
	m, router := newTestHandler(t)
	id := uuid.New()
	m.requests.EXPECT().DeleteHelpRequest(gomock.Any(), gomock.Any(), id).Return(nil)

	w := makeRequest(router, http.MethodDelete, "/api/v1/requests/"+id.String(), nil, asCaller(newCaller(models.RoleCivilian)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "help request deleted")
}

func TestListClaimsByVolunteer(t *testing.T) {
	m, router := newTestHandler(t)
	volunteer := newCaller(models.RoleVolunteer)
	m.requests.EXPECT().ListClaimsByVolunteer(gomock.Any(), volunteer, volunteer.ID).Return([]*models.HelpRequest{}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/volunteers/"+volunteer.ID.String()+"/claims", nil, asCaller(volunteer))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVolunteerStats(t *testing.T) {
	volunteer := newCaller(models.RoleVolunteer)
	admin := newCaller(models.RoleAdmin)
	stats := service.ClaimStats{TotalClaims: 3, ActiveClaims: 2, ResolvedClaims: 1}

	tests := []struct {
		name       string
		caller     models.Caller
		url        string
		wantTarget uuid.UUID
		wantStatus int
	}{
		{"own counters", volunteer, "/api/v1/volunteers/stats", volunteer.ID, http.StatusOK},
		{"admin picks volunteer", admin, "/api/v1/volunteers/stats?userId=" + volunteer.ID.String(), volunteer.ID, http.StatusOK},
		{"malformed user id", admin, "/api/v1/volunteers/stats?userId=nope", uuid.Nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Подготовка
			m, router := newTestHandler(t)

			// Ожидания
			if tt.wantStatus == http.StatusOK {
				m.requests.EXPECT().VolunteerClaimStats(gomock.Any(), tt.caller, tt.wantTarget).Return(stats, nil)
			}

			// Действие
			w := makeRequest(router, http.MethodGet, tt.url, nil, asCaller(tt.caller))

			// Проверки
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"totalClaims":3,"activeClaims":2,"resolvedClaims":1}`, w.Body.String())
			}
		})
	}
}

func TestVolunteerStats_Forbidden(t *testing.T) {
	m, router := newTestHandler(t)
	civilian := newCaller(models.RoleCivilian)
	m.requests.EXPECT().VolunteerClaimStats(gomock.Any(), civilian, civilian.ID).Return(service.ClaimStats{}, models.ErrForbidden)

	w := makeRequest(router, http.MethodGet, "/api/v1/volunteers/stats", nil, asCaller(civilian))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListVolunteers(t *testing.T) {
	// Подготовка
	m, router := newTestHandler(t)
	admin := newCaller(models.RoleAdmin)
	users := []*models.User{
		{ID: uuid.New(), Name: "Anil", Email: "anil@example.org", Role: models.RoleVolunteer},
		{ID: uuid.New(), Name: "Zara", Email: "zara@example.org", Role: models.RoleVolunteer},
	}
	m.volunteers.EXPECT().ListVolunteerUsers(gomock.Any(), admin).Return(users, nil)

	// Действие
	w := makeRequest(router, http.MethodGet, "/api/v1/volunteers", nil, asCaller(admin))

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var got []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Anil", got[0].Name)
	assert.Equal(t, users[1].ID, got[1].ID)
}

func TestListVolunteers_NonAdmin(t *testing.T) {
	m, router := newTestHandler(t)
	volunteer := newCaller(models.RoleVolunteer)
	m.volunteers.EXPECT().ListVolunteerUsers(gomock.Any(), volunteer).Return(nil, models.ErrForbidden)

	w := makeRequest(router, http.MethodGet, "/api/v1/volunteers", nil, asCaller(volunteer))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, codeForbidden, decodeError(t, w).Code)
}

func TestRespondToTask_Decision(t *testing.T) {
	m, router := newTestHandler(t)
	volunteer := newCaller(models.RoleVolunteer)
	profileID, taskID := uuid.New(), uuid.New()

	m.tasks.EXPECT().RespondToTask(gomock.Any(), volunteer, profileID, taskID, models.DecisionAccept).
		Return(&models.Task{ID: taskID, Status: models.TaskAccepted}, nil)

	url := fmt.Sprintf("/api/v1/tasks/update-status/%s/%s", profileID, taskID)
	w := makeRequest(router, http.MethodPut, url, bytes.NewBufferString(`{"status": 2}`), asCaller(volunteer))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":2`)
}

func TestRespondToTask_MissingStatus(t *testing.T) {
	m, router := newTestHandler(t)
	m.tasks.EXPECT().RespondToTask(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	url := fmt.Sprintf("/api/v1/tasks/update-status/%s/%s", uuid.New(), uuid.New())
	w := makeRequest(router, http.MethodPut, url, bytes.NewBufferString(`{}`), asCaller(newCaller(models.RoleVolunteer)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status", decodeError(t, w).Fields[0].Field)
}

func TestAssignAndCompleteTask(t *testing.T) {
	m, router := newTestHandler(t)
	admin := newCaller(models.RoleAdmin)
	input := service.TaskInput{TaskType: "evacuation", Description: "Move families", VolunteerID: uuid.New()}
	taskID := uuid.New()

	m.tasks.EXPECT().AssignTask(gomock.Any(), admin, input).Return(&models.Task{ID: taskID, Status: models.TaskAssigned}, nil)
	m.tasks.EXPECT().CompleteTask(gomock.Any(), admin, taskID).Return(nil, models.ErrInvalidState)

	w := makeRequest(router, http.MethodPost, "/api/v1/tasks", jsonBody(t, input), asCaller(admin))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = makeRequest(router, http.MethodPut, "/api/v1/tasks/"+taskID.String()+"/complete", nil, asCaller(admin))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, codeInvalidState, decodeError(t, w).Code)
}

func TestListVolunteerTasks_StatusByName(t *testing.T) {
	m, router := newTestHandler(t)
	profileID := uuid.New()
	accepted := models.TaskAccepted

	m.tasks.EXPECT().ListVolunteerTasks(gomock.Any(), gomock.Any(), profileID, &accepted).Return([]*models.Task{}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/tasks/volunteer/"+profileID.String()+"?status=accepted", nil, asCaller(newCaller(models.RoleVolunteer)))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListTasks_Filter(t *testing.T) {
	m, router := newTestHandler(t)
	incidentID := uuid.New()

	m.tasks.EXPECT().ListTasks(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Caller, f query.TaskFilter) ([]*models.Task, error) {
			require.NotNil(t, f.IncidentID)
			assert.Equal(t, incidentID, *f.IncidentID)
			require.NotNil(t, f.Status)
			assert.Equal(t, models.TaskRejected, *f.Status)
			assert.Nil(t, f.VolunteerID)
			return []*models.Task{}, nil
		})

	w := makeRequest(router, http.MethodGet, "/api/v1/tasks?incidentId="+incidentID.String()+"&status=3", nil, asCaller(newCaller(models.RoleAdmin)))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSkillsRoutes(t *testing.T) {
	m, router := newTestHandler(t)
	m.volunteers.EXPECT().ListSkills(gomock.Any(), gomock.Any()).Return([]string{"boat", "first aid"}, nil)
	m.volunteers.EXPECT().ListVolunteersBySkill(gomock.Any(), gomock.Any(), "Boat").Return([]*models.VolunteerProfile{}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/tasks/skills", nil, asCaller(newCaller(models.RoleAdmin)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["boat","first aid"]`, w.Body.String())

	w = makeRequest(router, http.MethodGet, "/api/v1/tasks/volunteers/Boat", nil, asCaller(newCaller(models.RoleAdmin)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVolunteerProfileRoutes(t *testing.T) {
	m, router := newTestHandler(t)
	admin := newCaller(models.RoleAdmin)
	profileID, userID := uuid.New(), uuid.New()
	bio := "Paramedic"

	m.volunteers.EXPECT().GetVolunteerProfileByUser(gomock.Any(), admin, userID).Return(&models.VolunteerProfile{ID: profileID, UserID: userID}, nil)
	m.volunteers.EXPECT().UpdateApplicationStatus(gomock.Any(), admin, profileID, models.ApplicationAccepted).Return(&models.VolunteerProfile{ID: profileID}, nil)
	m.volunteers.EXPECT().UpdateSkills(gomock.Any(), admin, profileID, []string{"boat"}).Return(&models.VolunteerProfile{ID: profileID}, nil)
	m.volunteers.EXPECT().UpdateVolunteerProfile(gomock.Any(), admin, profileID, models.VolunteerPatch{Bio: &bio}).Return(&models.VolunteerProfile{ID: profileID}, nil)

	base := "/api/v1/volunteer-profiles/"
	w := makeRequest(router, http.MethodGet, base+"user/"+userID.String(), nil, asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	w = makeRequest(router, http.MethodPut, base+profileID.String()+"/application-status", bytes.NewBufferString(`{"application_status": 1}`), asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	w = makeRequest(router, http.MethodPut, base+profileID.String()+"/skills", bytes.NewBufferString(`{"skills": ["boat"]}`), asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	w = makeRequest(router, http.MethodPut, base+profileID.String(), bytes.NewBufferString(`{"bio": "Paramedic"}`), asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListVolunteerProfiles_Filter(t *testing.T) {
	m, router := newTestHandler(t)
	m.volunteers.EXPECT().ListVolunteerProfiles(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Caller, f query.VolunteerFilter) ([]*models.VolunteerProfile, error) {
			require.NotNil(t, f.ApplicationStatus)
			assert.Equal(t, models.ApplicationPending, *f.ApplicationStatus)
			require.NotNil(t, f.Available)
			assert.True(t, *f.Available)
			return []*models.VolunteerProfile{}, nil
		})

	w := makeRequest(router, http.MethodGet, "/api/v1/volunteer-profiles?applicationStatus=pending&available=true", nil, asCaller(newCaller(models.RoleAdmin)))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResources_ActiveListAndAdminOnlyAll(t *testing.T) {
	m, router := newTestHandler(t)
	civilian := newCaller(models.RoleCivilian)
	admin := newCaller(models.RoleAdmin)

	m.resources.EXPECT().ListResources(gomock.Any(), civilian, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Caller, f query.ResourceFilter) ([]*models.Resource, error) {
			assert.True(t, f.ActiveOnly)
			require.NotNil(t, f.Type)
			assert.Equal(t, models.ResourceWater, *f.Type)
			return []*models.Resource{}, nil
		})
	m.resources.EXPECT().ListResources(gomock.Any(), admin, query.ResourceFilter{}).Return([]*models.Resource{}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/resources?type=water", nil, asCaller(civilian))
	assert.Equal(t, http.StatusOK, w.Code)
	w = makeRequest(router, http.MethodGet, "/api/v1/resources/all", nil, asCaller(civilian))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = makeRequest(router, http.MethodGet, "/api/v1/resources/all", nil, asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAlerts_CreateAndDeactivate(t *testing.T) {
	m, router := newTestHandler(t)
	admin := newCaller(models.RoleAdmin)
	id := uuid.New()
	input := service.AlertInput{Title: "Flood warning", Message: "Move to higher ground", Type: models.AlertDanger}

	m.alerts.EXPECT().CreateAlert(gomock.Any(), admin, input).Return(&models.Alert{ID: id, IsActive: true}, nil)
	m.alerts.EXPECT().DeleteAlert(gomock.Any(), admin, id).Return(nil)
	m.alerts.EXPECT().ListAllAlerts(gomock.Any(), admin).Return([]*models.Alert{}, nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/alerts", jsonBody(t, input), asCaller(admin))
	assert.Equal(t, http.StatusCreated, w.Code)
	w = makeRequest(router, http.MethodDelete, "/api/v1/alerts/"+id.String(), nil, asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
	w = makeRequest(router, http.MethodGet, "/api/v1/alerts/all", nil, asCaller(admin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIncomingSMS_TwiMLReply(t *testing.T) {
	m, router := newTestHandler(t)
	m.sms.EXPECT().HandleIncomingSMS(gomock.Any(), "+15550001", "INCIDENT: fire at Main St - smoke").
		Return(service.SMSReplyAccepted, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sms/incoming",
		strings.NewReader("From=%2B15550001&Body=INCIDENT%3A+fire+at+Main+St+-+smoke"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<Response><Message>Thank you!")
}

func TestIncomingSMS_FailureStillReplies(t *testing.T) {
	m, router := newTestHandler(t)
	m.sms.EXPECT().HandleIncomingSMS(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(service.SMSReplyFailed, errors.New("db down"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sms/incoming", strings.NewReader("From=1&Body=INCIDENT%3A+x+at+y+-+z"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sorry")
}

// twilioSignature подписывает вебхук так же, как это делает Twilio
func twilioSignature(token, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	payload := fullURL
	for _, k := range keys {
		payload += k + form.Get(k)
	}
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestIncomingSMS_Signature(t *testing.T) {
	form := url.Values{"From": {"+15550001"}, "Body": {"INCIDENT: fire at Main St - smoke"}}
	const localURL = "http://example.com/api/v1/sms/incoming"
	const publicURL = "https://hooks.example.org/api/v1/sms/incoming"

	tests := []struct {
		name       string
		token      string
		webhookURL string
		signature  string
		wantStatus int
	}{
		{"valid signature", "secret", "", twilioSignature("secret", localURL, form), http.StatusOK},
		{"signed with public url", "secret", publicURL, twilioSignature("secret", publicURL, form), http.StatusOK},
		{"signed with other token", "secret", "", twilioSignature("other", localURL, form), http.StatusForbidden},
		{"signed for other url", "secret", publicURL, twilioSignature("secret", localURL, form), http.StatusForbidden},
		{"missing signature", "secret", "", "", http.StatusForbidden},
		{"no auth token configured", "", "", twilioSignature("", localURL, form), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Подготовка
			cfg := testConfig()
			cfg.TwilioValidateSignature = true
			cfg.TwilioAuthToken = tt.token
			cfg.TwilioWebhookURL = tt.webhookURL
			m, router := newTestHandlerWith(t, cfg, nil, nil)

			// Ожидания
			if tt.wantStatus == http.StatusOK {
				m.sms.EXPECT().HandleIncomingSMS(gomock.Any(), "+15550001", "INCIDENT: fire at Main St - smoke").
					Return(service.SMSReplyAccepted, nil)
			}

			// Действие
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sms/incoming", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.signature != "" {
				req.Header.Set("X-Twilio-Signature", tt.signature)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// Проверки
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Equal(t, codeForbidden, decodeError(t, w).Code)
			}
		})
	}
}

func TestIncomingSMS_SignatureBehindProxy(t *testing.T) {
	// Подготовка
	cfg := testConfig()
	cfg.TwilioValidateSignature = true
	cfg.TwilioAuthToken = "secret"
	m, router := newTestHandlerWith(t, cfg, nil, nil)
	form := url.Values{"From": {"+15550001"}, "Body": {"hello"}}
	m.sms.EXPECT().HandleIncomingSMS(gomock.Any(), "+15550001", "hello").Return(service.SMSReplyInvalidFormat, nil)

	// Действие
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sms/incoming?source=twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Twilio-Signature", twilioSignature("secret", "https://example.com/api/v1/sms/incoming?source=twilio", form))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Проверки
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<Response><Message>")
}

func TestServeWS_DisabledRealtime(t *testing.T) {
	_, router := newTestHandler(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/ws", nil, asCaller(newCaller(models.RoleVolunteer)))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServeWS_JoinAndReceive(t *testing.T) {
	// Подготовка
	hub := realtime.NewHub(8, nil, quietLogger())
	rt := realtime.NewServer(hub, realtime.OpenRooms{}, quietLogger())
	_, router := newTestHandlerWith(t, testConfig(), rt, hub)
	srv := httptest.NewServer(router)
	defer srv.Close()

	caller := newCaller(models.RoleVolunteer)
	url := fmt.Sprintf("ws%s/api/v1/ws?api_key=test-api-key&user_id=%s&role=volunteer", strings.TrimPrefix(srv.URL, "http"), caller.ID)

	// Действие
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"event": realtime.CmdJoinVolunteers}))

	// Проверки
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var joined realtime.Frame
	require.NoError(t, conn.ReadJSON(&joined))
	assert.Equal(t, "room-joined", joined.Event)
	assert.Equal(t, 1, hub.RoomSize(realtime.RoomVolunteers))

	frame, err := realtime.EncodeFrame("new-task", map[string]string{"id": "t1"})
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Deliver(realtime.RoomVolunteers, frame))

	var got realtime.Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "new-task", got.Event)
	assert.JSONEq(t, `{"id":"t1"}`, string(got.Data))
}

func TestServeWS_OriginRejected(t *testing.T) {
	hub := realtime.NewHub(8, nil, quietLogger())
	rt := realtime.NewServer(hub, realtime.OpenRooms{}, quietLogger())
	cfg := testConfig()
	cfg.WSAllowedOrigins = []string{"https://app.example"}
	_, router := newTestHandlerWith(t, cfg, rt, hub)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := fmt.Sprintf("ws%s/api/v1/ws?api_key=test-api-key&user_id=%s&role=admin", strings.TrimPrefix(srv.URL, "http"), uuid.New())
	header := http.Header{"Origin": []string{"https://evil.example"}}

	_, resp, err := websocket.DefaultDialer.Dial(url, header)

	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.SessionCount())
}
