package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/services"
	"github.com/organizainador/organizer-service/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ===== AUTH =====

type fakeAuthenticator struct {
	users map[string]*models.User
}

func (a *fakeAuthenticator) Authenticate(token string) (*models.User, error) {
	user, ok := a.users[token]
	if !ok {
		return nil, errors.New("signature mismatch")
	}
	copied := *user
	copied.Status = ""
	return &copied, nil
}

// ===== SERVICES =====

type fakeUserService struct {
	stored   map[string]*models.User
	syncErr  error
	lastList repositories.UserFilters
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{stored: map[string]*models.User{}}
}

func (s *fakeUserService) Sync(_ context.Context, identity *models.User) (*models.User, error) {
	if s.syncErr != nil {
		return nil, s.syncErr
	}
	if existing, ok := s.stored[identity.ID]; ok {
		if !existing.IsActive() {
			return nil, services.ErrUserInactive
		}
		return existing, nil
	}
	user := *identity
	user.Status = models.UserStatusActive
	s.stored[user.ID] = &user
	return &user, nil
}

func (s *fakeUserService) GetProfile(_ context.Context, userID string) (*services.UserProfile, error) {
	user, ok := s.stored[userID]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return &services.UserProfile{User: user, Stats: &models.UserStats{ClassCount: 2}}, nil
}

func (s *fakeUserService) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.stored[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserService) List(_ context.Context, filters repositories.UserFilters) (*services.UserListResponse, error) {
	s.lastList = filters
	users := make([]*models.User, 0, len(s.stored))
	for _, u := range s.stored {
		users = append(users, u)
	}
	return &services.UserListResponse{Users: users, Total: int64(len(users)), Limit: filters.Limit, Offset: filters.Offset}, nil
}

func (s *fakeUserService) UpdateStatus(_ context.Context, actorID, id string, req *services.UpdateUserStatusRequest) (*models.User, error) {
	if actorID == id {
		return nil, services.NewBusinessRuleError("self_status_change", "admins cannot change their own status", nil)
	}
	user, ok := s.stored[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	user.Status = req.Status
	return user, nil
}

type fakeClassService struct {
	classes    map[uint]*models.Class
	lastFilter repositories.ListFilters
}

func (s *fakeClassService) Create(_ context.Context, req *services.CreateClassRequest, userID string) (*models.Class, error) {
	if req.Name == "" {
		return nil, services.ValidationErrors{{Field: "name", Rule: "required", Message: "name is required"}}
	}
	class := &models.Class{ID: uint(len(s.classes) + 1), UserID: userID, Name: req.Name, HoursPerDay: req.HoursPerDay}
	s.classes[class.ID] = class
	return class, nil
}

func (s *fakeClassService) GetByID(_ context.Context, id uint, userID string) (*models.Class, error) {
	class, ok := s.classes[id]
	if !ok {
		return nil, services.ErrClassNotFound
	}
	if class.UserID != userID {
		return nil, services.NewPermissionError(userID, id, "class", "view", "not the owner")
	}
	return class, nil
}

func (s *fakeClassService) Update(ctx context.Context, id uint, req *services.UpdateClassRequest, userID string) (*models.Class, error) {
	class, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		class.Name = *req.Name
	}
	return class, nil
}

func (s *fakeClassService) Delete(ctx context.Context, id uint, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	delete(s.classes, id)
	return nil
}

func (s *fakeClassService) List(_ context.Context, userID string, filters repositories.ListFilters) (*services.ClassListResponse, error) {
	s.lastFilter = filters
	var classes []*models.Class
	for _, c := range s.classes {
		if c.UserID == userID {
			classes = append(classes, c)
		}
	}
	return &services.ClassListResponse{Classes: classes, Total: int64(len(classes)), Limit: filters.Limit, Offset: filters.Offset}, nil
}

func (s *fakeClassService) GetSchedules(ctx context.Context, id uint, userID string) ([]models.SlotSummary, error) {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}
	return []models.SlotSummary{{ID: 1, OwnerType: models.OwnerTypeClass, OwnerID: id}}, nil
}

type fakeActivityService struct {
	err error
}

func (s *fakeActivityService) Create(_ context.Context, req *services.CreateActivityRequest, userID string) (*models.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Activity{ID: 1, UserID: userID, Name: req.Name, Tag: req.Tag}, nil
}

func (s *fakeActivityService) GetByID(_ context.Context, id uint, userID string) (*models.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Activity{ID: id, UserID: userID, Name: "Gym"}, nil
}

func (s *fakeActivityService) Update(_ context.Context, id uint, req *services.UpdateActivityRequest, userID string) (*models.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Activity{ID: id, UserID: userID, Name: *req.Name}, nil
}

func (s *fakeActivityService) Delete(context.Context, uint, string) error {
	return s.err
}

func (s *fakeActivityService) List(_ context.Context, _ string, filters repositories.ListFilters) (*services.ActivityListResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.ActivityListResponse{Activities: []*models.Activity{}, Limit: filters.Limit}, nil
}

func (s *fakeActivityService) GetSchedules(context.Context, uint, string) ([]models.SlotSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.SlotSummary{}, nil
}

type fakeScheduleService struct {
	createErr   error
	created     *services.CreateSlotRequest
	lastFilters services.SlotListFilters
	conflict    *services.ConflictCheckResponse
}

func (s *fakeScheduleService) Create(_ context.Context, req *services.CreateSlotRequest, _ string) (*models.SlotSummary, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = req
	return &models.SlotSummary{ID: 7, IsRecurring: req.IsRecurring, DayOfWeek: req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime}, nil
}

func (s *fakeScheduleService) GetByID(_ context.Context, id uint, _ string) (*models.SlotSummary, error) {
	if id != 7 {
		return nil, services.ErrSlotNotFound
	}
	return &models.SlotSummary{ID: 7}, nil
}

func (s *fakeScheduleService) Update(_ context.Context, id uint, _ *services.UpdateSlotRequest, _ string) (*models.SlotSummary, error) {
	return nil, services.NewBusinessRuleError("owner_immutable", "a slot cannot move to another owner", map[string]interface{}{"slot_id": id})
}

func (s *fakeScheduleService) Delete(_ context.Context, id uint, _ string) error {
	if id != 7 {
		return services.ErrSlotNotFound
	}
	return nil
}

func (s *fakeScheduleService) List(_ context.Context, _ string, filters services.SlotListFilters) ([]models.SlotSummary, error) {
	s.lastFilters = filters
	return []models.SlotSummary{{ID: 7}}, nil
}

func (s *fakeScheduleService) CheckConflict(context.Context, *services.ConflictCheckRequest, string) (*services.ConflictCheckResponse, error) {
	return s.conflict, nil
}

func (s *fakeScheduleService) TimeOptions() []string {
	return []string{"10:15", "10:30"}
}

type fakeCalendarService struct {
	lastQuery services.CalendarQuery
}

func (s *fakeCalendarService) Events(_ context.Context, _ string, query services.CalendarQuery) (*services.CalendarResponse, error) {
	s.lastQuery = query
	if query.Start == "bad" {
		return nil, services.ValidationErrors{{Field: "start", Rule: "slot_date", Message: "start must be a YYYY-MM-DD date"}}
	}
	return &services.CalendarResponse{
		Start: "2024-06-08",
		End:   "2024-06-29",
		Events: []services.CalendarEvent{{
			ID:              "1-2024-06-10",
			SlotID:          1,
			Title:           "Calculus",
			Start:           "2024-06-10T09:00:00Z",
			End:             "2024-06-10T11:00:00Z",
			BackgroundColor: "#0d6efd",
			BorderColor:     "#0d6efd",
			EventType:       "class",
		}},
	}, nil
}

func (s *fakeCalendarService) ExportICS(_ context.Context, _ string, query services.CalendarQuery) (*services.ExportFile, error) {
	s.lastQuery = query
	return &services.ExportFile{
		Name:        "schedule_20240608_20240629.ics",
		ContentType: "text/calendar; charset=utf-8",
		Data:        []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"),
	}, nil
}

type fakeExportService struct{}

func (fakeExportService) ExportSchedulesExcel(context.Context, string) (*services.ExportFile, error) {
	return &services.ExportFile{
		Name:        "schedules_20240615_083000.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        []byte("PK"),
	}, nil
}

type fakeServiceManager struct {
	user      *fakeUserService
	class     *fakeClassService
	activity  *fakeActivityService
	schedule  *fakeScheduleService
	calendar  *fakeCalendarService
	healthErr error
}

func (m *fakeServiceManager) User() services.UserService         { return m.user }
func (m *fakeServiceManager) Class() services.ClassService       { return m.class }
func (m *fakeServiceManager) Activity() services.ActivityService { return m.activity }
func (m *fakeServiceManager) Schedule() services.ScheduleService { return m.schedule }
func (m *fakeServiceManager) Calendar() services.CalendarService { return m.calendar }
func (m *fakeServiceManager) Export() services.ExportService     { return fakeExportService{} }

func (m *fakeServiceManager) Initialize(context.Context) error    { return nil }
func (m *fakeServiceManager) HealthCheck(context.Context) error   { return m.healthErr }
func (m *fakeServiceManager) Shutdown(context.Context) error      { return nil }

// ===== HARNESS =====

const (
	studentToken = "student-token"
	otherToken   = "other-token"
	adminToken   = "admin-token"
)

type testServer struct {
	router   *gin.Engine
	services *fakeServiceManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	sm := &fakeServiceManager{
		user:     newFakeUserService(),
		class:    &fakeClassService{classes: map[uint]*models.Class{}},
		activity: &fakeActivityService{},
		schedule: &fakeScheduleService{},
		calendar: &fakeCalendarService{},
	}
	identity := &fakeAuthenticator{users: map[string]*models.User{
		studentToken: {ID: "student-1", Name: "Ana", Email: "ana@example.com", Role: models.RoleStudent},
		otherToken:   {ID: "student-2", Name: "Bruno", Email: "bruno@example.com", Role: models.RoleStudent},
		adminToken:   {ID: "admin-1", Name: "Root", Email: "root@example.com", Role: models.RoleAdmin},
	}}

	router := gin.New()
	SetupMiddleware(router, testLogger())
	NewHandlerManager(sm, identity, testLogger()).SetupRoutes(router)

	return &testServer{router: router, services: sm}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := newRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(s, req)
}

func newRequest(method, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
