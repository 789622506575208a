package services

import (
	"context"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateClassRequest = validator.ClassCreateRequest
type UpdateClassRequest = validator.ClassUpdateRequest
type CreateActivityRequest = validator.ActivityCreateRequest
type UpdateActivityRequest = validator.ActivityUpdateRequest
type CreateSlotRequest = validator.SlotCreateRequest
type UpdateSlotRequest = validator.SlotUpdateRequest
type ConflictCheckRequest = validator.ConflictCheckRequest
type UpdateUserStatusRequest = validator.UserStatusUpdateRequest

type ClassListResponse struct {
	Classes []*models.Class `json:"classes"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type ActivityListResponse struct {
	Activities []*models.Activity `json:"activities"`
	Total      int64              `json:"total"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// ===== SCHEDULE DTOs =====

const (
	SlotTypeRecurring = "recurring"
	SlotTypeOneOff    = "one_off"
)

// SlotListFilters narrows a user's schedule list. Search matches the owner
// name, Type is SlotTypeRecurring or SlotTypeOneOff.
type SlotListFilters struct {
	Search string `form:"search"`
	Type   string `form:"type"`
}

type ConflictCheckResponse struct {
	Conflict        bool                `json:"conflict"`
	ConflictingSlot *models.SlotSummary `json:"conflicting_slot,omitempty"`
	Mode            string              `json:"mode"`
}

// ===== CALENDAR DTOs =====

// CalendarQuery optionally overrides the default window. Dates are
// "YYYY-MM-DD".
type CalendarQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

// CalendarEvent is the shape calendar widgets consume.
type CalendarEvent struct {
	ID              string `json:"id"`
	SlotID          uint   `json:"slot_id"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	Description     string `json:"description,omitempty"`
	EventType       string `json:"eventType"`
}

type CalendarResponse struct {
	Start  string          `json:"start"`
	End    string          `json:"end"`
	Events []CalendarEvent `json:"events"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ===== USER DTOs =====

type UserProfile struct {
	*models.User
	Stats *models.UserStats `json:"stats"`
}

type UserListResponse struct {
	Users  []*models.User `json:"users"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ===== SERVICE INTERFACES =====

type ClassService interface {
	Create(ctx context.Context, req *CreateClassRequest, userID string) (*models.Class, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.Class, error)
	Update(ctx context.Context, id uint, req *UpdateClassRequest, userID string) (*models.Class, error)
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, userID string, filters repositories.ListFilters) (*ClassListResponse, error)
	GetSchedules(ctx context.Context, id uint, userID string) ([]models.SlotSummary, error)
}

type ActivityService interface {
	Create(ctx context.Context, req *CreateActivityRequest, userID string) (*models.Activity, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.Activity, error)
	Update(ctx context.Context, id uint, req *UpdateActivityRequest, userID string) (*models.Activity, error)
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, userID string, filters repositories.ListFilters) (*ActivityListResponse, error)
	GetSchedules(ctx context.Context, id uint, userID string) ([]models.SlotSummary, error)
}

type ScheduleService interface {
	Create(ctx context.Context, req *CreateSlotRequest, userID string) (*models.SlotSummary, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.SlotSummary, error)
	Update(ctx context.Context, id uint, req *UpdateSlotRequest, userID string) (*models.SlotSummary, error)
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, userID string, filters SlotListFilters) ([]models.SlotSummary, error)

	// CheckConflict runs the conflict check without writing anything.
	CheckConflict(ctx context.Context, req *ConflictCheckRequest, userID string) (*ConflictCheckResponse, error)
	// TimeOptions lists quarter-hour start times beginning at the next
	// quarter hour.
	TimeOptions() []string
}

type CalendarService interface {
	Events(ctx context.Context, userID string, query CalendarQuery) (*CalendarResponse, error)
	ExportICS(ctx context.Context, userID string, query CalendarQuery) (*ExportFile, error)
}

type ExportService interface {
	ExportSchedulesExcel(ctx context.Context, userID string) (*ExportFile, error)
}

type UserService interface {
	// Sync upserts the identity-provider view of a user and returns the
	// stored record. Inactive users get ErrUserInactive.
	Sync(ctx context.Context, identity *models.User) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)

	// Admin operations
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	UpdateStatus(ctx context.Context, actorID, id string, req *UpdateUserStatusRequest) (*models.User, error)
}

// ServiceManager manages all services and their dependencies
type ServiceManager interface {
	User() UserService
	Class() ClassService
	Activity() ActivityService
	Schedule() ScheduleService
	Calendar() CalendarService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
