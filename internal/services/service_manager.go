package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/organizainador/organizer-service/internal/config"
	"github.com/organizainador/organizer-service/internal/events"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/scheduling"
	"github.com/organizainador/organizer-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Location is the zone "today" and calendar dates are taken in.
	Location     *time.Location
	ConflictMode config.ConflictMode
	Projector    scheduling.ProjectorConfig
}

// NewServiceManagerConfig derives service settings from the application
// configuration.
func NewServiceManagerConfig(cfg *config.Config) ServiceManagerConfig {
	return ServiceManagerConfig{
		Location:     cfg.Calendar.Location,
		ConflictMode: cfg.Schedule.ConflictMode,
		Projector: scheduling.ProjectorConfig{
			Location:              cfg.Calendar.Location,
			PastDays:              cfg.Calendar.PastDays,
			FutureDays:            cfg.Calendar.FutureDays,
			MaxOccurrencesPerSlot: cfg.Calendar.MaxOccurrencesPerSlot,
			ClassColor:            cfg.Calendar.ClassColor,
			ActivityColor:         cfg.Calendar.ActivityColor,
		},
	}
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	userService     UserService
	classService    ClassService
	activityService ActivityService
	scheduleService ScheduleService
	calendarService CalendarService
	exportService   ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Projector.Location == nil {
		config.Projector.Location = config.Location
	}
	return &serviceManager{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.repo == nil {
		return fmt.Errorf("repository is required")
	}

	sm.logger.Info("Initializing service manager",
		"timezone", sm.config.Location.String(),
		"conflict_mode", sm.config.ConflictMode)

	projector := scheduling.NewProjector(sm.config.Projector, sm.logger.With("component", "projector"))

	sm.userService = NewUserService(sm.repo, sm.logger, sm.validator)
	sm.classService = NewClassService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.activityService = NewActivityService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.scheduleService = NewScheduleService(sm.repo, sm.publisher, sm.logger, sm.validator, sm.config.Location, sm.config.ConflictMode)
	sm.calendarService = NewCalendarService(sm.repo, projector, sm.logger)
	sm.exportService = NewExportService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Class() ClassService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.classService
}

func (sm *serviceManager) Activity() ActivityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.activityService
}

func (sm *serviceManager) Schedule() ScheduleService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.scheduleService
}

func (sm *serviceManager) Calendar() CalendarService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.calendarService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.mustBeInitialized()
	return sm.exportService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown closes the event publisher. Storage connections belong to the
// repository manager.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
