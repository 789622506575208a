package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/services"
	"github.com/organizainador/organizer-service/internal/utils"
)

const healthCheckTimeout = 3 * time.Second

type HandlerManager struct {
	serviceManager  services.ServiceManager
	logger          utils.Logger
	userHandler     *UserHandler
	classHandler    *ClassHandler
	activityHandler *ActivityHandler
	scheduleHandler *ScheduleHandler
	calendarHandler *CalendarHandler
	authMiddleware  *CasdoorAuthMiddleware
}

// NewHandlerManager wires handlers to an initialized service manager.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	identity Authenticator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:  serviceManager,
		logger:          logger,
		userHandler:     NewUserHandler(serviceManager.User(), logger),
		classHandler:    NewClassHandler(serviceManager.Class(), logger),
		activityHandler: NewActivityHandler(serviceManager.Activity(), logger),
		scheduleHandler: NewScheduleHandler(serviceManager.Schedule(), serviceManager.Export(), logger),
		calendarHandler: NewCalendarHandler(serviceManager.Calendar(), logger),
		authMiddleware:  NewCasdoorAuthMiddleware(identity, serviceManager.User(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetMe)

			// Administration - Admins only
			admin := users.Group("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
			admin.GET("", hm.userHandler.ListUsers)
			admin.GET("/:id", hm.userHandler.GetUser)
			admin.PUT("/:id/status", hm.userHandler.UpdateUserStatus)
		}

		classes := v1.Group("/classes")
		{
			classes.POST("", hm.classHandler.CreateClass)
			classes.GET("", hm.classHandler.ListClasses)
			classes.GET("/:id", hm.classHandler.GetClass)
			classes.PUT("/:id", hm.classHandler.UpdateClass)
			classes.DELETE("/:id", hm.classHandler.DeleteClass)
			classes.GET("/:id/schedules", hm.classHandler.GetClassSchedules)
		}

		activities := v1.Group("/activities")
		{
			activities.POST("", hm.activityHandler.CreateActivity)
			activities.GET("", hm.activityHandler.ListActivities)
			activities.GET("/:id", hm.activityHandler.GetActivity)
			activities.PUT("/:id", hm.activityHandler.UpdateActivity)
			activities.DELETE("/:id", hm.activityHandler.DeleteActivity)
			activities.GET("/:id/schedules", hm.activityHandler.GetActivitySchedules)
		}

		schedules := v1.Group("/schedules")
		{
			// Static paths before /:id
			schedules.POST("/check-conflict", hm.scheduleHandler.CheckConflict)
			schedules.GET("/time-options", hm.scheduleHandler.TimeOptions)
			schedules.GET("/export", hm.scheduleHandler.ExportSchedules)

			schedules.POST("", hm.scheduleHandler.CreateSchedule)
			schedules.GET("", hm.scheduleHandler.ListSchedules)
			schedules.GET("/:id", hm.scheduleHandler.GetSchedule)
			schedules.PUT("/:id", hm.scheduleHandler.UpdateSchedule)
			schedules.DELETE("/:id", hm.scheduleHandler.DeleteSchedule)
		}

		calendar := v1.Group("/calendar")
		{
			calendar.GET("/events", hm.calendarHandler.GetEvents)
			calendar.GET("/export.ics", hm.calendarHandler.ExportICS)
		}
	}
}

// HealthCheck pings the database and cache
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	timestamp := time.Now().UTC().Format(time.RFC3339)
	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.LoggerFromContext(c, hm.logger).Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": timestamp,
			"service":   "organizer-service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": timestamp,
		"service":   "organizer-service",
	})
}
