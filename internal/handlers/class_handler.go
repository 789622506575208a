package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/organizainador/organizer-service/internal/services"
	"github.com/organizainador/organizer-service/internal/utils"
)

type ClassHandler struct {
	BaseHandler
	classService services.ClassService
}

func NewClassHandler(classService services.ClassService, logger utils.Logger) *ClassHandler {
	return &ClassHandler{
		BaseHandler:  NewBaseHandler(logger),
		classService: classService,
	}
}

// CreateClass creates a new class
// @Summary Create class
// @Description Creates a class owned by the caller
// @Tags classes
// @Accept json
// @Produce json
// @Param class body services.CreateClassRequest true "Class data"
// @Success 201 {object} models.Class
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /classes [post]
func (h *ClassHandler) CreateClass(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating class", "name", req.Name)

	class, err := h.classService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, class)
}

// GetClass retrieves a class by ID
// @Summary Get class
// @Tags classes
// @Produce json
// @Param id path uint true "Class ID"
// @Success 200 {object} models.Class
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /classes/{id} [get]
func (h *ClassHandler) GetClass(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Getting class", "class_id", id)

	class, err := h.classService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// UpdateClass updates a class
// @Summary Update class
// @Tags classes
// @Accept json
// @Produce json
// @Param id path uint true "Class ID"
// @Param class body services.UpdateClassRequest true "Fields to change"
// @Success 200 {object} models.Class
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /classes/{id} [put]
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateClassRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating class", "class_id", id)

	class, err := h.classService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, class)
}

// DeleteClass deletes a class and its schedule slots
// @Summary Delete class
// @Tags classes
// @Param id path uint true "Class ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /classes/{id} [delete]
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting class", "class_id", id)

	if err := h.classService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListClasses lists the caller's classes
// @Summary List classes
// @Tags classes
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param search query string false "Name filter"
// @Param sort_by query string false "name or created_at"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} services.ClassListResponse
// @Router /classes [get]
func (h *ClassHandler) ListClasses(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing classes")

	resp, err := h.classService.List(c.Request.Context(), userID, h.parseListFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetClassSchedules lists the schedule slots of a class
// @Summary List class schedules
// @Tags classes
// @Produce json
// @Param id path uint true "Class ID"
// @Success 200 {array} models.SlotSummary
// @Router /classes/{id}/schedules [get]
func (h *ClassHandler) GetClassSchedules(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	slots, err := h.classService.GetSchedules(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}
