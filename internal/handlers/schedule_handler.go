package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/organizainador/organizer-service/internal/services"
	"github.com/organizainador/organizer-service/internal/utils"
)

type ScheduleHandler struct {
	BaseHandler
	scheduleService services.ScheduleService
	exportService   services.ExportService
}

func NewScheduleHandler(scheduleService services.ScheduleService, exportService services.ExportService, logger utils.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		BaseHandler:     NewBaseHandler(logger),
		scheduleService: scheduleService,
		exportService:   exportService,
	}
}

// CreateSchedule creates a schedule slot for a class or activity
// @Summary Create schedule slot
// @Description Creates a recurring or one-off slot. Overlapping slots are rejected.
// @Tags schedules
// @Accept json
// @Produce json
// @Param slot body services.CreateSlotRequest true "Slot data"
// @Success 201 {object} models.SlotSummary
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Conflicting slot in details"
// @Router /schedules [post]
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateSlotRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating schedule slot", "is_recurring", req.IsRecurring)

	slot, err := h.scheduleService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// GetSchedule retrieves a schedule slot
// @Summary Get schedule slot
// @Tags schedules
// @Produce json
// @Param id path uint true "Slot ID"
// @Success 200 {object} models.SlotSummary
// @Failure 404 {object} ErrorResponse
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	slot, err := h.scheduleService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}

// UpdateSchedule replaces the timing of a slot
// @Summary Update schedule slot
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path uint true "Slot ID"
// @Param slot body services.UpdateSlotRequest true "Slot data"
// @Success 200 {object} models.SlotSummary
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSlotRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating schedule slot", "slot_id", id)

	slot, err := h.scheduleService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting schedule slot", "slot_id", id)

	if err := h.scheduleService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSchedules lists the caller's slots, recurring first
// @Summary List schedule slots
// @Tags schedules
// @Produce json
// @Param search query string false "Class or activity name filter"
// @Param type query string false "recurring or one_off"
// @Success 200 {array} models.SlotSummary
// @Router /schedules [get]
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var filters services.SlotListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Listing schedule slots", "type", filters.Type)

	slots, err := h.scheduleService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

// CheckConflict runs the conflict check without saving
// @Summary Check schedule conflict
// @Tags schedules
// @Accept json
// @Produce json
// @Param slot body services.ConflictCheckRequest true "Candidate timing"
// @Success 200 {object} services.ConflictCheckResponse
// @Failure 400 {object} ErrorResponse
// @Router /schedules/check-conflict [post]
func (h *ScheduleHandler) CheckConflict(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.ConflictCheckRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.scheduleService.CheckConflict(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TimeOptions lists selectable start times
// @Summary Quarter-hour time options
// @Tags schedules
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /schedules/time-options [get]
func (h *ScheduleHandler) TimeOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"options": h.scheduleService.TimeOptions(),
	})
}

// ExportSchedules downloads the caller's slots as a workbook
// @Summary Export schedules
// @Tags schedules
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /schedules/export [get]
func (h *ScheduleHandler) ExportSchedules(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting schedules")

	file, err := h.exportService.ExportSchedulesExcel(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	writeAttachment(c, file)
}

func writeAttachment(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
