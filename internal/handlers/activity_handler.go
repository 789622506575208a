package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/organizainador/organizer-service/internal/services"
	"github.com/organizainador/organizer-service/internal/utils"
)

type ActivityHandler struct {
	BaseHandler
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService, logger utils.Logger) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     NewBaseHandler(logger),
		activityService: activityService,
	}
}

// CreateActivity creates a new activity
// @Summary Create activity
// @Tags activities
// @Accept json
// @Produce json
// @Param activity body services.CreateActivityRequest true "Activity data"
// @Success 201 {object} models.Activity
// @Failure 400 {object} ErrorResponse
// @Router /activities [post]
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating activity", "name", req.Name)

	activity, err := h.activityService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, activity)
}

func (h *ActivityHandler) GetActivity(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Getting activity", "activity_id", id)

	activity, err := h.activityService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating activity", "activity_id", id)

	activity, err := h.activityService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// DeleteActivity deletes an activity and its schedule slots
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting activity", "activity_id", id)

	if err := h.activityService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ActivityHandler) ListActivities(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing activities")

	resp, err := h.activityService.List(c.Request.Context(), userID, h.parseListFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ActivityHandler) GetActivitySchedules(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	slots, err := h.activityService.GetSchedules(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}
