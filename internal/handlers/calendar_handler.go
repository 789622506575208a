package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/organizainador/organizer-service/internal/services"
	"github.com/organizainador/organizer-service/internal/utils"
)

type CalendarHandler struct {
	BaseHandler
	calendarService services.CalendarService
}

func NewCalendarHandler(calendarService services.CalendarService, logger utils.Logger) *CalendarHandler {
	return &CalendarHandler{
		BaseHandler:     NewBaseHandler(logger),
		calendarService: calendarService,
	}
}

// GetEvents projects the caller's slots onto the calendar
// @Summary Calendar events
// @Description Expands recurring slots into dated occurrences within the window
// @Tags calendar
// @Produce json
// @Param start query string false "First day (YYYY-MM-DD)"
// @Param end query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} services.CalendarResponse
// @Failure 400 {object} ErrorResponse
// @Router /calendar/events [get]
func (h *CalendarHandler) GetEvents(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	query, ok := h.bindCalendarQuery(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Projecting calendar", "start", query.Start, "end", query.End)

	resp, err := h.calendarService.Events(c.Request.Context(), userID, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportICS downloads the same window as an iCalendar feed
// @Summary Calendar export
// @Tags calendar
// @Produce text/calendar
// @Param start query string false "First day (YYYY-MM-DD)"
// @Param end query string false "Last day (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /calendar/export.ics [get]
func (h *CalendarHandler) ExportICS(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	query, ok := h.bindCalendarQuery(c)
	if !ok {
		return
	}

	file, err := h.calendarService.ExportICS(c.Request.Context(), userID, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	writeAttachment(c, file)
}

func (h *CalendarHandler) bindCalendarQuery(c *gin.Context) (services.CalendarQuery, bool) {
	var query services.CalendarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return query, false
	}
	return query, true
}
