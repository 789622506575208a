package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/services"
	"github.com/organizainador/organizer-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// GetMe returns the caller's profile
// @Summary Current user
// @Description Profile of the authenticated user with class, activity and slot counts
// @Tags users
// @Produce json
// @Success 200 {object} services.UserProfile
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Description Get a paginated list of users (admin only)
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param role query string false "Filter by role (student, admin)"
// @Param status query string false "Filter by status (active, inactive, suspended)"
// @Param sort_by query string false "name, email or created_at"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} services.UserListResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	resp, err := h.userService.List(c.Request.Context(), h.parseUserFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUser retrieves a user by ID
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	h.LogRequest(c, "Getting user", "target_user_id", id)

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUserStatus activates or blocks a user
// @Summary Update user status
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param status body services.UpdateUserStatusRequest true "New status"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Admins cannot change their own status"
// @Router /users/{id}/status [put]
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	actorID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Param("id"))

	var req services.UpdateUserStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating user status", "target_user_id", id, "status", req.Status)

	user, err := h.userService.UpdateStatus(c.Request.Context(), actorID, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ===== HELPER METHODS =====

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	page := h.parseListFilters(c)

	filters := repositories.UserFilters{
		Query:     strings.TrimSpace(c.Query("q")),
		Limit:     page.Limit,
		Offset:    page.Offset,
		SortBy:    page.SortBy,
		SortOrder: page.SortOrder,
	}

	if role := c.Query("role"); role != "" {
		userRole := models.UserRole(role)
		filters.Role = &userRole
	}
	if status := c.Query("status"); status != "" {
		userStatus := models.UserStatus(status)
		filters.Status = &userStatus
	}

	return filters
}
