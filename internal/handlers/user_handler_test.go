package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/services"
)

func TestUserHandler_AdminManagesUsers(t *testing.T) {
	srv := newTestServer(t)

	// First request registers the student.
	requireStatus(t, srv.do(t, http.MethodGet, "/api/v1/users/me", studentToken, ""), http.StatusOK)

	w := srv.do(t, http.MethodGet, "/api/v1/users?q=ana&role=student&status=active&page=2&size=5", adminToken, "")
	requireStatus(t, w, http.StatusOK)

	filters := srv.services.user.lastList
	assert.Equal(t, "ana", filters.Query)
	require.NotNil(t, filters.Role)
	assert.Equal(t, models.RoleStudent, *filters.Role)
	require.NotNil(t, filters.Status)
	assert.Equal(t, models.UserStatusActive, *filters.Status)
	assert.Equal(t, 5, filters.Limit)
	assert.Equal(t, 5, filters.Offset)

	w = srv.do(t, http.MethodGet, "/api/v1/users/student-1", adminToken, "")
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "ana@example.com", decode[models.User](t, w).Email)

	w = srv.do(t, http.MethodPut, "/api/v1/users/student-1/status", adminToken, `{"status":"suspended"}`)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, models.UserStatusSuspended, decode[models.User](t, w).Status)

	// The suspended student is locked out on the next request.
	requireStatus(t, srv.do(t, http.MethodGet, "/api/v1/users/me", studentToken, ""), http.StatusForbidden)
}

func TestUserHandler_AdminCannotChangeOwnStatus(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPut, "/api/v1/users/admin-1/status", adminToken, `{"status":"inactive"}`)
	requireStatus(t, w, http.StatusUnprocessableEntity)
}

func TestUserHandler_UnknownUser(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/users/ghost", adminToken, "")
	requireStatus(t, w, http.StatusNotFound)
	assert.Equal(t, "User not found", decode[ErrorResponse](t, w).Message)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/health", "", "")
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "healthy", decode[map[string]string](t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	srv.services.healthErr = errors.New("database ping failed")
	w = srv.do(t, http.MethodGet, "/health", "", "")
	requireStatus(t, w, http.StatusServiceUnavailable)
	assert.Equal(t, "unhealthy", decode[map[string]string](t, w)["status"])
}

func TestMiddleware_RequestIDAndPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := newRequest(http.MethodGet, "/health", "")
	req.Header.Set("X-Request-ID", "req-42")
	w := serve(srv, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = serve(srv, newRequest(http.MethodOptions, "/api/v1/classes", ""))
	requireStatus(t, w, http.StatusNoContent)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleServiceError_InactiveUser(t *testing.T) {
	srv := newTestServer(t)
	srv.services.activity.err = services.ErrUserInactive

	w := srv.do(t, http.MethodGet, "/api/v1/activities/1", studentToken, "")
	requireStatus(t, w, http.StatusForbidden)
	assert.Equal(t, "User account is not active", decode[ErrorResponse](t, w).Message)
}
