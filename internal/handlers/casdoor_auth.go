package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/services"
	"github.com/organizainador/organizer-service/internal/utils"
)

const (
	contextKeyUserID    = "user_id"
	contextKeyUser      = "user"
	contextKeyUserRole  = "user_role"
	contextKeyUserEmail = "user_email"
)

// Authenticator verifies a bearer token. *casdoor.IdentityProvider
// satisfies it.
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
}

// CasdoorAuthMiddleware authenticates requests against Casdoor and keeps the
// local user record in sync.
type CasdoorAuthMiddleware struct {
	identity    Authenticator
	userService services.UserService
	logger      utils.Logger
}

func NewCasdoorAuthMiddleware(identity Authenticator, userService services.UserService, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		identity:    identity,
		userService: userService,
		logger:      logger,
	}
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller in the gin context.
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
				Details: err.Error(),
			})
			return
		}

		identity, err := cam.identity.Authenticate(token)
		if err != nil {
			utils.LoggerFromContext(c, cam.logger).Warn("Token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Unauthorized",
				Details: "invalid token",
			})
			return
		}

		user, err := cam.userService.Sync(c.Request.Context(), identity)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserInactive), errors.Is(err, services.ErrForbidden):
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
					Message: "User account is not active",
				})
			case errors.Is(err, services.ErrUnauthorized):
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
					Message: "Unauthorized",
				})
			default:
				utils.LoggerFromContext(c, cam.logger).Error("Failed to sync user", "user_id", identity.ID, "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal server error",
				})
			}
			return
		}

		c.Set(contextKeyUserID, user.ID)
		c.Set(contextKeyUser, user)
		c.Set(contextKeyUserRole, user.Role)
		c.Set(contextKeyUserEmail, user.Email)

		c.Next()
	}
}

// RequireRoleMiddleware lets through callers holding one of requiredRoles.
// Admins always pass.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Forbidden",
				Details: err.Error(),
			})
			return
		}

		if role != models.RoleAdmin {
			allowed := false
			for _, required := range requiredRoles {
				if role == required {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
					Message: "Forbidden - insufficient permissions",
					Details: fmt.Sprintf("required role: %v", requiredRoles),
				})
				return
			}
		}

		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

// GetUserFromContext extracts the authenticated user from the gin context.
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get(contextKeyUser)
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts the authenticated user ID from the gin context.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(contextKeyUserID)
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get(contextKeyUserRole)
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
