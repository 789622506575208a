package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// Sync stores the identity-provider profile. The stored status wins over
// anything the token says.
func (s *userService) Sync(ctx context.Context, identity *models.User) (*models.User, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrUnauthorized
	}

	existing, err := s.repo.User().GetByID(ctx, nil, identity.ID)
	switch {
	case err == nil:
		if !existing.IsActive() {
			return nil, ErrUserInactive
		}
		if sameProfile(existing, identity) {
			return existing, nil
		}
	case repositories.IsNotFoundError(err):
		s.logger.Info("Registering user", "user_id", identity.ID, "email", identity.Email)
	default:
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.repo.User().Upsert(ctx, nil, identity); err != nil {
		return nil, fmt.Errorf("failed to sync user: %w", err)
	}

	stored, err := s.repo.User().GetByID(ctx, nil, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	if !stored.IsActive() {
		return nil, ErrUserInactive
	}
	return stored, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.User().GetStats(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &UserProfile{User: user, Stats: stats}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{
		Users:  users,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// UpdateStatus changes a user's account status. Admins cannot lock
// themselves out.
func (s *userService) UpdateStatus(ctx context.Context, actorID, id string, req *UpdateUserStatusRequest) (*models.User, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}
	if actorID == id && req.Status != models.UserStatusActive {
		return nil, NewBusinessRuleError("self_status_change", "administrators cannot deactivate their own account", map[string]interface{}{
			"user_id": id,
			"status":  req.Status,
		})
	}

	if err := s.repo.User().UpdateStatus(ctx, nil, id, req.Status); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	s.logger.Info("User status updated", "actor_id", actorID, "user_id", id, "status", req.Status)
	return s.GetByID(ctx, id)
}

func sameProfile(stored, identity *models.User) bool {
	return stored.Name == identity.Name &&
		stored.Email == identity.Email &&
		stored.Role == identity.Role &&
		optionalEqual(stored.AvatarURL, identity.AvatarURL)
}

func optionalEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
