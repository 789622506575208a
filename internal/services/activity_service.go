package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/organizainador/organizer-service/internal/events"
	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/validator"
)

type activityService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewActivityService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ActivityService {
	return &activityService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *activityService) Create(ctx context.Context, req *CreateActivityRequest, userID string) (*models.Activity, error) {
	s.logger.Info("Creating activity", "user_id", userID, "name", req.Name)

	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	activity := &models.Activity{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: trimmed(req.Description),
		Tag:         normalizeTag(req.Tag),
	}
	if err := s.repo.Activity().Create(ctx, nil, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.logger.Info("Activity created successfully", "activity_id", activity.ID)
	return activity, nil
}

func (s *activityService) GetByID(ctx context.Context, id uint, userID string) (*models.Activity, error) {
	return s.getOwned(ctx, id, userID, "read")
}

func (s *activityService) Update(ctx context.Context, id uint, req *UpdateActivityRequest, userID string) (*models.Activity, error) {
	if errors := s.validator.GetBusinessValidator().Validate(req); len(errors) > 0 {
		return nil, errors
	}

	activity, err := s.getOwned(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		activity.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		activity.Description = trimmed(req.Description)
	}
	if req.Tag != nil {
		activity.Tag = normalizeTag(req.Tag)
	}

	if err := s.repo.Activity().Update(ctx, nil, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	s.logger.Info("Activity updated successfully", "activity_id", id)
	return activity, nil
}

// Delete removes the activity together with its schedule slots.
func (s *activityService) Delete(ctx context.Context, id uint, userID string) error {
	if _, err := s.getOwned(ctx, id, userID, "delete"); err != nil {
		return err
	}

	removed, err := s.repo.Activity().Delete(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	s.logger.Info("Activity deleted successfully", "activity_id", id, "removed_slots", removed)
	publishEvent(ctx, s.publisher, s.logger, events.ActivityDeleted, userID, events.OwnerDeletedPayload{
		OwnerID:      id,
		RemovedSlots: int(removed),
	})
	return nil
}

func (s *activityService) List(ctx context.Context, userID string, filters repositories.ListFilters) (*ActivityListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)

	activities, total, err := s.repo.Activity().ListByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return &ActivityListResponse{
		Activities: activities,
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}, nil
}

func (s *activityService) GetSchedules(ctx context.Context, id uint, userID string) ([]models.SlotSummary, error) {
	activity, err := s.getOwned(ctx, id, userID, "read")
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.Slot().ListByActivity(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity schedules: %w", err)
	}
	for _, slot := range slots {
		slot.Activity = activity
	}
	return summarize(slots), nil
}

func (s *activityService) getOwned(ctx context.Context, id uint, userID, action string) (*models.Activity, error) {
	activity, err := s.repo.Activity().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if activity.UserID != userID {
		return nil, NewPermissionError(userID, id, "activity", action, "not owner")
	}
	return activity, nil
}

// normalizeTag lowercases a tag; blank tags are dropped.
func normalizeTag(tag *string) *string {
	t := trimmed(tag)
	if t == nil {
		return nil
	}
	lower := strings.ToLower(*t)
	return &lower
}
