package services

import (
	"errors"
	"fmt"

	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/validator"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrClassNotFound    = fmt.Errorf("class %w", ErrNotFound)
	ErrActivityNotFound = fmt.Errorf("activity %w", ErrNotFound)
	ErrSlotNotFound     = fmt.Errorf("schedule slot %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrUserInactive     = fmt.Errorf("%w: user account is not active", ErrForbidden)
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("conflict")
	ErrScheduleConflict = fmt.Errorf("%w: schedule slot overlaps an existing slot", ErrConflict)
)

// ValidationErrors is returned as-is from request validation.
type ValidationErrors = validator.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

// PermissionError reports an action the user may not perform on a resource.
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id,omitempty"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ScheduleConflictError carries the existing slot a candidate collides with.
type ScheduleConflictError struct {
	Conflict *models.ScheduleSlot
}

func (e *ScheduleConflictError) Error() string {
	if e.Conflict == nil {
		return ErrScheduleConflict.Error()
	}
	return fmt.Sprintf("%s: %s %s-%s",
		ErrScheduleConflict.Error(),
		e.Conflict.OwnerName(),
		models.FormatClock(e.Conflict.StartTime),
		models.FormatClock(e.Conflict.EndTime))
}

func (e *ScheduleConflictError) Unwrap() error {
	return ErrScheduleConflict
}

// Summary flattens the conflicting slot for responses.
func (e *ScheduleConflictError) Summary() *models.SlotSummary {
	if e.Conflict == nil {
		return nil
	}
	summary := models.NewSlotSummary(e.Conflict)
	return &summary
}
