package validator

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/organizainador/organizer-service/internal/models"
)

// BusinessValidator checks rules that span several fields of a request.
type BusinessValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// Validate validates struct tags only.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateSlotCreate validates a new slot. Dates are compared against today
// in loc.
func (bv *BusinessValidator) ValidateSlotCreate(req *SlotCreateRequest, loc *time.Location) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, validateOwner(req.ClassID, req.ActivityID)...)
	errors = append(errors, validateTiming(req.IsRecurring, req.DayOfWeek, req.SpecificDate, req.StartTime, req.EndTime)...)

	if !req.IsRecurring && req.SpecificDate != nil {
		if date, err := models.ParseDate(*req.SpecificDate); err == nil && bv.beforeToday(time.Time(date), loc) {
			errors = append(errors, ValidationError{
				Field:   "specific_date",
				Message: "cannot be in the past",
				Value:   *req.SpecificDate,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateSlotUpdate validates an edit of existing. The owner cannot change.
func (bv *BusinessValidator) ValidateSlotUpdate(req *SlotUpdateRequest, existing *models.ScheduleSlot) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, validateTiming(req.IsRecurring, req.DayOfWeek, req.SpecificDate, req.StartTime, req.EndTime)...)

	if req.ClassID != nil && !sameID(req.ClassID, existing.ClassID) {
		errors = append(errors, ValidationError{
			Field:   "class_id",
			Message: "owner cannot be changed",
			Value:   *req.ClassID,
			Rule:    "owner_immutable",
		})
	}
	if req.ActivityID != nil && !sameID(req.ActivityID, existing.ActivityID) {
		errors = append(errors, ValidationError{
			Field:   "activity_id",
			Message: "owner cannot be changed",
			Value:   *req.ActivityID,
			Rule:    "owner_immutable",
		})
	}

	return errors
}

// ValidateConflictCheck validates a dry-run conflict request.
func (bv *BusinessValidator) ValidateConflictCheck(req *ConflictCheckRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, validateTiming(req.IsRecurring, req.DayOfWeek, req.SpecificDate, req.StartTime, req.EndTime)...)

	return errors
}

func (bv *BusinessValidator) beforeToday(date time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	now := bv.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Before(today)
}

func validateOwner(classID, activityID *uint) ValidationErrors {
	switch {
	case classID == nil && activityID == nil:
		return ValidationErrors{{
			Field:   "owner",
			Message: "either class_id or activity_id is required",
			Rule:    "exactly_one_owner",
		}}
	case classID != nil && activityID != nil:
		return ValidationErrors{{
			Field:   "owner",
			Message: "a slot belongs to a class or an activity, not both",
			Rule:    "exactly_one_owner",
		}}
	}
	return nil
}

func validateTiming(isRecurring bool, day models.Weekday, date *string, start, end string) ValidationErrors {
	var errors ValidationErrors

	if isRecurring && day == "" {
		errors = append(errors, ValidationError{
			Field:   "day_of_week",
			Message: "is required for recurring slots",
			Rule:    "required_if_recurring",
		})
	}
	if !isRecurring && (date == nil || *date == "") {
		errors = append(errors, ValidationError{
			Field:   "specific_date",
			Message: "is required for one-off slots",
			Rule:    "required_if_one_off",
		})
	}

	startTime, errStart := models.ParseClock(start)
	endTime, errEnd := models.ParseClock(end)
	if errStart == nil && errEnd == nil && endTime <= startTime {
		errors = append(errors, ValidationError{
			Field:   "end_time",
			Message: "must be after start_time",
			Value:   end,
			Rule:    "after_start",
		})
	}

	return errors
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
