package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organizainador/organizer-service/internal/models"
)

func ptr[T any](v T) *T { return &v }

func fixedValidator(now time.Time) *Validator {
	v := New()
	v.business.now = func() time.Time { return now }
	return v
}

func rules(errs ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field+":"+e.Rule)
	}
	return out
}

func TestValidate_ClassCreate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&ClassCreateRequest{Name: "Calculus", HoursPerDay: 1.5}))

	err := v.Validate(&ClassCreateRequest{Name: "", HoursPerDay: 120})
	require.Error(t, err)
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.ElementsMatch(t, []string{"name:required", "hours_per_day:lte"}, rules(errs))
}

func TestValidate_CustomTags(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		req   interface{}
		field string
	}{
		{"unknown weekday", &ConflictCheckRequest{IsRecurring: true, DayOfWeek: "someday", StartTime: "09:00", EndTime: "10:00"}, "day_of_week:weekday"},
		{"bad clock", &ConflictCheckRequest{IsRecurring: true, DayOfWeek: models.Monday, StartTime: "9am", EndTime: "10:00"}, "start_time:time_of_day"},
		{"bad date", &ConflictCheckRequest{SpecificDate: ptr("15/06/2024"), StartTime: "09:00", EndTime: "10:00"}, "specific_date:slot_date"},
		{"tag with spaces", &ActivityCreateRequest{Name: "Gym", Tag: ptr("two words")}, "tag:activity_tag"},
		{"unknown status", &UserStatusUpdateRequest{Status: "banned"}, "status:oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, rules(errs), tt.field)
		})
	}

	assert.NoError(t, v.Validate(&ConflictCheckRequest{IsRecurring: true, DayOfWeek: "Lunes", StartTime: "09:00", EndTime: "10:30:00"}))
	assert.NoError(t, v.Validate(&ActivityCreateRequest{Name: "Gym", Tag: ptr("sport")}))
	assert.NoError(t, v.Validate(&ActivityUpdateRequest{Tag: ptr("")}))
	assert.NoError(t, v.Validate(&ActivityUpdateRequest{Tag: ptr("  ")}))
}

func TestValidateSlotCreate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	bv := fixedValidator(now).GetBusinessValidator()

	tests := []struct {
		name string
		req  SlotCreateRequest
		want []string
	}{
		{
			name: "valid recurring",
			req:  SlotCreateRequest{ClassID: ptr(uint(1)), IsRecurring: true, DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:30"},
		},
		{
			name: "valid one-off today",
			req:  SlotCreateRequest{ActivityID: ptr(uint(2)), SpecificDate: ptr("2024-06-15"), StartTime: "14:00", EndTime: "15:00"},
		},
		{
			name: "no owner",
			req:  SlotCreateRequest{IsRecurring: true, DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
			want: []string{"owner:exactly_one_owner"},
		},
		{
			name: "two owners",
			req:  SlotCreateRequest{ClassID: ptr(uint(1)), ActivityID: ptr(uint(2)), IsRecurring: true, DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "10:00"},
			want: []string{"owner:exactly_one_owner"},
		},
		{
			name: "recurring without day",
			req:  SlotCreateRequest{ClassID: ptr(uint(1)), IsRecurring: true, StartTime: "09:00", EndTime: "10:00"},
			want: []string{"day_of_week:required_if_recurring"},
		},
		{
			name: "one-off without date",
			req:  SlotCreateRequest{ClassID: ptr(uint(1)), StartTime: "09:00", EndTime: "10:00"},
			want: []string{"specific_date:required_if_one_off"},
		},
		{
			name: "one-off in the past",
			req:  SlotCreateRequest{ClassID: ptr(uint(1)), SpecificDate: ptr("2024-06-14"), StartTime: "09:00", EndTime: "10:00"},
			want: []string{"specific_date:business_logic"},
		},
		{
			name: "end before start",
			req:  SlotCreateRequest{ClassID: ptr(uint(1)), IsRecurring: true, DayOfWeek: models.Monday, StartTime: "10:00", EndTime: "09:00"},
			want: []string{"end_time:after_start"},
		},
		{
			name: "zero length",
			req:  SlotCreateRequest{ClassID: ptr(uint(1)), IsRecurring: true, DayOfWeek: models.Monday, StartTime: "10:00", EndTime: "10:00"},
			want: []string{"end_time:after_start"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateSlotCreate(&tt.req, time.UTC)
			if len(tt.want) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.ElementsMatch(t, tt.want, rules(errs))
		})
	}
}

func TestValidateSlotCreate_TodayFollowsLocation(t *testing.T) {
	// 02:00 UTC on the 15th is still the 14th in Bogota.
	now := time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC)
	bv := fixedValidator(now).GetBusinessValidator()
	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	req := &SlotCreateRequest{ClassID: ptr(uint(1)), SpecificDate: ptr("2024-06-14"), StartTime: "09:00", EndTime: "10:00"}
	assert.Empty(t, bv.ValidateSlotCreate(req, bogota))
	assert.NotEmpty(t, bv.ValidateSlotCreate(req, time.UTC))
}

func TestValidateSlotUpdate_OwnerImmutable(t *testing.T) {
	bv := New().GetBusinessValidator()
	existing := &models.ScheduleSlot{ID: 5, ClassID: ptr(uint(1))}

	errs := bv.ValidateSlotUpdate(&SlotUpdateRequest{ClassID: ptr(uint(1)), IsRecurring: true, DayOfWeek: models.Friday, StartTime: "09:00", EndTime: "10:00"}, existing)
	assert.Empty(t, errs)

	errs = bv.ValidateSlotUpdate(&SlotUpdateRequest{ClassID: ptr(uint(2)), IsRecurring: true, DayOfWeek: models.Friday, StartTime: "09:00", EndTime: "10:00"}, existing)
	assert.Equal(t, []string{"class_id:owner_immutable"}, rules(errs))

	errs = bv.ValidateSlotUpdate(&SlotUpdateRequest{ActivityID: ptr(uint(1)), IsRecurring: true, DayOfWeek: models.Friday, StartTime: "09:00", EndTime: "10:00"}, existing)
	assert.Equal(t, []string{"activity_id:owner_immutable"}, rules(errs))
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.Equal(t, "validation failed: name is required", ValidationErrors{{Field: "name", Message: "is required"}}.Error())
	assert.Equal(t, "validation failed: 2 field errors", ValidationErrors{{}, {}}.Error())
}
