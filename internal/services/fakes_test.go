package services

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/organizainador/organizer-service/internal/events"
	"github.com/organizainador/organizer-service/internal/models"
	"github.com/organizainador/organizer-service/internal/repositories"
	"github.com/organizainador/organizer-service/internal/validator"
)

// fakeStore is the shared in-memory state behind the fake repositories.
type fakeStore struct {
	mu         sync.Mutex
	nextID     uint
	users      map[string]*models.User
	classes    map[uint]*models.Class
	activities map[uint]*models.Activity
	slots      map[uint]*models.ScheduleSlot

	locks   []string
	upserts int
	listErr error
}

func (s *fakeStore) id() uint {
	s.nextID++
	return s.nextID
}

// withOwner returns a copy of slot with its owner attached.
func (s *fakeStore) withOwner(slot *models.ScheduleSlot) *models.ScheduleSlot {
	out := *slot
	out.Class, out.Activity = nil, nil
	if slot.ClassID != nil {
		if class, ok := s.classes[*slot.ClassID]; ok {
			c := *class
			out.Class = &c
		}
	}
	if slot.ActivityID != nil {
		if activity, ok := s.activities[*slot.ActivityID]; ok {
			a := *activity
			out.Activity = &a
		}
	}
	return &out
}

type fakeRepository struct {
	store    *fakeStore
	txCalls  int
	pingErr  error
	closeErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{store: &fakeStore{
		users:      make(map[string]*models.User),
		classes:    make(map[uint]*models.Class),
		activities: make(map[uint]*models.Activity),
		slots:      make(map[uint]*models.ScheduleSlot),
	}}
}

func (r *fakeRepository) User() repositories.UserRepository { return &fakeUserRepository{r.store} }
func (r *fakeRepository) Class() repositories.ClassRepository {
	return &fakeClassRepository{r.store}
}
func (r *fakeRepository) Activity() repositories.ActivityRepository {
	return &fakeActivityRepository{r.store}
}
func (r *fakeRepository) Slot() repositories.SlotRepository { return &fakeSlotRepository{r.store} }
func (r *fakeRepository) WithTransaction(_ context.Context, fn func(repositories.Repository) error) error {
	r.txCalls++
	return fn(r)
}
func (r *fakeRepository) Ping(context.Context) error { return r.pingErr }
func (r *fakeRepository) Close() error               { return r.closeErr }

// ===== CLASSES =====

type fakeClassRepository struct{ s *fakeStore }

func (f *fakeClassRepository) Create(_ context.Context, _ *gorm.DB, class *models.Class) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	class.ID = f.s.id()
	c := *class
	f.s.classes[class.ID] = &c
	return nil
}

func (f *fakeClassRepository) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Class, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	class, ok := f.s.classes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *class
	return &c, nil
}

func (f *fakeClassRepository) Update(_ context.Context, _ *gorm.DB, class *models.Class) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.classes[class.ID]; !ok {
		return repositories.ErrNotFound
	}
	c := *class
	f.s.classes[class.ID] = &c
	return nil
}

func (f *fakeClassRepository) Delete(_ context.Context, _ *gorm.DB, id uint) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.classes[id]; !ok {
		return 0, repositories.ErrNotFound
	}
	var removed int64
	for slotID, slot := range f.s.slots {
		if slot.ClassID != nil && *slot.ClassID == id {
			delete(f.s.slots, slotID)
			removed++
		}
	}
	delete(f.s.classes, id)
	return removed, nil
}

func (f *fakeClassRepository) ListByUser(_ context.Context, _ *gorm.DB, userID string, filters repositories.ListFilters) ([]*models.Class, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Class
	for _, class := range f.s.classes {
		if class.UserID == userID && matches(class.Name, filters.Search) {
			c := *class
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Class) int { return int(a.ID) - int(b.ID) })
	return page(out, filters.Limit, filters.Offset), int64(len(out)), nil
}

func (f *fakeClassRepository) CountByUser(_ context.Context, _ *gorm.DB, userID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, class := range f.s.classes {
		if class.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ===== ACTIVITIES =====

type fakeActivityRepository struct{ s *fakeStore }

func (f *fakeActivityRepository) Create(_ context.Context, _ *gorm.DB, activity *models.Activity) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	activity.ID = f.s.id()
	a := *activity
	f.s.activities[activity.ID] = &a
	return nil
}

func (f *fakeActivityRepository) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Activity, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	activity, ok := f.s.activities[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	a := *activity
	return &a, nil
}

func (f *fakeActivityRepository) Update(_ context.Context, _ *gorm.DB, activity *models.Activity) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.activities[activity.ID]; !ok {
		return repositories.ErrNotFound
	}
	a := *activity
	f.s.activities[activity.ID] = &a
	return nil
}

func (f *fakeActivityRepository) Delete(_ context.Context, _ *gorm.DB, id uint) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.activities[id]; !ok {
		return 0, repositories.ErrNotFound
	}
	var removed int64
	for slotID, slot := range f.s.slots {
		if slot.ActivityID != nil && *slot.ActivityID == id {
			delete(f.s.slots, slotID)
			removed++
		}
	}
	delete(f.s.activities, id)
	return removed, nil
}

func (f *fakeActivityRepository) ListByUser(_ context.Context, _ *gorm.DB, userID string, filters repositories.ListFilters) ([]*models.Activity, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Activity
	for _, activity := range f.s.activities {
		if activity.UserID == userID && matches(activity.Name, filters.Search) {
			a := *activity
			out = append(out, &a)
		}
	}
	slices.SortFunc(out, func(a, b *models.Activity) int { return int(a.ID) - int(b.ID) })
	return page(out, filters.Limit, filters.Offset), int64(len(out)), nil
}

func (f *fakeActivityRepository) CountByUser(_ context.Context, _ *gorm.DB, userID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, activity := range f.s.activities {
		if activity.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ===== SLOTS =====

type fakeSlotRepository struct{ s *fakeStore }

func (f *fakeSlotRepository) Create(_ context.Context, _ *gorm.DB, slot *models.ScheduleSlot) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	slot.ID = f.s.id()
	stored := *slot
	stored.Class, stored.Activity = nil, nil
	f.s.slots[slot.ID] = &stored
	return nil
}

func (f *fakeSlotRepository) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.ScheduleSlot, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	slot, ok := f.s.slots[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return f.s.withOwner(slot), nil
}

func (f *fakeSlotRepository) Update(_ context.Context, _ *gorm.DB, slot *models.ScheduleSlot) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	stored, ok := f.s.slots[slot.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.IsRecurring = slot.IsRecurring
	stored.DayOfWeek = slot.DayOfWeek
	stored.SpecificDate = slot.SpecificDate
	stored.StartTime = slot.StartTime
	stored.EndTime = slot.EndTime
	return nil
}

func (f *fakeSlotRepository) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.slots[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.s.slots, id)
	return nil
}

func (f *fakeSlotRepository) LockUser(_ context.Context, _ *gorm.DB, userID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.locks = append(f.s.locks, userID)
	return nil
}

func (f *fakeSlotRepository) ListByUser(_ context.Context, _ *gorm.DB, userID string) ([]*models.ScheduleSlot, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.listErr != nil {
		return nil, f.s.listErr
	}
	out := make([]*models.ScheduleSlot, 0)
	for _, slot := range f.s.slots {
		loaded := f.s.withOwner(slot)
		if loaded.OwnerUserID() == userID {
			out = append(out, loaded)
		}
	}
	slices.SortFunc(out, func(a, b *models.ScheduleSlot) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (f *fakeSlotRepository) ListByClass(_ context.Context, _ *gorm.DB, classID uint) ([]*models.ScheduleSlot, error) {
	return f.listByOwner(func(slot *models.ScheduleSlot) bool {
		return slot.ClassID != nil && *slot.ClassID == classID
	}), nil
}

func (f *fakeSlotRepository) ListByActivity(_ context.Context, _ *gorm.DB, activityID uint) ([]*models.ScheduleSlot, error) {
	return f.listByOwner(func(slot *models.ScheduleSlot) bool {
		return slot.ActivityID != nil && *slot.ActivityID == activityID
	}), nil
}

func (f *fakeSlotRepository) listByOwner(match func(*models.ScheduleSlot) bool) []*models.ScheduleSlot {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.ScheduleSlot, 0)
	for _, slot := range f.s.slots {
		if match(slot) {
			s := *slot
			out = append(out, &s)
		}
	}
	slices.SortFunc(out, func(a, b *models.ScheduleSlot) int { return int(a.ID) - int(b.ID) })
	return out
}

func (f *fakeSlotRepository) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	slots, err := f.ListByUser(ctx, tx, userID)
	return int64(len(slots)), err
}

// ===== USERS =====

type fakeUserRepository struct{ s *fakeStore }

func (f *fakeUserRepository) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	user, ok := f.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (f *fakeUserRepository) GetByEmail(_ context.Context, _ *gorm.DB, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, user := range f.s.users {
		if strings.EqualFold(user.Email, email) {
			u := *user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepository) Upsert(_ context.Context, _ *gorm.DB, user *models.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.upserts++
	stored := *user
	if existing, ok := f.s.users[user.ID]; ok {
		stored.Status = existing.Status
	}
	if stored.Status == "" {
		stored.Status = models.UserStatusActive
	}
	if stored.Role == "" {
		stored.Role = models.RoleStudent
	}
	f.s.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepository) UpdateStatus(_ context.Context, _ *gorm.DB, id string, status models.UserStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	user, ok := f.s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Status = status
	return nil
}

func (f *fakeUserRepository) List(_ context.Context, _ *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.User
	for _, user := range f.s.users {
		if !matches(user.Name+" "+user.Email, filters.Query) {
			continue
		}
		if filters.Status != nil && user.Status != *filters.Status {
			continue
		}
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		u := *user
		out = append(out, &u)
	}
	slices.SortFunc(out, func(a, b *models.User) int { return strings.Compare(a.ID, b.ID) })
	return page(out, filters.Limit, filters.Offset), int64(len(out)), nil
}

func (f *fakeUserRepository) GetStats(ctx context.Context, tx *gorm.DB, id string) (*models.UserStats, error) {
	classes, _ := (&fakeClassRepository{f.s}).CountByUser(ctx, tx, id)
	activities, _ := (&fakeActivityRepository{f.s}).CountByUser(ctx, tx, id)
	slots, _ := (&fakeSlotRepository{f.s}).CountByUser(ctx, tx, id)
	return &models.UserStats{ClassCount: classes, ActivityCount: activities, SlotCount: slots}, nil
}

// ===== HELPERS =====

func matches(value, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(value), strings.ToLower(search))
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPublisher() *events.MockEventPublisher {
	return events.NewMockEventPublisher(testLogger())
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func mustClock(t *testing.T, value string) datatypes.Time {
	t.Helper()
	c, err := models.ParseClock(value)
	require.NoError(t, err)
	return c
}

// seedClass stores a class owned by userID.
func seedClass(t *testing.T, repo *fakeRepository, userID, name string) *models.Class {
	t.Helper()
	class := &models.Class{UserID: userID, Name: name, HoursPerDay: 2}
	require.NoError(t, repo.Class().Create(context.Background(), nil, class))
	return class
}

// seedActivity stores an activity owned by userID.
func seedActivity(t *testing.T, repo *fakeRepository, userID, name string) *models.Activity {
	t.Helper()
	activity := &models.Activity{UserID: userID, Name: name}
	require.NoError(t, repo.Activity().Create(context.Background(), nil, activity))
	return activity
}

// seedRecurring stores a weekly slot for a class or activity id.
func seedRecurring(t *testing.T, repo *fakeRepository, classID, activityID *uint, day models.Weekday, start, end string) *models.ScheduleSlot {
	t.Helper()
	slot := &models.ScheduleSlot{
		ClassID:     classID,
		ActivityID:  activityID,
		IsRecurring: true,
		DayOfWeek:   day,
		StartTime:   mustClock(t, start),
		EndTime:     mustClock(t, end),
	}
	require.NoError(t, repo.Slot().Create(context.Background(), nil, slot))
	return slot
}

// seedOneOff stores a dated slot for a class or activity id.
func seedOneOff(t *testing.T, repo *fakeRepository, classID, activityID *uint, date, start, end string) *models.ScheduleSlot {
	t.Helper()
	d, err := models.ParseDate(date)
	require.NoError(t, err)
	slot := &models.ScheduleSlot{
		ClassID:      classID,
		ActivityID:   activityID,
		DayOfWeek:    models.WeekdayOf(time.Time(d)),
		SpecificDate: &d,
		StartTime:    mustClock(t, start),
		EndTime:      mustClock(t, end),
	}
	require.NoError(t, repo.Slot().Create(context.Background(), nil, slot))
	return slot
}

func newValidator() *validator.Validator {
	return validator.New()
}
