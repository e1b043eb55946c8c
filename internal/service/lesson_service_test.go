package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
)

type mockLessonStore struct {
	items    map[int64]*models.Lesson
	list     []models.Lesson
	total    int
	overlaps map[models.ConflictKind][]models.Lesson
	updated  []models.Lesson
	deleted  []int64
}

func (m *mockLessonStore) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	return m.list, m.total, nil
}

func (m *mockLessonStore) ListWeek(ctx context.Context, semester, week int) ([]models.Lesson, error) {
	return m.list, nil
}

func (m *mockLessonStore) FindByID(ctx context.Context, id int64) (*models.Lesson, error) {
	if lesson, ok := m.items[id]; ok {
		cp := *lesson
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLessonStore) OverlapOnDate(ctx context.Context, kind models.ConflictKind, value, date, timeStart, timeEnd string, excludeIDs ...int64) ([]models.Lesson, error) {
	return m.overlaps[kind], nil
}

func (m *mockLessonStore) Create(ctx context.Context, lesson *models.Lesson) error {
	lesson.ID = 1
	return nil
}

func (m *mockLessonStore) Update(ctx context.Context, lesson *models.Lesson) error {
	m.updated = append(m.updated, *lesson)
	return nil
}

func (m *mockLessonStore) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockScheduleCache struct {
	data        map[string][]models.Lesson
	sets        int
	invalidated int
}

func (m *mockScheduleCache) Get(ctx context.Context, key string, dest interface{}) bool {
	lessons, ok := m.data[key]
	if !ok {
		return false
	}
	*dest.(*[]models.Lesson) = lessons
	return true
}

func (m *mockScheduleCache) Set(ctx context.Context, key string, value interface{}) {
	m.sets++
	if m.data == nil {
		m.data = make(map[string][]models.Lesson)
	}
	m.data[key] = value.([]models.Lesson)
}

func (m *mockScheduleCache) Invalidate(ctx context.Context) {
	m.invalidated++
	m.data = nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestLessonServiceCreate(t *testing.T) {
	repo := &mockLessonStore{}
	cache := &mockScheduleCache{}
	svc := NewLessonService(repo, cache, false, validator.New(), zap.NewNop())

	lesson, err := svc.Create(context.Background(), dto.CreateLessonRequest{
		Semester: 1, WeekNumber: 10, GroupName: "CS-101", Subject: "Algebra",
		LessonType: "lecture", Date: "2026-03-03", Weekday: 2,
		TimeStart: "09:30", TimeEnd: "10:50",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), lesson.ID)
	assert.Equal(t, models.LessonLecture, lesson.LessonType)
	assert.Equal(t, 1, cache.invalidated)
}

func TestLessonServiceCreateRejectsUnknownType(t *testing.T) {
	svc := NewLessonService(&mockLessonStore{}, nil, false, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateLessonRequest{
		Semester: 1, WeekNumber: 10, GroupName: "CS-101", Subject: "Algebra",
		LessonType: "recital", Date: "2026-03-03", Weekday: 2,
		TimeStart: "09:30", TimeEnd: "10:50",
	})
	require.Error(t, err)
}

func TestLessonServiceUpdatePlacementConflict(t *testing.T) {
	lesson := testLesson()
	repo := &mockLessonStore{
		items: map[int64]*models.Lesson{lesson.ID: &lesson},
		overlaps: map[models.ConflictKind][]models.Lesson{
			models.ConflictTeacher: {{ID: 7, Subject: "Physics", TeacherName: "Ivanov I.I.", TimeStart: "08:00", TimeEnd: "09:20"}},
		},
	}
	svc := NewLessonService(repo, nil, false, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), lesson.ID, dto.UpdateLessonRequest{
		Weekday: intPtr(1), Date: strPtr("2026-03-02"),
		TimeStart: strPtr("08:00"), TimeEnd: strPtr("09:20"),
	})
	require.Error(t, err)

	var conflictErr *models.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, models.ConflictTeacher, conflictErr.Conflicts[0].Kind)
	assert.Empty(t, repo.updated, "conflicting update must not write")
}

func TestLessonServiceUpdateForcedWrites(t *testing.T) {
	lesson := testLesson()
	repo := &mockLessonStore{
		items: map[int64]*models.Lesson{lesson.ID: &lesson},
		overlaps: map[models.ConflictKind][]models.Lesson{
			models.ConflictTeacher: {{ID: 7}},
		},
	}
	cache := &mockScheduleCache{}
	svc := NewLessonService(repo, cache, false, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), lesson.ID, dto.UpdateLessonRequest{
		Weekday: intPtr(1), Date: strPtr("2026-03-02"),
		TimeStart: strPtr("08:00"), TimeEnd: strPtr("09:20"),
		Force: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Weekday)
	require.Len(t, repo.updated, 1)
	assert.Equal(t, 1, cache.invalidated)
}

func TestLessonServiceUpdateNonPlacementSkipsConflictCheck(t *testing.T) {
	lesson := testLesson()
	repo := &mockLessonStore{
		items: map[int64]*models.Lesson{lesson.ID: &lesson},
		overlaps: map[models.ConflictKind][]models.Lesson{
			models.ConflictTeacher: {{ID: 7}},
		},
	}
	svc := NewLessonService(repo, nil, false, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), lesson.ID, dto.UpdateLessonRequest{
		Subject: strPtr("Linear Algebra"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", updated.Subject)
}

func TestLessonServiceSubgroupAwareConflicts(t *testing.T) {
	lesson := testLesson()
	lesson.Subgroup = 1
	other := models.Lesson{ID: 7, GroupName: "CS-101", Subgroup: 2, TimeStart: "08:00", TimeEnd: "09:20"}
	repo := &mockLessonStore{
		items:    map[int64]*models.Lesson{lesson.ID: &lesson},
		overlaps: map[models.ConflictKind][]models.Lesson{models.ConflictGroup: {other}},
	}
	svc := NewLessonService(repo, nil, true, validator.New(), zap.NewNop())

	// Different nonzero subgroups of the same group may run in parallel.
	_, err := svc.UpdatePlacement(context.Background(), lesson.ID, 1, "2026-03-02", "08:00", "09:20", false)
	require.NoError(t, err)
}

func TestLessonServiceWeekViewUsesCache(t *testing.T) {
	cached := []models.Lesson{{ID: 5, Subject: "Cached"}}
	cache := &mockScheduleCache{data: map[string][]models.Lesson{
		"schedule:group:CS-101:sem1:week10": cached,
	}}
	svc := NewLessonService(&mockLessonStore{list: []models.Lesson{{ID: 9}}}, cache, false, validator.New(), zap.NewNop())

	lessons, err := svc.WeekView(context.Background(), "group", "CS-101", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, cached, lessons)
	assert.Zero(t, cache.sets)
}

func TestLessonServiceWeekViewPopulatesCache(t *testing.T) {
	cache := &mockScheduleCache{}
	svc := NewLessonService(&mockLessonStore{list: []models.Lesson{{ID: 9}}}, cache, false, validator.New(), zap.NewNop())

	lessons, err := svc.WeekView(context.Background(), "teacher", "Ivanov I.I.", 1, 10)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
	assert.Equal(t, 1, cache.sets)
}

func TestLessonServiceDelete(t *testing.T) {
	lesson := testLesson()
	repo := &mockLessonStore{items: map[int64]*models.Lesson{lesson.ID: &lesson}}
	cache := &mockScheduleCache{}
	svc := NewLessonService(repo, cache, false, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), lesson.ID))
	assert.Equal(t, []int64{lesson.ID}, repo.deleted)
	assert.Equal(t, 1, cache.invalidated)

	err := svc.Delete(context.Background(), 999)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
