package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/models"
	"github.com/sanumxxx/timetable-api/internal/service"
)

type stubLessonStore struct {
	lessons   map[int64]*models.Lesson
	overlaps  map[models.ConflictKind][]models.Lesson
	groupCell []models.Lesson
}

func (s *stubLessonStore) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	return nil, 0, nil
}

func (s *stubLessonStore) ListWeek(ctx context.Context, semester, week int) ([]models.Lesson, error) {
	return nil, nil
}

func (s *stubLessonStore) FindByID(ctx context.Context, id int64) (*models.Lesson, error) {
	if lesson, ok := s.lessons[id]; ok {
		cp := *lesson
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubLessonStore) OverlapOnDate(ctx context.Context, kind models.ConflictKind, value, date, timeStart, timeEnd string, excludeIDs ...int64) ([]models.Lesson, error) {
	return s.overlaps[kind], nil
}

func (s *stubLessonStore) OverlapInWeek(ctx context.Context, kind models.ConflictKind, value string, semester, week, weekday int, timeStart, timeEnd string, excludeID int64) ([]models.Lesson, error) {
	return s.overlaps[kind], nil
}

func (s *stubLessonStore) Create(ctx context.Context, lesson *models.Lesson) error { return nil }
func (s *stubLessonStore) Update(ctx context.Context, lesson *models.Lesson) error { return nil }
func (s *stubLessonStore) Delete(ctx context.Context, id int64) error              { return nil }

func (s *stubLessonStore) SwapPlacements(ctx context.Context, a, b *models.Lesson, swapLocations bool) error {
	return nil
}

func (s *stubLessonStore) ListGroupCell(ctx context.Context, groupName string, semester, week, weekday int, timeStart string) ([]models.Lesson, error) {
	return s.groupCell, nil
}

func (s *stubLessonStore) UpdatePlacements(ctx context.Context, lessons []*models.Lesson) error {
	return nil
}

type stubChecker struct {
	occupied []models.OccupiedSlot
}

func (s *stubChecker) CheckDetailedAvailability(ctx context.Context, req dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	return &dto.AvailabilityResponse{OccupiedSlots: s.occupied}, nil
}

type stubSlotStore struct{}

func (s *stubSlotStore) List(ctx context.Context) ([]models.TimeSlot, error) {
	return models.DefaultTimeSlots(), nil
}

func (s *stubSlotStore) ListActive(ctx context.Context) ([]models.TimeSlot, error) {
	return models.DefaultTimeSlots(), nil
}

func (s *stubSlotStore) FindByID(ctx context.Context, id int64) (*models.TimeSlot, error) {
	return nil, sql.ErrNoRows
}

func (s *stubSlotStore) Create(ctx context.Context, slot *models.TimeSlot) error   { return nil }
func (s *stubSlotStore) Update(ctx context.Context, slot *models.TimeSlot) error   { return nil }
func (s *stubSlotStore) Delete(ctx context.Context, id int64) error                { return nil }
func (s *stubSlotStore) Reorder(ctx context.Context, orderedIDs []int64) error     { return nil }
func (s *stubSlotStore) ReplaceAll(ctx context.Context, slots []models.TimeSlot) error { return nil }

func newRescheduleRouter(t *testing.T, store *stubLessonStore, checker service.AvailabilityChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validate := validator.New()
	logr := zap.NewNop()
	lessonSvc := service.NewLessonService(store, nil, false, validate, logr)
	slotSvc := service.NewTimeSlotService(&stubSlotStore{}, time.Minute, validate, logr)
	rescheduleSvc := service.NewRescheduleService(store, checker, slotSvc, lessonSvc, service.RescheduleOptions{}, validate, logr, nil)
	h := NewRescheduleHandler(rescheduleSvc, lessonSvc, slotSvc, checker)

	r := gin.New()
	r.POST("/schedule/check_availability", h.CheckAvailability)
	r.POST("/schedule/:id/move_options", h.MoveOptions)
	r.POST("/schedule/:id/move", h.CommitMove)
	r.POST("/schedule/swap", h.Swap)
	r.POST("/schedule/group_move", h.GroupMove)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sampleLesson() *models.Lesson {
	return &models.Lesson{
		ID: 42, Semester: 1, WeekNumber: 10, GroupName: "CS-101", Subject: "Algebra",
		Weekday: 2, Date: "2026-03-03", TimeStart: "09:30", TimeEnd: "10:50",
		TeacherName: "Ivanov I.I.", Auditory: "301",
	}
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	checker := &stubChecker{occupied: []models.OccupiedSlot{
		{Weekday: 1, TimeStart: "08:00", TimeEnd: "09:20", Subject: "Physics", Kind: models.ConflictTeacher, Value: "Ivanov I.I."},
	}}
	r := newRescheduleRouter(t, &stubLessonStore{}, checker)

	rec := postJSON(t, r, "/schedule/check_availability", dto.AvailabilityRequest{
		Semester: 1, WeekNumber: 10, TeacherName: "Ivanov I.I.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data dto.AvailabilityResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.OccupiedSlots, 1)
	assert.Equal(t, models.ConflictTeacher, envelope.Data.OccupiedSlots[0].Kind)
}

func TestMoveOptionsEndpoint(t *testing.T) {
	lesson := sampleLesson()
	store := &stubLessonStore{lessons: map[int64]*models.Lesson{lesson.ID: lesson}}
	r := newRescheduleRouter(t, store, &stubChecker{})

	rec := postJSON(t, r, "/schedule/42/move_options", dto.MoveOptionsRequest{
		WeekDates: map[int]string{1: "2026-03-02", 2: "2026-03-03"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []models.MoveCandidate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	// 2 mapped days x 8 slots minus the lesson's own cell.
	assert.Len(t, envelope.Data, 15)
}

func TestCommitMoveEndpointConfirmation(t *testing.T) {
	lesson := sampleLesson()
	store := &stubLessonStore{lessons: map[int64]*models.Lesson{lesson.ID: lesson}}
	checker := &stubChecker{occupied: []models.OccupiedSlot{
		{Weekday: 1, TimeStart: "08:00", TimeEnd: "09:20", Subject: "Physics", GroupName: "CS-101", Kind: models.ConflictGroup, Value: "CS-101"},
	}}
	r := newRescheduleRouter(t, store, checker)

	rec := postJSON(t, r, "/schedule/42/move", dto.CommitMoveRequest{
		Weekday: 1, Date: "2026-03-02", TimeStart: "08:00", TimeEnd: "09:20", Mode: "avoid",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data dto.ConfirmationSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.RequiresConfirmation)
	assert.Len(t, envelope.Data.GroupConflicts, 1)
}

func TestGroupMoveEndpoint(t *testing.T) {
	lesson := sampleLesson()
	store := &stubLessonStore{groupCell: []models.Lesson{*lesson}}
	r := newRescheduleRouter(t, store, &stubChecker{})

	rec := postJSON(t, r, "/schedule/group_move", dto.GroupMoveRequest{
		GroupName: "CS-101", Semester: 1, WeekNumber: 10,
		SourceWeekday: 2, SourceTimeStart: "09:30",
		TargetWeekday: 4, TargetTimeStart: "14:10", TargetTimeEnd: "15:30",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data dto.GroupMoveResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Moved, 1)
	assert.Equal(t, 4, envelope.Data.Moved[0].Weekday)
	assert.Equal(t, "2026-03-05", envelope.Data.Moved[0].Date)
}

func TestGroupMoveEndpointConflict(t *testing.T) {
	lesson := sampleLesson()
	store := &stubLessonStore{
		groupCell: []models.Lesson{*lesson},
		overlaps: map[models.ConflictKind][]models.Lesson{
			models.ConflictTeacher: {{ID: 60, Subject: "Lab", TeacherName: "Ivanov I.I.", TimeStart: "14:10", TimeEnd: "15:30"}},
		},
	}
	r := newRescheduleRouter(t, store, &stubChecker{})

	rec := postJSON(t, r, "/schedule/group_move", dto.GroupMoveRequest{
		GroupName: "CS-101", Semester: 1, WeekNumber: 10,
		SourceWeekday: 2, SourceTimeStart: "09:30",
		TargetWeekday: 4, TargetTimeStart: "14:10", TargetTimeEnd: "15:30",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Data models.GroupMoveConflictError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Groups, 1)
	assert.Equal(t, lesson.ID, envelope.Data.Groups[0].LessonID)
}

func TestSwapEndpointConflictPayload(t *testing.T) {
	a := sampleLesson()
	b := &models.Lesson{ID: 50, Weekday: 4, Date: "2026-03-05", TimeStart: "14:10", TimeEnd: "15:30", Subject: "Physics", TeacherName: "Petrov P.P."}
	store := &stubLessonStore{
		lessons: map[int64]*models.Lesson{a.ID: a, b.ID: b},
		overlaps: map[models.ConflictKind][]models.Lesson{
			models.ConflictTeacher: {{ID: 60, Subject: "Lab", TeacherName: "Ivanov I.I.", TimeStart: "14:10", TimeEnd: "15:30"}},
		},
	}
	r := newRescheduleRouter(t, store, &stubChecker{})

	rec := postJSON(t, r, "/schedule/swap", dto.SwapRequest{Lesson1ID: a.ID, Lesson2ID: b.ID})
	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Data models.SwapConflictError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Groups)
}
