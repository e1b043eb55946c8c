package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
)

type mockAvailabilityLessons struct {
	byKind map[models.ConflictKind][]models.Lesson
	calls  []models.ConflictKind
}

func (m *mockAvailabilityLessons) WeekCollisions(ctx context.Context, kind models.ConflictKind, value string, semester, week int, excludeID int64) ([]models.Lesson, error) {
	m.calls = append(m.calls, kind)
	return m.byKind[kind], nil
}

func TestCheckDetailedAvailabilityTagsEachDimension(t *testing.T) {
	shared := models.Lesson{ID: 9, Weekday: 2, Date: "2026-03-03", TimeStart: "09:30", TimeEnd: "10:50", Subject: "Physics", GroupName: "CS-101", TeacherName: "Ivanov I.I."}
	repo := &mockAvailabilityLessons{byKind: map[models.ConflictKind][]models.Lesson{
		models.ConflictTeacher: {shared},
		models.ConflictGroup:   {shared},
	}}
	svc := NewAvailabilityService(repo, validator.New(), zap.NewNop())

	resp, err := svc.CheckDetailedAvailability(context.Background(), dto.AvailabilityRequest{
		Semester: 1, WeekNumber: 10, LessonID: 42,
		TeacherName: "Ivanov I.I.", GroupName: "CS-101",
	})
	require.NoError(t, err)

	// One lesson colliding on two dimensions yields two tagged records.
	require.Len(t, resp.OccupiedSlots, 2)
	kinds := []models.ConflictKind{resp.OccupiedSlots[0].Kind, resp.OccupiedSlots[1].Kind}
	assert.Contains(t, kinds, models.ConflictTeacher)
	assert.Contains(t, kinds, models.ConflictGroup)
	for _, slot := range resp.OccupiedSlots {
		assert.Equal(t, 2, slot.Weekday)
		assert.Equal(t, "09:30", slot.TimeStart)
	}
}

func TestCheckDetailedAvailabilitySkipsEmptyDimensions(t *testing.T) {
	repo := &mockAvailabilityLessons{}
	svc := NewAvailabilityService(repo, validator.New(), zap.NewNop())

	resp, err := svc.CheckDetailedAvailability(context.Background(), dto.AvailabilityRequest{
		Semester: 1, WeekNumber: 10, Auditory: "301",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.OccupiedSlots)
	assert.Equal(t, []models.ConflictKind{models.ConflictAuditory}, repo.calls)
}

func TestCheckDetailedAvailabilityRequiresADimension(t *testing.T) {
	svc := NewAvailabilityService(&mockAvailabilityLessons{}, validator.New(), zap.NewNop())

	_, err := svc.CheckDetailedAvailability(context.Background(), dto.AvailabilityRequest{Semester: 1, WeekNumber: 10})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
