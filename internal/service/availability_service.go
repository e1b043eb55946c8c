package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
)

type availabilityLessonStore interface {
	WeekCollisions(ctx context.Context, kind models.ConflictKind, value string, semester, week int, excludeID int64) ([]models.Lesson, error)
}

// AvailabilityService answers which grid cells are already taken for a
// teacher, group or auditory in a semester week.
type AvailabilityService struct {
	lessons   availabilityLessonStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(lessons availabilityLessonStore, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{lessons: lessons, validator: validate, logger: logger}
}

// CheckDetailedAvailability returns one occupancy record per (lesson,
// dimension) pair. A lesson that collides on both the teacher and the
// group dimension appears twice, once per tag. The lesson identified by
// req.LessonID never contributes records.
func (s *AvailabilityService) CheckDetailedAvailability(ctx context.Context, req dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability request")
	}
	if req.TeacherName == "" && req.GroupName == "" && req.Auditory == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one of teacher_name, group_name or auditory is required")
	}

	dims := []struct {
		kind  models.ConflictKind
		value string
	}{
		{models.ConflictAuditory, req.Auditory},
		{models.ConflictTeacher, req.TeacherName},
		{models.ConflictGroup, req.GroupName},
	}

	occupied := make([]models.OccupiedSlot, 0)
	for _, dim := range dims {
		if dim.value == "" {
			continue
		}
		lessons, err := s.lessons.WeekCollisions(ctx, dim.kind, dim.value, req.Semester, req.WeekNumber, req.LessonID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check availability")
		}
		for _, lesson := range lessons {
			occupied = append(occupied, models.OccupiedSlot{
				Weekday:     lesson.Weekday,
				Date:        lesson.Date,
				TimeStart:   lesson.TimeStart,
				TimeEnd:     lesson.TimeEnd,
				Subject:     lesson.Subject,
				GroupName:   lesson.GroupName,
				TeacherName: lesson.TeacherName,
				Kind:        dim.kind,
				Value:       dim.value,
			})
		}
	}

	return &dto.AvailabilityResponse{
		TeacherName:   req.TeacherName,
		GroupName:     req.GroupName,
		Auditory:      req.Auditory,
		OccupiedSlots: occupied,
	}, nil
}
