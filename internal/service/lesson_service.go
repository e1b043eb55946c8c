package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
)

type lessonStore interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error)
	ListWeek(ctx context.Context, semester, week int) ([]models.Lesson, error)
	FindByID(ctx context.Context, id int64) (*models.Lesson, error)
	OverlapOnDate(ctx context.Context, kind models.ConflictKind, value, date, timeStart, timeEnd string, excludeIDs ...int64) ([]models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id int64) error
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Invalidate(ctx context.Context)
}

// LessonService owns lesson CRUD and the conflict checks guarding
// placement writes.
type LessonService struct {
	repo          lessonStore
	cache         scheduleCache
	subgroupAware bool
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewLessonService instantiates LessonService.
func NewLessonService(repo lessonStore, cache scheduleCache, subgroupAware bool, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{repo: repo, cache: cache, subgroupAware: subgroupAware, validator: validate, logger: logger}
}

// List returns filtered lessons with paging metadata.
func (s *LessonService) List(ctx context.Context, query dto.ListLessonsQuery) ([]models.Lesson, *models.Pagination, error) {
	filter := models.LessonFilter{
		Semester:    query.Semester,
		WeekNumber:  query.WeekNumber,
		GroupName:   query.GroupName,
		TeacherName: query.TeacherName,
		Auditory:    query.Auditory,
		Weekday:     query.Weekday,
		Date:        query.Date,
		Page:        query.Page,
		PageSize:    query.PageSize,
	}

	lessons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}

	return lessons, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// WeekView returns the lessons of one entity's semester week, served
// from cache when possible. View is one of "group", "teacher",
// "auditory".
func (s *LessonService) WeekView(ctx context.Context, view, name string, semester, week int) ([]models.Lesson, error) {
	filter := models.LessonFilter{Semester: semester, WeekNumber: week, Page: 1, PageSize: 500}
	switch view {
	case "group":
		filter.GroupName = name
	case "teacher":
		filter.TeacherName = name
	case "auditory":
		filter.Auditory = name
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown view %q", view))
	}
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}

	key := fmt.Sprintf("schedule:%s:%s:sem%d:week%d", view, name, semester, week)
	var cached []models.Lesson
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	lessons, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week view")
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, lessons)
	}
	return lessons, nil
}

// GetByID loads one lesson.
func (s *LessonService) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

// Create stores a new lesson. No conflict check happens on create;
// imported schedules legitimately contain parallel subgroup lessons.
func (s *LessonService) Create(ctx context.Context, req dto.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	if !models.ValidLessonType(models.LessonType(req.LessonType)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown lesson type %q", req.LessonType))
	}

	lesson := &models.Lesson{
		Semester:    req.Semester,
		WeekNumber:  req.WeekNumber,
		GroupName:   req.GroupName,
		Course:      req.Course,
		Faculty:     req.Faculty,
		Subject:     req.Subject,
		LessonType:  models.LessonType(req.LessonType),
		Subgroup:    req.Subgroup,
		Date:        req.Date,
		Weekday:     req.Weekday,
		TimeStart:   req.TimeStart,
		TimeEnd:     req.TimeEnd,
		TeacherName: req.TeacherName,
		Auditory:    req.Auditory,
	}

	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}

	s.invalidate(ctx)
	return lesson, nil
}

// Update applies a partial update. When the update touches placement or
// resource fields and Force is not set, the new placement is
// conflict-checked first and a structured conflict error is returned
// without writing.
func (s *LessonService) Update(ctx context.Context, id int64, req dto.UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	lesson, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	placementTouched := applyLessonUpdate(lesson, req)

	if placementTouched && !req.Force {
		conflicts, err := s.placementConflicts(ctx, lesson)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			domainErr := &models.ConflictError{Message: "conflicts detected", Conflicts: conflicts}
			return nil, appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
		}
	}

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}

	s.invalidate(ctx)
	return lesson, nil
}

// applyLessonUpdate merges non-nil fields into the lesson and reports
// whether any placement or resource field changed.
func applyLessonUpdate(lesson *models.Lesson, req dto.UpdateLessonRequest) bool {
	touched := false

	if req.Semester != nil {
		lesson.Semester = *req.Semester
	}
	if req.WeekNumber != nil {
		lesson.WeekNumber = *req.WeekNumber
	}
	if req.GroupName != nil && *req.GroupName != lesson.GroupName {
		lesson.GroupName = *req.GroupName
		touched = true
	}
	if req.Course != nil {
		lesson.Course = *req.Course
	}
	if req.Faculty != nil {
		lesson.Faculty = *req.Faculty
	}
	if req.Subject != nil {
		lesson.Subject = *req.Subject
	}
	if req.LessonType != nil {
		lesson.LessonType = models.LessonType(*req.LessonType)
	}
	if req.Subgroup != nil {
		lesson.Subgroup = *req.Subgroup
	}
	if req.Date != nil && *req.Date != lesson.Date {
		lesson.Date = *req.Date
		touched = true
	}
	if req.Weekday != nil && *req.Weekday != lesson.Weekday {
		lesson.Weekday = *req.Weekday
		touched = true
	}
	if req.TimeStart != nil && *req.TimeStart != lesson.TimeStart {
		lesson.TimeStart = *req.TimeStart
		touched = true
	}
	if req.TimeEnd != nil && *req.TimeEnd != lesson.TimeEnd {
		lesson.TimeEnd = *req.TimeEnd
		touched = true
	}
	if req.TeacherName != nil && *req.TeacherName != lesson.TeacherName {
		lesson.TeacherName = *req.TeacherName
		touched = true
	}
	if req.Auditory != nil && *req.Auditory != lesson.Auditory {
		lesson.Auditory = *req.Auditory
		touched = true
	}

	return touched
}

// UpdatePlacement moves a lesson to a new cell. Unless forced, the
// target is conflict-checked against the store at write time; a conflict
// aborts the write and surfaces the colliding lessons.
func (s *LessonService) UpdatePlacement(ctx context.Context, id int64, weekday int, date, timeStart, timeEnd string, force bool) (*models.Lesson, error) {
	lesson, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lesson.Weekday = weekday
	lesson.Date = date
	lesson.TimeStart = timeStart
	lesson.TimeEnd = timeEnd

	if !force {
		conflicts, err := s.placementConflicts(ctx, lesson)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			domainErr := &models.ConflictError{Message: "conflicts detected", Conflicts: conflicts}
			return nil, appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
		}
	}

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move lesson")
	}

	s.invalidate(ctx)
	return lesson, nil
}

// Delete removes a lesson.
func (s *LessonService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}
	s.invalidate(ctx)
	return nil
}

// placementConflicts probes each occupied dimension of the lesson's
// target cell on its date.
func (s *LessonService) placementConflicts(ctx context.Context, lesson *models.Lesson) ([]models.LessonConflict, error) {
	dims := []struct {
		kind  models.ConflictKind
		value string
	}{
		{models.ConflictAuditory, lesson.Auditory},
		{models.ConflictTeacher, lesson.TeacherName},
		{models.ConflictGroup, lesson.GroupName},
	}

	var conflicts []models.LessonConflict
	for _, dim := range dims {
		if dim.value == "" {
			continue
		}
		colliding, err := s.repo.OverlapOnDate(ctx, dim.kind, dim.value, lesson.Date, lesson.TimeStart, lesson.TimeEnd, lesson.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check conflicts")
		}
		for _, c := range colliding {
			if dim.kind == models.ConflictGroup && s.subgroupAware &&
				lesson.Subgroup > 0 && c.Subgroup > 0 && lesson.Subgroup != c.Subgroup {
				continue
			}
			conflicts = append(conflicts, models.LessonConflict{
				LessonID:    c.ID,
				Subject:     c.Subject,
				GroupName:   c.GroupName,
				TeacherName: c.TeacherName,
				Auditory:    c.Auditory,
				Weekday:     c.Weekday,
				Date:        c.Date,
				TimeStart:   c.TimeStart,
				TimeEnd:     c.TimeEnd,
				Kind:        dim.kind,
				Value:       dim.value,
			})
		}
	}
	return conflicts, nil
}

func (s *LessonService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
