package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
)

// ConflictMode selects how an occupied target cell is handled on commit.
type ConflictMode string

const (
	ModeAvoid ConflictMode = "avoid"
	ModeForce ConflictMode = "force"
)

// AvailabilityChecker probes week occupancy for a lesson's resources.
type AvailabilityChecker interface {
	CheckDetailedAvailability(ctx context.Context, req dto.AvailabilityRequest) (*dto.AvailabilityResponse, error)
}

// PlacementUpdater persists a lesson's new placement, enforcing conflict
// detection unless forced.
type PlacementUpdater interface {
	UpdatePlacement(ctx context.Context, id int64, weekday int, date, timeStart, timeEnd string, force bool) (*models.Lesson, error)
}

type rescheduleLessonStore interface {
	FindByID(ctx context.Context, id int64) (*models.Lesson, error)
	ListWeek(ctx context.Context, semester, week int) ([]models.Lesson, error)
	OverlapOnDate(ctx context.Context, kind models.ConflictKind, value, date, timeStart, timeEnd string, excludeIDs ...int64) ([]models.Lesson, error)
	OverlapInWeek(ctx context.Context, kind models.ConflictKind, value string, semester, week, weekday int, timeStart, timeEnd string, excludeID int64) ([]models.Lesson, error)
	ListGroupCell(ctx context.Context, groupName string, semester, week, weekday int, timeStart string) ([]models.Lesson, error)
	UpdatePlacements(ctx context.Context, lessons []*models.Lesson) error
	SwapPlacements(ctx context.Context, a, b *models.Lesson, swapLocations bool) error
}

type rescheduleSlotCatalog interface {
	Catalog(ctx context.Context) []models.TimeSlot
}

// RescheduleOptions tunes conflict interpretation.
type RescheduleOptions struct {
	// SubgroupAware treats two lessons of the same group but different
	// nonzero subgroups as non-conflicting on the group dimension.
	SubgroupAware bool
	// TopOptions caps the optimal-time result list.
	TopOptions int
}

// CommitResult is the outcome of a move commit attempt. Exactly one of
// Lesson or Confirmation is set: Confirmation means no write happened
// and the caller must confirm before retrying with Confirmed set.
type CommitResult struct {
	Lesson       *models.Lesson
	Confirmation *dto.ConfirmationSummary
}

// RescheduleService turns a lesson plus context into ranked,
// conflict-annotated placement options and carries out the chosen
// transition against the store.
type RescheduleService struct {
	lessons      rescheduleLessonStore
	availability AvailabilityChecker
	slots        rescheduleSlotCatalog
	updater      PlacementUpdater
	opts         RescheduleOptions
	validator    *validator.Validate
	logger       *zap.Logger
	metrics      *MetricsService
}

// NewRescheduleService instantiates RescheduleService.
func NewRescheduleService(lessons rescheduleLessonStore, availability AvailabilityChecker, slots rescheduleSlotCatalog, updater PlacementUpdater, opts RescheduleOptions, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *RescheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TopOptions <= 0 {
		opts.TopOptions = 10
	}
	return &RescheduleService{
		lessons:      lessons,
		availability: availability,
		slots:        slots,
		updater:      updater,
		opts:         opts,
		validator:    validate,
		logger:       logger,
		metrics:      metrics,
	}
}

// BuildMoveCandidates produces every placement option for the lesson
// across the mapped weekdays and active slots, excluding the lesson's
// own cell, annotated with conflicts and ranked best-first.
//
// The availability probe is a single round trip. If it fails the method
// degrades to a full zero-conflict candidate grid: the store remains the
// conflict authority at commit time, so the caller is never blocked from
// attempting a move.
func (s *RescheduleService) BuildMoveCandidates(ctx context.Context, lesson models.Lesson, weekDates map[int]string, slots []models.TimeSlot) []models.MoveCandidate {
	occupied := s.probeOccupancy(ctx, lesson)

	lookup := make(map[models.SlotKey][]models.OccupiedSlot, len(occupied))
	for _, slot := range occupied {
		lookup[slot.Key()] = append(lookup[slot.Key()], slot)
	}

	own := models.SlotKey{Weekday: lesson.Weekday, TimeStart: lesson.TimeStart}
	var candidates []models.MoveCandidate

	for weekday := 1; weekday <= 6; weekday++ {
		date, ok := weekDates[weekday]
		if !ok || date == "" {
			continue
		}
		for _, slot := range slots {
			if !slot.IsActive {
				continue
			}
			key := models.SlotKey{Weekday: weekday, TimeStart: slot.TimeStart}
			if key == own {
				continue
			}

			cand := models.MoveCandidate{
				Weekday:     weekday,
				WeekdayName: models.WeekdayName(weekday),
				Date:        date,
				TimeStart:   slot.TimeStart,
				TimeEnd:     slot.TimeEnd,
			}
			for _, conflict := range lookup[key] {
				switch conflict.Kind {
				case models.ConflictTeacher:
					cand.TeacherConflicts = append(cand.TeacherConflicts, conflict)
				case models.ConflictGroup:
					cand.GroupConflicts = append(cand.GroupConflicts, conflict)
				case models.ConflictAuditory:
					cand.AuditoryConflicts = append(cand.AuditoryConflicts, conflict)
				}
			}
			cand.TotalConflicts = len(cand.TeacherConflicts) + len(cand.GroupConflicts) + len(cand.AuditoryConflicts)
			cand.IsOccupied = cand.TotalConflicts > 0
			candidates = append(candidates, cand)
		}
	}

	sortMoveCandidates(candidates)
	return candidates
}

func (s *RescheduleService) probeOccupancy(ctx context.Context, lesson models.Lesson) []models.OccupiedSlot {
	resp, err := s.availability.CheckDetailedAvailability(ctx, dto.AvailabilityRequest{
		Semester:    lesson.Semester,
		WeekNumber:  lesson.WeekNumber,
		LessonID:    lesson.ID,
		TeacherName: lesson.TeacherName,
		GroupName:   lesson.GroupName,
		Auditory:    lesson.Auditory,
	})
	if err != nil {
		s.logger.Warn("availability probe failed, degrading to zero-conflict candidates",
			zap.Int64("lesson_id", lesson.ID), zap.Error(err))
		return nil
	}
	return resp.OccupiedSlots
}

func sortMoveCandidates(candidates []models.MoveCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.IsOccupied != b.IsOccupied {
			return !a.IsOccupied
		}
		if a.TotalConflicts != b.TotalConflicts {
			return a.TotalConflicts < b.TotalConflicts
		}
		if a.Weekday != b.Weekday {
			return a.Weekday < b.Weekday
		}
		return a.TimeStart < b.TimeStart
	})
}

// CommitMove carries out the chosen candidate. In avoid mode an occupied
// target yields a confirmation summary instead of a write; the caller
// re-invokes with confirmed set after the user acknowledges. Exactly one
// store write happens per successful attempt.
func (s *RescheduleService) CommitMove(ctx context.Context, lesson models.Lesson, cand models.MoveCandidate, mode ConflictMode, confirmed bool) (*CommitResult, error) {
	if mode == "" {
		mode = ModeAvoid
	}

	if cand.IsOccupied && mode == ModeAvoid && !confirmed {
		s.observeCommit("move", "confirmation_required")
		return &CommitResult{Confirmation: buildConfirmation(cand)}, nil
	}

	force := mode == ModeForce || confirmed
	updated, err := s.updater.UpdatePlacement(ctx, lesson.ID, cand.Weekday, cand.Date, cand.TimeStart, cand.TimeEnd, force)
	if err != nil {
		var conflictErr *models.ConflictError
		if errors.As(err, &conflictErr) {
			s.observeCommit("move", "conflict")
		} else {
			s.observeCommit("move", "error")
		}
		return nil, err
	}

	s.observeCommit("move", "ok")
	return &CommitResult{Lesson: updated}, nil
}

// ApplyMove is the transport-facing commit: it reloads the lesson,
// re-annotates the requested target cell from a fresh availability probe
// and runs CommitMove. The fresh snapshot is still advisory; the store's
// answer at write time wins.
func (s *RescheduleService) ApplyMove(ctx context.Context, lessonID int64, req dto.CommitMoveRequest) (*CommitResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}

	cand := models.MoveCandidate{
		Weekday:     req.Weekday,
		WeekdayName: models.WeekdayName(req.Weekday),
		Date:        req.Date,
		TimeStart:   req.TimeStart,
		TimeEnd:     req.TimeEnd,
	}

	mode := ConflictMode(req.Mode)
	if mode == "" {
		mode = ModeAvoid
	}

	if mode == ModeAvoid && !req.Confirmed {
		occupied := s.probeOccupancy(ctx, *lesson)
		key := cand.Key()
		for _, conflict := range occupied {
			if conflict.Key() != key {
				continue
			}
			switch conflict.Kind {
			case models.ConflictTeacher:
				cand.TeacherConflicts = append(cand.TeacherConflicts, conflict)
			case models.ConflictGroup:
				cand.GroupConflicts = append(cand.GroupConflicts, conflict)
			case models.ConflictAuditory:
				cand.AuditoryConflicts = append(cand.AuditoryConflicts, conflict)
			}
		}
		cand.TotalConflicts = len(cand.TeacherConflicts) + len(cand.GroupConflicts) + len(cand.AuditoryConflicts)
		cand.IsOccupied = cand.TotalConflicts > 0
	}

	return s.CommitMove(ctx, *lesson, cand, mode, req.Confirmed)
}

func buildConfirmation(cand models.MoveCandidate) *dto.ConfirmationSummary {
	summary := &dto.ConfirmationSummary{RequiresConfirmation: true}
	for _, c := range cand.TeacherConflicts {
		summary.TeacherConflicts = append(summary.TeacherConflicts, fmt.Sprintf("%s (%s)", c.Subject, c.TeacherName))
	}
	for _, c := range cand.GroupConflicts {
		summary.GroupConflicts = append(summary.GroupConflicts, fmt.Sprintf("%s (%s)", c.Subject, c.GroupName))
	}
	for _, c := range cand.AuditoryConflicts {
		summary.AuditoryConflicts = append(summary.AuditoryConflicts, fmt.Sprintf("%s (%s)", c.Subject, c.Value))
	}
	return summary
}

// BuildSwapCandidates ranks the week's lessons by how cleanly they could
// trade placements with the selected lesson. The selected lesson and any
// lesson already sharing its exact cell are excluded: those are clashes,
// not swap partners.
func (s *RescheduleService) BuildSwapCandidates(lesson models.Lesson, weekLessons []models.Lesson) []models.SwapCandidate {
	own := models.SlotKey{Weekday: lesson.Weekday, TimeStart: lesson.TimeStart}

	var slotOccupants []models.Lesson
	for _, l := range weekLessons {
		if l.ID == lesson.ID {
			continue
		}
		if (models.SlotKey{Weekday: l.Weekday, TimeStart: l.TimeStart}) == own {
			slotOccupants = append(slotOccupants, l)
		}
	}

	var candidates []models.SwapCandidate
	for _, other := range weekLessons {
		if other.ID == lesson.ID {
			continue
		}
		if (models.SlotKey{Weekday: other.Weekday, TimeStart: other.TimeStart}) == own {
			continue
		}

		first := models.SwapConflictFlags{
			Teacher:  other.TeacherName != "" && other.TeacherName == lesson.TeacherName,
			Group:    s.groupsCollide(other, lesson),
			Auditory: other.Auditory != "" && other.Auditory == lesson.Auditory,
		}

		var second models.SwapConflictFlags
		for _, occ := range slotOccupants {
			if occ.ID == other.ID {
				continue
			}
			if other.TeacherName != "" && other.TeacherName == occ.TeacherName {
				second.Teacher = true
			}
			if s.groupsCollide(other, occ) {
				second.Group = true
			}
			if other.Auditory != "" && other.Auditory == occ.Auditory {
				second.Auditory = true
			}
		}

		candidates = append(candidates, models.SwapCandidate{
			Lesson:                other,
			FirstLessonConflicts:  first,
			SecondLessonConflicts: second,
			TotalConflicts:        first.Count() + second.Count(),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.TotalConflicts != b.TotalConflicts {
			return a.TotalConflicts < b.TotalConflicts
		}
		if a.Lesson.Weekday != b.Lesson.Weekday {
			return a.Lesson.Weekday < b.Lesson.Weekday
		}
		return a.Lesson.TimeStart < b.Lesson.TimeStart
	})
	return candidates
}

func (s *RescheduleService) groupsCollide(a, b models.Lesson) bool {
	if a.GroupName == "" || a.GroupName != b.GroupName {
		return false
	}
	if s.opts.SubgroupAware && a.Subgroup > 0 && b.Subgroup > 0 && a.Subgroup != b.Subgroup {
		return false
	}
	return true
}

// SwapCandidates loads the week once and ranks swap partners for the
// given lesson.
func (s *RescheduleService) SwapCandidates(ctx context.Context, lessonID int64) ([]models.SwapCandidate, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}

	weekLessons, err := s.lessons.ListWeek(ctx, lesson.Semester, lesson.WeekNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week lessons")
	}

	return s.BuildSwapCandidates(*lesson, weekLessons), nil
}

// Swap exchanges the placements of two lessons in one round trip. Unless
// forced, both directions are conflict-checked first and a structured
// conflict error is returned without writing.
func (s *RescheduleService) Swap(ctx context.Context, req dto.SwapRequest) (*dto.SwapResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid swap payload")
	}
	if req.Lesson1ID == req.Lesson2ID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot swap a lesson with itself")
	}

	first, err := s.loadLesson(ctx, req.Lesson1ID)
	if err != nil {
		return nil, err
	}
	second, err := s.loadLesson(ctx, req.Lesson2ID)
	if err != nil {
		return nil, err
	}

	if !req.Force {
		var groups []models.SwapConflictGroup
		if g := s.swapSideConflicts(ctx, first, second); g != nil {
			groups = append(groups, *g)
		}
		if g := s.swapSideConflicts(ctx, second, first); g != nil {
			groups = append(groups, *g)
		}
		if len(groups) > 0 {
			s.observeCommit("swap", "conflict")
			domainErr := &models.SwapConflictError{Message: "conflicts detected while swapping lessons", Groups: groups}
			return nil, appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
		}
	}

	if err := s.lessons.SwapPlacements(ctx, first, second, req.SwapLocations); err != nil {
		s.observeCommit("swap", "error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to swap lessons")
	}

	s.observeCommit("swap", "ok")
	return &dto.SwapResponse{Lesson1: first, Lesson2: second}, nil
}

// MoveGroup relocates every lesson a group has in the source cell to
// the target cell of the same week. Each lesson keeps its own room;
// dates shift by the weekday difference. Unless forced, every moved
// lesson is conflict-checked against the target cell first and a
// structured conflict error is returned without writing.
func (s *RescheduleService) MoveGroup(ctx context.Context, req dto.GroupMoveRequest) (*dto.GroupMoveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group move payload")
	}

	lessons, err := s.lessons.ListGroupCell(ctx, req.GroupName, req.Semester, req.WeekNumber, req.SourceWeekday, req.SourceTimeStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group lessons")
	}
	if len(lessons) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no lessons found in the source cell")
	}

	if !req.Force {
		var groups []models.SwapConflictGroup
		for i := range lessons {
			if g := s.groupMoveConflicts(ctx, &lessons[i], req); g != nil {
				groups = append(groups, *g)
			}
		}
		if len(groups) > 0 {
			s.observeCommit("group_move", "conflict")
			domainErr := &models.GroupMoveConflictError{Message: "conflicts detected while moving group lessons", Groups: groups}
			return nil, appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
		}
	}

	dayDiff := req.TargetWeekday - req.SourceWeekday
	moved := make([]*models.Lesson, 0, len(lessons))
	for i := range lessons {
		lesson := &lessons[i]
		if dayDiff != 0 {
			date, err := time.Parse("2006-01-02", lesson.Date)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to shift lesson date")
			}
			lesson.Date = date.AddDate(0, 0, dayDiff).Format("2006-01-02")
		}
		lesson.Weekday = req.TargetWeekday
		lesson.TimeStart = req.TargetTimeStart
		lesson.TimeEnd = req.TargetTimeEnd
		moved = append(moved, lesson)
	}

	if err := s.lessons.UpdatePlacements(ctx, moved); err != nil {
		s.observeCommit("group_move", "error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move group lessons")
	}

	s.observeCommit("group_move", "ok")
	return &dto.GroupMoveResponse{Moved: lessons}, nil
}

// groupMoveConflicts checks what relocating the lesson into the target
// cell would collide with, excluding the lesson itself.
func (s *RescheduleService) groupMoveConflicts(ctx context.Context, lesson *models.Lesson, req dto.GroupMoveRequest) *models.SwapConflictGroup {
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
		colliding, err := s.lessons.OverlapInWeek(ctx, dim.kind, dim.value, req.Semester, req.WeekNumber, req.TargetWeekday, req.TargetTimeStart, req.TargetTimeEnd, lesson.ID)
		if err != nil {
			s.logger.Warn("group move conflict probe failed", zap.String("dimension", string(dim.kind)), zap.Error(err))
			continue
		}
		for _, c := range colliding {
			if dim.kind == models.ConflictGroup && !s.groupsCollide(*lesson, c) {
				continue
			}
			conflicts = append(conflicts, models.LessonConflict{
				LessonID:    c.ID,
				Subject:     c.Subject,
				GroupName:   c.GroupName,
				TeacherName: c.TeacherName,
				Auditory:    c.Auditory,
				TimeStart:   c.TimeStart,
				TimeEnd:     c.TimeEnd,
				Kind:        dim.kind,
				Value:       dim.value,
			})
		}
	}

	if len(conflicts) == 0 {
		return nil
	}
	return &models.SwapConflictGroup{LessonID: lesson.ID, Subject: lesson.Subject, Conflicts: conflicts}
}

// swapSideConflicts checks what moving `moving` into `target`'s current
// cell would collide with, ignoring both swap participants.
func (s *RescheduleService) swapSideConflicts(ctx context.Context, moving, target *models.Lesson) *models.SwapConflictGroup {
	dims := []struct {
		kind  models.ConflictKind
		value string
	}{
		{models.ConflictAuditory, moving.Auditory},
		{models.ConflictTeacher, moving.TeacherName},
		{models.ConflictGroup, moving.GroupName},
	}

	var conflicts []models.LessonConflict
	for _, dim := range dims {
		if dim.value == "" {
			continue
		}
		colliding, err := s.lessons.OverlapOnDate(ctx, dim.kind, dim.value, target.Date, target.TimeStart, target.TimeEnd, moving.ID, target.ID)
		if err != nil {
			s.logger.Warn("swap conflict probe failed", zap.String("dimension", string(dim.kind)), zap.Error(err))
			continue
		}
		for _, c := range colliding {
			if dim.kind == models.ConflictGroup && !s.groupsCollide(*moving, c) {
				continue
			}
			conflicts = append(conflicts, models.LessonConflict{
				LessonID:    c.ID,
				Subject:     c.Subject,
				GroupName:   c.GroupName,
				TeacherName: c.TeacherName,
				Auditory:    c.Auditory,
				TimeStart:   c.TimeStart,
				TimeEnd:     c.TimeEnd,
				Kind:        dim.kind,
				Value:       dim.value,
			})
		}
	}

	if len(conflicts) == 0 {
		return nil
	}
	return &models.SwapConflictGroup{LessonID: moving.ID, Subject: moving.Subject, Conflicts: conflicts}
}

// FindOptimalTime enumerates the weekday x active-slot grid, counts
// overlap conflicts per dimension for each cell and returns the best
// placements, fewest conflicts first.
func (s *RescheduleService) FindOptimalTime(ctx context.Context, req dto.OptimalTimeRequest) (*dto.OptimalTimeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimal time payload")
	}

	lesson, err := s.loadLesson(ctx, req.LessonID)
	if err != nil {
		return nil, err
	}

	slots := s.slots.Catalog(ctx)
	weekDates := DatesForWeek(time.Now().Year(), req.WeekNumber)

	var options []models.RankedOption
	for weekday := 1; weekday <= 6; weekday++ {
		date, ok := weekDates[weekday]
		if !ok {
			continue
		}
		for _, slot := range slots {
			if !slot.IsActive {
				continue
			}

			opt := models.RankedOption{
				Weekday:     weekday,
				WeekdayName: models.WeekdayName(weekday),
				Date:        date,
				TimeStart:   slot.TimeStart,
				TimeEnd:     slot.TimeEnd,
				TimeSlotID:  slot.ID,
			}

			opt.TeacherConflicts = s.optimalDimConflicts(ctx, models.ConflictTeacher, lesson.TeacherName, req, weekday, slot, lesson.ID)
			opt.GroupConflicts = s.optimalDimConflicts(ctx, models.ConflictGroup, lesson.GroupName, req, weekday, slot, lesson.ID)
			opt.AuditoryConflicts = s.optimalDimConflicts(ctx, models.ConflictAuditory, lesson.Auditory, req, weekday, slot, lesson.ID)
			opt.TotalConflicts = len(opt.TeacherConflicts) + len(opt.GroupConflicts) + len(opt.AuditoryConflicts)

			options = append(options, opt)
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].TotalConflicts < options[j].TotalConflicts
	})
	if len(options) > s.opts.TopOptions {
		options = options[:s.opts.TopOptions]
	}

	return &dto.OptimalTimeResponse{
		Lesson:  lesson,
		Options: options,
		Current: dto.CurrentPlacement{
			Weekday:   lesson.Weekday,
			Date:      lesson.Date,
			TimeStart: lesson.TimeStart,
			TimeEnd:   lesson.TimeEnd,
		},
	}, nil
}

func (s *RescheduleService) optimalDimConflicts(ctx context.Context, kind models.ConflictKind, value string, req dto.OptimalTimeRequest, weekday int, slot models.TimeSlot, excludeID int64) []models.LessonConflict {
	if value == "" {
		return nil
	}
	colliding, err := s.lessons.OverlapInWeek(ctx, kind, value, req.Semester, req.WeekNumber, weekday, slot.TimeStart, slot.TimeEnd, excludeID)
	if err != nil {
		s.logger.Warn("optimal time probe failed", zap.String("dimension", string(kind)), zap.Error(err))
		return nil
	}
	out := make([]models.LessonConflict, 0, len(colliding))
	for _, c := range colliding {
		out = append(out, models.LessonConflict{
			LessonID:    c.ID,
			Subject:     c.Subject,
			GroupName:   c.GroupName,
			TeacherName: c.TeacherName,
			Auditory:    c.Auditory,
			Weekday:     c.Weekday,
			Date:        c.Date,
			TimeStart:   c.TimeStart,
			TimeEnd:     c.TimeEnd,
			Kind:        kind,
			Value:       value,
		})
	}
	return out
}

func (s *RescheduleService) loadLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

func (s *RescheduleService) observeCommit(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRescheduleCommit(operation, outcome)
	}
}

// DatesForWeek maps weekday numbers 1..6 to the calendar dates of the
// given teaching week, anchored at the Monday of ISO week `week`.
func DatesForWeek(year, week int) map[int]string {
	// Jan 4 is always inside ISO week 1.
	anchor := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := int(anchor.Weekday())
	if offset == 0 {
		offset = 7
	}
	monday := anchor.AddDate(0, 0, 1-offset).AddDate(0, 0, (week-1)*7)

	dates := make(map[int]string, 6)
	for weekday := 1; weekday <= 6; weekday++ {
		dates[weekday] = monday.AddDate(0, 0, weekday-1).Format("2006-01-02")
	}
	return dates
}
