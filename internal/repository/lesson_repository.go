package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanumxxx/timetable-api/internal/models"
)

const lessonColumns = "id, semester, week_number, group_name, course, faculty, subject, lesson_type, subgroup, date, weekday, time_start, time_end, teacher_name, auditory, created_at, updated_at"

// Time-overlap predicate shared by conflict queries. The three branches
// cover left overlap, right overlap, and full containment.
const overlapPredicate = "((time_start <= %[1]s AND time_end > %[1]s) OR (time_start < %[2]s AND time_end >= %[2]s) OR (time_start >= %[1]s AND time_end <= %[2]s))"

var conflictColumns = map[models.ConflictKind]string{
	models.ConflictTeacher:  "teacher_name",
	models.ConflictGroup:    "group_name",
	models.ConflictAuditory: "auditory",
}

// LessonRepository provides persistence for lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns lessons with optional filtering and pagination.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	base := "FROM lessons WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.WeekNumber > 0 {
		conditions = append(conditions, fmt.Sprintf("week_number = $%d", len(args)+1))
		args = append(args, filter.WeekNumber)
	}
	if filter.GroupName != "" {
		conditions = append(conditions, fmt.Sprintf("group_name = $%d", len(args)+1))
		args = append(args, filter.GroupName)
	}
	if filter.TeacherName != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_name = $%d", len(args)+1))
		args = append(args, filter.TeacherName)
	}
	if filter.Auditory != "" {
		conditions = append(conditions, fmt.Sprintf("auditory = $%d", len(args)+1))
		args = append(args, filter.Auditory)
	}
	if filter.Weekday > 0 {
		conditions = append(conditions, fmt.Sprintf("weekday = $%d", len(args)+1))
		args = append(args, filter.Weekday)
	}
	if filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, filter.Date)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY weekday ASC, time_start ASC LIMIT %d OFFSET %d", lessonColumns, base, size, offset)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	return lessons, total, nil
}

// ListWeek returns every lesson in a semester week ordered by placement.
func (r *LessonRepository) ListWeek(ctx context.Context, semester, week int) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE semester = $1 AND week_number = $2 ORDER BY weekday ASC, time_start ASC", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, semester, week); err != nil {
		return nil, fmt.Errorf("list week lessons: %w", err)
	}
	return lessons, nil
}

// FindByID loads a lesson by id.
func (r *LessonRepository) FindByID(ctx context.Context, id int64) (*models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE id = $1", lessonColumns)
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// WeekCollisions returns every lesson of the semester week that matches
// the given dimension value, excluding the lesson being checked. No time
// filter is applied; callers key the results by (weekday, time_start).
func (r *LessonRepository) WeekCollisions(ctx context.Context, kind models.ConflictKind, value string, semester, week int, excludeID int64) ([]models.Lesson, error) {
	column, ok := conflictColumns[kind]
	if !ok {
		return nil, fmt.Errorf("unknown conflict dimension %q", kind)
	}
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE semester = $1 AND week_number = $2 AND %s = $3 AND id <> $4", lessonColumns, column)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, semester, week, value, excludeID); err != nil {
		return nil, fmt.Errorf("week collisions (%s): %w", kind, err)
	}
	return lessons, nil
}

// OverlapOnDate returns lessons on the given date whose time range
// overlaps [timeStart, timeEnd) on the given dimension.
func (r *LessonRepository) OverlapOnDate(ctx context.Context, kind models.ConflictKind, value, date, timeStart, timeEnd string, excludeIDs ...int64) ([]models.Lesson, error) {
	column, ok := conflictColumns[kind]
	if !ok {
		return nil, fmt.Errorf("unknown conflict dimension %q", kind)
	}

	args := []interface{}{date, value, timeStart, timeEnd}
	overlap := fmt.Sprintf(overlapPredicate, "$3", "$4")
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE date = $1 AND %s = $2 AND %s", lessonColumns, column, overlap)
	for _, id := range excludeIDs {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, id)
	}

	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("overlap on date (%s): %w", kind, err)
	}
	return lessons, nil
}

// OverlapInWeek returns lessons in the semester week on the given
// weekday whose time range overlaps [timeStart, timeEnd) on the given
// dimension, excluding one lesson id.
func (r *LessonRepository) OverlapInWeek(ctx context.Context, kind models.ConflictKind, value string, semester, week, weekday int, timeStart, timeEnd string, excludeID int64) ([]models.Lesson, error) {
	column, ok := conflictColumns[kind]
	if !ok {
		return nil, fmt.Errorf("unknown conflict dimension %q", kind)
	}
	overlap := fmt.Sprintf(overlapPredicate, "$6", "$7")
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE semester = $1 AND week_number = $2 AND weekday = $3 AND %s = $4 AND id <> $5 AND %s", lessonColumns, column, overlap)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, semester, week, weekday, value, excludeID, timeStart, timeEnd); err != nil {
		return nil, fmt.Errorf("overlap in week (%s): %w", kind, err)
	}
	return lessons, nil
}

// Create stores a new lesson record.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now

	const query = `INSERT INTO lessons (semester, week_number, group_name, course, faculty, subject, lesson_type, subgroup, date, weekday, time_start, time_end, teacher_name, auditory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		lesson.Semester, lesson.WeekNumber, lesson.GroupName, lesson.Course,
		lesson.Faculty, lesson.Subject, lesson.LessonType, lesson.Subgroup,
		lesson.Date, lesson.Weekday, lesson.TimeStart, lesson.TimeEnd,
		lesson.TeacherName, lesson.Auditory, lesson.CreatedAt, lesson.UpdatedAt,
	).Scan(&lesson.ID); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Update rewrites every mutable field of a lesson.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lessons SET semester = :semester, week_number = :week_number, group_name = :group_name, course = :course, faculty = :faculty, subject = :subject, lesson_type = :lesson_type, subgroup = :subgroup, date = :date, weekday = :weekday, time_start = :time_start, time_end = :time_end, teacher_name = :teacher_name, auditory = :auditory, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// Delete removes a lesson record.
func (r *LessonRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM lessons WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}

// ListGroupCell returns every lesson a group has in one (weekday,
// time_start) cell of a semester week. Subgroups of the same group
// sharing the cell are all included.
func (r *LessonRepository) ListGroupCell(ctx context.Context, groupName string, semester, week, weekday int, timeStart string) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE group_name = $1 AND semester = $2 AND week_number = $3 AND weekday = $4 AND time_start = $5 ORDER BY subgroup ASC, id ASC", lessonColumns)

	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, groupName, semester, week, weekday, timeStart); err != nil {
		return nil, fmt.Errorf("list group cell: %w", err)
	}
	return lessons, nil
}

// UpdatePlacements writes the date/weekday/time fields of the given
// lessons in a single transaction. The structs are expected to already
// carry their new placements.
func (r *LessonRepository) UpdatePlacements(ctx context.Context, lessons []*models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin placement update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const query = `UPDATE lessons SET date = $1, weekday = $2, time_start = $3, time_end = $4, updated_at = $5 WHERE id = $6`

	for _, lesson := range lessons {
		if _, err := tx.ExecContext(ctx, query, lesson.Date, lesson.Weekday, lesson.TimeStart, lesson.TimeEnd, now, lesson.ID); err != nil {
			return fmt.Errorf("update placement %d: %w", lesson.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit placement update: %w", err)
	}

	for _, lesson := range lessons {
		lesson.UpdatedAt = now
	}
	return nil
}

// SwapPlacements exchanges the date/weekday/time fields of two lessons
// in a single transaction, optionally exchanging rooms as well.
func (r *LessonRepository) SwapPlacements(ctx context.Context, a, b *models.Lesson, swapLocations bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin swap: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const query = `UPDATE lessons SET date = $1, weekday = $2, time_start = $3, time_end = $4, auditory = $5, updated_at = $6 WHERE id = $7`

	aAud, bAud := a.Auditory, b.Auditory
	if swapLocations {
		aAud, bAud = bAud, aAud
	}

	if _, err := tx.ExecContext(ctx, query, b.Date, b.Weekday, b.TimeStart, b.TimeEnd, aAud, now, a.ID); err != nil {
		return fmt.Errorf("swap first lesson: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, a.Date, a.Weekday, a.TimeStart, a.TimeEnd, bAud, now, b.ID); err != nil {
		return fmt.Errorf("swap second lesson: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit swap: %w", err)
	}

	a.Date, b.Date = b.Date, a.Date
	a.Weekday, b.Weekday = b.Weekday, a.Weekday
	a.TimeStart, b.TimeStart = b.TimeStart, a.TimeStart
	a.TimeEnd, b.TimeEnd = b.TimeEnd, a.TimeEnd
	if swapLocations {
		a.Auditory, b.Auditory = b.Auditory, a.Auditory
	}
	a.UpdatedAt, b.UpdatedAt = now, now
	return nil
}
