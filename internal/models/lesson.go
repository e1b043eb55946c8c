package models

import "time"

// LessonType enumerates the kinds of scheduled lessons.
type LessonType string

const (
	LessonLecture      LessonType = "lecture"
	LessonPractice     LessonType = "practice"
	LessonLab          LessonType = "lab"
	LessonSeminar      LessonType = "seminar"
	LessonConsultation LessonType = "consultation"
	LessonExam         LessonType = "exam"
	LessonCreditTest   LessonType = "credit"
)

// ValidLessonType reports whether t is one of the known lesson kinds.
func ValidLessonType(t LessonType) bool {
	switch t {
	case LessonLecture, LessonPractice, LessonLab, LessonSeminar,
		LessonConsultation, LessonExam, LessonCreditTest:
		return true
	}
	return false
}

// Lesson represents one scheduled occurrence within a semester week.
// Weekday runs 1..6 (Mon..Sat); times are fixed-width "HH:MM" strings so
// lexicographic comparison matches chronological order.
type Lesson struct {
	ID          int64      `db:"id" json:"id"`
	Semester    int        `db:"semester" json:"semester"`
	WeekNumber  int        `db:"week_number" json:"week_number"`
	GroupName   string     `db:"group_name" json:"group_name"`
	Course      int        `db:"course" json:"course"`
	Faculty     string     `db:"faculty" json:"faculty,omitempty"`
	Subject     string     `db:"subject" json:"subject"`
	LessonType  LessonType `db:"lesson_type" json:"lesson_type"`
	Subgroup    int        `db:"subgroup" json:"subgroup"`
	Date        string     `db:"date" json:"date"`
	Weekday     int        `db:"weekday" json:"weekday"`
	TimeStart   string     `db:"time_start" json:"time_start"`
	TimeEnd     string     `db:"time_end" json:"time_end"`
	TeacherName string     `db:"teacher_name" json:"teacher_name"`
	Auditory    string     `db:"auditory" json:"auditory"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// LessonFilter describes query params for listing lessons.
type LessonFilter struct {
	Semester    int
	WeekNumber  int
	GroupName   string
	TeacherName string
	Auditory    string
	Weekday     int
	Date        string
	Page        int
	PageSize    int
}

// ConflictKind names the dimension on which two lessons collide.
type ConflictKind string

const (
	ConflictTeacher  ConflictKind = "teacher"
	ConflictGroup    ConflictKind = "group"
	ConflictAuditory ConflictKind = "auditory"
)

// LessonConflict describes an existing lesson that blocks a placement.
type LessonConflict struct {
	LessonID    int64        `json:"id"`
	Subject     string       `json:"subject"`
	GroupName   string       `json:"group_name"`
	TeacherName string       `json:"teacher_name"`
	Auditory    string       `json:"auditory,omitempty"`
	Weekday     int          `json:"weekday,omitempty"`
	Date        string       `json:"date,omitempty"`
	TimeStart   string       `json:"time_start"`
	TimeEnd     string       `json:"time_end"`
	Kind        ConflictKind `json:"conflict_type"`
	Value       string       `json:"conflict_value"`
}

// ConflictError is returned when a placement collides with existing lessons.
// Its payload is what a 409 response carries.
type ConflictError struct {
	Message   string           `json:"message"`
	Conflicts []LessonConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// SwapConflictGroup collects the conflicts relocating one lesson would
// cause, keyed by the lesson being moved.
type SwapConflictGroup struct {
	LessonID  int64            `json:"lesson_id"`
	Subject   string           `json:"subject"`
	Conflicts []LessonConflict `json:"conflicts"`
}

// SwapConflictError is returned when a swap collides on either side.
type SwapConflictError struct {
	Message string              `json:"message"`
	Groups  []SwapConflictGroup `json:"conflicts"`
}

// Error implements the error interface.
func (e *SwapConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// GroupMoveConflictError is returned when relocating every lesson a
// group has in one cell would collide with existing lessons, one group
// of conflicts per blocked lesson.
type GroupMoveConflictError struct {
	Message string              `json:"message"`
	Groups  []SwapConflictGroup `json:"conflicts"`
}

// Error implements the error interface.
func (e *GroupMoveConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
