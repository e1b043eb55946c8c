package dto

import "github.com/sanumxxx/timetable-api/internal/models"

// AvailabilityRequest asks which (weekday, time) cells are already taken
// for a teacher/group/auditory in a semester week. LessonID excludes the
// lesson being moved from its own occupancy.
type AvailabilityRequest struct {
	Semester    int    `json:"semester" validate:"required,min=1"`
	WeekNumber  int    `json:"week_number" validate:"required,min=1,max=18"`
	LessonID    int64  `json:"lesson_id"`
	TeacherName string `json:"teacher_name"`
	GroupName   string `json:"group_name"`
	Auditory    string `json:"auditory"`
}

// AvailabilityResponse lists occupancy records for the requested week.
type AvailabilityResponse struct {
	TeacherName   string                `json:"teacher_name,omitempty"`
	GroupName     string                `json:"group_name,omitempty"`
	Auditory      string                `json:"auditory,omitempty"`
	OccupiedSlots []models.OccupiedSlot `json:"occupied_slots"`
}

// MoveOptionsRequest asks for ranked move candidates for a lesson.
// WeekDates maps weekday (1..6) to the calendar date of the displayed
// week; days without a mapped date produce no candidates.
type MoveOptionsRequest struct {
	WeekDates map[int]string `json:"week_dates" validate:"required,min=1"`
}

// CommitMoveRequest applies a chosen candidate to a lesson. Mode "avoid"
// requires confirmation before writing into an occupied cell; "force"
// commits unconditionally. Confirmed marks that the caller has already
// acknowledged the conflict summary.
type CommitMoveRequest struct {
	Weekday   int    `json:"weekday" validate:"required,min=1,max=6"`
	Date      string `json:"date" validate:"required"`
	TimeStart string `json:"time_start" validate:"required"`
	TimeEnd   string `json:"time_end" validate:"required"`
	Mode      string `json:"mode" validate:"omitempty,oneof=avoid force"`
	Confirmed bool   `json:"confirmed"`
}

// ConfirmationSummary is returned instead of committing when the target
// cell is occupied and the caller asked to avoid conflicts.
type ConfirmationSummary struct {
	RequiresConfirmation bool     `json:"requires_confirmation"`
	TeacherConflicts     []string `json:"teacher_conflicts,omitempty"`
	GroupConflicts       []string `json:"group_conflicts,omitempty"`
	AuditoryConflicts    []string `json:"auditory_conflicts,omitempty"`
}

// SwapRequest exchanges the placements of two lessons.
type SwapRequest struct {
	Lesson1ID     int64 `json:"lesson1_id" validate:"required"`
	Lesson2ID     int64 `json:"lesson2_id" validate:"required"`
	SwapLocations bool  `json:"swap_locations"`
	Force         bool  `json:"force_swap"`
}

// SwapResponse returns both lessons after a successful exchange.
type SwapResponse struct {
	Lesson1 *models.Lesson `json:"lesson1"`
	Lesson2 *models.Lesson `json:"lesson2"`
}

// GroupMoveRequest relocates every lesson a group has in one cell of
// the week grid to another cell in the same week. Unless forced, all
// moved lessons are conflict-checked against the target first.
type GroupMoveRequest struct {
	GroupName       string `json:"group_name" validate:"required"`
	Semester        int    `json:"semester" validate:"required,min=1"`
	WeekNumber      int    `json:"week_number" validate:"required,min=1,max=18"`
	SourceWeekday   int    `json:"source_weekday" validate:"required,min=1,max=6"`
	SourceTimeStart string `json:"source_time_start" validate:"required"`
	TargetWeekday   int    `json:"target_weekday" validate:"required,min=1,max=6"`
	TargetTimeStart string `json:"target_time_start" validate:"required"`
	TargetTimeEnd   string `json:"target_time_end" validate:"required"`
	Force           bool   `json:"force_move"`
}

// GroupMoveResponse lists the lessons after a successful relocation.
type GroupMoveResponse struct {
	Moved []models.Lesson `json:"moved_lessons"`
}

// OptimalTimeRequest asks the server to rank placements for a lesson.
type OptimalTimeRequest struct {
	LessonID   int64 `json:"lesson_id" validate:"required"`
	Semester   int   `json:"semester" validate:"required,min=1"`
	WeekNumber int   `json:"week_number" validate:"required,min=1,max=18"`
}

// CurrentPlacement echoes where the lesson sits now.
type CurrentPlacement struct {
	Weekday   int    `json:"weekday"`
	Date      string `json:"date"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
}

// OptimalTimeResponse carries the ranked options for a lesson.
type OptimalTimeResponse struct {
	Lesson  *models.Lesson        `json:"lesson"`
	Options []models.RankedOption `json:"options"`
	Current CurrentPlacement      `json:"current"`
}
