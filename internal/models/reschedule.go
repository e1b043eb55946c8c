package models

// Weekday display names indexed 1..6 (Mon..Sat).
var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekdayName returns the display name for weekday 1..6, or "".
func WeekdayName(weekday int) string {
	if weekday < 1 || weekday >= len(weekdayNames) {
		return ""
	}
	return weekdayNames[weekday]
}

// SlotKey identifies one cell of the week grid.
type SlotKey struct {
	Weekday   int
	TimeStart string
}

// OccupiedSlot is one occupancy record returned by the availability
// probe: a lesson that already holds a (weekday, time_start) cell,
// tagged with the dimension on which it collides. A lesson colliding on
// two dimensions yields two records.
type OccupiedSlot struct {
	Weekday     int          `json:"weekday"`
	Date        string       `json:"date,omitempty"`
	TimeStart   string       `json:"time_start"`
	TimeEnd     string       `json:"time_end"`
	Subject     string       `json:"subject"`
	GroupName   string       `json:"group_name"`
	TeacherName string       `json:"teacher_name"`
	Kind        ConflictKind `json:"conflict_type"`
	Value       string       `json:"conflict_value"`
}

// Key returns the grid cell this record occupies.
func (o OccupiedSlot) Key() SlotKey {
	return SlotKey{Weekday: o.Weekday, TimeStart: o.TimeStart}
}

// MoveCandidate describes one placement option for a lesson being moved,
// annotated with the conflicts the placement would create. Candidates
// never include the lesson's current slot.
type MoveCandidate struct {
	Weekday           int            `json:"weekday"`
	WeekdayName       string         `json:"weekday_name"`
	Date              string         `json:"date"`
	TimeStart         string         `json:"time_start"`
	TimeEnd           string         `json:"time_end"`
	IsOccupied        bool           `json:"is_occupied"`
	TeacherConflicts  []OccupiedSlot `json:"teacher_conflicts"`
	GroupConflicts    []OccupiedSlot `json:"group_conflicts"`
	AuditoryConflicts []OccupiedSlot `json:"auditory_conflicts"`
	TotalConflicts    int            `json:"total_conflicts"`
}

// Key returns the candidate's grid cell.
func (c MoveCandidate) Key() SlotKey {
	return SlotKey{Weekday: c.Weekday, TimeStart: c.TimeStart}
}

// SwapConflictFlags marks which dimensions collide for one direction of
// a prospective swap.
type SwapConflictFlags struct {
	Teacher  bool `json:"teacher"`
	Group    bool `json:"group"`
	Auditory bool `json:"auditory"`
}

// Count returns the number of set flags.
func (f SwapConflictFlags) Count() int {
	n := 0
	if f.Teacher {
		n++
	}
	if f.Group {
		n++
	}
	if f.Auditory {
		n++
	}
	return n
}

// SwapCandidate describes another lesson eligible to trade placements
// with the selected lesson. FirstLessonConflicts covers the candidate
// moving into the selected lesson's slot; SecondLessonConflicts covers
// the candidate's collisions with the current occupants of that slot.
type SwapCandidate struct {
	Lesson                Lesson            `json:"lesson"`
	FirstLessonConflicts  SwapConflictFlags `json:"first_lesson_conflicts"`
	SecondLessonConflicts SwapConflictFlags `json:"second_lesson_conflicts"`
	TotalConflicts        int               `json:"total_conflicts"`
}

// RankedOption is one server-ranked placement for a lesson, as produced
// by the optimal-time search.
type RankedOption struct {
	Weekday           int              `json:"weekday"`
	WeekdayName       string           `json:"weekday_name"`
	Date              string           `json:"date"`
	TimeStart         string           `json:"time_start"`
	TimeEnd           string           `json:"time_end"`
	TimeSlotID        int64            `json:"time_slot_id"`
	TeacherConflicts  []LessonConflict `json:"teacher_conflicts"`
	GroupConflicts    []LessonConflict `json:"group_conflicts"`
	AuditoryConflicts []LessonConflict `json:"auditory_conflicts"`
	TotalConflicts    int              `json:"total_conflicts"`
}
