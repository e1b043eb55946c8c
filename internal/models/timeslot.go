package models

import "time"

// TimeSlot is a named period of the day. Slot numbers define a strict
// total order used for grid rows and candidate generation.
type TimeSlot struct {
	ID         int64     `db:"id" json:"id"`
	SlotNumber int       `db:"slot_number" json:"slot_number"`
	TimeStart  string    `db:"time_start" json:"time_start"`
	TimeEnd    string    `db:"time_end" json:"time_end"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultTimeSlots returns the hardcoded fallback catalog used when the
// stored catalog is unavailable or empty. Ordering matches slot numbers.
func DefaultTimeSlots() []TimeSlot {
	pairs := [][2]string{
		{"08:00", "09:20"},
		{"09:30", "10:50"},
		{"11:00", "12:20"},
		{"12:40", "14:00"},
		{"14:10", "15:30"},
		{"15:40", "17:00"},
		{"17:10", "18:30"},
		{"18:40", "20:00"},
	}
	slots := make([]TimeSlot, 0, len(pairs))
	for i, p := range pairs {
		slots = append(slots, TimeSlot{
			ID:         int64(i + 1),
			SlotNumber: i + 1,
			TimeStart:  p[0],
			TimeEnd:    p[1],
			IsActive:   true,
		})
	}
	return slots
}
