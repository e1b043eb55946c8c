package dto

// SaveTimeSlotRequest creates or updates a catalog entry.
type SaveTimeSlotRequest struct {
	SlotNumber int    `json:"slot_number" validate:"required,min=1"`
	TimeStart  string `json:"time_start" validate:"required"`
	TimeEnd    string `json:"time_end" validate:"required"`
	IsActive   *bool  `json:"is_active"`
}

// ReorderTimeSlotsRequest renumbers the catalog following the id order.
type ReorderTimeSlotsRequest struct {
	OrderedIDs []int64 `json:"ordered_ids" validate:"required,min=1"`
}
