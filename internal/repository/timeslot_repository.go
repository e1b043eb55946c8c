package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanumxxx/timetable-api/internal/models"
)

const timeSlotColumns = "id, slot_number, time_start, time_end, is_active, created_at, updated_at"

// TimeSlotRepository provides persistence for the time-slot catalog.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time-slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// List returns the whole catalog ordered by slot number.
func (r *TimeSlotRepository) List(ctx context.Context) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots ORDER BY slot_number ASC", timeSlotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// ListActive returns only active slots ordered by slot number.
func (r *TimeSlotRepository) ListActive(ctx context.Context) ([]models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE is_active = TRUE ORDER BY slot_number ASC", timeSlotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list active time slots: %w", err)
	}
	return slots, nil
}

// FindByID loads one slot.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id int64) (*models.TimeSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE id = $1", timeSlotColumns)
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create stores a new slot.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	const query = `INSERT INTO time_slots (slot_number, time_start, time_end, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, slot.SlotNumber, slot.TimeStart, slot.TimeEnd, slot.IsActive, slot.CreatedAt, slot.UpdatedAt).Scan(&slot.ID); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// Update rewrites a slot.
func (r *TimeSlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots SET slot_number = :slot_number, time_start = :time_start, time_end = :time_end, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return nil
}

// Delete removes a slot.
func (r *TimeSlotRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM time_slots WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	return nil
}

// Reorder renumbers slots following the given id order.
func (r *TimeSlotRepository) Reorder(ctx context.Context, orderedIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for i, id := range orderedIDs {
		if _, err := tx.ExecContext(ctx, "UPDATE time_slots SET slot_number = $1, updated_at = $2 WHERE id = $3", i+1, now, id); err != nil {
			return fmt.Errorf("reorder slot %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// ReplaceAll wipes the catalog and installs the given slots. Used by the
// default-catalog bootstrap.
func (r *TimeSlotRepository) ReplaceAll(ctx context.Context, slots []models.TimeSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM time_slots"); err != nil {
		return fmt.Errorf("clear time slots: %w", err)
	}

	now := time.Now().UTC()
	for i := range slots {
		slots[i].CreatedAt = now
		slots[i].UpdatedAt = now
		if err := tx.QueryRowxContext(ctx,
			"INSERT INTO time_slots (slot_number, time_start, time_end, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
			slots[i].SlotNumber, slots[i].TimeStart, slots[i].TimeEnd, slots[i].IsActive, now, now,
		).Scan(&slots[i].ID); err != nil {
			return fmt.Errorf("insert default slot %d: %w", slots[i].SlotNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}
