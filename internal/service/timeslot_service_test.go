package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/models"
)

type mockSlotStore struct {
	slots     []models.TimeSlot
	listErr   error
	listCalls int
	replaced  []models.TimeSlot
	reordered []int64
}

func (m *mockSlotStore) List(ctx context.Context) ([]models.TimeSlot, error) {
	return m.slots, nil
}

func (m *mockSlotStore) ListActive(ctx context.Context) ([]models.TimeSlot, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var active []models.TimeSlot
	for _, slot := range m.slots {
		if slot.IsActive {
			active = append(active, slot)
		}
	}
	return active, nil
}

func (m *mockSlotStore) FindByID(ctx context.Context, id int64) (*models.TimeSlot, error) {
	for i := range m.slots {
		if m.slots[i].ID == id {
			cp := m.slots[i]
			return &cp, nil
		}
	}
	return nil, errors.New("sql: no rows in result set")
}

func (m *mockSlotStore) Create(ctx context.Context, slot *models.TimeSlot) error {
	slot.ID = int64(len(m.slots) + 1)
	m.slots = append(m.slots, *slot)
	return nil
}

func (m *mockSlotStore) Update(ctx context.Context, slot *models.TimeSlot) error {
	for i := range m.slots {
		if m.slots[i].ID == slot.ID {
			m.slots[i] = *slot
		}
	}
	return nil
}

func (m *mockSlotStore) Delete(ctx context.Context, id int64) error {
	return nil
}

func (m *mockSlotStore) Reorder(ctx context.Context, orderedIDs []int64) error {
	m.reordered = orderedIDs
	return nil
}

func (m *mockSlotStore) ReplaceAll(ctx context.Context, slots []models.TimeSlot) error {
	m.replaced = slots
	m.slots = slots
	return nil
}

func TestCatalogFallsBackToDefaults(t *testing.T) {
	repo := &mockSlotStore{listErr: errors.New("db down")}
	svc := NewTimeSlotService(repo, time.Minute, validator.New(), zap.NewNop())

	slots := svc.Catalog(context.Background())
	require.Len(t, slots, 8)
	assert.Equal(t, "08:00", slots[0].TimeStart)
	assert.Equal(t, "20:00", slots[7].TimeEnd)
}

func TestCatalogEmptyStoreFallsBack(t *testing.T) {
	svc := NewTimeSlotService(&mockSlotStore{}, time.Minute, validator.New(), zap.NewNop())

	slots := svc.Catalog(context.Background())
	require.Len(t, slots, 8)
}

func TestCatalogCachesUntilMutation(t *testing.T) {
	repo := &mockSlotStore{slots: []models.TimeSlot{
		{ID: 1, SlotNumber: 1, TimeStart: "08:00", TimeEnd: "09:20", IsActive: true},
	}}
	svc := NewTimeSlotService(repo, time.Minute, validator.New(), zap.NewNop())

	svc.Catalog(context.Background())
	svc.Catalog(context.Background())
	assert.Equal(t, 1, repo.listCalls)

	_, err := svc.Create(context.Background(), dto.SaveTimeSlotRequest{SlotNumber: 2, TimeStart: "09:30", TimeEnd: "10:50"})
	require.NoError(t, err)

	svc.Catalog(context.Background())
	assert.Equal(t, 2, repo.listCalls, "mutations must drop the cached catalog")
}

func TestResetToDefaults(t *testing.T) {
	repo := &mockSlotStore{slots: []models.TimeSlot{{ID: 99, SlotNumber: 1, TimeStart: "07:00", TimeEnd: "08:00", IsActive: true}}}
	svc := NewTimeSlotService(repo, time.Minute, validator.New(), zap.NewNop())

	slots, err := svc.ResetToDefaults(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 8)
	assert.Len(t, repo.replaced, 8)
}

func TestReorder(t *testing.T) {
	repo := &mockSlotStore{}
	svc := NewTimeSlotService(repo, time.Minute, validator.New(), zap.NewNop())

	require.NoError(t, svc.Reorder(context.Background(), dto.ReorderTimeSlotsRequest{OrderedIDs: []int64{3, 1, 2}}))
	assert.Equal(t, []int64{3, 1, 2}, repo.reordered)
}
