package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
)

const slotCatalogKey = "timeslots:active"

type timeSlotStore interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id int64) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, orderedIDs []int64) error
	ReplaceAll(ctx context.Context, slots []models.TimeSlot) error
}

// TimeSlotService manages the time-slot catalog. The active catalog is
// kept in a small in-process cache because candidate generation reads it
// on every reschedule interaction.
type TimeSlotService struct {
	repo      timeSlotStore
	catalog   *gocache.Cache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService instantiates TimeSlotService.
func NewTimeSlotService(repo timeSlotStore, catalogTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalogTTL <= 0 {
		catalogTTL = time.Minute
	}
	return &TimeSlotService{
		repo:      repo,
		catalog:   gocache.New(catalogTTL, 2*catalogTTL),
		validator: validate,
		logger:    logger,
	}
}

// Catalog returns the active slots ordered by slot number. When the
// stored catalog is empty or unreachable the hardcoded default grid is
// returned, so the reschedule surface keeps working without setup.
func (s *TimeSlotService) Catalog(ctx context.Context) []models.TimeSlot {
	if cached, ok := s.catalog.Get(slotCatalogKey); ok {
		return cached.([]models.TimeSlot)
	}

	slots, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Warn("slot catalog unavailable, using defaults", zap.Error(err))
		return models.DefaultTimeSlots()
	}
	if len(slots) == 0 {
		return models.DefaultTimeSlots()
	}

	s.catalog.SetDefault(slotCatalogKey, slots)
	return slots
}

// List returns the whole catalog including inactive slots.
func (s *TimeSlotService) List(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, nil
}

// Create adds a catalog entry.
func (s *TimeSlotService) Create(ctx context.Context, req dto.SaveTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	slot := &models.TimeSlot{
		SlotNumber: req.SlotNumber,
		TimeStart:  req.TimeStart,
		TimeEnd:    req.TimeEnd,
		IsActive:   active,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}

	s.catalog.Delete(slotCatalogKey)
	return slot, nil
}

// Update rewrites a catalog entry.
func (s *TimeSlotService) Update(ctx context.Context, id int64, req dto.SaveTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}

	slot.SlotNumber = req.SlotNumber
	slot.TimeStart = req.TimeStart
	slot.TimeEnd = req.TimeEnd
	if req.IsActive != nil {
		slot.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}

	s.catalog.Delete(slotCatalogKey)
	return slot, nil
}

// Delete removes a catalog entry.
func (s *TimeSlotService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time slot")
	}
	s.catalog.Delete(slotCatalogKey)
	return nil
}

// Reorder renumbers the catalog following the given id order.
func (s *TimeSlotService) Reorder(ctx context.Context, req dto.ReorderTimeSlotsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	if err := s.repo.Reorder(ctx, req.OrderedIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder time slots")
	}
	s.catalog.Delete(slotCatalogKey)
	return nil
}

// ResetToDefaults replaces the stored catalog with the hardcoded grid.
func (s *TimeSlotService) ResetToDefaults(ctx context.Context) ([]models.TimeSlot, error) {
	slots := models.DefaultTimeSlots()
	for i := range slots {
		slots[i].ID = 0
	}
	if err := s.repo.ReplaceAll(ctx, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset time slots")
	}
	s.catalog.Delete(slotCatalogKey)
	return slots, nil
}
