package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/service"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
	"github.com/sanumxxx/timetable-api/pkg/response"
)

// TimeSlotHandler wires the slot catalog to HTTP routes.
type TimeSlotHandler struct {
	slots *service.TimeSlotService
}

// NewTimeSlotHandler constructs a new TimeSlotHandler.
func NewTimeSlotHandler(slots *service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{slots: slots}
}

// List godoc
// @Summary List the slot catalog
// @Tags TimeSlots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time_slots [get]
func (h *TimeSlotHandler) List(c *gin.Context) {
	slots, err := h.slots.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Create a slot
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SaveTimeSlotRequest true "Slot"
// @Success 201 {object} response.Envelope
// @Router /time_slots [post]
func (h *TimeSlotHandler) Create(c *gin.Context) {
	var req dto.SaveTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload"))
		return
	}

	slot, err := h.slots.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update a slot
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Param payload body dto.SaveTimeSlotRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Router /time_slots/{id} [put]
func (h *TimeSlotHandler) Update(c *gin.Context) {
	id, err := slotID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.SaveTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload"))
		return
	}

	slot, err := h.slots.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete a slot
// @Tags TimeSlots
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Success 204
// @Router /time_slots/{id} [delete]
func (h *TimeSlotHandler) Delete(c *gin.Context) {
	id, err := slotID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.slots.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reorder godoc
// @Summary Renumber slots following the given id order
// @Tags TimeSlots
// @Accept json
// @Security BearerAuth
// @Param payload body dto.ReorderTimeSlotsRequest true "Ordered ids"
// @Success 204
// @Router /time_slots/reorder [post]
func (h *TimeSlotHandler) Reorder(c *gin.Context) {
	var req dto.ReorderTimeSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload"))
		return
	}
	if err := h.slots.Reorder(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reset godoc
// @Summary Replace the catalog with the default grid
// @Tags TimeSlots
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /time_slots/reset [post]
func (h *TimeSlotHandler) Reset(c *gin.Context) {
	slots, err := h.slots.ResetToDefaults(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

func slotID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid time slot id")
	}
	return id, nil
}
