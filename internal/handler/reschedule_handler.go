package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/service"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
	"github.com/sanumxxx/timetable-api/pkg/response"
)

// RescheduleHandler wires the conflict-aware rescheduling surface to
// HTTP routes.
type RescheduleHandler struct {
	reschedule *service.RescheduleService
	lessons    *service.LessonService
	slots      *service.TimeSlotService
	checker    service.AvailabilityChecker
}

// NewRescheduleHandler constructs a new RescheduleHandler.
func NewRescheduleHandler(reschedule *service.RescheduleService, lessons *service.LessonService, slots *service.TimeSlotService, checker service.AvailabilityChecker) *RescheduleHandler {
	return &RescheduleHandler{reschedule: reschedule, lessons: lessons, slots: slots, checker: checker}
}

// CheckAvailability godoc
// @Summary List occupied grid cells for a teacher, group or auditory
// @Tags Reschedule
// @Accept json
// @Produce json
// @Param payload body dto.AvailabilityRequest true "Availability query"
// @Success 200 {object} response.Envelope
// @Router /schedule/check_availability [post]
func (h *RescheduleHandler) CheckAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload"))
		return
	}

	result, err := h.checker.CheckDetailedAvailability(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MoveOptions godoc
// @Summary Build ranked move candidates for a lesson
// @Tags Reschedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param payload body dto.MoveOptionsRequest false "Week dates; defaults to the lesson's week"
// @Success 200 {object} response.Envelope
// @Router /schedule/{id}/move_options [post]
func (h *RescheduleHandler) MoveOptions(c *gin.Context) {
	id, err := lessonID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	lesson, err := h.lessons.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.MoveOptionsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move options payload"))
			return
		}
	}
	weekDates := req.WeekDates
	if len(weekDates) == 0 {
		weekDates = service.DatesForWeek(time.Now().Year(), lesson.WeekNumber)
	}

	slots := h.slots.Catalog(c.Request.Context())
	candidates := h.reschedule.BuildMoveCandidates(c.Request.Context(), *lesson, weekDates, slots)
	response.JSON(c, http.StatusOK, candidates, nil)
}

// CommitMove godoc
// @Summary Move a lesson to a chosen cell
// @Tags Reschedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Param payload body dto.CommitMoveRequest true "Target placement"
// @Success 200 {object} response.Envelope "Moved lesson, or a confirmation summary when the target is occupied"
// @Failure 409 {object} response.Envelope
// @Router /schedule/{id}/move [post]
func (h *RescheduleHandler) CommitMove(c *gin.Context) {
	id, err := lessonID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CommitMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload"))
		return
	}

	result, err := h.reschedule.ApplyMove(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Confirmation != nil {
		response.JSON(c, http.StatusOK, result.Confirmation, nil)
		return
	}
	response.JSON(c, http.StatusOK, result.Lesson, nil)
}

// SwapCandidates godoc
// @Summary Rank swap partners for a lesson
// @Tags Reschedule
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/{id}/swap_candidates [get]
func (h *RescheduleHandler) SwapCandidates(c *gin.Context) {
	id, err := lessonID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	candidates, err := h.reschedule.SwapCandidates(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}

// Swap godoc
// @Summary Exchange the placements of two lessons
// @Tags Reschedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SwapRequest true "Swap request"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Conflicting lessons; retry with force_swap"
// @Router /schedule/swap [post]
func (h *RescheduleHandler) Swap(c *gin.Context) {
	var req dto.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid swap payload"))
		return
	}

	result, err := h.reschedule.Swap(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GroupMove godoc
// @Summary Move all of a group's lessons from one cell to another
// @Tags Reschedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GroupMoveRequest true "Group move request"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Conflicting lessons; retry with force_move"
// @Router /schedule/group_move [post]
func (h *RescheduleHandler) GroupMove(c *gin.Context) {
	var req dto.GroupMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group move payload"))
		return
	}

	result, err := h.reschedule.MoveGroup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// FindOptimalTime godoc
// @Summary Rank the best placements for a lesson
// @Tags Reschedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.OptimalTimeRequest true "Search request"
// @Success 200 {object} response.Envelope
// @Router /schedule/find_optimal_time [post]
func (h *RescheduleHandler) FindOptimalTime(c *gin.Context) {
	var req dto.OptimalTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimal time payload"))
		return
	}

	result, err := h.reschedule.FindOptimalTime(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
