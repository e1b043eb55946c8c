package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sanumxxx/timetable-api/internal/dto"
	"github.com/sanumxxx/timetable-api/internal/models"
)

// FlowState names one phase of a reschedule interaction.
type FlowState string

const (
	FlowIdle                FlowState = "IDLE"
	FlowLoadingOptions      FlowState = "LOADING_OPTIONS"
	FlowOptionsReady        FlowState = "OPTIONS_READY"
	FlowPendingConfirmation FlowState = "PENDING_CONFIRMATION"
	FlowConfirmed           FlowState = "CONFIRMED"
	FlowCommitting          FlowState = "COMMITTING"
)

// ErrFlowState is returned when an operation is invoked outside the
// phase it belongs to.
var ErrFlowState = errors.New("operation not valid in current flow state")

// RescheduleFlow drives one lesson's reschedule interaction through its
// phases: open options, pick a candidate, confirm if the target is
// occupied, commit. At most one lesson is in flight per flow; a commit
// either completes the interaction or returns it to the options list.
type RescheduleFlow struct {
	mu  sync.Mutex
	svc *RescheduleService

	state      FlowState
	mode       ConflictMode
	lesson     models.Lesson
	candidates []models.MoveCandidate
	selected   int
	summary    *dto.ConfirmationSummary
}

// NewRescheduleFlow creates an idle flow bound to the service.
func NewRescheduleFlow(svc *RescheduleService, mode ConflictMode) *RescheduleFlow {
	if mode == "" {
		mode = ModeAvoid
	}
	return &RescheduleFlow{svc: svc, state: FlowIdle, mode: mode, selected: -1}
}

// State returns the current phase.
func (f *RescheduleFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Open builds the candidate list for the lesson. Candidate generation
// degrades rather than fails, so the flow always lands in OPTIONS_READY.
func (f *RescheduleFlow) Open(ctx context.Context, lesson models.Lesson, weekDates map[int]string, slots []models.TimeSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != FlowIdle {
		return fmt.Errorf("%w: open from %s", ErrFlowState, f.state)
	}

	f.state = FlowLoadingOptions
	f.lesson = lesson
	f.candidates = f.svc.BuildMoveCandidates(ctx, lesson, weekDates, slots)
	f.selected = -1
	f.summary = nil
	f.state = FlowOptionsReady
	return nil
}

// Candidates returns the ranked options built by Open.
func (f *RescheduleFlow) Candidates() []models.MoveCandidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.candidates
}

// Select marks one candidate as the commit target.
func (f *RescheduleFlow) Select(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != FlowOptionsReady {
		return fmt.Errorf("%w: select from %s", ErrFlowState, f.state)
	}
	if index < 0 || index >= len(f.candidates) {
		return fmt.Errorf("candidate index %d out of range", index)
	}
	f.selected = index
	return nil
}

// Commit attempts the selected candidate. An occupied target in avoid
// mode moves the flow to PENDING_CONFIRMATION and returns the summary
// without writing. Otherwise the write happens; success resets the flow,
// a conflict returns it to OPTIONS_READY.
func (f *RescheduleFlow) Commit(ctx context.Context) (*CommitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != FlowOptionsReady && f.state != FlowConfirmed {
		return nil, fmt.Errorf("%w: commit from %s", ErrFlowState, f.state)
	}
	if f.selected < 0 {
		return nil, errors.New("no candidate selected")
	}

	confirmed := f.state == FlowConfirmed
	cand := f.candidates[f.selected]

	if cand.IsOccupied && f.mode == ModeAvoid && !confirmed {
		f.state = FlowPendingConfirmation
		result, err := f.svc.CommitMove(ctx, f.lesson, cand, f.mode, false)
		if err != nil {
			f.state = FlowOptionsReady
			return nil, err
		}
		f.summary = result.Confirmation
		return result, nil
	}

	f.state = FlowCommitting
	result, err := f.svc.CommitMove(ctx, f.lesson, cand, f.mode, confirmed)
	if err != nil {
		f.state = FlowOptionsReady
		return nil, err
	}

	f.reset()
	return result, nil
}

// Confirm acknowledges the pending conflict summary and commits.
func (f *RescheduleFlow) Confirm(ctx context.Context) (*CommitResult, error) {
	f.mu.Lock()
	if f.state != FlowPendingConfirmation {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: confirm from %s", ErrFlowState, f.state)
	}
	f.state = FlowConfirmed
	f.mu.Unlock()

	return f.Commit(ctx)
}

// Reject declines the pending conflict summary and returns to the
// options list with the selection cleared.
func (f *RescheduleFlow) Reject() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != FlowPendingConfirmation {
		return fmt.Errorf("%w: reject from %s", ErrFlowState, f.state)
	}
	f.state = FlowOptionsReady
	f.selected = -1
	f.summary = nil
	return nil
}

// Close abandons the interaction from any phase.
func (f *RescheduleFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *RescheduleFlow) reset() {
	f.state = FlowIdle
	f.lesson = models.Lesson{}
	f.candidates = nil
	f.selected = -1
	f.summary = nil
}
