package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanumxxx/timetable-api/internal/models"
	appErrors "github.com/sanumxxx/timetable-api/pkg/errors"
)

func newTestFlow(checker *mockChecker, updater *mockUpdater) *RescheduleFlow {
	svc := NewRescheduleService(&mockRescheduleLessons{}, checker, &mockCatalog{}, updater, RescheduleOptions{}, validator.New(), zap.NewNop(), nil)
	return NewRescheduleFlow(svc, ModeAvoid)
}

func openFlow(t *testing.T, flow *RescheduleFlow) {
	t.Helper()
	require.NoError(t, flow.Open(context.Background(), testLesson(), testWeekDates(), models.DefaultTimeSlots()))
	require.Equal(t, FlowOptionsReady, flow.State())
}

func TestFlowOpenBuildsOptions(t *testing.T) {
	flow := newTestFlow(&mockChecker{}, &mockUpdater{})
	assert.Equal(t, FlowIdle, flow.State())

	openFlow(t, flow)
	assert.Len(t, flow.Candidates(), 47)
}

func TestFlowOpenSurvivesProbeFailure(t *testing.T) {
	flow := newTestFlow(&mockChecker{err: assert.AnError}, &mockUpdater{})

	openFlow(t, flow)
	for _, cand := range flow.Candidates() {
		assert.False(t, cand.IsOccupied)
	}
}

func TestFlowCommitFreeCandidateResets(t *testing.T) {
	updater := &mockUpdater{}
	flow := newTestFlow(&mockChecker{}, updater)
	openFlow(t, flow)

	require.NoError(t, flow.Select(0))
	result, err := flow.Commit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Lesson)
	assert.Equal(t, FlowIdle, flow.State())
	assert.Equal(t, 1, updater.calls)
}

func TestFlowOccupiedCandidateNeedsConfirmation(t *testing.T) {
	checker := &mockChecker{occupied: []models.OccupiedSlot{
		{Weekday: 1, TimeStart: "08:00", TimeEnd: "09:20", Subject: "Physics", Kind: models.ConflictTeacher, Value: "Ivanov I.I."},
	}}
	updater := &mockUpdater{}
	flow := newTestFlow(checker, updater)
	openFlow(t, flow)

	// Occupied candidates sort last.
	candidates := flow.Candidates()
	require.NoError(t, flow.Select(len(candidates)-1))

	result, err := flow.Commit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Confirmation)
	assert.Equal(t, FlowPendingConfirmation, flow.State())
	assert.Zero(t, updater.calls)

	confirmed, err := flow.Confirm(context.Background())
	require.NoError(t, err)
	require.NotNil(t, confirmed.Lesson)
	assert.Equal(t, FlowIdle, flow.State())
	require.Equal(t, 1, updater.calls)
	assert.True(t, updater.forced[0])
}

func TestFlowRejectReturnsToOptions(t *testing.T) {
	checker := &mockChecker{occupied: []models.OccupiedSlot{
		{Weekday: 1, TimeStart: "08:00", TimeEnd: "09:20", Kind: models.ConflictGroup, Value: "CS-101"},
	}}
	flow := newTestFlow(checker, &mockUpdater{})
	openFlow(t, flow)

	candidates := flow.Candidates()
	require.NoError(t, flow.Select(len(candidates)-1))
	_, err := flow.Commit(context.Background())
	require.NoError(t, err)
	require.Equal(t, FlowPendingConfirmation, flow.State())

	require.NoError(t, flow.Reject())
	assert.Equal(t, FlowOptionsReady, flow.State())

	// The selection is cleared; committing again needs a new choice.
	_, err = flow.Commit(context.Background())
	require.Error(t, err)
}

func TestFlowCommitConflictReturnsToOptions(t *testing.T) {
	domainErr := &models.ConflictError{Message: "conflicts detected"}
	updater := &mockUpdater{err: appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)}
	flow := newTestFlow(&mockChecker{}, updater)
	openFlow(t, flow)

	require.NoError(t, flow.Select(0))
	_, err := flow.Commit(context.Background())
	require.Error(t, err)
	assert.Equal(t, FlowOptionsReady, flow.State())
}

func TestFlowInvalidTransitions(t *testing.T) {
	flow := newTestFlow(&mockChecker{}, &mockUpdater{})

	assert.ErrorIs(t, flow.Select(0), ErrFlowState)
	_, err := flow.Commit(context.Background())
	assert.ErrorIs(t, err, ErrFlowState)
	_, err = flow.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrFlowState)
	assert.ErrorIs(t, flow.Reject(), ErrFlowState)

	openFlow(t, flow)
	require.Error(t, flow.Open(context.Background(), testLesson(), testWeekDates(), models.DefaultTimeSlots()))

	flow.Close()
	assert.Equal(t, FlowIdle, flow.State())
}
