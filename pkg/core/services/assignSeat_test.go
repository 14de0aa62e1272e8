package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
	"github.com/jakechorley/fire-crew-roster/pkg/db"
)

var checkInTime = time.Date(2025, 6, 12, 19, 5, 0, 0, time.UTC)

func TestAssignSeat_QualifiedMember(t *testing.T) {
	store := newStationStore()

	result, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "hlf-1", MemberID: "anna", Actor: "wf", Now: checkInTime})
	require.NoError(t, err)

	require.NotNil(t, result.Evaluation)
	assert.Equal(t, crew.TierQualified, result.Evaluation.Tier)
	assert.False(t, result.Overridden)

	stored := assignmentFor(store, "hlf-1")
	require.NotNil(t, stored)
	assert.Equal(t, "anna", stored.MemberID)
	assert.Equal(t, "confirmed", stored.Status)
	assert.False(t, stored.HasWarning)
	assert.Empty(t, stored.OverrideReason)
	assert.Nil(t, stored.OverriddenAt)
}

func TestAssignSeat_FailedCheckIsRejected(t *testing.T) {
	store := newStationStore()

	result, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "hlf-2", MemberID: "carl", Now: checkInTime})

	require.ErrorIs(t, err, ErrQualificationCheckFailed)
	assert.Contains(t, err.Error(), "breathing apparatus status not valid")
	require.NotNil(t, result)
	assert.Equal(t, crew.TierUnqualified, result.Evaluation.Tier)
	assert.Zero(t, store.upsertedCalls)
}

func TestAssignSeat_ClosedDuty(t *testing.T) {
	for _, status := range []string{db.DutyStatusCompleted, db.DutyStatusCancelled} {
		t.Run(status, func(t *testing.T) {
			store := newStationStore()
			store.duties["duty-1"].Status = status

			_, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
				AssignSeatRequest{DutyID: "duty-1", SeatID: "hlf-1", MemberID: "anna", Actor: "wf", Now: checkInTime})

			require.ErrorIs(t, err, ErrDutyClosed)
			assert.ErrorContains(t, err, "is "+status)
			assert.Zero(t, store.upsertedCalls)
			assert.Nil(t, assignmentFor(store, "hlf-1"))
		})
	}
}

func TestAssignSeat_OverrideNeedsReason(t *testing.T) {
	store := newStationStore()

	_, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "hlf-2", MemberID: "carl", Override: true, Now: checkInTime})

	assert.ErrorIs(t, err, ErrOverrideReasonRequired)
	assert.Zero(t, store.upsertedCalls)
}

func TestAssignSeat_OverrideRecordsActorAndReason(t *testing.T) {
	store := newStationStore()

	result, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(), AssignSeatRequest{
		DutyID: "duty-1", SeatID: "hlf-1", MemberID: "dora",
		Override: true, Reason: "GF on sick leave", Actor: "wehrführer", Now: checkInTime,
	})
	require.NoError(t, err)
	assert.True(t, result.Overridden)

	stored := assignmentFor(store, "hlf-1")
	require.NotNil(t, stored)
	assert.Equal(t, "dora", stored.MemberID)
	assert.Equal(t, "confirmed", stored.Status)
	assert.True(t, stored.HasWarning)
	assert.Equal(t, "missing qualification: GF", stored.WarningText)
	assert.Equal(t, "GF on sick leave", stored.OverrideReason)
	assert.Equal(t, "wehrführer", stored.OverriddenBy)
	require.NotNil(t, stored.OverriddenAt)
	assert.True(t, checkInTime.Equal(*stored.OverriddenAt))
}

func TestAssignSeat_AllowedMemberNeedsNoOverride(t *testing.T) {
	store := newStationStore()
	store.rules = append(store.rules, db.SeatRule{
		ID: "r-4", SeatID: "hlf-1", RuleType: "allowed", QualificationCodes: []string{"TF"}, AllRequired: true,
		WarningText: "acting leader", Priority: 5,
	})

	result, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "hlf-1", MemberID: "dora", Now: checkInTime})
	require.NoError(t, err)

	assert.Equal(t, crew.TierAllowed, result.Evaluation.Tier)
	assert.False(t, result.Overridden)
	stored := assignmentFor(store, "hlf-1")
	assert.True(t, stored.HasWarning)
	assert.Equal(t, "acting leader; missing qualification: GF", stored.WarningText)
}

func TestAssignSeat_RejectsDoubleBooking(t *testing.T) {
	store := newStationStore()
	store.assignments = []db.Assignment{
		{ID: "as-1", DutyID: "duty-1", SeatID: "tlf-1", MemberID: "anna", Status: "suggested"},
	}

	_, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "hlf-1", MemberID: "anna", Now: checkInTime})
	assert.ErrorIs(t, err, ErrMemberAlreadyAssigned)
	assert.Zero(t, store.upsertedCalls)

	// a cancelled seat does not count
	store.assignments[0].Status = "cancelled"
	_, err = AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "hlf-1", MemberID: "anna", Now: checkInTime})
	assert.NoError(t, err)
}

func TestAssignSeat_ReassigningSameSeatKeepsRowID(t *testing.T) {
	store := newStationStore()
	store.assignments = []db.Assignment{
		{ID: "as-1", DutyID: "duty-1", SeatID: "hlf-1", MemberID: "anna", Status: "suggested"},
	}

	result, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "hlf-1", MemberID: "anna", Now: checkInTime})
	require.NoError(t, err)
	assert.Equal(t, "as-1", result.Assignment.ID)
	assert.Len(t, store.assignments, 1)
}

func TestAssignSeat_ClearSeat(t *testing.T) {
	store := newStationStore()
	store.assignments = []db.Assignment{
		{ID: "as-1", DutyID: "duty-1", SeatID: "hlf-1", MemberID: "anna", Status: "suggested"},
	}

	result, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "hlf-1", Now: checkInTime})
	require.NoError(t, err)
	assert.Nil(t, result.Evaluation)

	stored := assignmentFor(store, "hlf-1")
	assert.Equal(t, "as-1", stored.ID)
	assert.Empty(t, stored.MemberID)
	assert.Equal(t, "confirmed", stored.Status)
}

func TestAssignSeat_SeatNotOnDuty(t *testing.T) {
	store := newStationStore()
	store.seats = append(store.seats, db.Seat{ID: "dlk-1", VehicleID: "dlk", PositionCode: "MA", SeatNumber: 1})

	_, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "dlk-1", MemberID: "anna", Now: checkInTime})
	assert.ErrorIs(t, err, ErrSeatNotOnDuty)
}

func TestAssignSeat_UnavailableMember(t *testing.T) {
	store := newStationStore()
	store.members[2].Status = db.MemberStatusReserve

	_, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "tlf-1", MemberID: "carl", Override: true, Reason: "x", Now: checkInTime})
	assert.ErrorIs(t, err, ErrMemberUnavailable)
}

func TestAssignSeat_UnknownSeat(t *testing.T) {
	store := newStationStore()

	_, err := AssignSeat(context.Background(), store, testConfig(), zap.NewNop(),
		AssignSeatRequest{DutyID: "duty-1", SeatID: "missing", MemberID: "anna", Now: checkInTime})
	assert.ErrorIs(t, err, db.ErrNotFound)
}
