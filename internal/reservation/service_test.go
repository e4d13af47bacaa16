package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fitbook/internal/pack"
	"fitbook/internal/policy"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, r *Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}

func (m *mockStore) Query(ctx context.Context, f Filter) ([]Reservation, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Reservation), args.Error(1)
}

func (m *mockStore) CountOverlapping(ctx context.Context, ownerID string, startAt, endAt time.Time, excludeID string) (int, error) {
	args := m.Called(ctx, ownerID, startAt, endAt, excludeID)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) UpdateSchedule(ctx context.Context, id string, startAt, endAt time.Time, note string) (*Reservation, error) {
	args := m.Called(ctx, id, startAt, endAt, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}

func (m *mockStore) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransitionResult), args.Error(1)
}

func (m *mockStore) MarkPaid(ctx context.Context, id string, note string) (*Reservation, error) {
	args := m.Called(ctx, id, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reservation), args.Error(1)
}

type mockPackRepo struct {
	mock.Mock
}

func (m *mockPackRepo) Create(ctx context.Context, p *pack.Pack) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPackRepo) GetByID(ctx context.Context, id string) (*pack.Pack, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pack.Pack), args.Error(1)
}

func (m *mockPackRepo) ListByClient(ctx context.Context, clientID string) ([]pack.Pack, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pack.Pack), args.Error(1)
}

func (m *mockPackRepo) DebitSession(ctx context.Context, id string) (*pack.Pack, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pack.Pack), args.Error(1)
}

type mockPolicyRepo struct {
	mock.Mock
}

func (m *mockPolicyRepo) GetByOwner(ctx context.Context, ownerID string) (*policy.Policy, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

func (m *mockPolicyRepo) Upsert(ctx context.Context, p *policy.Policy) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type mockCharger struct {
	mock.Mock
}

func (m *mockCharger) Charge(ctx context.Context, clientID string, amount float64) error {
	args := m.Called(ctx, clientID, amount)
	return args.Error(0)
}

type fixture struct {
	store    *mockStore
	packs    *mockPackRepo
	policies *mockPolicyRepo
	charger  *mockCharger
	bus      *Bus
	svc      *service
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    new(mockStore),
		packs:    new(mockPackRepo),
		policies: new(mockPolicyRepo),
		charger:  new(mockCharger),
		bus:      NewBus(16),
		now:      time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = &service{
		store:       f.store,
		packs:       f.packs,
		policies:    f.policies,
		charger:     f.charger,
		bus:         f.bus,
		autoConfirm: false,
		now:         func() time.Time { return f.now },
	}
	return f
}

func (f *fixture) freeSlot() {
	f.store.On("CountOverlapping",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything,
	).Return(0, nil)
}

func (f *fixture) drainEvent(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-f.bus.Events():
		return ev
	default:
		t.Fatal("expected an event on the bus")
		return Event{}
	}
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

func validCreateRequest(f *fixture) CreateReservationRequest {
	return CreateReservationRequest{
		ClientID:    "client-1",
		ClientName:  "Ana",
		SessionType: TypeOneOnOne,
		StartAt:     f.now.Add(48 * time.Hour),
		EndAt:       f.now.Add(49 * time.Hour),
		Price:       60,
	}
}

func TestCreate_Pending(t *testing.T) {
	f := newFixture(t)
	f.freeSlot()
	f.store.On("Create", mock.Anything, mock.AnythingOfType("*reservation.Reservation")).Return(nil)

	r, err := f.svc.Create(context.Background(), "owner-1", validCreateRequest(f))
	require.NoError(t, err)
	require.Equal(t, StatePending, r.State)
	require.Equal(t, "owner-1", r.OwnerID)
	require.Equal(t, ModeInPerson, r.DeliveryMode)
	require.False(t, r.Paid)
	require.NotEmpty(t, r.ID)

	ev := f.drainEvent(t)
	require.Equal(t, EventCreated, ev.Type)
	require.Equal(t, r.ID, ev.Reservation.ID)
}

func TestCreate_AutoConfirm(t *testing.T) {
	f := newFixture(t)
	f.svc.autoConfirm = true
	f.freeSlot()
	f.store.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := f.svc.Create(context.Background(), "owner-1", validCreateRequest(f))
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, r.State)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		mutate  func(*CreateReservationRequest)
		wantErr error
	}{
		{
			name:    "end before start",
			mutate:  func(r *CreateReservationRequest) { r.EndAt = r.StartAt.Add(-time.Hour) },
			wantErr: ErrInvalidTimeRange,
		},
		{
			name:    "end equals start",
			mutate:  func(r *CreateReservationRequest) { r.EndAt = r.StartAt },
			wantErr: ErrInvalidTimeRange,
		},
		{
			name: "past date",
			mutate: func(r *CreateReservationRequest) {
				r.StartAt = f.now.Add(-2 * time.Hour)
				r.EndAt = f.now.Add(-time.Hour)
			},
			wantErr: ErrPastDate,
		},
		{
			name:    "unknown session type",
			mutate:  func(r *CreateReservationRequest) { r.SessionType = "yoga-retreat" },
			wantErr: ErrInvalidSessionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest(f)
			tt.mutate(&req)
			_, err := f.svc.Create(context.Background(), "owner-1", req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	f.store.AssertNotCalled(t, "Create")
}

func TestCreate_LegacyDateFormat(t *testing.T) {
	f := newFixture(t)
	f.freeSlot()
	f.store.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := CreateReservationRequest{
		ClientID:    "client-1",
		SessionType: TypeGroupClass,
		Date:        "2027-01-15",
		StartTime:   "10:00",
		EndTime:     "11:00",
		Price:       25,
	}

	r, err := f.svc.Create(context.Background(), "owner-1", req)
	require.NoError(t, err)
	require.Equal(t, 10, r.StartAt.Hour())
	require.Equal(t, 11, r.EndAt.Hour())
	require.Equal(t, time.January, r.StartAt.Month())
}

func TestCreate_PackExhausted_NothingPersisted(t *testing.T) {
	f := newFixture(t)
	f.freeSlot()

	exhausted := &pack.Pack{
		ID:            "pack-1",
		ClientID:      "client-1",
		TotalSessions: 10,
		UsedSessions:  10,
		ExpiryDate:    f.now.AddDate(0, 1, 0),
	}
	f.packs.On("GetByID", mock.Anything, "pack-1").Return(exhausted, nil)

	req := validCreateRequest(f)
	req.PackID = strPtr("pack-1")

	_, err := f.svc.Create(context.Background(), "owner-1", req)
	require.ErrorIs(t, err, pack.ErrPackExhausted)
	f.store.AssertNotCalled(t, "Create")
}

func TestCreate_PackClientMismatch(t *testing.T) {
	f := newFixture(t)
	f.freeSlot()

	other := &pack.Pack{
		ID:            "pack-1",
		ClientID:      "someone-else",
		TotalSessions: 10,
		ExpiryDate:    f.now.AddDate(0, 1, 0),
	}
	f.packs.On("GetByID", mock.Anything, "pack-1").Return(other, nil)

	req := validCreateRequest(f)
	req.PackID = strPtr("pack-1")

	_, err := f.svc.Create(context.Background(), "owner-1", req)
	require.ErrorIs(t, err, ErrPackClientMismatch)
}

func TestCreate_PackFunded_IsPrepaid(t *testing.T) {
	f := newFixture(t)
	f.freeSlot()

	p := &pack.Pack{
		ID:              "pack-1",
		ClientID:        "client-1",
		TotalSessions:   10,
		UsedSessions:    2,
		ExpiryDate:      f.now.AddDate(0, 1, 0),
		PricePerSession: 50,
	}
	f.packs.On("GetByID", mock.Anything, "pack-1").Return(p, nil)
	f.store.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := validCreateRequest(f)
	req.PackID = strPtr("pack-1")
	req.Price = 0

	r, err := f.svc.Create(context.Background(), "owner-1", req)
	require.NoError(t, err)
	require.True(t, r.Paid)
	require.Equal(t, 50.0, r.Price)
}

func TestCreate_SlotTaken(t *testing.T) {
	f := newFixture(t)

	f.store.On("CountOverlapping",
		mock.Anything, "owner-1", mock.Anything, mock.Anything, "",
	).Return(1, nil)

	_, err := f.svc.Create(context.Background(), "owner-1", validCreateRequest(f))
	require.ErrorIs(t, err, ErrSlotUnavailable)
	f.store.AssertNotCalled(t, "Create")
}

func TestReschedule_MovesSlot(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	newStart := f.now.Add(72 * time.Hour)
	newEnd := newStart.Add(time.Hour)

	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)
	f.store.On("CountOverlapping",
		mock.Anything, "owner-1", newStart, newEnd, "res-1",
	).Return(0, nil)

	moved := *r
	moved.StartAt = newStart
	moved.EndAt = newEnd
	f.store.On("UpdateSchedule",
		mock.Anything, "res-1", newStart, newEnd, mock.AnythingOfType("string"),
	).Return(&moved, nil)

	got, err := f.svc.Reschedule(context.Background(), "res-1", RescheduleRequest{
		StartAt: newStart,
		EndAt:   newEnd,
	})
	require.NoError(t, err)
	require.Equal(t, newStart, got.StartAt)
	f.store.AssertExpectations(t)
}

func TestReschedule_SlotTaken(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)
	f.store.On("CountOverlapping",
		mock.Anything, "owner-1", mock.Anything, mock.Anything, "res-1",
	).Return(1, nil)

	_, err := f.svc.Reschedule(context.Background(), "res-1", RescheduleRequest{
		StartAt: f.now.Add(72 * time.Hour),
		EndAt:   f.now.Add(73 * time.Hour),
	})
	require.ErrorIs(t, err, ErrSlotUnavailable)
	f.store.AssertNotCalled(t, "UpdateSchedule")
}

func TestReschedule_Terminal_Fails(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	r.State = StateCompleted
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)

	_, err := f.svc.Reschedule(context.Background(), "res-1", RescheduleRequest{
		StartAt: f.now.Add(72 * time.Hour),
		EndAt:   f.now.Add(73 * time.Hour),
	})
	require.ErrorIs(t, err, ErrInvalidTransition)
	f.store.AssertNotCalled(t, "UpdateSchedule")
}

func TestReschedule_PastDate_Fails(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Reschedule(context.Background(), "res-1", RescheduleRequest{
		StartAt: f.now.Add(-2 * time.Hour),
		EndAt:   f.now.Add(-time.Hour),
	})
	require.ErrorIs(t, err, ErrPastDate)
	f.store.AssertNotCalled(t, "GetByID")
}

func TestConfirm_FromPending(t *testing.T) {
	f := newFixture(t)

	confirmed := &Reservation{ID: "res-1", State: StateConfirmed}
	f.store.On("Transition", mock.Anything, TransitionRequest{
		ID:   "res-1",
		From: []State{StatePending},
		To:   StateConfirmed,
	}).Return(&TransitionResult{Reservation: confirmed}, nil)

	r, err := f.svc.Confirm(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, r.State)
}

func TestConfirm_AlreadyConfirmed_NoOp(t *testing.T) {
	f := newFixture(t)

	current := &Reservation{ID: "res-1", State: StateConfirmed}
	f.store.On("Transition", mock.Anything, mock.Anything).
		Return(&TransitionResult{Reservation: current}, ErrStateConflict)

	r, err := f.svc.Confirm(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, current, r)
}

func TestConfirm_FromTerminal_Fails(t *testing.T) {
	f := newFixture(t)

	current := &Reservation{ID: "res-1", State: StateCompleted}
	f.store.On("Transition", mock.Anything, mock.Anything).
		Return(&TransitionResult{Reservation: current}, ErrStateConflict)

	_, err := f.svc.Confirm(context.Background(), "res-1")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func cancellableReservation(f *fixture) *Reservation {
	return &Reservation{
		ID:       "res-1",
		OwnerID:  "owner-1",
		ClientID: "client-1",
		State:    StateConfirmed,
		StartAt:  f.now.Add(10 * time.Hour),
		EndAt:    f.now.Add(11 * time.Hour),
		Price:    100,
	}
}

func lateFeePolicy() *policy.Policy {
	return &policy.Policy{
		Active:                true,
		MinAdvanceHours:       24,
		AllowLateCancellation: true,
		ApplyLateFee:          true,
		FeePercentage:         floatPtr(50),
	}
}

func TestCancel_LateWithFee(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)
	f.policies.On("GetByOwner", mock.Anything, "owner-1").Return(lateFeePolicy(), nil)

	cancelled := *r
	cancelled.State = StateCancelledByClient
	f.store.On("Transition", mock.Anything, mock.MatchedBy(func(req TransitionRequest) bool {
		return req.To == StateCancelledByClient && !req.DebitPack
	})).Return(&TransitionResult{Reservation: &cancelled}, nil)
	f.charger.On("Charge", mock.Anything, "client-1", 50.0).Return(nil)

	result, err := f.svc.Cancel(context.Background(), "res-1", InitiatorClient, "sick")
	require.NoError(t, err)
	require.Equal(t, 50.0, result.FeeAmount)
	require.False(t, result.PackPenaltyApplied)
	require.Equal(t, StateCancelledByClient, result.Reservation.State)
	f.charger.AssertExpectations(t)

	ev := f.drainEvent(t)
	require.Equal(t, EventCancelled, ev.Type)
	require.Equal(t, 50.0, ev.FeeAmount)
}

func TestCancel_Rejected_NoStateChange(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	pol := lateFeePolicy()
	pol.AllowLateCancellation = false

	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)
	f.policies.On("GetByOwner", mock.Anything, "owner-1").Return(pol, nil)

	_, err := f.svc.Cancel(context.Background(), "res-1", InitiatorClient, "")
	require.ErrorIs(t, err, ErrCancellationNotAllowed)
	f.store.AssertNotCalled(t, "Transition")
}

func TestCancel_AlreadyCancelled_Fails(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	r.State = StateCancelledByClient
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)

	_, err := f.svc.Cancel(context.Background(), "res-1", InitiatorClient, "")
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	f.store.AssertNotCalled(t, "Transition")
}

func TestCancel_LostRaceToOtherCancel_Fails(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)
	f.policies.On("GetByOwner", mock.Anything, "owner-1").Return(nil, policy.ErrNoPolicy)

	raced := *r
	raced.State = StateCancelledByCenter
	f.store.On("Transition", mock.Anything, mock.Anything).
		Return(&TransitionResult{Reservation: &raced}, ErrStateConflict)

	_, err := f.svc.Cancel(context.Background(), "res-1", InitiatorClient, "")
	require.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancel_NoPolicy_FreeCancellation(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)
	f.policies.On("GetByOwner", mock.Anything, "owner-1").Return(nil, policy.ErrNoPolicy)

	cancelled := *r
	cancelled.State = StateCancelledByCenter
	f.store.On("Transition", mock.Anything, mock.MatchedBy(func(req TransitionRequest) bool {
		return req.To == StateCancelledByCenter
	})).Return(&TransitionResult{Reservation: &cancelled}, nil)

	result, err := f.svc.Cancel(context.Background(), "res-1", InitiatorCenter, "trainer ill")
	require.NoError(t, err)
	require.Zero(t, result.FeeAmount)
	f.charger.AssertNotCalled(t, "Charge")
}

func TestCancel_PackPenalty(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	r.PackID = strPtr("pack-1")

	pol := &policy.Policy{
		Active:                true,
		MinAdvanceHours:       24,
		AllowLateCancellation: true,
		ApplyPackPenalty:      true,
	}

	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)
	f.policies.On("GetByOwner", mock.Anything, "owner-1").Return(pol, nil)

	cancelled := *r
	cancelled.State = StateCancelledByClient
	f.store.On("Transition", mock.Anything, mock.MatchedBy(func(req TransitionRequest) bool {
		return req.DebitPack && req.CapDebit
	})).Return(&TransitionResult{Reservation: &cancelled, PackDebited: true}, nil)

	result, err := f.svc.Cancel(context.Background(), "res-1", InitiatorClient, "")
	require.NoError(t, err)
	require.True(t, result.PackPenaltyApplied)

	ev := f.drainEvent(t)
	require.True(t, ev.PackPenaltyApplied)
}

func TestCancel_PolicyOptOut_EventSuppressesClientNotify(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	pol := &policy.Policy{
		Active:                true,
		MinAdvanceHours:       24,
		AllowLateCancellation: true,
		NotifyClient:          false,
	}

	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)
	f.policies.On("GetByOwner", mock.Anything, "owner-1").Return(pol, nil)

	cancelled := *r
	cancelled.State = StateCancelledByClient
	f.store.On("Transition", mock.Anything, mock.Anything).
		Return(&TransitionResult{Reservation: &cancelled}, nil)

	_, err := f.svc.Cancel(context.Background(), "res-1", InitiatorClient, "")
	require.NoError(t, err)

	ev := f.drainEvent(t)
	require.Equal(t, EventCancelled, ev.Type)
	require.False(t, ev.NotifyClient)
}

func TestCancel_NoPolicy_EventNotifiesClient(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)
	f.policies.On("GetByOwner", mock.Anything, "owner-1").Return(nil, policy.ErrNoPolicy)

	cancelled := *r
	cancelled.State = StateCancelledByClient
	f.store.On("Transition", mock.Anything, mock.Anything).
		Return(&TransitionResult{Reservation: &cancelled}, nil)

	_, err := f.svc.Cancel(context.Background(), "res-1", InitiatorClient, "")
	require.NoError(t, err)

	ev := f.drainEvent(t)
	require.True(t, ev.NotifyClient)
}

func TestComplete_BeforeEndTime_Fails(t *testing.T) {
	f := newFixture(t)

	r := cancellableReservation(f)
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)

	_, err := f.svc.Complete(context.Background(), "res-1")
	require.ErrorIs(t, err, ErrSessionNotFinished)
	f.store.AssertNotCalled(t, "Transition")
}

func TestComplete_DebitsPack(t *testing.T) {
	f := newFixture(t)

	r := &Reservation{
		ID:      "res-1",
		OwnerID: "owner-1",
		State:   StateConfirmed,
		StartAt: f.now.Add(-2 * time.Hour),
		EndAt:   f.now.Add(-time.Hour),
		PackID:  strPtr("pack-1"),
	}
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)

	completed := *r
	completed.State = StateCompleted
	f.store.On("Transition", mock.Anything, TransitionRequest{
		ID:        "res-1",
		From:      []State{StateConfirmed},
		To:        StateCompleted,
		DebitPack: true,
	}).Return(&TransitionResult{Reservation: &completed, PackDebited: true}, nil)

	got, err := f.svc.Complete(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, StateCompleted, got.State)
	f.store.AssertExpectations(t)
}

func TestComplete_AlreadyCompleted_NoOp(t *testing.T) {
	f := newFixture(t)

	r := &Reservation{ID: "res-1", State: StateCompleted, EndAt: f.now.Add(-time.Hour)}
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)

	got, err := f.svc.Complete(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, r, got)
	f.store.AssertNotCalled(t, "Transition")
}

func TestComplete_FromPending_Fails(t *testing.T) {
	f := newFixture(t)

	r := &Reservation{ID: "res-1", State: StatePending, EndAt: f.now.Add(-time.Hour)}
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)

	_, err := f.svc.Complete(context.Background(), "res-1")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkNoShow_DebitsPack(t *testing.T) {
	f := newFixture(t)

	r := &Reservation{
		ID:      "res-1",
		State:   StateConfirmed,
		StartAt: f.now.Add(-time.Hour),
		EndAt:   f.now.Add(time.Hour),
		PackID:  strPtr("pack-1"),
	}
	f.store.On("GetByID", mock.Anything, "res-1").Return(r, nil)

	noShow := *r
	noShow.State = StateNoShow
	f.store.On("Transition", mock.Anything, mock.MatchedBy(func(req TransitionRequest) bool {
		return req.To == StateNoShow && req.DebitPack && !req.CapDebit
	})).Return(&TransitionResult{Reservation: &noShow, PackDebited: true}, nil)

	got, err := f.svc.MarkNoShow(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, StateNoShow, got.State)
}

func TestUpcoming_FilterShape(t *testing.T) {
	f := newFixture(t)

	f.store.On("Query", mock.Anything, mock.MatchedBy(func(q Filter) bool {
		return q.OwnerID == "owner-1" &&
			len(q.States) == 2 &&
			q.From != nil && q.From.Equal(f.now) &&
			q.To != nil && q.To.Equal(f.now.Add(24*time.Hour))
	})).Return([]Reservation{}, nil)

	_, err := f.svc.Upcoming(context.Background(), "owner-1")
	require.NoError(t, err)
	f.store.AssertExpectations(t)
}

func TestUnpaid_ExcludesCancelledAndNoShow(t *testing.T) {
	f := newFixture(t)

	f.store.On("Query", mock.Anything, mock.MatchedBy(func(q Filter) bool {
		if q.Paid == nil || *q.Paid {
			return false
		}
		for _, st := range q.States {
			if st.IsCancelled() || st == StateNoShow {
				return false
			}
		}
		return len(q.States) > 0
	})).Return([]Reservation{}, nil)

	_, err := f.svc.Unpaid(context.Background(), "owner-1")
	require.NoError(t, err)
	f.store.AssertExpectations(t)
}

func TestMarkPaid_RecordsMethod(t *testing.T) {
	f := newFixture(t)

	paid := &Reservation{ID: "res-1", Paid: true}
	f.store.On("MarkPaid", mock.Anything, "res-1", "Marked as paid via cash").Return(paid, nil)

	got, err := f.svc.MarkPaid(context.Background(), "res-1", "cash")
	require.NoError(t, err)
	require.True(t, got.Paid)
}
