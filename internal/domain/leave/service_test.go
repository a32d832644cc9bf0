package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory StoreAPI. InTx snapshots the maps and restores
// them when the callback fails, matching the rollback the Postgres store
// gets from its transaction.
type fakeStore struct {
	requests map[string]Request
	balances map[string]Balance
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: map[string]Request{},
		balances: map[string]Balance{},
	}
}

func balanceKey(userID string, year int) string {
	return fmt.Sprintf("%s:%d", userID, year)
}

func (f *fakeStore) InTx(ctx context.Context, fn func(StoreAPI) error) error {
	reqSnap := make(map[string]Request, len(f.requests))
	for k, v := range f.requests {
		reqSnap[k] = v
	}
	balSnap := make(map[string]Balance, len(f.balances))
	for k, v := range f.balances {
		balSnap[k] = v
	}
	idSnap := f.nextID

	if err := fn(f); err != nil {
		f.requests = reqSnap
		f.balances = balSnap
		f.nextID = idSnap
		return err
	}
	return nil
}

func (f *fakeStore) InsertRequest(ctx context.Context, req Request) (Request, error) {
	f.nextID++
	req.ID = fmt.Sprintf("req-%d", f.nextID)
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeStore) GetRequest(ctx context.Context, tenantID, requestID string) (Request, error) {
	req, ok := f.requests[requestID]
	if !ok || req.TenantID != tenantID {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (f *fakeStore) GetRequestForUpdate(ctx context.Context, tenantID, requestID string) (Request, error) {
	return f.GetRequest(ctx, tenantID, requestID)
}

func (f *fakeStore) ReviewRequest(ctx context.Context, tenantID, requestID, status, reviewerID, comments string) error {
	req, ok := f.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	req.Status = status
	req.ReviewedBy = &reviewerID
	now := time.Now()
	req.ReviewedAt = &now
	if comments != "" {
		req.ReviewerComments = &comments
	}
	f.requests[requestID] = req
	return nil
}

func (f *fakeStore) CancelRequest(ctx context.Context, tenantID, requestID string) error {
	req, ok := f.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	req.Status = StatusCancelled
	f.requests[requestID] = req
	return nil
}

func (f *fakeStore) HasOverlappingRequest(ctx context.Context, tenantID, userID string, start, end time.Time) (bool, error) {
	for _, req := range f.requests {
		if req.TenantID != tenantID || req.UserID != userID {
			continue
		}
		if req.Status != StatusPending && req.Status != StatusApproved {
			continue
		}
		if !req.StartDate.After(end) && !req.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListRequests(ctx context.Context, tenantID, userID string, filter RequestFilter, limit, offset int) ([]Request, int, error) {
	var out []Request
	for _, req := range f.requests {
		if req.TenantID == tenantID && req.UserID == userID && matchesFilter(req, filter) {
			out = append(out, req)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) ListRequestsForUsers(ctx context.Context, tenantID string, userIDs []string, filter RequestFilter, limit, offset int) ([]Request, int, error) {
	members := map[string]bool{}
	for _, id := range userIDs {
		members[id] = true
	}
	var out []Request
	for _, req := range f.requests {
		if req.TenantID == tenantID && members[req.UserID] && matchesFilter(req, filter) {
			out = append(out, req)
		}
	}
	return out, len(out), nil
}

func matchesFilter(req Request, filter RequestFilter) bool {
	if filter.Year != 0 && req.StartDate.Year() != filter.Year {
		return false
	}
	if filter.Status != "" && req.Status != filter.Status {
		return false
	}
	if !filter.From.IsZero() && req.EndDate.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && req.StartDate.After(filter.To) {
		return false
	}
	return true
}

func (f *fakeStore) CalendarEntries(ctx context.Context, tenantID string, from, to time.Time) ([]CalendarEntry, error) {
	var out []CalendarEntry
	for _, req := range f.requests {
		if req.TenantID != tenantID || req.Status == StatusRejected || req.Status == StatusCancelled {
			continue
		}
		if req.StartDate.After(to) || req.EndDate.Before(from) {
			continue
		}
		out = append(out, CalendarEntry{
			RequestID: req.ID,
			UserID:    req.UserID,
			LeaveType: req.LeaveType,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			DaysCount: req.DaysCount,
			Status:    req.Status,
		})
	}
	return out, nil
}

func (f *fakeStore) GetOrCreateBalance(ctx context.Context, tenantID, userID string, year int, defaultEntitlement decimal.Decimal) (Balance, error) {
	key := balanceKey(userID, year)
	if bal, ok := f.balances[key]; ok {
		return bal, nil
	}
	bal := Balance{
		ID:                "bal-" + key,
		TenantID:          tenantID,
		UserID:            userID,
		Year:              year,
		AnnualEntitlement: defaultEntitlement,
	}
	f.balances[key] = bal
	return bal, nil
}

func (f *fakeStore) GetBalanceForUpdate(ctx context.Context, tenantID, userID string, year int, defaultEntitlement decimal.Decimal) (Balance, error) {
	return f.GetOrCreateBalance(ctx, tenantID, userID, year, defaultEntitlement)
}

func (f *fakeStore) AddDaysUsed(ctx context.Context, tenantID, userID string, year int, days decimal.Decimal) error {
	key := balanceKey(userID, year)
	bal := f.balances[key]
	bal.DaysUsed = bal.DaysUsed.Add(days)
	f.balances[key] = bal
	return nil
}

func (f *fakeStore) AddSickDaysUsed(ctx context.Context, tenantID, userID string, year int, days decimal.Decimal) error {
	key := balanceKey(userID, year)
	bal := f.balances[key]
	bal.SickDaysUsed = bal.SickDaysUsed.Add(days)
	f.balances[key] = bal
	return nil
}

func (f *fakeStore) DeductToil(ctx context.Context, tenantID, userID string, year int, hours decimal.Decimal) error {
	key := balanceKey(userID, year)
	bal := f.balances[key]
	next := bal.ToilBalance.Sub(hours)
	if next.IsNegative() {
		return fmt.Errorf("toil balance constraint violated")
	}
	bal.ToilBalance = next
	bal.ToilUsed = bal.ToilUsed.Add(hours)
	f.balances[key] = bal
	return nil
}

func (f *fakeStore) RestoreToil(ctx context.Context, tenantID, userID string, year int, hours decimal.Decimal) error {
	key := balanceKey(userID, year)
	bal := f.balances[key]
	bal.ToilBalance = bal.ToilBalance.Add(hours)
	bal.ToilUsed = bal.ToilUsed.Sub(hours)
	f.balances[key] = bal
	return nil
}

func (f *fakeStore) SetEntitlement(ctx context.Context, tenantID, userID string, year int, days, defaultEntitlement decimal.Decimal) (Balance, error) {
	bal, _ := f.GetOrCreateBalance(ctx, tenantID, userID, year, defaultEntitlement)
	bal.AnnualEntitlement = days
	f.balances[balanceKey(userID, year)] = bal
	return bal, nil
}

func (f *fakeStore) SetCarryover(ctx context.Context, tenantID, userID string, year int, days, defaultEntitlement decimal.Decimal) (Balance, error) {
	bal, _ := f.GetOrCreateBalance(ctx, tenantID, userID, year, defaultEntitlement)
	bal.CarriedOver = days
	f.balances[balanceKey(userID, year)] = bal
	return bal, nil
}

func (f *fakeStore) ListBalancesForYear(ctx context.Context, tenantID string, year int) ([]Balance, error) {
	var out []Balance
	for _, bal := range f.balances {
		if bal.TenantID == tenantID && bal.Year == year {
			out = append(out, bal)
		}
	}
	return out, nil
}

func (f *fakeStore) setToil(userID string, year int, hours decimal.Decimal) {
	bal, _ := f.GetOrCreateBalance(context.Background(), "t1", userID, year, decimal.NewFromInt(25))
	bal.ToilBalance = hours
	f.balances[balanceKey(userID, year)] = bal
}

func newTestService(store StoreAPI) *Service {
	return NewService(store,
		decimal.RequireFromString("7.5"),
		decimal.NewFromInt(25),
		decimal.NewFromInt(5))
}

// now is a Monday; all test dates stay inside 2026 away from bank holidays.
var testNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func TestCreateRequestValidation(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	_, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: "sabbatical",
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 10),
	}, testNow)
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.February, 23),
		EndDate:   day(2026, time.February, 24),
	}, testNow)
	require.ErrorIs(t, err, ErrPastStartDate)

	_, err = svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 10),
		EndDate:   day(2026, time.March, 9),
	}, testNow)
	require.ErrorIs(t, err, ErrEndBeforeStart)

	_, err = svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 7),
		EndDate:   day(2026, time.March, 8),
	}, testNow)
	require.ErrorIs(t, err, ErrNoWorkingDays)
}

func TestCreateRequestCountsWorkingDays(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	// Friday through Monday spans a weekend: two working days.
	req, err := svc.CreateRequest(context.Background(), "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 6),
		EndDate:   day(2026, time.March, 9),
	}, testNow)
	require.NoError(t, err)
	require.Equal(t, StatusPending, req.Status)
	require.True(t, req.DaysCount.Equal(decimal.NewFromInt(2)), "got %s days", req.DaysCount)
}

func TestCreateRequestOverlap(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 11),
	}, testNow)
	require.NoError(t, err)

	_, err = svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 11),
		EndDate:   day(2026, time.March, 13),
	}, testNow)
	require.ErrorIs(t, err, ErrOverlap)

	// A different user is free to book the same range.
	_, err = svc.CreateRequest(ctx, "t1", "u2", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 11),
		EndDate:   day(2026, time.March, 13),
	}, testNow)
	require.NoError(t, err)
}

func TestCreateToilRequestWithNoBalance(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.CreateRequest(context.Background(), "t1", "u1", RequestInput{
		LeaveType: TypeToil,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 9),
	}, testNow)
	require.ErrorIs(t, err, ErrNoToilBalance)
	require.Equal(t,
		"You have no TOIL balance available. TOIL is earned through approved overtime hours.",
		err.Error())
}

func TestCreateToilRequestInsufficient(t *testing.T) {
	store := newFakeStore()
	store.setToil("u1", 2026, decimal.NewFromInt(15))
	svc := newTestService(store)

	_, err := svc.CreateRequest(context.Background(), "t1", "u1", RequestInput{
		LeaveType: TypeToil,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 11),
	}, testNow)

	var insufficient *InsufficientToilError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t,
		"Insufficient TOIL balance. You have 15 hours (2 days) available, but are requesting 22.5 hours (3 days).",
		err.Error())
}

func TestCreateAnnualRequestInsufficient(t *testing.T) {
	store := newFakeStore()
	bal, _ := store.GetOrCreateBalance(context.Background(), "t1", "u1", 2026, decimal.NewFromInt(25))
	bal.DaysUsed = decimal.NewFromInt(24)
	store.balances[balanceKey("u1", 2026)] = bal
	svc := newTestService(store)

	_, err := svc.CreateRequest(context.Background(), "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 10),
	}, testNow)

	var insufficient *InsufficientAnnualError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t,
		"Insufficient annual leave balance. You have 1 days available, but are requesting 2 days.",
		err.Error())
}

func TestApproveAnnualDeductsDays(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 11),
	}, testNow)
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, "t1", req.ID, "mgr-1", "ok", testNow)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	require.Equal(t, "mgr-1", *approved.ReviewedBy)

	bal := store.balances[balanceKey("u1", 2026)]
	require.True(t, bal.DaysUsed.Equal(decimal.NewFromInt(3)), "got %s days used", bal.DaysUsed)
}

func TestApproveToilDeductsHours(t *testing.T) {
	store := newFakeStore()
	store.setToil("u1", 2026, decimal.NewFromInt(30))
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeToil,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 10),
	}, testNow)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "t1", req.ID, "mgr-1", "", testNow)
	require.NoError(t, err)

	bal := store.balances[balanceKey("u1", 2026)]
	require.True(t, bal.ToilBalance.Equal(decimal.NewFromInt(15)), "got %s hours left", bal.ToilBalance)
	require.True(t, bal.ToilUsed.Equal(decimal.NewFromInt(15)), "got %s hours used", bal.ToilUsed)
	require.True(t, bal.DaysUsed.IsZero(), "TOIL leave must not touch annual days")
}

func TestApproveRequiresPendingState(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 9),
	}, testNow)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "t1", req.ID, "mgr-1", "", testNow)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "t1", req.ID, "mgr-1", "", testNow)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestApproveRechecksBalanceAndRollsBack(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 13),
	}, testNow)
	require.NoError(t, err)

	// The balance is consumed between request and approval.
	require.NoError(t, store.AddDaysUsed(ctx, "t1", "u1", 2026, decimal.NewFromInt(23)))

	_, err = svc.Approve(ctx, "t1", req.ID, "mgr-1", "", testNow)
	var insufficient *InsufficientAnnualError
	require.ErrorAs(t, err, &insufficient)

	// Nothing committed: the request is still pending and no days were used
	// beyond the 23 set above.
	unchanged, err := svc.Get(ctx, "t1", req.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, unchanged.Status)
	bal := store.balances[balanceKey("u1", 2026)]
	require.True(t, bal.DaysUsed.Equal(decimal.NewFromInt(23)))
}

func TestRejectLeavesBalanceUntouched(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 11),
	}, testNow)
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, "t1", req.ID, "mgr-1", "cover needed")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, rejected.Status)
	require.NotNil(t, rejected.ReviewerComments)

	bal := store.balances[balanceKey("u1", 2026)]
	require.True(t, bal.DaysUsed.IsZero())
}

func TestCancelApprovedToilRestoresExactly(t *testing.T) {
	store := newFakeStore()
	store.setToil("u1", 2026, decimal.RequireFromString("22.5"))
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeToil,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 10),
	}, testNow)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "t1", req.ID, "mgr-1", "", testNow)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, "t1", req.ID, "u1", false, testNow)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	bal := store.balances[balanceKey("u1", 2026)]
	require.True(t, bal.ToilBalance.Equal(decimal.RequireFromString("22.5")), "got %s hours", bal.ToilBalance)
	require.True(t, bal.ToilUsed.IsZero())
}

func TestCancelPendingHasNoBalanceEffect(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 11),
	}, testNow)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, "t1", req.ID, "u1", false, testNow)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	bal := store.balances[balanceKey("u1", 2026)]
	require.True(t, bal.DaysUsed.IsZero())
}

func TestCancelOwnership(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 9),
	}, testNow)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "t1", req.ID, "u2", false, testNow)
	require.ErrorIs(t, err, ErrNotOwner)

	// An admin may cancel on the requester's behalf.
	_, err = svc.Cancel(ctx, "t1", req.ID, "admin-1", true, testNow)
	require.NoError(t, err)
}

func TestCancelRejectedRequestFails(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeAnnual,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 9),
	}, testNow)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, "t1", req.ID, "mgr-1", "no")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "t1", req.ID, "u1", false, testNow)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSickLeaveTracksSeparately(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "t1", "u1", RequestInput{
		LeaveType: TypeSick,
		StartDate: day(2026, time.March, 9),
		EndDate:   day(2026, time.March, 10),
	}, testNow)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "t1", req.ID, "mgr-1", "", testNow)
	require.NoError(t, err)

	bal := store.balances[balanceKey("u1", 2026)]
	require.True(t, bal.SickDaysUsed.Equal(decimal.NewFromInt(2)))
	require.True(t, bal.DaysUsed.IsZero())
}

func TestEntitlementAndCarryoverBounds(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	_, err := svc.UpdateEntitlement(ctx, "t1", "u1", 2026, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, ErrInvalidEntitlement)

	_, err = svc.SetCarryover(ctx, "t1", "u1", 2026, decimal.NewFromInt(6))
	require.ErrorIs(t, err, ErrInvalidCarryover)

	_, err = svc.SetCarryover(ctx, "t1", "u1", 2026, decimal.NewFromInt(5))
	require.NoError(t, err)
}

func TestRunCarryoverCapsAtMax(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	// u1 has 10 days left, u2 has 2, u3 is overdrawn.
	for user, used := range map[string]int64{"u1": 15, "u2": 23, "u3": 26} {
		_, err := store.GetOrCreateBalance(ctx, "t1", user, 2026, decimal.NewFromInt(25))
		require.NoError(t, err)
		require.NoError(t, store.AddDaysUsed(ctx, "t1", user, 2026, decimal.NewFromInt(used)))
	}

	summary, err := svc.RunCarryover(ctx, "t1", 2026)
	require.NoError(t, err)
	require.Equal(t, 2026, summary.FromYear)
	require.Equal(t, 2027, summary.ToYear)
	require.Equal(t, 3, summary.UsersProcessed)

	require.True(t, store.balances[balanceKey("u1", 2027)].CarriedOver.Equal(decimal.NewFromInt(5)))
	require.True(t, store.balances[balanceKey("u2", 2027)].CarriedOver.Equal(decimal.NewFromInt(2)))
	require.True(t, store.balances[balanceKey("u3", 2027)].CarriedOver.IsZero())
}

func TestHistoryFilters(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	seed := []Request{
		{TenantID: "t1", UserID: "u1", LeaveType: TypeAnnual, Status: StatusApproved,
			StartDate: day(2025, time.June, 2), EndDate: day(2025, time.June, 6)},
		{TenantID: "t1", UserID: "u1", LeaveType: TypeAnnual, Status: StatusPending,
			StartDate: day(2026, time.March, 9), EndDate: day(2026, time.March, 10)},
		{TenantID: "t1", UserID: "u1", LeaveType: TypeSick, Status: StatusRejected,
			StartDate: day(2026, time.April, 6), EndDate: day(2026, time.April, 7)},
		{TenantID: "t1", UserID: "u2", LeaveType: TypeAnnual, Status: StatusPending,
			StartDate: day(2026, time.March, 9), EndDate: day(2026, time.March, 10)},
	}
	for _, req := range seed {
		_, err := store.InsertRequest(ctx, req)
		require.NoError(t, err)
	}

	all, total, err := svc.History(ctx, "t1", "u1", RequestFilter{}, 25, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, 3, total)

	byYear, _, err := svc.History(ctx, "t1", "u1", RequestFilter{Year: 2025}, 25, 0)
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	require.Equal(t, StatusApproved, byYear[0].Status)

	byStatus, _, err := svc.History(ctx, "t1", "u1", RequestFilter{Status: StatusRejected}, 25, 0)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	require.Equal(t, TypeSick, byStatus[0].LeaveType)

	team, _, err := svc.TeamRequests(ctx, "t1", []string{"u1", "u2"}, RequestFilter{
		From: day(2026, time.March, 1),
		To:   day(2026, time.March, 31),
	}, 25, 0)
	require.NoError(t, err)
	require.Len(t, team, 2)
	for _, req := range team {
		require.Equal(t, 2026, req.StartDate.Year())
	}
}
