package timesheet

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	submissions map[string]Submission
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{submissions: map[string]Submission{}}
}

func (f *fakeStore) InTx(ctx context.Context, fn func(StoreAPI) error) error {
	snap := make(map[string]Submission, len(f.submissions))
	for k, v := range f.submissions {
		snap[k] = v
	}
	idSnap := f.nextID
	if err := fn(f); err != nil {
		f.submissions = snap
		f.nextID = idSnap
		return err
	}
	return nil
}

func (f *fakeStore) Insert(ctx context.Context, sub Submission) (Submission, error) {
	f.nextID++
	sub.ID = fmt.Sprintf("sub-%d", f.nextID)
	sub.SubmittedAt = time.Now()
	sub.UpdatedAt = sub.SubmittedAt
	f.submissions[sub.ID] = sub
	return sub, nil
}

func (f *fakeStore) Get(ctx context.Context, tenantID, submissionID string) (Submission, error) {
	sub, ok := f.submissions[submissionID]
	if !ok || sub.TenantID != tenantID {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

func (f *fakeStore) GetForUpdate(ctx context.Context, tenantID, submissionID string) (Submission, error) {
	return f.Get(ctx, tenantID, submissionID)
}

func (f *fakeStore) Review(ctx context.Context, tenantID, submissionID, status, reviewerID, comments string) error {
	sub, ok := f.submissions[submissionID]
	if !ok {
		return ErrNotFound
	}
	sub.Status = status
	sub.ReviewedBy = &reviewerID
	now := time.Now()
	sub.ReviewedAt = &now
	if comments != "" {
		sub.ReviewerComments = &comments
	}
	f.submissions[submissionID] = sub
	return nil
}

func (f *fakeStore) LatestForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (Submission, error) {
	var latest Submission
	found := false
	for _, sub := range f.submissions {
		if sub.TenantID != tenantID || sub.UserID != userID || !sub.WeekStartDate.Equal(weekStart) {
			continue
		}
		if !found || sub.SubmittedAt.After(latest.SubmittedAt) {
			latest = sub
			found = true
		}
	}
	if !found {
		return Submission{}, ErrNotFound
	}
	return latest, nil
}

func (f *fakeStore) HasAwaitingForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (bool, error) {
	for _, sub := range f.submissions {
		if sub.TenantID == tenantID && sub.UserID == userID && sub.WeekStartDate.Equal(weekStart) && Awaiting(sub.Status) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) HasRejectedForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (bool, error) {
	for _, sub := range f.submissions {
		if sub.TenantID == tenantID && sub.UserID == userID && sub.WeekStartDate.Equal(weekStart) && sub.Status == StatusRejected {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListAwaiting(ctx context.Context, tenantID string, limit, offset int) ([]Submission, int, error) {
	var out []Submission
	for _, sub := range f.submissions {
		if sub.TenantID == tenantID && Awaiting(sub.Status) {
			out = append(out, sub)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) ListForUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]Submission, int, error) {
	var out []Submission
	for _, sub := range f.submissions {
		if sub.TenantID == tenantID && sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, len(out), nil
}

func newTestService(store StoreAPI) *Service {
	return NewService(store, decimal.RequireFromString("37.5"))
}

var monday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func TestSubmitRequiresMonday(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Submit(context.Background(), "t1", "u1", SubmitInput{
		WeekStartDate: monday.AddDate(0, 0, 1),
		TotalHours:    decimal.NewFromInt(40),
	})
	require.ErrorIs(t, err, ErrInvalidWeek)
}

func TestSubmitEnforcesMinimumHours(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Submit(context.Background(), "t1", "u1", SubmitInput{
		WeekStartDate: monday,
		TotalHours:    decimal.NewFromInt(30),
	})

	var minErr *MinHoursError
	require.ErrorAs(t, err, &minErr)
	require.Equal(t, "total hours must be at least 37.5, got 30", err.Error())
}

func TestSubmitSetsWeekEnd(t *testing.T) {
	svc := newTestService(newFakeStore())

	sub, err := svc.Submit(context.Background(), "t1", "u1", SubmitInput{
		WeekStartDate: monday,
		TotalHours:    decimal.NewFromInt(40),
		Notes:         "covered two shifts",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, sub.Status)
	require.True(t, sub.WeekEndDate.Equal(monday.AddDate(0, 0, 6)))
	require.NotNil(t, sub.Notes)
}

func TestSubmitRejectsDuplicateAwaitingWeek(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(40)})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(41)})
	require.ErrorIs(t, err, ErrDuplicatePending)

	// Another user or another week is fine.
	_, err = svc.Submit(ctx, "t1", "u2", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(40)})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday.AddDate(0, 0, 7), TotalHours: decimal.NewFromInt(40)})
	require.NoError(t, err)
}

func TestResubmissionAfterRejection(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(40)})
	require.NoError(t, err)

	_, err = svc.Reject(ctx, "t1", first.ID, "mgr-1", "hours look wrong")
	require.NoError(t, err)

	second, err := svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(42)})
	require.NoError(t, err)
	require.Equal(t, StatusResubmitted, second.Status)

	// The resubmission is awaiting review, so a third copy is blocked.
	_, err = svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(42)})
	require.ErrorIs(t, err, ErrDuplicatePending)
}

func TestRejectRequiresAwaitingStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(40)})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, "t1", sub.ID, "mgr-1", "no")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, rejected.Status)

	_, err = svc.Reject(ctx, "t1", sub.ID, "mgr-1", "again")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestBulkRejectIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(40)})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, "t1", "u2", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(40)})
	require.NoError(t, err)

	result := svc.BulkReject(ctx, "t1", []string{first.ID, "missing", second.ID}, "mgr-1", "rota clash")
	require.Equal(t, []string{first.ID, second.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	require.Equal(t, "missing", result.Failed[0].ID)
}

func TestStatusReturnsLatestForWeek(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(40)})
	require.NoError(t, err)
	_, err = svc.Reject(ctx, "t1", first.ID, "mgr-1", "redo")
	require.NoError(t, err)

	// Force a later submission time for the resubmission.
	time.Sleep(2 * time.Millisecond)
	second, err := svc.Submit(ctx, "t1", "u1", SubmitInput{WeekStartDate: monday, TotalHours: decimal.NewFromInt(44)})
	require.NoError(t, err)

	latest, err := svc.Status(ctx, "t1", "u1", monday)
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)

	_, err = svc.Status(ctx, "t1", "u1", monday.AddDate(0, 0, 14))
	require.ErrorIs(t, err, ErrNotFound)
}
