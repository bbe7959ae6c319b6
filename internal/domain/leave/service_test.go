package leave

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory StoreAPI with the same transition guard the
// SQL store enforces, so decision races behave identically.
type fakeStore struct {
	mu sync.Mutex

	policies  map[string]Policy
	holidays  map[string]struct{}
	requests  map[string]Request
	balances  map[string]float64
	nextID    int
	insertErr error
	decideErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		policies: map[string]Policy{},
		holidays: map[string]struct{}{},
		requests: map[string]Request{},
		balances: map[string]float64{},
	}
}

func (f *fakeStore) addPolicy(p Policy) Policy {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		f.nextID++
		p.ID = "policy-" + strconv.Itoa(f.nextID)
	}
	f.policies[p.ID] = p
	return p
}

func balanceKey(employeeID, policyID string, year int) string {
	return fmt.Sprintf("%s/%s/%d", employeeID, policyID, year)
}

func (f *fakeStore) HolidayDates(_ context.Context, _ string, _ int) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]struct{}, len(f.holidays))
	for k := range f.holidays {
		out[k] = struct{}{}
	}
	return out, nil
}

func (f *fakeStore) PolicyByName(_ context.Context, _ string, name string) (Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.policies {
		if p.Name == name {
			return p, nil
		}
	}
	return Policy{}, NotFound("leave policy", name)
}

func (f *fakeStore) PolicyByID(_ context.Context, _ string, policyID string) (Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.policies[policyID]
	if !ok {
		return Policy{}, NotFound("leave policy", policyID)
	}
	return p, nil
}

func (f *fakeStore) ListPolicies(_ context.Context, _ string) ([]Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Policy, 0, len(f.policies))
	for _, p := range f.policies {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) CreatePolicy(_ context.Context, _ string, policy Policy) (string, error) {
	return f.addPolicy(policy).ID, nil
}

func (f *fakeStore) ListHolidays(_ context.Context, _ string, _ int) ([]Holiday, error) {
	return nil, nil
}

func (f *fakeStore) CreateHoliday(_ context.Context, _ string, d time.Time, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holidays[d.Format(dateKeyLayout)] = struct{}{}
	return d.Format(dateKeyLayout), nil
}

func (f *fakeStore) DeleteHoliday(_ context.Context, _, holidayID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.holidays[holidayID]; !ok {
		return NotFound("holiday", holidayID)
	}
	delete(f.holidays, holidayID)
	return nil
}

func (f *fakeStore) InsertRequest(_ context.Context, _ string, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.nextID++
	req.ID = "req-" + strconv.Itoa(f.nextID)
	req.CreatedAt = time.Now().UTC()
	f.requests[req.ID] = req
	return req.ID, nil
}

func (f *fakeStore) RequestByID(_ context.Context, _, requestID string) (Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[requestID]
	if !ok {
		return Request{}, NotFound("leave request", requestID)
	}
	return req, nil
}

func (f *fakeStore) ListRequests(_ context.Context, _, employeeID string, _, _ int) ([]Request, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Request
	for _, req := range f.requests {
		if employeeID == "" || req.EmployeeID == employeeID {
			out = append(out, req)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) DecideRequest(_ context.Context, _, requestID, status, actorID string, credit *BalanceCredit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decideErr != nil {
		return f.decideErr
	}
	req, ok := f.requests[requestID]
	if !ok {
		return NotFound("leave request", requestID)
	}
	if req.Status != StatusPending {
		return ErrAlreadyDecided
	}
	req.Status = status
	req.ProcessedBy = actorID
	f.requests[requestID] = req
	if credit != nil {
		f.balances[balanceKey(credit.EmployeeID, credit.PolicyID, credit.Year)] += credit.Days
	}
	return nil
}

func (f *fakeStore) ListBalances(_ context.Context, _, employeeID string, year int) ([]Balance, error) {
	return nil, nil
}

func (f *fakeStore) BalanceFor(_ context.Context, _, employeeID, policyID string, year int) (Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Balance{
		EmployeeID: employeeID,
		PolicyID:   policyID,
		Year:       year,
		DaysTaken:  f.balances[balanceKey(employeeID, policyID, year)],
	}, nil
}

func (f *fakeStore) AdjustBalance(_ context.Context, _, employeeID, policyID string, year int, delta float64, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[balanceKey(employeeID, policyID, year)] += delta
	return nil
}

func (f *fakeStore) BalanceReport(_ context.Context, _ string, _ int) ([]BalanceReportRow, error) {
	return nil, nil
}

func (f *fakeStore) daysTaken(employeeID, policyID string, year int) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[balanceKey(employeeID, policyID, year)]
}

func newTestService(t *testing.T) (*Service, *fakeStore, Policy) {
	t.Helper()
	store := newFakeStore()
	policy := store.addPolicy(Policy{Name: "Annual", TotalDaysPerYear: 20, AccrualFrequency: AccrualYearly, IsEncashable: true})
	return NewService(store), store, policy
}

func submitWeek(t *testing.T, svc *Service) Request {
	t.Helper()
	req, err := svc.Submit(context.Background(), "t1", SubmitInput{
		EmployeeID: "emp-1",
		PolicyName: "Annual",
		StartDate:  date(2024, time.March, 4),
		EndDate:    date(2024, time.March, 8),
		Reason:     "spring break",
	})
	require.NoError(t, err)
	return req
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	svc, store, policy := newTestService(t)

	req := submitWeek(t, svc)
	require.Equal(t, StatusPending, req.Status)
	require.Equal(t, policy.ID, req.PolicyID)
	require.Equal(t, float64(5), req.Days)
	require.Equal(t, SessionFullDay, req.StartSession)

	// Submission never touches balances.
	require.Zero(t, store.daysTaken("emp-1", policy.ID, 2024))
}

func TestSubmitUnknownPolicy(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "t1", SubmitInput{
		EmployeeID: "emp-1",
		PolicyName: "Sabbatical",
		StartDate:  date(2024, time.March, 4),
		EndDate:    date(2024, time.March, 8),
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSubmitZeroChargeableDays(t *testing.T) {
	svc, store, _ := newTestService(t)

	// Weekend only.
	_, err := svc.Submit(context.Background(), "t1", SubmitInput{
		EmployeeID: "emp-1",
		PolicyName: "Annual",
		StartDate:  date(2024, time.March, 9),
		EndDate:    date(2024, time.March, 10),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Empty(t, store.requests)
}

func TestSubmitInvalidSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "t1", SubmitInput{
		EmployeeID:   "emp-1",
		PolicyName:   "Annual",
		StartDate:    date(2024, time.March, 4),
		EndDate:      date(2024, time.March, 8),
		StartSession: "morning",
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSubmitInsertFailureIsDependencyError(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.insertErr = errors.New("connection reset")

	_, err := svc.Submit(context.Background(), "t1", SubmitInput{
		EmployeeID: "emp-1",
		PolicyName: "Annual",
		StartDate:  date(2024, time.March, 4),
		EndDate:    date(2024, time.March, 8),
	})
	var dependencyErr *DependencyError
	require.ErrorAs(t, err, &dependencyErr)
}

func TestApproveCreditsBalance(t *testing.T) {
	svc, store, policy := newTestService(t)
	req := submitWeek(t, svc)

	decided, err := svc.Decide(context.Background(), "t1", req.ID, StatusApproved, "mgr-1")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decided.Status)
	require.Equal(t, "mgr-1", decided.ProcessedBy)
	require.Equal(t, float64(5), store.daysTaken("emp-1", policy.ID, 2024))
}

func TestRejectLeavesBalanceUntouched(t *testing.T) {
	svc, store, policy := newTestService(t)
	req := submitWeek(t, svc)

	decided, err := svc.Decide(context.Background(), "t1", req.ID, StatusRejected, "mgr-1")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, decided.Status)
	require.Zero(t, store.daysTaken("emp-1", policy.ID, 2024))
}

func TestDecideTwiceFailsWithoutSecondCredit(t *testing.T) {
	svc, store, policy := newTestService(t)
	req := submitWeek(t, svc)

	_, err := svc.Decide(context.Background(), "t1", req.ID, StatusApproved, "mgr-1")
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), "t1", req.ID, StatusApproved, "mgr-2")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, float64(5), store.daysTaken("emp-1", policy.ID, 2024))
}

func TestConcurrentApprovalsCreditOnce(t *testing.T) {
	svc, store, policy := newTestService(t)
	req := submitWeek(t, svc)

	const approvers = 8
	var wg sync.WaitGroup
	errs := make([]error, approvers)
	for i := 0; i < approvers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = svc.Decide(context.Background(), "t1", req.ID, StatusApproved, fmt.Sprintf("mgr-%d", idx))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, float64(5), store.daysTaken("emp-1", policy.ID, 2024))
}

func TestDecideUnknownRequest(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Decide(context.Background(), "t1", "missing", StatusApproved, "mgr-1")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDecideInvalidTarget(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := submitWeek(t, svc)

	_, err := svc.Decide(context.Background(), "t1", req.ID, "cancelled", "mgr-1")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestApprovalCreditsStartYear(t *testing.T) {
	svc, store, policy := newTestService(t)

	req, err := svc.Submit(context.Background(), "t1", SubmitInput{
		EmployeeID: "emp-1",
		PolicyName: "Annual",
		StartDate:  date(2024, time.December, 30),
		EndDate:    date(2025, time.January, 3),
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), "t1", req.ID, StatusApproved, "mgr-1")
	require.NoError(t, err)

	require.Equal(t, req.Days, store.daysTaken("emp-1", policy.ID, 2024))
	require.Zero(t, store.daysTaken("emp-1", policy.ID, 2025))
}

func TestCreatePolicyValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := []struct {
		name   string
		policy Policy
	}{
		{"empty name", Policy{TotalDaysPerYear: 10}},
		{"non-positive days", Policy{Name: "Sick", TotalDaysPerYear: 0}},
		{"negative carry forward", Policy{Name: "Sick", TotalDaysPerYear: 10, CarryForwardDays: -1}},
		{"bad accrual", Policy{Name: "Sick", TotalDaysPerYear: 10, AccrualFrequency: "weekly"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePolicy(context.Background(), "t1", tc.policy)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestAdjustBalanceValidation(t *testing.T) {
	svc, _, policy := newTestService(t)

	err := svc.AdjustBalance(context.Background(), "t1", "emp-1", policy.ID, 2024, 0, "typo fix", "hr-1")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	err = svc.AdjustBalance(context.Background(), "t1", "emp-1", "missing-policy", 2024, 1, "typo fix", "hr-1")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestAdjustBalanceApplied(t *testing.T) {
	svc, store, policy := newTestService(t)

	require.NoError(t, svc.AdjustBalance(context.Background(), "t1", "emp-1", policy.ID, 2024, -2.5, "clerical error", "hr-1"))
	require.Equal(t, -2.5, store.daysTaken("emp-1", policy.ID, 2024))
}
