package leave

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyDecided is returned by DecideRequest when the optimistic
// status guard finds the request no longer pending. Two concurrent
// approvals cannot both credit the balance.
var ErrAlreadyDecided = errors.New("leave request already decided")

// BalanceCredit is the side effect applied atomically with an approval.
type BalanceCredit struct {
	EmployeeID string
	PolicyID   string
	Year       int
	Days       float64
}

// StoreAPI is everything the leave service needs from persistence.
// Implementations map their driver's missing-row condition to
// *NotFoundError so the taxonomy is built where the condition is
// detected.
type StoreAPI interface {
	HolidayStore

	PolicyByName(ctx context.Context, tenantID, name string) (Policy, error)
	PolicyByID(ctx context.Context, tenantID, policyID string) (Policy, error)
	ListPolicies(ctx context.Context, tenantID string) ([]Policy, error)
	CreatePolicy(ctx context.Context, tenantID string, policy Policy) (string, error)

	ListHolidays(ctx context.Context, tenantID string, year int) ([]Holiday, error)
	CreateHoliday(ctx context.Context, tenantID string, date time.Time, name string) (string, error)
	DeleteHoliday(ctx context.Context, tenantID, holidayID string) error

	InsertRequest(ctx context.Context, tenantID string, req Request) (string, error)
	RequestByID(ctx context.Context, tenantID, requestID string) (Request, error)
	ListRequests(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Request, int, error)
	// DecideRequest transitions a pending request and, when credit is
	// non-nil, applies the balance credit in the same transaction.
	DecideRequest(ctx context.Context, tenantID, requestID, status, actorID string, credit *BalanceCredit) error

	ListBalances(ctx context.Context, tenantID, employeeID string, year int) ([]Balance, error)
	// BalanceFor returns a zero-valued balance when no row exists yet;
	// rows are only created by credits and manual adjustments.
	BalanceFor(ctx context.Context, tenantID, employeeID, policyID string, year int) (Balance, error)
	AdjustBalance(ctx context.Context, tenantID, employeeID, policyID string, year int, delta float64, reason, actorID string) error

	BalanceReport(ctx context.Context, tenantID string, year int) ([]BalanceReportRow, error)
}
