package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// EncashmentQuote prices the unused entitlement of an encashable policy.
// It is a quote only; payout execution belongs to payroll, which is not
// part of this service.
type EncashmentQuote struct {
	PolicyID      string          `json:"policyId"`
	PolicyName    string          `json:"policyName"`
	Year          int             `json:"year"`
	RemainingDays decimal.Decimal `json:"remainingDays"`
	DailyRate     decimal.Decimal `json:"dailyRate"`
	Payout        decimal.Decimal `json:"payout"`
}

func (s *Service) QuoteEncashment(ctx context.Context, tenantID, employeeID, policyName string, year int, dailyRate decimal.Decimal) (EncashmentQuote, error) {
	if year <= 0 {
		return EncashmentQuote{}, Invalid("year is required")
	}
	if !dailyRate.IsPositive() {
		return EncashmentQuote{}, Invalid("dailyRate must be positive")
	}

	policy, err := s.Store.PolicyByName(ctx, tenantID, policyName)
	if err != nil {
		return EncashmentQuote{}, err
	}
	if !policy.IsEncashable {
		return EncashmentQuote{}, Invalid("policy %q is not encashable", policy.Name)
	}

	balance, err := s.Store.BalanceFor(ctx, tenantID, employeeID, policy.ID, year)
	if err != nil {
		return EncashmentQuote{}, dependency("balance lookup", err)
	}

	remaining := decimal.NewFromInt(int64(policy.TotalDaysPerYear)).Sub(decimal.NewFromFloat(balance.DaysTaken))
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return EncashmentQuote{
		PolicyID:      policy.ID,
		PolicyName:    policy.Name,
		Year:          year,
		RemainingDays: remaining,
		DailyRate:     dailyRate,
		Payout:        remaining.Mul(dailyRate).Round(2),
	}, nil
}
