package leave

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	Store StoreAPI
	Calc  *Calculator
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Calc: NewCalculator(store)}
}

type SubmitInput struct {
	EmployeeID   string
	PolicyName   string
	StartDate    time.Time
	EndDate      time.Time
	StartSession string
	EndSession   string
	Reason       string
}

// Submit validates and prices a leave request, then persists it in the
// pending state. Balances are not touched at submission; the design
// deliberately lets over-budget pending requests accumulate and settles
// them at approval time.
func (s *Service) Submit(ctx context.Context, tenantID string, in SubmitInput) (Request, error) {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return Request{}, Invalid("employeeId is required")
	}
	if strings.TrimSpace(in.PolicyName) == "" {
		return Request{}, Invalid("leave type is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Request{}, Invalid("startDate and endDate are required")
	}

	startSession := in.StartSession
	if startSession == "" {
		startSession = SessionFullDay
	}
	endSession := in.EndSession
	if endSession == "" {
		endSession = SessionFullDay
	}
	if !ValidSession(startSession) || !ValidSession(endSession) {
		return Request{}, Invalid("session must be one of full_day, first_half, second_half")
	}

	policy, err := s.Store.PolicyByName(ctx, tenantID, in.PolicyName)
	if err != nil {
		return Request{}, err
	}

	days, err := s.Calc.ChargeableDays(ctx, tenantID, in.StartDate, in.EndDate)
	if err != nil {
		return Request{}, err
	}
	if days <= 0 {
		return Request{}, Invalid("leave duration must be at least one business day")
	}

	req := Request{
		EmployeeID:   in.EmployeeID,
		PolicyID:     policy.ID,
		StartDate:    truncateToDate(in.StartDate),
		EndDate:      truncateToDate(in.EndDate),
		StartSession: startSession,
		EndSession:   endSession,
		Days:         float64(days),
		Reason:       strings.TrimSpace(in.Reason),
		Status:       StatusPending,
	}

	id, err := s.Store.InsertRequest(ctx, tenantID, req)
	if err != nil {
		return Request{}, dependency("insert leave request", err)
	}
	req.ID = id
	return req, nil
}

// Decide moves a pending request to approved or rejected. Approval and
// the balance credit commit together; a request that is no longer
// pending fails without a second credit.
func (s *Service) Decide(ctx context.Context, tenantID, requestID, target, actorID string) (Request, error) {
	if target != StatusApproved && target != StatusRejected {
		return Request{}, Invalid("target status must be approved or rejected")
	}

	req, err := s.Store.RequestByID(ctx, tenantID, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, Invalid("leave request already %s", req.Status)
	}

	var credit *BalanceCredit
	if target == StatusApproved {
		credit = &BalanceCredit{
			EmployeeID: req.EmployeeID,
			PolicyID:   req.PolicyID,
			Year:       req.StartDate.Year(),
			Days:       req.Days,
		}
	}

	if err := s.Store.DecideRequest(ctx, tenantID, requestID, target, actorID, credit); err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			return Request{}, Invalid("leave request already decided")
		}
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return Request{}, err
		}
		return Request{}, dependency("decide leave request", err)
	}

	req.Status = target
	req.ProcessedBy = actorID
	return req, nil
}

func (s *Service) GetRequest(ctx context.Context, tenantID, requestID string) (Request, error) {
	return s.Store.RequestByID(ctx, tenantID, requestID)
}

func (s *Service) ListRequests(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Request, int, error) {
	return s.Store.ListRequests(ctx, tenantID, employeeID, limit, offset)
}

func (s *Service) CreatePolicy(ctx context.Context, tenantID string, policy Policy) (string, error) {
	if strings.TrimSpace(policy.Name) == "" {
		return "", Invalid("policy name is required")
	}
	if policy.TotalDaysPerYear <= 0 {
		return "", Invalid("totalDaysPerYear must be positive")
	}
	if policy.CarryForwardDays < 0 {
		return "", Invalid("carryForwardLimit cannot be negative")
	}
	if policy.AccrualFrequency == "" {
		policy.AccrualFrequency = AccrualYearly
	}
	if !ValidAccrualFrequency(policy.AccrualFrequency) {
		return "", Invalid("accrualFrequency must be one of yearly, monthly, quarterly")
	}
	return s.Store.CreatePolicy(ctx, tenantID, policy)
}

func (s *Service) ListPolicies(ctx context.Context, tenantID string) ([]Policy, error) {
	return s.Store.ListPolicies(ctx, tenantID)
}

func (s *Service) CreateHoliday(ctx context.Context, tenantID string, date time.Time, name string) (string, error) {
	if date.IsZero() {
		return "", Invalid("holiday date is required")
	}
	if strings.TrimSpace(name) == "" {
		return "", Invalid("holiday name is required")
	}
	return s.Store.CreateHoliday(ctx, tenantID, truncateToDate(date), strings.TrimSpace(name))
}

func (s *Service) ListHolidays(ctx context.Context, tenantID string, year int) ([]Holiday, error) {
	return s.Store.ListHolidays(ctx, tenantID, year)
}

func (s *Service) DeleteHoliday(ctx context.Context, tenantID, holidayID string) error {
	return s.Store.DeleteHoliday(ctx, tenantID, holidayID)
}

func (s *Service) ListBalances(ctx context.Context, tenantID, employeeID string, year int) ([]Balance, error) {
	return s.Store.ListBalances(ctx, tenantID, employeeID, year)
}

func (s *Service) BalanceReport(ctx context.Context, tenantID string, year int) ([]BalanceReportRow, error) {
	if year <= 0 {
		return nil, Invalid("year is required")
	}
	return s.Store.BalanceReport(ctx, tenantID, year)
}

// AdjustBalance is the HR manual credit/debit escape hatch.
func (s *Service) AdjustBalance(ctx context.Context, tenantID, employeeID, policyID string, year int, delta float64, reason, actorID string) error {
	if delta == 0 {
		return Invalid("adjustment amount cannot be zero")
	}
	if year <= 0 {
		return Invalid("year is required")
	}
	if _, err := s.Store.PolicyByID(ctx, tenantID, policyID); err != nil {
		return err
	}
	return s.Store.AdjustBalance(ctx, tenantID, employeeID, policyID, year, delta, reason, actorID)
}
