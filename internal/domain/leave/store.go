package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

var _ StoreAPI = (*Store)(nil)

func (s *Store) PolicyByName(ctx context.Context, tenantID, name string) (Policy, error) {
	var p Policy
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, total_days_per_year, accrual_frequency, carry_forward_days, is_encashable, created_at
    FROM leave_policies
    WHERE tenant_id = $1 AND lower(name) = lower($2)
  `, tenantID, name).Scan(&p.ID, &p.Name, &p.TotalDaysPerYear, &p.AccrualFrequency, &p.CarryForwardDays, &p.IsEncashable, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Policy{}, NotFound("leave policy", name)
	}
	if err != nil {
		return Policy{}, dependency("policy lookup", err)
	}
	return p, nil
}

func (s *Store) PolicyByID(ctx context.Context, tenantID, policyID string) (Policy, error) {
	var p Policy
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, total_days_per_year, accrual_frequency, carry_forward_days, is_encashable, created_at
    FROM leave_policies
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, policyID).Scan(&p.ID, &p.Name, &p.TotalDaysPerYear, &p.AccrualFrequency, &p.CarryForwardDays, &p.IsEncashable, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Policy{}, NotFound("leave policy", policyID)
	}
	if err != nil {
		return Policy{}, dependency("policy lookup", err)
	}
	return p, nil
}

func (s *Store) ListPolicies(ctx context.Context, tenantID string) ([]Policy, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, total_days_per_year, accrual_frequency, carry_forward_days, is_encashable, created_at
    FROM leave_policies
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, dependency("list policies", err)
	}
	defer rows.Close()

	var policies []Policy
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.Name, &p.TotalDaysPerYear, &p.AccrualFrequency, &p.CarryForwardDays, &p.IsEncashable, &p.CreatedAt); err != nil {
			return nil, dependency("scan policy", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (s *Store) CreatePolicy(ctx context.Context, tenantID string, policy Policy) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_policies (tenant_id, name, total_days_per_year, accrual_frequency, carry_forward_days, is_encashable)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, tenantID, policy.Name, policy.TotalDaysPerYear, policy.AccrualFrequency, policy.CarryForwardDays, policy.IsEncashable).Scan(&id)
	if err != nil {
		return "", dependency("create policy", err)
	}
	return id, nil
}

func (s *Store) HolidayDates(ctx context.Context, tenantID string, year int) (map[string]struct{}, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT date
    FROM company_holidays
    WHERE tenant_id = $1 AND year = $2
  `, tenantID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make(map[string]struct{})
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates[date.Format(dateKeyLayout)] = struct{}{}
	}
	return dates, rows.Err()
}

func (s *Store) ListHolidays(ctx context.Context, tenantID string, year int) ([]Holiday, error) {
	query := `
    SELECT id, date, year, name
    FROM company_holidays
    WHERE tenant_id = $1
  `
	args := []any{tenantID}
	if year > 0 {
		query += " AND year = $2"
		args = append(args, year)
	}
	query += " ORDER BY date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, dependency("list holidays", err)
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Year, &h.Name); err != nil {
			return nil, dependency("scan holiday", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, tenantID string, date time.Time, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO company_holidays (tenant_id, date, year, name)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, tenantID, date, date.Year(), name).Scan(&id)
	if err != nil {
		return "", dependency("create holiday", err)
	}
	return id, nil
}

func (s *Store) DeleteHoliday(ctx context.Context, tenantID, holidayID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM company_holidays WHERE tenant_id = $1 AND id = $2", tenantID, holidayID)
	if err != nil {
		return dependency("delete holiday", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("holiday", holidayID)
	}
	return nil
}

func (s *Store) InsertRequest(ctx context.Context, tenantID string, req Request) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (tenant_id, employee_id, policy_id, start_date, end_date, start_session, end_session, days, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, tenantID, req.EmployeeID, req.PolicyID, req.StartDate, req.EndDate, req.StartSession, req.EndSession, req.Days, req.Reason, req.Status).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) RequestByID(ctx context.Context, tenantID, requestID string) (Request, error) {
	var req Request
	var processedBy *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, policy_id, start_date, end_date, start_session, end_session, days, reason, status, processed_by, created_at
    FROM leave_requests
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, requestID).Scan(&req.ID, &req.EmployeeID, &req.PolicyID, &req.StartDate, &req.EndDate, &req.StartSession, &req.EndSession, &req.Days, &req.Reason, &req.Status, &processedBy, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, NotFound("leave request", requestID)
	}
	if err != nil {
		return Request{}, dependency("request lookup", err)
	}
	if processedBy != nil {
		req.ProcessedBy = *processedBy
	}
	return req, nil
}

func (s *Store) ListRequests(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Request, int, error) {
	query := `
    SELECT id, employee_id, policy_id, start_date, end_date, start_session, end_session, days, reason, status, processed_by, created_at
    FROM leave_requests
    WHERE tenant_id = $1
  `
	countQuery := "SELECT COUNT(1) FROM leave_requests WHERE tenant_id = $1"
	args := []any{tenantID}
	if employeeID != "" {
		query += " AND employee_id = $2"
		countQuery += " AND employee_id = $2"
		args = append(args, employeeID)
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dependency("count requests", err)
	}

	query += " ORDER BY created_at DESC"
	if employeeID != "" {
		query += " LIMIT $3 OFFSET $4"
	} else {
		query += " LIMIT $2 OFFSET $3"
	}
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dependency("list requests", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var req Request
		var processedBy *string
		if err := rows.Scan(&req.ID, &req.EmployeeID, &req.PolicyID, &req.StartDate, &req.EndDate, &req.StartSession, &req.EndSession, &req.Days, &req.Reason, &req.Status, &processedBy, &req.CreatedAt); err != nil {
			return nil, 0, dependency("scan request", err)
		}
		if processedBy != nil {
			req.ProcessedBy = *processedBy
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}

// DecideRequest runs the status transition and the approval credit as a
// single transaction. The WHERE status = 'pending' guard makes the
// transition exactly-once under concurrent decisions.
func (s *Store) DecideRequest(ctx context.Context, tenantID, requestID, status, actorID string, credit *BalanceCredit) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, processed_by = $2, processed_at = now()
    WHERE tenant_id = $3 AND id = $4 AND status = $5
  `, status, actorID, tenantID, requestID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists int
		if err := tx.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests WHERE tenant_id = $1 AND id = $2", tenantID, requestID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return NotFound("leave request", requestID)
		}
		return ErrAlreadyDecided
	}

	if credit != nil {
		if _, err := tx.Exec(ctx, `
      INSERT INTO leave_balances (tenant_id, employee_id, policy_id, year, days_taken)
      VALUES ($1,$2,$3,$4,$5)
      ON CONFLICT (employee_id, policy_id, year)
      DO UPDATE SET days_taken = leave_balances.days_taken + EXCLUDED.days_taken, updated_at = now()
    `, tenantID, credit.EmployeeID, credit.PolicyID, credit.Year, credit.Days); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListBalances filters by employee and year only when asked to; an
// empty employeeID lists the whole tenant.
func (s *Store) ListBalances(ctx context.Context, tenantID, employeeID string, year int) ([]Balance, error) {
	query := `
    SELECT employee_id, policy_id, year, days_taken, updated_at
    FROM leave_balances
    WHERE tenant_id = $1
  `
	args := []any{tenantID}
	if employeeID != "" {
		query += fmt.Sprintf(" AND employee_id = $%d", len(args)+1)
		args = append(args, employeeID)
	}
	if year > 0 {
		query += fmt.Sprintf(" AND year = $%d", len(args)+1)
		args = append(args, year)
	}
	query += " ORDER BY year DESC, employee_id, policy_id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, dependency("list balances", err)
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.EmployeeID, &b.PolicyID, &b.Year, &b.DaysTaken, &b.UpdatedAt); err != nil {
			return nil, dependency("scan balance", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (s *Store) BalanceFor(ctx context.Context, tenantID, employeeID, policyID string, year int) (Balance, error) {
	var b Balance
	err := s.DB.QueryRow(ctx, `
    SELECT employee_id, policy_id, year, days_taken, updated_at
    FROM leave_balances
    WHERE tenant_id = $1 AND employee_id = $2 AND policy_id = $3 AND year = $4
  `, tenantID, employeeID, policyID, year).Scan(&b.EmployeeID, &b.PolicyID, &b.Year, &b.DaysTaken, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{EmployeeID: employeeID, PolicyID: policyID, Year: year}, nil
	}
	if err != nil {
		return Balance{}, err
	}
	return b, nil
}

func (s *Store) BalanceReport(ctx context.Context, tenantID string, year int) ([]BalanceReportRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT b.employee_id, e.first_name || ' ' || e.last_name, p.name, b.year, p.total_days_per_year, b.days_taken
    FROM leave_balances b
    JOIN employees e ON b.employee_id = e.id
    JOIN leave_policies p ON b.policy_id = p.id
    WHERE b.tenant_id = $1 AND b.year = $2
    ORDER BY e.last_name, e.first_name, p.name
  `, tenantID, year)
	if err != nil {
		return nil, dependency("balance report", err)
	}
	defer rows.Close()

	var out []BalanceReportRow
	for rows.Next() {
		var row BalanceReportRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.PolicyName, &row.Year, &row.Entitlement, &row.DaysTaken); err != nil {
			return nil, dependency("scan report row", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) AdjustBalance(ctx context.Context, tenantID, employeeID, policyID string, year int, delta float64, reason, actorID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return dependency("begin adjustment", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (tenant_id, employee_id, policy_id, year, days_taken)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (employee_id, policy_id, year)
    DO UPDATE SET days_taken = leave_balances.days_taken + EXCLUDED.days_taken, updated_at = now()
  `, tenantID, employeeID, policyID, year, delta); err != nil {
		return dependency("apply adjustment", err)
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_balance_adjustments (tenant_id, employee_id, policy_id, year, amount, reason, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, tenantID, employeeID, policyID, year, delta, reason, actorID); err != nil {
		return dependency("record adjustment", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return dependency("commit adjustment", err)
	}
	return nil
}
