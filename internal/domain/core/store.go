package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateEmployee(ctx context.Context, tenantID string, emp Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, manager_id, first_name, last_name, email, department, title, status, start_date)
    VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, $6, $7, $8, $9, $10)
    RETURNING id
  `, tenantID, emp.UserID, emp.ManagerID, emp.FirstName, emp.LastName, emp.Email, emp.Department, emp.Title, StatusActive, emp.StartDate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) EmployeeByID(ctx context.Context, tenantID, employeeID string) (Employee, error) {
	var emp Employee
	var userID, managerID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, manager_id, first_name, last_name, email, department, title, status, start_date, created_at
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&emp.ID, &userID, &managerID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Department, &emp.Title, &emp.Status, &emp.StartDate, &emp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	if userID != nil {
		emp.UserID = *userID
	}
	if managerID != nil {
		emp.ManagerID = *managerID
	}
	return emp, nil
}

// ListEmployees lists the tenant's employees, optionally narrowed to a
// single status (active or terminated).
func (s *Store) ListEmployees(ctx context.Context, tenantID, status string, limit, offset int) ([]Employee, int, error) {
	countQuery := "SELECT COUNT(1) FROM employees WHERE tenant_id = $1"
	query := `
    SELECT id, user_id, manager_id, first_name, last_name, email, department, title, status, start_date, created_at
    FROM employees
    WHERE tenant_id = $1
  `
	args := []any{tenantID}
	if status != "" {
		countQuery += " AND status = $2"
		query += " AND status = $2"
		args = append(args, status)
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY last_name, first_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		var userID, managerID *string
		if err := rows.Scan(&emp.ID, &userID, &managerID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Department, &emp.Title, &emp.Status, &emp.StartDate, &emp.CreatedAt); err != nil {
			return nil, 0, err
		}
		if userID != nil {
			emp.UserID = *userID
		}
		if managerID != nil {
			emp.ManagerID = *managerID
		}
		employees = append(employees, emp)
	}
	return employees, total, rows.Err()
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2", tenantID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// IsManagerOf reports whether managerEmployeeID directly manages employeeID.
func (s *Store) IsManagerOf(ctx context.Context, tenantID, managerEmployeeID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE tenant_id = $1 AND id = $2 AND manager_id = $3
  `, tenantID, employeeID, managerEmployeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ManagerForEmployee resolves the direct manager's user id and email,
// used to route approval notifications. Both come back empty when the
// employee has no manager assigned.
func (s *Store) ManagerForEmployee(ctx context.Context, tenantID, employeeID string) (string, string, error) {
	var userID *string
	var email string
	err := s.DB.QueryRow(ctx, `
    SELECT m.user_id, m.email
    FROM employees e
    JOIN employees m ON e.manager_id = m.id
    WHERE e.tenant_id = $1 AND e.id = $2
  `, tenantID, employeeID).Scan(&userID, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	uid := ""
	if userID != nil {
		uid = *userID
	}
	return uid, email, nil
}

func (s *Store) EmployeeUserEmail(ctx context.Context, tenantID, employeeID string) (string, string, error) {
	var userID *string
	var email string
	err := s.DB.QueryRow(ctx, `
    SELECT user_id, email
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&userID, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrEmployeeNotFound
	}
	if err != nil {
		return "", "", err
	}
	uid := ""
	if userID != nil {
		uid = *userID
	}
	return uid, email, nil
}
