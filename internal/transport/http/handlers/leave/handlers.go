package leavehandler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"leavedesk/internal/domain/auth"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/domain/notifications"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
)

// EmployeeDirectory is the slice of the employee store the leave
// endpoints need: resolving the caller's employee record and walking
// the reporting line.
type EmployeeDirectory interface {
	EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error)
	IsManagerOf(ctx context.Context, tenantID, managerEmployeeID, employeeID string) (bool, error)
	ManagerForEmployee(ctx context.Context, tenantID, employeeID string) (string, string, error)
	EmployeeUserEmail(ctx context.Context, tenantID, employeeID string) (string, string, error)
}

type Notifier interface {
	Notify(ctx context.Context, tenantID, userID, email, kind, subject, body string) error
}

type AuditRecorder interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, details any) error
}

type Handler struct {
	Service *leave.Service
	Core    EmployeeDirectory
	Perms   middleware.PermissionStore
	Notify  Notifier
	Audit   AuditRecorder
}

func NewHandler(service *leave.Service, directory EmployeeDirectory, perms middleware.PermissionStore, notify Notifier, auditRec AuditRecorder) *Handler {
	return &Handler{Service: service, Core: directory, Perms: perms, Notify: notify, Audit: auditRec}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/policies", h.handleListPolicies)
		r.With(middleware.RequirePermission(auth.PermLeaveConfigure, h.Perms)).Post("/policies", h.handleCreatePolicy)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequirePermission(auth.PermLeaveConfigure, h.Perms)).Post("/holidays", h.handleCreateHoliday)
		r.With(middleware.RequirePermission(auth.PermLeaveConfigure, h.Perms)).Delete("/holidays/{holidayID}", h.handleDeleteHoliday)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balances", h.handleListBalances)
		r.With(middleware.RequirePermission(auth.PermLeaveConfigure, h.Perms)).Post("/balances/adjust", h.handleAdjustBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests", h.handleListRequests)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/requests", h.handleSubmitRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Post("/encashment/quote", h.handleEncashmentQuote)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/reports/balances.csv", h.handleBalanceReportCSV)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/reports/balances.pdf", h.handleBalanceReportPDF)
	})
}

// respondError maps the leave error taxonomy onto HTTP statuses. Nothing
// domain-level leaks as a 500 unless it is genuinely unknown.
func respondError(w http.ResponseWriter, err error, requestID string) {
	var validationErr *leave.ValidationError
	var notFoundErr *leave.NotFoundError
	var dependencyErr *leave.DependencyError
	switch {
	case errors.As(err, &validationErr):
		api.Fail(w, http.StatusBadRequest, "validation_error", validationErr.Reason, requestID)
	case errors.As(err, &notFoundErr):
		api.Fail(w, http.StatusNotFound, "not_found", notFoundErr.Error(), requestID)
	case errors.As(err, &dependencyErr):
		slog.Error("leave dependency failure", "op", dependencyErr.Op, "err", dependencyErr.Err)
		api.Fail(w, http.StatusBadGateway, "dependency_failed", "a backing service failed", requestID)
	default:
		slog.Error("leave operation failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	policies, err := h.Service.ListPolicies(r.Context(), user.TenantID)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, policies, middleware.GetRequestID(r.Context()))
}

type policyPayload struct {
	Name             string `json:"name"`
	TotalDaysPerYear int    `json:"totalDaysPerYear"`
	AccrualFrequency string `json:"accrualFrequency"`
	CarryForwardDays int    `json:"carryForwardLimit"`
	IsEncashable     bool   `json:"isEncashable"`
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload policyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.CreatePolicy(r.Context(), user.TenantID, leave.Policy{
		Name:             payload.Name,
		TotalDaysPerYear: payload.TotalDaysPerYear,
		AccrualFrequency: payload.AccrualFrequency,
		CarryForwardDays: payload.CarryForwardDays,
		IsEncashable:     payload.IsEncashable,
	})
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "leave.policy.create", "leave_policy", id, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			year = parsed
		}
	}
	holidays, err := h.Service.ListHolidays(r.Context(), user.TenantID, year)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, holidays, middleware.GetRequestID(r.Context()))
}

type holidayPayload struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	date, _ := v.Date("date", payload.Date)
	v.Required("name", payload.Name, "holiday name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateHoliday(r.Context(), user.TenantID, date, payload.Name)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "leave.holiday.create", "holiday", id, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	holidayID := chi.URLParam(r, "holidayID")
	if err := h.Service.DeleteHoliday(r.Context(), user.TenantID, holidayID); err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "leave.holiday.delete", "holiday", holidayID, nil)
	api.Success(w, map[string]string{"id": holidayID}, middleware.GetRequestID(r.Context()))
}

// resolveEmployeeScope narrows a listing to the caller's own employee
// record when the caller is a plain employee; other roles may pass an
// explicit employeeId filter or see everyone.
func (h *Handler) resolveEmployeeScope(w http.ResponseWriter, r *http.Request, user auth.UserContext) (string, bool) {
	if user.RoleName == auth.RoleEmployee {
		employeeID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "no employee record for user", middleware.GetRequestID(r.Context()))
			return "", false
		}
		return employeeID, true
	}
	return r.URL.Query().Get("employeeId"), true
}

func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID, ok := h.resolveEmployeeScope(w, r, user)
	if !ok {
		return
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			year = parsed
		}
	}

	balances, err := h.Service.ListBalances(r.Context(), user.TenantID, employeeID, year)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

type adjustPayload struct {
	EmployeeID string  `json:"employeeId"`
	PolicyID   string  `json:"policyId"`
	Year       int     `json:"year"`
	Amount     float64 `json:"amount"`
	Reason     string  `json:"reason"`
}

func (h *Handler) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload adjustPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("policyId", payload.PolicyID, "policy id is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	err := h.Service.AdjustBalance(r.Context(), user.TenantID, payload.EmployeeID, payload.PolicyID, payload.Year, payload.Amount, payload.Reason, user.UserID)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "leave.balance.adjust", "leave_balance", payload.EmployeeID, payload)
	api.Success(w, map[string]string{"status": "adjusted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	scopeEmployeeID := ""
	if user.RoleName == auth.RoleEmployee {
		employeeID, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "no employee record for user", middleware.GetRequestID(r.Context()))
			return
		}
		scopeEmployeeID = employeeID
	} else if raw := r.URL.Query().Get("employeeId"); raw != "" {
		scopeEmployeeID = raw
	}

	page := shared.ParsePagination(r, 25, 100)
	requests, total, err := h.Service.ListRequests(r.Context(), user.TenantID, scopeEmployeeID, page.Limit, page.Offset)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"items": requests, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	req, err := h.Service.GetRequest(r.Context(), user.TenantID, chi.URLParam(r, "requestID"))
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if user.RoleName == auth.RoleEmployee {
		employeeID, lookupErr := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if lookupErr != nil || employeeID != req.EmployeeID {
			api.Fail(w, http.StatusForbidden, "forbidden", "not your leave request", middleware.GetRequestID(r.Context()))
			return
		}
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

type submitPayload struct {
	EmployeeID   string `json:"employeeId"`
	LeaveType    string `json:"leaveType"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	StartSession string `json:"startSession"`
	EndSession   string `json:"endSession"`
	Reason       string `json:"reason"`
}

func (h *Handler) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("leaveType", payload.LeaveType, "leave type is required")
	startDate, _ := v.Date("startDate", payload.StartDate)
	endDate, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", startDate, "endDate", endDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	// Employees submit for themselves; HR may submit on behalf of anyone.
	employeeID := payload.EmployeeID
	if user.RoleName != auth.RoleHR || employeeID == "" {
		resolved, err := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "no employee record for user", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = resolved
	}

	req, err := h.Service.Submit(r.Context(), user.TenantID, leave.SubmitInput{
		EmployeeID:   employeeID,
		PolicyName:   payload.LeaveType,
		StartDate:    startDate,
		EndDate:      endDate,
		StartSession: payload.StartSession,
		EndSession:   payload.EndSession,
		Reason:       payload.Reason,
	})
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "leave.request.submit", "leave_request", req.ID, payload)

	if managerUserID, managerEmail, err := h.Core.ManagerForEmployee(r.Context(), user.TenantID, employeeID); h.Notify != nil && err == nil && managerUserID != "" {
		subject := "Leave request pending approval"
		body := fmt.Sprintf("A leave request for %s to %s (%s, %.0f days) is awaiting your decision.",
			req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), payload.LeaveType, req.Days)
		if err := h.Notify.Notify(r.Context(), user.TenantID, managerUserID, managerEmail, notifications.KindLeaveSubmitted, subject, body); err != nil {
			slog.Warn("leave submit notification failed", "err", err)
		}
	}

	api.Created(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, target string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	req, err := h.Service.GetRequest(r.Context(), user.TenantID, requestID)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	// Managers can only decide for their own reports; HR can decide for
	// anyone. Both arrive here through the leave.approve permission.
	if user.RoleName == auth.RoleManager {
		selfEmployeeID, lookupErr := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if lookupErr != nil {
			api.Fail(w, http.StatusForbidden, "forbidden", "no employee record for approver", middleware.GetRequestID(r.Context()))
			return
		}
		manages, lookupErr := h.Core.IsManagerOf(r.Context(), user.TenantID, selfEmployeeID, req.EmployeeID)
		if lookupErr != nil || !manages {
			api.Fail(w, http.StatusForbidden, "forbidden", "not the employee's manager", middleware.GetRequestID(r.Context()))
			return
		}
	}

	decided, err := h.Service.Decide(r.Context(), user.TenantID, requestID, target, user.UserID)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.recordAudit(r, user, "leave.request."+target, "leave_request", requestID, map[string]any{"days": decided.Days})

	if employeeUserID, employeeEmail, err := h.Core.EmployeeUserEmail(r.Context(), user.TenantID, decided.EmployeeID); h.Notify != nil && err == nil {
		kind := notifications.KindLeaveApproved
		subject := "Leave request approved"
		if target == leave.StatusRejected {
			kind = notifications.KindLeaveRejected
			subject = "Leave request rejected"
		}
		body := fmt.Sprintf("Your leave request for %s to %s was %s.",
			decided.StartDate.Format("2006-01-02"), decided.EndDate.Format("2006-01-02"), target)
		if err := h.Notify.Notify(r.Context(), user.TenantID, employeeUserID, employeeEmail, kind, subject, body); err != nil {
			slog.Warn("leave decision notification failed", "err", err)
		}
	}

	api.Success(w, decided, middleware.GetRequestID(r.Context()))
}

type encashmentPayload struct {
	EmployeeID string `json:"employeeId"`
	PolicyName string `json:"policyName"`
	Year       int    `json:"year"`
	DailyRate  string `json:"dailyRate"`
}

func (h *Handler) handleEncashmentQuote(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload encashmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	dailyRate, err := decimal.NewFromString(payload.DailyRate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "dailyRate must be a decimal number", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := payload.EmployeeID
	if user.RoleName == auth.RoleEmployee || employeeID == "" {
		resolved, lookupErr := h.Core.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
		if lookupErr != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "no employee record for user", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = resolved
	}

	quote, err := h.Service.QuoteEncashment(r.Context(), user.TenantID, employeeID, payload.PolicyName, payload.Year, dailyRate)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, quote, middleware.GetRequestID(r.Context()))
}

func (h *Handler) reportRows(w http.ResponseWriter, r *http.Request) ([]leave.BalanceReportRow, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			year = parsed
		}
	}

	rows, err := h.Service.BalanceReport(r.Context(), user.TenantID, year)
	if err != nil {
		respondError(w, err, middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return rows, true
}

func (h *Handler) handleBalanceReportCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.reportRows(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leave-balances.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"employee_id", "employee_name", "policy", "year", "entitlement", "days_taken"})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.EmployeeID,
			row.EmployeeName,
			row.PolicyName,
			strconv.Itoa(row.Year),
			strconv.Itoa(row.Entitlement),
			strconv.FormatFloat(row.DaysTaken, 'f', 1, 64),
		})
	}
	writer.Flush()
}

func (h *Handler) handleBalanceReportPDF(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.reportRows(w, r)
	if !ok {
		return
	}

	pdf := buildBalanceReportPDF(rows)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="leave-balances.pdf"`)
	if err := pdf.Output(w); err != nil {
		slog.Warn("balance report pdf write failed", "err", err)
	}
}

func (h *Handler) recordAudit(r *http.Request, user auth.UserContext, action, entityType, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
