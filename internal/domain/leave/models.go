package leave

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	SessionFullDay    = "full_day"
	SessionFirstHalf  = "first_half"
	SessionSecondHalf = "second_half"
)

const (
	AccrualYearly    = "yearly"
	AccrualMonthly   = "monthly"
	AccrualQuarterly = "quarterly"
)

type Policy struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	TotalDaysPerYear int       `json:"totalDaysPerYear"`
	AccrualFrequency string    `json:"accrualFrequency"`
	CarryForwardDays int       `json:"carryForwardLimit"`
	IsEncashable     bool      `json:"isEncashable"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Balance struct {
	EmployeeID string    `json:"employeeId"`
	PolicyID   string    `json:"policyId"`
	Year       int       `json:"year"`
	DaysTaken  float64   `json:"daysTaken"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Request struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	PolicyID     string    `json:"policyId"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	StartSession string    `json:"startSession"`
	EndSession   string    `json:"endSession"`
	// Days is frozen at submission time and never recomputed.
	Days        float64   `json:"numberOfDays"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	ProcessedBy string    `json:"processedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BalanceReportRow is the denormalized shape used by the CSV and PDF
// balance exports.
type BalanceReportRow struct {
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	PolicyName   string  `json:"policyName"`
	Year         int     `json:"year"`
	Entitlement  int     `json:"entitlement"`
	DaysTaken    float64 `json:"daysTaken"`
}

type Holiday struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	Year int       `json:"year"`
	Name string    `json:"name"`
}

func ValidSession(session string) bool {
	switch session {
	case SessionFullDay, SessionFirstHalf, SessionSecondHalf:
		return true
	}
	return false
}

func ValidAccrualFrequency(freq string) bool {
	switch freq {
	case AccrualYearly, AccrualMonthly, AccrualQuarterly:
		return true
	}
	return false
}
