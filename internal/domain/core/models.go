package core

import "time"

type Employee struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	ManagerID  string    `json:"managerId,omitempty"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	Title      string    `json:"title,omitempty"`
	Status     string    `json:"status"`
	StartDate  time.Time `json:"startDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	StatusActive     = "active"
	StatusTerminated = "terminated"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusTerminated:
		return true
	}
	return false
}
