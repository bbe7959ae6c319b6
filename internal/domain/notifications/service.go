package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	KindLeaveSubmitted = "leave.request.submitted"
	KindLeaveApproved  = "leave.request.approved"
	KindLeaveRejected  = "leave.request.rejected"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	DB     *pgxpool.Pool
	Mailer Mailer
	From   string
}

func New(db *pgxpool.Pool, mailer Mailer, from string) *Service {
	return &Service{DB: db, Mailer: mailer, From: from}
}

// Notify persists the in-app notification and sends email best-effort.
// A mail failure never fails the business operation that triggered it.
func (s *Service) Notify(ctx context.Context, tenantID, userID, email, kind, subject, body string) error {
	if userID == "" {
		return nil
	}
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO leave_notifications (tenant_id, user_id, kind, subject, body)
    VALUES ($1,$2,$3,$4,$5)
  `, tenantID, userID, kind, subject, body); err != nil {
		return err
	}

	if s.Mailer != nil && email != "" {
		if err := s.Mailer.Send(ctx, s.From, email, subject, body); err != nil {
			slog.Warn("notification email failed", "kind", kind, "err", err)
		}
	}
	return nil
}

func (s *Service) ListForUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, kind, subject, body, read, created_at
    FROM leave_notifications
    WHERE tenant_id = $1 AND user_id = $2
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, tenantID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Subject, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_notifications SET read = true
    WHERE tenant_id = $1 AND user_id = $2 AND id = $3
  `, tenantID, userID, notificationID)
	return err
}
