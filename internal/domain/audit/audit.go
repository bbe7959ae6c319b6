package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Details    json.RawMessage `json:"details,omitempty"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, details any) error {
	var detailsJSON []byte
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (tenant_id, actor_user_id, action, entity_type, entity_id, details_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, tenantID, actorID, action, entityType, entityID, detailsJSON, requestID, ip)
	return err
}

func (s *Service) List(ctx context.Context, tenantID, action string, limit, offset int) ([]Event, error) {
	query := `
    SELECT id, actor_user_id, action, entity_type, entity_id, request_id, ip, created_at, details_json
    FROM audit_events
    WHERE tenant_id = $1
  `
	args := []any{tenantID}
	if action != "" {
		query += " AND action = $2"
		args = append(args, action)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		// actor_user_id is nullable; seed-time events have no actor.
		var actorID *string
		if err := rows.Scan(&evt.ID, &actorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &evt.Details); err != nil {
			return nil, err
		}
		if actorID != nil {
			evt.ActorID = *actorID
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
