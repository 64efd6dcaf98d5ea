package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/model"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	defer logger.DeferLogDuration("session.Create", time.Now())()
	err := querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO sessions (id, user_id, token, device_info, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		s.ID, s.UserID, s.Token, s.DeviceInfo, s.ExpiresAt,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("sessionRepo.Create: %w", err)
	}
	return nil
}

// GetLiveByToken returns the session only while it has not expired.
func (r *SessionRepository) GetLiveByToken(ctx context.Context, token string) (*model.Session, error) {
	defer logger.DeferLogDuration("session.GetLiveByToken", time.Now())()
	s := &model.Session{}
	err := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT id, user_id, token, device_info, created_at, expires_at
		 FROM sessions WHERE token = $1 AND expires_at > now()`, token,
	).Scan(&s.ID, &s.UserID, &s.Token, &s.DeviceInfo, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.GetLiveByToken: %w", err)
	}
	return s, nil
}

// ListByUserID returns live sessions, newest first.
func (r *SessionRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Session, error) {
	defer logger.DeferLogDuration("session.ListByUserID", time.Now())()
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT id, user_id, device_info, created_at, expires_at
		 FROM sessions WHERE user_id = $1 AND expires_at > now()
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.ListByUserID: %w", err)
	}
	defer rows.Close()
	list := make([]model.Session, 0, 4)
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.DeviceInfo, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, fmt.Errorf("sessionRepo.ListByUserID scan: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
