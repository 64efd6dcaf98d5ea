package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizchat/internal/logger"
)

// unreadByUser matches messages m that user $1 did not send and has not read.
// Shared by UnreadCount and the chat list so both count the same rows.
const unreadByUser = `m.sender_id <> $1
   AND NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = m.id AND mr.user_id = $1)`

type ReadRepository struct {
	pool *pgxpool.Pool
}

func NewReadRepository(pool *pgxpool.Pool) *ReadRepository {
	return &ReadRepository{pool: pool}
}

// MarkRead is idempotent: a second mark keeps the first read_at.
func (r *ReadRepository) MarkRead(ctx context.Context, messageID, userID int64) error {
	defer logger.DeferLogDuration("read.MarkRead", time.Now())()
	_, err := querier(ctx, r.pool).Exec(ctx,
		`INSERT INTO message_reads (message_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		messageID, userID,
	)
	if err != nil {
		return fmt.Errorf("readRepo.MarkRead: %w", err)
	}
	return nil
}

// MarkChatRead marks every message of other senders in the chat and returns how many were newly marked.
func (r *ReadRepository) MarkChatRead(ctx context.Context, chatID, userID int64) (int64, error) {
	defer logger.DeferLogDuration("read.MarkChatRead", time.Now())()
	tag, err := querier(ctx, r.pool).Exec(ctx,
		`INSERT INTO message_reads (message_id, user_id)
		 SELECT m.id, $2 FROM messages m
		 WHERE m.chat_id = $1 AND m.sender_id <> $2
		 ON CONFLICT DO NOTHING`,
		chatID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("readRepo.MarkChatRead: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ReadRepository) UnreadCount(ctx context.Context, chatID, userID int64) (int64, error) {
	defer logger.DeferLogDuration("read.UnreadCount", time.Now())()
	var n int64
	err := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM messages m WHERE m.chat_id = $2 AND `+unreadByUser,
		userID, chatID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("readRepo.UnreadCount: %w", err)
	}
	return n, nil
}
