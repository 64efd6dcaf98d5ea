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

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create inserts m and fills m.ID and m.CreatedAt from the database.
func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	defer logger.DeferLogDuration("message.Create", time.Now())()
	err := querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO messages (chat_id, sender_id, msg_type, content, file_url, file_name)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		m.ChatID, m.SenderID, string(m.Type), m.Content, m.FileURL, m.FileName,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("messageRepo.Create: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	defer logger.DeferLogDuration("message.GetByID", time.Now())()
	m := &model.Message{}
	err := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT id, chat_id, sender_id, msg_type, content, file_url, file_name, created_at
		 FROM messages WHERE id = $1`, id,
	).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Type, &m.Content, &m.FileURL, &m.FileName, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("messageRepo.GetByID: %w", err)
	}
	return m, nil
}

// GetHistory returns the whole chat ascending by (created_at, id) as seen by viewerID.
func (r *MessageRepository) GetHistory(ctx context.Context, chatID, viewerID int64) ([]model.MessageView, error) {
	defer logger.DeferLogDuration("message.GetHistory", time.Now())()
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT m.id, m.sender_id, u.full_name, u.avatar_url, m.msg_type, m.content,
		        m.file_url, m.file_name, m.created_at, m.sender_id = $2
		 FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 WHERE m.chat_id = $1
		 ORDER BY m.created_at, m.id`,
		chatID, viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("messageRepo.GetHistory query: %w", err)
	}
	defer rows.Close()

	list := make([]model.MessageView, 0, 64)
	for rows.Next() {
		var v model.MessageView
		if err := rows.Scan(&v.ID, &v.SenderID, &v.SenderName, &v.SenderAvatar, &v.Type, &v.Content,
			&v.FileURL, &v.FileName, &v.CreatedAt, &v.IsMine); err != nil {
			return nil, fmt.Errorf("messageRepo.GetHistory scan: %w", err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messageRepo.GetHistory rows: %w", err)
	}
	return list, nil
}
