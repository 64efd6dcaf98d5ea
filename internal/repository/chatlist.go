package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/model"
)

type ChatListRepository struct {
	pool *pgxpool.Pool
}

func NewChatListRepository(pool *pgxpool.Pool) *ChatListRepository {
	return &ChatListRepository{pool: pool}
}

// listChatsSQL resolves private chat titles to the other member and picks the
// last message by (created_at, id).
const listChatsSQL = `
SELECT c.id, c.chat_type,
       CASE WHEN c.chat_type = 'private' THEN other.full_name ELSE c.title END,
       CASE WHEN c.chat_type = 'private' THEN other.avatar_url ELSE c.avatar_url END,
       last.content, last.created_at,
       (SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id AND ` + unreadByUser + `)
FROM chat_members cm
JOIN chats c ON c.id = cm.chat_id
LEFT JOIN LATERAL (
    SELECT u.full_name, u.avatar_url
    FROM chat_members om
    JOIN users u ON u.id = om.user_id
    WHERE om.chat_id = c.id AND om.user_id <> $1
    ORDER BY om.user_id
    LIMIT 1
) other ON c.chat_type = 'private'
LEFT JOIN LATERAL (
    SELECT m.content, m.created_at
    FROM messages m
    WHERE m.chat_id = c.id
    ORDER BY m.created_at DESC, m.id DESC
    LIMIT 1
) last ON true
WHERE cm.user_id = $1
ORDER BY last.created_at DESC NULLS LAST, c.id DESC`

func (r *ChatListRepository) ListForUser(ctx context.Context, userID int64) ([]model.ChatListItem, error) {
	defer logger.DeferLogDuration("chatlist.ListForUser", time.Now())()
	rows, err := querier(ctx, r.pool).Query(ctx, listChatsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("chatListRepo.ListForUser query: %w", err)
	}
	defer rows.Close()

	items := make([]model.ChatListItem, 0, 16)
	for rows.Next() {
		var it model.ChatListItem
		if err := rows.Scan(&it.ID, &it.Type, &it.Title, &it.AvatarURL,
			&it.LastMessage, &it.LastMessageTime, &it.UnreadCount); err != nil {
			return nil, fmt.Errorf("chatListRepo.ListForUser scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatListRepo.ListForUser rows: %w", err)
	}
	return items, nil
}
