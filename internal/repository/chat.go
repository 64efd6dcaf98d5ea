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

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

// InsertPrivate creates the private chat for key unless one exists.
// It returns ErrNotFound when another transaction already owns the key.
func (r *ChatRepository) InsertPrivate(ctx context.Context, key string, createdBy int64) (int64, error) {
	defer logger.DeferLogDuration("chat.InsertPrivate", time.Now())()
	var id int64
	err := querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO chats (chat_type, created_by, private_key)
		 VALUES ('private', $1, $2)
		 ON CONFLICT (private_key) DO NOTHING
		 RETURNING id`,
		createdBy, key,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("chatRepo.InsertPrivate: %w", err)
	}
	return id, nil
}

func (r *ChatRepository) FindByPrivateKey(ctx context.Context, key string) (int64, error) {
	defer logger.DeferLogDuration("chat.FindByPrivateKey", time.Now())()
	var id int64
	err := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT id FROM chats WHERE private_key = $1`, key,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("chatRepo.FindByPrivateKey: %w", err)
	}
	return id, nil
}

func (r *ChatRepository) CreateGroup(ctx context.Context, title string, createdBy int64) (int64, error) {
	defer logger.DeferLogDuration("chat.CreateGroup", time.Now())()
	var id int64
	err := querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO chats (chat_type, title, created_by) VALUES ('group', $1, $2) RETURNING id`,
		title, createdBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("chatRepo.CreateGroup: %w", err)
	}
	return id, nil
}

func (r *ChatRepository) GetByID(ctx context.Context, id int64) (*model.Chat, error) {
	defer logger.DeferLogDuration("chat.GetByID", time.Now())()
	c := &model.Chat{}
	err := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT id, chat_type, title, avatar_url, created_by, created_at, private_key
		 FROM chats WHERE id = $1`, id,
	).Scan(&c.ID, &c.ChatType, &c.Title, &c.AvatarURL, &c.CreatedBy, &c.CreatedAt, &c.PrivateKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("chatRepo.GetByID: %w", err)
	}
	return c, nil
}

// AddMembers inserts userIDs with role; existing memberships are left untouched.
func (r *ChatRepository) AddMembers(ctx context.Context, chatID int64, userIDs []int64, role model.MemberRole) error {
	defer logger.DeferLogDuration("chat.AddMembers", time.Now())()
	_, err := querier(ctx, r.pool).Exec(ctx,
		`INSERT INTO chat_members (chat_id, user_id, member_role)
		 SELECT $1, u, $3 FROM unnest($2::bigint[]) AS u
		 ON CONFLICT DO NOTHING`,
		chatID, userIDs, string(role),
	)
	if err != nil {
		return fmt.Errorf("chatRepo.AddMembers: %w", err)
	}
	return nil
}

func (r *ChatRepository) GetMembers(ctx context.Context, chatID int64) ([]model.ChatMember, error) {
	defer logger.DeferLogDuration("chat.GetMembers", time.Now())()
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT chat_id, user_id, member_role, joined_at
		 FROM chat_members WHERE chat_id = $1
		 ORDER BY user_id`, chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("chatRepo.GetMembers query: %w", err)
	}
	defer rows.Close()

	members := make([]model.ChatMember, 0, 8)
	for rows.Next() {
		var m model.ChatMember
		if err := rows.Scan(&m.ChatID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("chatRepo.GetMembers scan: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatRepo.GetMembers rows: %w", err)
	}
	return members, nil
}

// Membership reports whether the chat exists and whether userID belongs to it.
func (r *ChatRepository) Membership(ctx context.Context, chatID, userID int64) (exists, member bool, err error) {
	defer logger.DeferLogDuration("chat.Membership", time.Now())()
	err = querier(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM chats WHERE id = $1),
		        EXISTS(SELECT 1 FROM chat_members WHERE chat_id = $1 AND user_id = $2)`,
		chatID, userID,
	).Scan(&exists, &member)
	if err != nil {
		return false, false, fmt.Errorf("chatRepo.Membership: %w", err)
	}
	return exists, member, nil
}
