package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/model"
)

const userCols = `id, phone, full_name, avatar_url, status, is_online, created_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// scanUser follows the order of userCols.
func scanUser(s interface{ Scan(dest ...any) error }, u *model.User) error {
	return s.Scan(&u.ID, &u.Phone, &u.FullName, &u.AvatarURL, &u.Status, &u.IsOnline, &u.CreatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	defer logger.DeferLogDuration("user.GetByID", time.Now())()
	u := &model.User{}
	row := querier(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return u, nil
}

// GetOrCreateByPhone returns the user with this phone, inserting one named fullName on first login.
func (r *UserRepository) GetOrCreateByPhone(ctx context.Context, phone, fullName string) (*model.User, error) {
	defer logger.DeferLogDuration("user.GetOrCreateByPhone", time.Now())()
	u := &model.User{}
	// DO UPDATE with a no-op keeps RETURNING populated on conflict.
	row := querier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO users (phone, full_name) VALUES ($1, $2)
		 ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		 RETURNING `+userCols,
		phone, fullName,
	)
	if err := scanUser(row, u); err != nil {
		return nil, fmt.Errorf("userRepo.GetOrCreateByPhone: %w", err)
	}
	return u, nil
}

func (r *UserRepository) SetOnline(ctx context.Context, userID int64, online bool) error {
	defer logger.DeferLogDuration("user.SetOnline", time.Now())()
	_, err := querier(ctx, r.pool).Exec(ctx, `UPDATE users SET is_online = $1 WHERE id = $2`, online, userID)
	if err != nil {
		return fmt.Errorf("userRepo.SetOnline: %w", err)
	}
	return nil
}

// likeEscaper makes %, _ and \ match literally in a LIKE pattern with ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByPhone returns users whose phone contains fragment as a substring.
func (r *UserRepository) SearchByPhone(ctx context.Context, fragment string, excludeID int64, limit int) ([]model.User, error) {
	defer logger.DeferLogDuration("user.SearchByPhone", time.Now())()
	pattern := "%" + likeEscaper.Replace(fragment) + "%"
	rows, err := querier(ctx, r.pool).Query(ctx,
		`SELECT `+userCols+` FROM users
		 WHERE phone LIKE $1 ESCAPE '\' AND id <> $2
		 ORDER BY id
		 LIMIT $3`,
		pattern, excludeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("userRepo.SearchByPhone query: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("userRepo.SearchByPhone scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("userRepo.SearchByPhone rows: %w", err)
	}
	return users, nil
}

// CountExisting returns how many of ids name an existing user. ids must be distinct.
func (r *UserRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	defer logger.DeferLogDuration("user.CountExisting", time.Now())()
	var n int
	err := querier(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ANY($1::bigint[])`, ids,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("userRepo.CountExisting: %w", err)
	}
	return n, nil
}
