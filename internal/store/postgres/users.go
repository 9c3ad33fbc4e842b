package postgres

import (
	"context"
	"errors"
	"fmt"

	"chatlite/internal/domain"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, discriminator, avatar, status`

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	defer rows.Close()
	out := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Discriminator, &u.Avatar, &u.Status); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SeedUsers(ctx context.Context, users []domain.User) error {
	const q = `
		INSERT INTO users (id, username, discriminator, avatar, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, u := range users {
		if u.ID == "" {
			u.ID = s.newID()
		}
		batch.Queue(q, u.ID, u.Username, u.Discriminator, u.Avatar, string(u.Status))
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.User, bool, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var u domain.User
	err := s.pool.QueryRow(ctx, q, userID).Scan(&u.ID, &u.Username, &u.Discriminator, &u.Avatar, &u.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return u, true, nil
}

func (s *Store) SearchUsers(ctx context.Context, q string) ([]domain.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username ILIKE $1 OR (username || '#' || discriminator) ILIKE $1
		ORDER BY seq ASC
	`
	rows, err := s.pool.Query(ctx, query, likePattern(q))
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	out, err := scanUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return out, nil
}
