package postgres

import (
	"context"
	"errors"
	"fmt"

	"chatlite/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) SendFriendRequest(ctx context.Context, fromUserID, toUserID string) (domain.FriendRequest, error) {
	const q = `
		INSERT INTO friend_requests (id, from_user_id, to_user_id, status, created_at)
		VALUES ($1, $2, $3, 'pending', $4)
	`
	req := domain.FriendRequest{
		ID:         s.newID(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     domain.FriendRequestPending,
		CreatedAt:  s.now().UTC(),
	}
	_, err := s.pool.Exec(ctx, q, req.ID, req.FromUserID, req.ToUserID, req.CreatedAt)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" && pgerr.ConstraintName == "friend_requests_pair_uq" {
			return domain.FriendRequest{}, domain.ErrDuplicateRequest
		}
		return domain.FriendRequest{}, fmt.Errorf("create friend request: %w", err)
	}
	return req, nil
}

func (s *Store) SuggestedFriends(ctx context.Context, userID string) ([]domain.User, error) {
	const q = `
		SELECT u.id, u.username, u.discriminator, u.avatar, u.status
		FROM users u
		WHERE u.id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM friend_requests f
			WHERE (f.from_user_id = $1 AND f.to_user_id = u.id)
			   OR (f.from_user_id = u.id AND f.to_user_id = $1)
		  )
		ORDER BY u.seq ASC
	`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list suggested friends: %w", err)
	}
	out, err := scanUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("list suggested friends: %w", err)
	}
	return out, nil
}

func (s *Store) AddFriend(ctx context.Context, userID, friendID string) error {
	const q = `
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, q, userID, friendID); err != nil {
		return fmt.Errorf("add friend: %w", err)
	}
	return nil
}

func (s *Store) Friends(ctx context.Context, userID string) ([]domain.User, error) {
	return s.listFriends(ctx, userID, "")
}

func (s *Store) OnlineFriends(ctx context.Context, userID string) ([]domain.User, error) {
	return s.listFriends(ctx, userID, domain.PresenceOnline)
}

func (s *Store) listFriends(ctx context.Context, userID string, presence domain.Presence) ([]domain.User, error) {
	const q = `
		SELECT u.id, u.username, u.discriminator, u.avatar, u.status
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1 AND ($2 = '' OR u.status = $2)
		ORDER BY u.seq ASC
	`
	rows, err := s.pool.Query(ctx, q, userID, string(presence))
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	out, err := scanUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return out, nil
}
