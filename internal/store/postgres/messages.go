package postgres

import (
	"context"
	"fmt"

	"chatlite/internal/domain"
)

func (s *Store) ListChannelMessages(ctx context.Context, channelID string) ([]domain.Message, error) {
	const q = `
		SELECT id, content, author_id, channel_id, created_at
		FROM messages
		WHERE channel_id = $1
		ORDER BY seq ASC
	`
	rows, err := s.pool.Query(ctx, q, channelID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.AuthorID, &m.ChannelID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

func (s *Store) AddMessage(ctx context.Context, channelID, content, authorID string) (domain.Message, error) {
	const q = `
		INSERT INTO messages (id, channel_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	m := domain.Message{
		ID:        s.newID(),
		Content:   content,
		AuthorID:  authorID,
		ChannelID: channelID,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.pool.Exec(ctx, q, m.ID, m.ChannelID, m.AuthorID, m.Content, m.CreatedAt); err != nil {
		return domain.Message{}, fmt.Errorf("add message: %w", err)
	}
	return m, nil
}
