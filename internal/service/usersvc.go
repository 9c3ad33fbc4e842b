package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"chatlite/internal/domain"
	"chatlite/internal/metrics"
)

const (
	minSearchLen       = 3
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

type UsersService struct {
	Store   UsersStore
	Latency time.Duration
}

func (s *UsersService) Get(ctx context.Context, userID string) (domain.User, error) {
	u, ok, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.UserNotFound(userID)
	}
	return u, nil
}

func (s *UsersService) Search(ctx context.Context, q string, limit int) (out []domain.User, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("search_users", start, err) }()

	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minSearchLen {
		return nil, domain.NewValidationError(map[string]string{"q": "must be at least 3 characters"})
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	if err := simulateLatency(ctx, s.Latency); err != nil {
		return nil, err
	}

	out, err = s.Store.SearchUsers(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
