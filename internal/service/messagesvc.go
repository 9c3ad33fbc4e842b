package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"chatlite/internal/domain"
	"chatlite/internal/metrics"
)

const maxMessageLen = 2000

// Publisher fans a stored message out to live subscribers of its channel.
type Publisher interface {
	Publish(channelID string, msg domain.Message)
}

type MessagesService struct {
	Store     MessagesStore
	Publisher Publisher
}

func (s *MessagesService) List(ctx context.Context, channelID string) ([]domain.Message, error) {
	return s.Store.ListChannelMessages(ctx, channelID)
}

func (s *MessagesService) Send(ctx context.Context, channelID, authorID, content string) (msg domain.Message, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("add_message", start, err) }()

	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, domain.NewValidationError(map[string]string{"content": "required"})
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return domain.Message{}, domain.NewValidationError(map[string]string{"content": "too long"})
	}

	msg, err = s.Store.AddMessage(ctx, channelID, content, authorID)
	if err != nil {
		return domain.Message{}, err
	}
	if s.Publisher != nil {
		s.Publisher.Publish(channelID, msg)
	}
	return msg, nil
}
