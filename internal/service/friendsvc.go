package service

import (
	"context"
	"strings"
	"time"

	"chatlite/internal/domain"
	"chatlite/internal/metrics"
)

type FriendsService struct {
	Users   UsersStore
	Friends FriendsStore
	Latency time.Duration
}

func (s *FriendsService) ListOverview(ctx context.Context, userID string) (domain.FriendsOverview, error) {
	friends, err := s.Friends.Friends(ctx, userID)
	if err != nil {
		return domain.FriendsOverview{}, err
	}
	out := domain.FriendsOverview{Friends: friends}
	for _, f := range friends {
		if f.Status == domain.PresenceOnline {
			out.Online++
		}
	}
	out.Offline = len(friends) - out.Online
	return out, nil
}

func (s *FriendsService) ListOnline(ctx context.Context, userID string) ([]domain.User, error) {
	return s.Friends.OnlineFriends(ctx, userID)
}

func (s *FriendsService) SendRequest(ctx context.Context, fromUserID, toUserID string) (fr domain.FriendRequest, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("send_friend_request", start, err) }()

	toUserID, err = s.checkTarget(ctx, fromUserID, toUserID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if err := simulateLatency(ctx, s.Latency); err != nil {
		return domain.FriendRequest{}, err
	}
	return s.Friends.SendFriendRequest(ctx, fromUserID, toUserID)
}

func (s *FriendsService) Suggested(ctx context.Context, userID string) (out []domain.User, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("suggested_friends", start, err) }()

	if err := simulateLatency(ctx, s.Latency); err != nil {
		return nil, err
	}
	return s.Friends.SuggestedFriends(ctx, userID)
}

func (s *FriendsService) Add(ctx context.Context, userID, friendID string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("add_friend", start, err) }()

	friendID, err = s.checkTarget(ctx, userID, friendID)
	if err != nil {
		return err
	}
	return s.Friends.AddFriend(ctx, userID, friendID)
}

func (s *FriendsService) checkTarget(ctx context.Context, userID, targetID string) (string, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return "", domain.NewValidationError(map[string]string{"user_id": "required"})
	}
	if targetID == userID {
		return "", domain.NewValidationError(map[string]string{"user_id": "cannot friend yourself"})
	}
	for _, id := range []string{userID, targetID} {
		_, ok, err := s.Users.GetUser(ctx, id)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domain.UserNotFound(id)
		}
	}
	return targetID, nil
}
