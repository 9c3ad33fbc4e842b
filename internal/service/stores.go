package service

import (
	"context"
	"time"

	"chatlite/internal/domain"
)

type UsersStore interface {
	GetUser(ctx context.Context, userID string) (domain.User, bool, error)
	SearchUsers(ctx context.Context, q string) ([]domain.User, error)
}

type FriendsStore interface {
	SendFriendRequest(ctx context.Context, fromUserID, toUserID string) (domain.FriendRequest, error)
	SuggestedFriends(ctx context.Context, userID string) ([]domain.User, error)
	AddFriend(ctx context.Context, userID, friendID string) error
	Friends(ctx context.Context, userID string) ([]domain.User, error)
	OnlineFriends(ctx context.Context, userID string) ([]domain.User, error)
}

type ServersStore interface {
	CreateServer(ctx context.Context, name, ownerID string) (domain.Server, error)
	ListServers(ctx context.Context, userID string) ([]domain.Server, error)
	GetServer(ctx context.Context, serverID string) (domain.Server, bool, error)
	UpdateServer(ctx context.Context, serverID string, patch domain.ServerPatch) (domain.Server, error)
	DeleteServer(ctx context.Context, serverID string) error
	ListMembers(ctx context.Context, serverID string) ([]domain.User, error)
	CreateChannel(ctx context.Context, serverID, name string, typ domain.ChannelType) (domain.Channel, error)
	DeleteChannel(ctx context.Context, serverID, channelID string) error
	ListChannels(ctx context.Context, serverID string) ([]domain.Channel, error)
	GenerateInviteCode(ctx context.Context, serverID string) (string, error)
	JoinServer(ctx context.Context, inviteCode, userID string) (domain.Server, error)
}

type MessagesStore interface {
	ListChannelMessages(ctx context.Context, channelID string) ([]domain.Message, error)
	AddMessage(ctx context.Context, channelID, content, authorID string) (domain.Message, error)
}

// SocialStore is the full contract both backends implement.
type SocialStore interface {
	UsersStore
	FriendsStore
	ServersStore
	MessagesStore
}

// simulateLatency blocks for d, or until ctx is done.
func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
