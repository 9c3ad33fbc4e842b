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
	maxServerNameLen  = 100
	maxChannelNameLen = 100
)

type ServersService struct {
	Store ServersStore
}

func (s *ServersService) Create(ctx context.Context, ownerID, name string) (srv domain.Server, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("create_server", start, err) }()

	name, err = cleanName("name", name, maxServerNameLen)
	if err != nil {
		return domain.Server{}, err
	}
	return s.Store.CreateServer(ctx, name, ownerID)
}

func (s *ServersService) List(ctx context.Context, userID string) ([]domain.Server, error) {
	return s.Store.ListServers(ctx, userID)
}

func (s *ServersService) Get(ctx context.Context, serverID string) (domain.Server, error) {
	srv, ok, err := s.Store.GetServer(ctx, serverID)
	if err != nil {
		return domain.Server{}, err
	}
	if !ok {
		return domain.Server{}, domain.ServerNotFound(serverID)
	}
	return srv, nil
}

func (s *ServersService) Update(ctx context.Context, actorID, serverID string, patch domain.ServerPatch) (srv domain.Server, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("update_server", start, err) }()

	if patch.Name != nil {
		name, err := cleanName("name", *patch.Name, maxServerNameLen)
		if err != nil {
			return domain.Server{}, err
		}
		patch.Name = &name
	}
	if patch.ImageURL != nil {
		u := strings.TrimSpace(*patch.ImageURL)
		patch.ImageURL = &u
	}
	if err := s.requireOwner(ctx, actorID, serverID); err != nil {
		return domain.Server{}, err
	}
	return s.Store.UpdateServer(ctx, serverID, patch)
}

func (s *ServersService) Delete(ctx context.Context, actorID, serverID string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("delete_server", start, err) }()

	if err := s.requireOwner(ctx, actorID, serverID); err != nil {
		return err
	}
	return s.Store.DeleteServer(ctx, serverID)
}

func (s *ServersService) Members(ctx context.Context, serverID string) ([]domain.User, error) {
	return s.Store.ListMembers(ctx, serverID)
}

func (s *ServersService) Channels(ctx context.Context, serverID string) ([]domain.Channel, error) {
	return s.Store.ListChannels(ctx, serverID)
}

func (s *ServersService) CreateChannel(ctx context.Context, serverID, name string, typ domain.ChannelType) (ch domain.Channel, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("create_channel", start, err) }()

	name, err = cleanName("name", name, maxChannelNameLen)
	if err != nil {
		return domain.Channel{}, err
	}
	if typ == "" {
		typ = domain.ChannelText
	}
	if !typ.Valid() {
		return domain.Channel{}, domain.NewValidationError(map[string]string{"type": "must be one of text, voice, announcement"})
	}
	return s.Store.CreateChannel(ctx, serverID, name, typ)
}

func (s *ServersService) DeleteChannel(ctx context.Context, serverID, channelID string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("delete_channel", start, err) }()

	return s.Store.DeleteChannel(ctx, serverID, channelID)
}

func (s *ServersService) Invite(ctx context.Context, serverID string) (string, error) {
	if _, err := s.Get(ctx, serverID); err != nil {
		return "", err
	}
	return s.Store.GenerateInviteCode(ctx, serverID)
}

func (s *ServersService) Join(ctx context.Context, inviteCode, userID string) (srv domain.Server, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("join_server", start, err) }()

	inviteCode = strings.ToUpper(strings.TrimSpace(inviteCode))
	if !domain.ValidInviteCode(inviteCode) {
		return domain.Server{}, domain.NewValidationError(map[string]string{"code": "must be 8 letters or digits"})
	}
	return s.Store.JoinServer(ctx, inviteCode, userID)
}

func (s *ServersService) requireOwner(ctx context.Context, actorID, serverID string) error {
	srv, err := s.Get(ctx, serverID)
	if err != nil {
		return err
	}
	if srv.OwnerID != actorID {
		return domain.ErrForbidden
	}
	return nil
}

func cleanName(field, name string, limit int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError(map[string]string{field: "required"})
	}
	if utf8.RuneCountInString(name) > limit {
		return "", domain.NewValidationError(map[string]string{field: "too long"})
	}
	return name, nil
}
