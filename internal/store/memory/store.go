// Package memory is the in-process SocialStore backend. It holds every
// collection in maps and slices guarded by a single RWMutex.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"chatlite/internal/domain"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	users    []domain.User
	requests []domain.FriendRequest
	servers  []*domain.Server
	friends  map[string][]string
	messages map[string][]domain.Message
	// detached holds ids of channels deleted from a server whose messages
	// are still kept, so DeleteServer can purge them too.
	detached map[string][]string

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock overrides the timestamp source for requests and messages.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs overrides the identifier generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(opts ...Option) *Store {
	s := &Store{
		friends:  make(map[string][]string),
		messages: make(map[string][]domain.Message),
		detached: make(map[string][]string),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SeedUsers(_ context.Context, users []domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if u.ID == "" {
			u.ID = s.newID()
		}
		s.users = append(s.users, u)
	}
	return nil
}

// SeedServer stores srv as-is, filling in missing ids.
func (s *Store) SeedServer(_ context.Context, srv domain.Server) (domain.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	srv = srv.Clone()
	if srv.ID == "" {
		srv.ID = s.newID()
	}
	if !srv.HasMember(srv.OwnerID) {
		srv.Members = append([]string{srv.OwnerID}, srv.Members...)
	}
	for i := range srv.Channels {
		if srv.Channels[i].ID == "" {
			srv.Channels[i].ID = s.newID()
		}
		srv.Channels[i].ServerID = srv.ID
	}
	s.servers = append(s.servers, &srv)
	return srv.Clone(), nil
}

// Empty reports whether nothing has been seeded yet.
func (s *Store) Empty(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users) == 0 && len(s.servers) == 0, nil
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.userByID(userID)
	return u, ok, nil
}

func (s *Store) SearchUsers(_ context.Context, q string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.User{}
	for _, u := range s.users {
		if u.MatchesQuery(q) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) SendFriendRequest(_ context.Context, fromUserID, toUserID string) (domain.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.Links(fromUserID, toUserID) {
			return domain.FriendRequest{}, domain.ErrDuplicateRequest
		}
	}
	req := domain.FriendRequest{
		ID:         s.newID(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     domain.FriendRequestPending,
		CreatedAt:  s.now(),
	}
	s.requests = append(s.requests, req)
	return req, nil
}

func (s *Store) SuggestedFriends(_ context.Context, userID string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.User{}
	for _, u := range s.users {
		if u.ID == userID || s.hasRequest(userID, u.ID) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Store) AddFriend(_ context.Context, userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[userID] = appendUnique(s.friends[userID], friendID)
	s.friends[friendID] = appendUnique(s.friends[friendID], userID)
	return nil
}

func (s *Store) Friends(_ context.Context, userID string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.friendsOf(userID, ""), nil
}

func (s *Store) OnlineFriends(_ context.Context, userID string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.friendsOf(userID, domain.PresenceOnline), nil
}

func (s *Store) CreateServer(_ context.Context, name, ownerID string) (domain.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	srv := &domain.Server{
		ID:       s.newID(),
		Name:     name,
		OwnerID:  ownerID,
		Members:  []string{ownerID},
		Channels: []domain.Channel{},
	}
	s.servers = append(s.servers, srv)
	return srv.Clone(), nil
}

func (s *Store) ListServers(_ context.Context, userID string) ([]domain.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Server{}
	for _, srv := range s.servers {
		if srv.HasMember(userID) {
			out = append(out, srv.Clone())
		}
	}
	return out, nil
}

func (s *Store) GetServer(_ context.Context, serverID string) (domain.Server, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, srv := s.serverByID(serverID)
	if srv == nil {
		return domain.Server{}, false, nil
	}
	return srv.Clone(), true, nil
}

func (s *Store) UpdateServer(_ context.Context, serverID string, patch domain.ServerPatch) (domain.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, srv := s.serverByID(serverID)
	if srv == nil {
		return domain.Server{}, domain.ServerNotFound(serverID)
	}
	patch.Apply(srv)
	return srv.Clone(), nil
}

func (s *Store) DeleteServer(_ context.Context, serverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, srv := s.serverByID(serverID)
	if srv == nil {
		return domain.ServerNotFound(serverID)
	}
	for _, ch := range srv.Channels {
		delete(s.messages, ch.ID)
	}
	for _, channelID := range s.detached[serverID] {
		delete(s.messages, channelID)
	}
	delete(s.detached, serverID)
	s.servers = slices.Delete(s.servers, idx, idx+1)
	return nil
}

func (s *Store) ListMembers(_ context.Context, serverID string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.User{}
	_, srv := s.serverByID(serverID)
	if srv == nil {
		return out, nil
	}
	for _, id := range srv.Members {
		if u, ok := s.userByID(id); ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) CreateChannel(_ context.Context, serverID, name string, typ domain.ChannelType) (domain.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, srv := s.serverByID(serverID)
	if srv == nil {
		return domain.Channel{}, domain.ServerNotFound(serverID)
	}
	ch := domain.Channel{
		ID:       s.newID(),
		Name:     name,
		Type:     typ,
		ServerID: serverID,
	}
	srv.Channels = append(srv.Channels, ch)
	return ch, nil
}

// DeleteChannel detaches the channel from its server. Messages posted to it are kept.
func (s *Store) DeleteChannel(_ context.Context, serverID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, srv := s.serverByID(serverID)
	if srv == nil {
		return domain.ServerNotFound(serverID)
	}
	for i, ch := range srv.Channels {
		if ch.ID == channelID {
			srv.Channels = slices.Delete(srv.Channels, i, i+1)
			s.detached[serverID] = append(s.detached[serverID], channelID)
			return nil
		}
	}
	return domain.ChannelNotFound(channelID)
}

func (s *Store) ListChannels(_ context.Context, serverID string) ([]domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, srv := s.serverByID(serverID)
	if srv == nil {
		return []domain.Channel{}, nil
	}
	return append([]domain.Channel{}, srv.Channels...), nil
}

func (s *Store) ListChannelMessages(_ context.Context, channelID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Message{}, s.messages[channelID]...), nil
}

func (s *Store) AddMessage(_ context.Context, channelID, content, authorID string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := domain.Message{
		ID:        s.newID(),
		Content:   content,
		AuthorID:  authorID,
		ChannelID: channelID,
		CreatedAt: s.now(),
	}
	s.messages[channelID] = append(s.messages[channelID], msg)
	return msg, nil
}

// GenerateInviteCode returns a random code. Codes are not recorded anywhere.
func (s *Store) GenerateInviteCode(_ context.Context, _ string) (string, error) {
	return domain.NewInviteCode(), nil
}

// JoinServer adds userID to the first server it is not yet a member of.
// The invite code is not resolved to a server.
func (s *Store) JoinServer(_ context.Context, _ string, userID string) (domain.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, srv := range s.servers {
		if srv.HasMember(userID) {
			continue
		}
		srv.Members = append(srv.Members, userID)
		return srv.Clone(), nil
	}
	return domain.Server{}, domain.ErrNoJoinableServer
}

func (s *Store) userByID(id string) (domain.User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

func (s *Store) serverByID(id string) (int, *domain.Server) {
	for i, srv := range s.servers {
		if srv.ID == id {
			return i, srv
		}
	}
	return -1, nil
}

func (s *Store) hasRequest(a, b string) bool {
	for _, req := range s.requests {
		if req.Links(a, b) {
			return true
		}
	}
	return false
}

func (s *Store) friendsOf(userID string, presence domain.Presence) []domain.User {
	ids := s.friends[userID]
	out := []domain.User{}
	for _, u := range s.users {
		if !contains(ids, u.ID) {
			continue
		}
		if presence != "" && u.Status != presence {
			continue
		}
		out = append(out, u)
	}
	return out
}

func appendUnique(ss []string, v string) []string {
	if contains(ss, v) {
		return ss
	}
	return append(ss, v)
}

func contains(ss []string, needle string) bool {
	for _, s := range ss {
		if s == needle {
			return true
		}
	}
	return false
}
