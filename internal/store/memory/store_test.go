package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chatlite/internal/domain"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeded(t *testing.T, n int) (*Store, []domain.User) {
	t.Helper()
	faker := gofakeit.New(42)
	users := make([]domain.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, domain.User{
			ID:            fmt.Sprintf("u%d", i+1),
			Username:      faker.Username(),
			Discriminator: fmt.Sprintf("%04d", i+1),
			Status:        domain.PresenceOffline,
		})
	}
	s := New()
	require.NoError(t, s.SeedUsers(context.Background(), users))
	return s, users
}

func TestSendFriendRequestRejectsDuplicateEitherDirection(t *testing.T) {
	ctx := context.Background()
	s, users := newSeeded(t, 6)

	for i := 0; i < len(users); i++ {
		for j := i + 1; j < len(users); j++ {
			a, b := users[i].ID, users[j].ID

			req, err := s.SendFriendRequest(ctx, a, b)
			require.NoError(t, err)
			assert.Equal(t, domain.FriendRequestPending, req.Status)
			assert.Equal(t, a, req.FromUserID)
			assert.Equal(t, b, req.ToUserID)

			_, err = s.SendFriendRequest(ctx, a, b)
			assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
			_, err = s.SendFriendRequest(ctx, b, a)
			assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
		}
	}
}

func TestSendFriendRequestToSelfIsNotCheckedByStore(t *testing.T) {
	s, users := newSeeded(t, 1)
	_, err := s.SendFriendRequest(context.Background(), users[0].ID, users[0].ID)
	require.NoError(t, err)
}

func TestSuggestedFriendsExcludesSelfAndLinkedUsers(t *testing.T) {
	ctx := context.Background()
	s, users := newSeeded(t, 5)

	for _, u := range users {
		got, err := s.SuggestedFriends(ctx, u.ID)
		require.NoError(t, err)
		assert.NotContains(t, ids(got), u.ID)
		assert.Len(t, got, len(users)-1)
	}

	_, err := s.SendFriendRequest(ctx, users[2].ID, users[0].ID)
	require.NoError(t, err)

	got, err := s.SuggestedFriends(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{users[1].ID, users[3].ID, users[4].ID}, ids(got))

	got, err = s.SuggestedFriends(ctx, users[2].ID)
	require.NoError(t, err)
	assert.NotContains(t, ids(got), users[0].ID)
}

func TestSearchUsersMatchesUsernameAndTag(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SeedUsers(ctx, []domain.User{
		{ID: "2", Username: "NullByte", Discriminator: "0001", Status: domain.PresenceOnline},
		{ID: "5", Username: "GordonFreeman", Discriminator: "0004", Status: domain.PresenceIdle},
	}))

	got, err := s.SearchUsers(ctx, "nullb")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(got))

	got, err = s.SearchUsers(ctx, "freeman#0004")
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids(got))

	got, err = s.SearchUsers(ctx, "#000")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "5"}, ids(got))

	got, err = s.SearchUsers(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestAddFriendIsSymmetric(t *testing.T) {
	ctx := context.Background()
	s, users := newSeeded(t, 4)
	a, b := users[0].ID, users[3].ID

	require.NoError(t, s.AddFriend(ctx, a, b))
	require.NoError(t, s.AddFriend(ctx, b, a))

	got, err := s.Friends(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, ids(got))

	got, err = s.Friends(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, ids(got))
}

func TestOnlineFriendsFiltersPresence(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SeedUsers(ctx, []domain.User{
		{ID: "1", Username: "DemoUser", Discriminator: "0001", Status: domain.PresenceOnline},
		{ID: "2", Username: "NullByte", Discriminator: "0001", Status: domain.PresenceOnline},
		{ID: "4", Username: "blade_X", Discriminator: "0003", Status: domain.PresenceOffline},
		{ID: "6", Username: "Hummlan", Discriminator: "0005", Status: domain.PresenceDND},
	}))
	for _, id := range []string{"2", "4", "6"} {
		require.NoError(t, s.AddFriend(ctx, "1", id))
	}

	got, err := s.OnlineFriends(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(got))

	got, err = s.Friends(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4", "6"}, ids(got))
}

func TestCreateServerOwnerIsSoleMember(t *testing.T) {
	ctx := context.Background()
	s := New()

	srv, err := s.CreateServer(ctx, "Test", "owner")
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, srv.Members)
	assert.Empty(t, srv.Channels)
	assert.Equal(t, "owner", srv.OwnerID)

	servers, err := s.ListServers(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, srv.ID, servers[0].ID)

	servers, err = s.ListServers(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, servers)
}

func TestCreateChannel(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CreateChannel(ctx, "missing", "general", domain.ChannelText)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, domain.IsNotFound(err, "server"))

	srv, err := s.CreateServer(ctx, "Test", "owner")
	require.NoError(t, err)

	ch, err := s.CreateChannel(ctx, srv.ID, "general", domain.ChannelText)
	require.NoError(t, err)
	assert.Equal(t, srv.ID, ch.ServerID)

	chs, err := s.ListChannels(ctx, srv.ID)
	require.NoError(t, err)
	require.Len(t, chs, 1)
	assert.Equal(t, "general", chs[0].Name)
	assert.Equal(t, domain.ChannelText, chs[0].Type)

	got, ok, err := s.GetServer(ctx, srv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Channels, 1)
}

func TestDeleteChannel(t *testing.T) {
	ctx := context.Background()
	s := New()
	srv, err := s.CreateServer(ctx, "Test", "owner")
	require.NoError(t, err)
	ch, err := s.CreateChannel(ctx, srv.ID, "general", domain.ChannelText)
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, ch.ID, "hello", "owner")
	require.NoError(t, err)

	err = s.DeleteChannel(ctx, "missing", ch.ID)
	assert.True(t, domain.IsNotFound(err, "server"))

	err = s.DeleteChannel(ctx, srv.ID, "missing")
	assert.True(t, domain.IsNotFound(err, "channel"))

	require.NoError(t, s.DeleteChannel(ctx, srv.ID, ch.ID))
	chs, err := s.ListChannels(ctx, srv.ID)
	require.NoError(t, err)
	assert.Empty(t, chs)

	// history of a deleted channel is kept
	msgs, err := s.ListChannelMessages(ctx, ch.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestLookupsDegradeToEmpty(t *testing.T) {
	ctx := context.Background()
	s := New()

	chs, err := s.ListChannels(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, chs)

	_, ok, err := s.GetServer(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	msgs, err := s.ListChannelMessages(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	members, err := s.ListMembers(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestAddMessage(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))

	msg, err := s.AddMessage(ctx, "c1", "hello", "u1")
	require.NoError(t, err)
	assert.Equal(t, now, msg.CreatedAt)

	msgs, err := s.ListChannelMessages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "u1", msgs[0].AuthorID)
	assert.Equal(t, "c1", msgs[0].ChannelID)
}

func TestMessagesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	faker := gofakeit.New(7)

	want := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		content := faker.Sentence(5)
		want = append(want, content)
		_, err := s.AddMessage(ctx, "c1", content, "u1")
		require.NoError(t, err)
	}

	msgs, err := s.ListChannelMessages(ctx, "c1")
	require.NoError(t, err)
	got := make([]string, 0, len(msgs))
	for _, m := range msgs {
		got = append(got, m.Content)
	}
	assert.Equal(t, want, got)
}

func TestDeleteServerPurgesChannelMessages(t *testing.T) {
	ctx := context.Background()
	s := New()

	srv, err := s.CreateServer(ctx, "Test", "owner")
	require.NoError(t, err)
	other, err := s.CreateServer(ctx, "Other", "owner")
	require.NoError(t, err)

	var channelIDs []string
	for _, name := range []string{"general", "random"} {
		ch, err := s.CreateChannel(ctx, srv.ID, name, domain.ChannelText)
		require.NoError(t, err)
		channelIDs = append(channelIDs, ch.ID)
		_, err = s.AddMessage(ctx, ch.ID, "hi in "+name, "owner")
		require.NoError(t, err)
	}
	keep, err := s.CreateChannel(ctx, other.ID, "general", domain.ChannelText)
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, keep.ID, "still here", "owner")
	require.NoError(t, err)

	require.NoError(t, s.DeleteServer(ctx, srv.ID))

	for _, id := range channelIDs {
		msgs, err := s.ListChannelMessages(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	}
	msgs, err := s.ListChannelMessages(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	_, ok, err := s.GetServer(ctx, srv.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.DeleteServer(ctx, srv.ID)
	assert.True(t, domain.IsNotFound(err, "server"))
}

func TestUpdateServerMergesFields(t *testing.T) {
	ctx := context.Background()
	s := New()
	srv, err := s.CreateServer(ctx, "Test", "owner")
	require.NoError(t, err)

	name := "Renamed"
	got, err := s.UpdateServer(ctx, srv.ID, domain.ServerPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, srv.Members, got.Members)

	img := "https://example.com/icon.png"
	got, err = s.UpdateServer(ctx, srv.ID, domain.ServerPatch{ImageURL: &img})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, img, got.ImageURL)

	_, err = s.UpdateServer(ctx, "missing", domain.ServerPatch{Name: &name})
	assert.True(t, domain.IsNotFound(err, "server"))
}

func TestReturnedServersAreSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()
	srv, err := s.CreateServer(ctx, "Test", "owner")
	require.NoError(t, err)

	srv.Members = append(srv.Members, "intruder")
	srv.Name = "mutated"

	got, ok, err := s.GetServer(ctx, srv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"owner"}, got.Members)
	assert.Equal(t, "Test", got.Name)
}

func TestGenerateInviteCode(t *testing.T) {
	s := New()
	for i := 0; i < 50; i++ {
		code, err := s.GenerateInviteCode(context.Background(), "any")
		require.NoError(t, err)
		assert.Len(t, code, 8)
		assert.True(t, domain.ValidInviteCode(code), code)
	}
}

func TestJoinServerPicksFirstNonMemberServer(t *testing.T) {
	ctx := context.Background()
	s := New()
	first, err := s.CreateServer(ctx, "First", "alice")
	require.NoError(t, err)
	second, err := s.CreateServer(ctx, "Second", "bob")
	require.NoError(t, err)

	got, err := s.JoinServer(ctx, "ABCD1234", "bob")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, []string{"alice", "bob"}, got.Members)

	_, err = s.JoinServer(ctx, "ABCD1234", "bob")
	assert.ErrorIs(t, err, domain.ErrNoJoinableServer)

	got, err = s.JoinServer(ctx, "ZZZZ9999", "carol")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	servers, err := s.ListServers(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, serverIDs(servers))
}

func TestSeedServerKeepsOwnerAsMember(t *testing.T) {
	ctx := context.Background()
	s := New()
	empty, err := s.Empty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	srv, err := s.SeedServer(ctx, domain.Server{
		Name:     "Codeium",
		OwnerID:  "2",
		Members:  []string{"1"},
		Channels: []domain.Channel{{Name: "general", Type: domain.ChannelText}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, srv.Members)
	require.Len(t, srv.Channels, 1)
	assert.NotEmpty(t, srv.Channels[0].ID)
	assert.Equal(t, srv.ID, srv.Channels[0].ServerID)

	empty, err = s.Empty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}

func ids(users []domain.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func serverIDs(servers []domain.Server) []string {
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		out = append(out, s.ID)
	}
	return out
}

func TestDeleteServerPurgesMessagesOfDeletedChannels(t *testing.T) {
	ctx := context.Background()
	s := New()

	srv, err := s.CreateServer(ctx, "Test", "owner")
	require.NoError(t, err)
	ch, err := s.CreateChannel(ctx, srv.ID, "general", domain.ChannelText)
	require.NoError(t, err)
	_, err = s.AddMessage(ctx, ch.ID, "hello", "owner")
	require.NoError(t, err)

	require.NoError(t, s.DeleteChannel(ctx, srv.ID, ch.ID))
	msgs, err := s.ListChannelMessages(ctx, ch.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "deleting a channel keeps its messages")

	require.NoError(t, s.DeleteServer(ctx, srv.ID))
	msgs, err = s.ListChannelMessages(ctx, ch.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Empty(t, s.detached)
}

func TestDeleteServerReleasesServer(t *testing.T) {
	ctx := context.Background()
	s := New()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		srv, err := s.CreateServer(ctx, name, "owner")
		require.NoError(t, err)
		ids = append(ids, srv.ID)
	}
	require.NoError(t, s.DeleteServer(ctx, ids[0]))

	assert.Len(t, s.servers, 2)
	for _, srv := range s.servers[len(s.servers):cap(s.servers)] {
		assert.Nil(t, srv)
	}
}
