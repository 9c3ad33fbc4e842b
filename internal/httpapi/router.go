package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chatlite/internal/metrics"
	"chatlite/internal/service"
)

// Subscriber streams live channel messages over an upgraded connection.
type Subscriber interface {
	Serve(w http.ResponseWriter, r *http.Request, channelID string)
}

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Users    *service.UsersService
	Friends  *service.FriendsService
	Servers  *service.ServersService
	Messages *service.MessagesService
	Realtime Subscriber

	// DemoUserID is the acting user when a request carries no X-User-Id.
	DemoUserID string
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:      logger,
		isProd:      opts.IsProd,
		dbPing:      opts.DBPing,
		usersSvc:    opts.Users,
		friendsSvc:  opts.Friends,
		serversSvc:  opts.Servers,
		messagesSvc: opts.Messages,
		realtime:    opts.Realtime,
		demoUserID:  opts.DemoUserID,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", api.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("/v1/", handleV1NotFound)

	mux.HandleFunc("GET /v1/users/me", api.requireUser(api.handleUsersMe))
	mux.HandleFunc("GET /v1/users/search", api.requireUser(api.handleUsersSearch))

	mux.HandleFunc("GET /v1/friends", api.requireUser(api.handleFriendsList))
	mux.HandleFunc("POST /v1/friends", api.requireUser(api.handleFriendsAdd))
	mux.HandleFunc("GET /v1/friends/online", api.requireUser(api.handleFriendsOnline))
	mux.HandleFunc("GET /v1/friends/suggested", api.requireUser(api.handleFriendsSuggested))
	mux.HandleFunc("POST /v1/friends/requests", api.requireUser(api.handleFriendsCreateRequest))

	mux.HandleFunc("GET /v1/servers", api.requireUser(api.handleServersList))
	mux.HandleFunc("POST /v1/servers", api.requireUser(api.handleServersCreate))
	mux.HandleFunc("GET /v1/servers/{id}", api.requireUser(api.handleServersGet))
	mux.HandleFunc("PATCH /v1/servers/{id}", api.requireUser(api.handleServersUpdate))
	mux.HandleFunc("DELETE /v1/servers/{id}", api.requireUser(api.handleServersDelete))
	mux.HandleFunc("GET /v1/servers/{id}/members", api.requireUser(api.handleServersMembers))
	mux.HandleFunc("GET /v1/servers/{id}/channels", api.requireUser(api.handleChannelsList))
	mux.HandleFunc("POST /v1/servers/{id}/channels", api.requireUser(api.handleChannelsCreate))
	mux.HandleFunc("DELETE /v1/servers/{id}/channels/{channelID}", api.requireUser(api.handleChannelsDelete))
	mux.HandleFunc("POST /v1/servers/{id}/invites", api.requireUser(api.handleServersInvite))
	mux.HandleFunc("POST /v1/invites/{code}/join", api.requireUser(api.handleInvitesJoin))

	mux.HandleFunc("GET /v1/channels/{id}/messages", api.requireUser(api.handleMessagesList))
	mux.HandleFunc("POST /v1/channels/{id}/messages", api.requireUser(api.handleMessagesSend))
	if api.realtime != nil {
		mux.HandleFunc("GET /v1/channels/{id}/ws", api.requireUser(api.handleMessagesStream))
	}

	var h http.Handler = mux
	h = metrics.Middleware(h)
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	usersSvc    *service.UsersService
	friendsSvc  *service.FriendsService
	serversSvc  *service.ServersService
	messagesSvc *service.MessagesService
	realtime    Subscriber
	demoUserID  string
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
