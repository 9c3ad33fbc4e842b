package httpapi

import (
	"net/http"
	"strings"

	"chatlite/internal/domain"
)

type createServerRequest struct {
	Name string `json:"name"`
}

type createChannelRequest struct {
	Name string             `json:"name"`
	Type domain.ChannelType `json:"type"`
}

type inviteResponse struct {
	Code string `json:"code"`
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := strings.TrimSpace(r.PathValue(name))
	if id == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{name: "required"}))
		return "", false
	}
	return id, true
}

func (a *api) handleServersList(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())

	out, err := a.serversSvc.List(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleServersCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())

	var req createServerRequest
	if !readJSON(w, r, &req) {
		return
	}

	srv, err := a.serversSvc.Create(r.Context(), u.ID, req.Name)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, srv)
}

func (a *api) handleServersGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	srv, err := a.serversSvc.Get(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, srv)
}

func (a *api) handleServersUpdate(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var patch domain.ServerPatch
	if !readJSON(w, r, &patch) {
		return
	}

	srv, err := a.serversSvc.Update(r.Context(), u.ID, id, patch)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, srv)
}

func (a *api) handleServersDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := a.serversSvc.Delete(r.Context(), u.ID, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	a.logger.Info("server deleted", "server_id", id, "user_id", u.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleServersMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	out, err := a.serversSvc.Members(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleChannelsList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	out, err := a.serversSvc.Channels(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleChannelsCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req createChannelRequest
	if !readJSON(w, r, &req) {
		return
	}

	ch, err := a.serversSvc.CreateChannel(r.Context(), id, req.Name, req.Type)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, ch)
}

func (a *api) handleChannelsDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	channelID, ok := pathID(w, r, "channelID")
	if !ok {
		return
	}

	if err := a.serversSvc.DeleteChannel(r.Context(), id, channelID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleServersInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	code, err := a.serversSvc.Invite(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, inviteResponse{Code: code})
}

func (a *api) handleInvitesJoin(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	code, ok := pathID(w, r, "code")
	if !ok {
		return
	}

	srv, err := a.serversSvc.Join(r.Context(), code, u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, srv)
}
