package httpapi

import "net/http"

type friendTargetRequest struct {
	UserID string `json:"user_id"`
}

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())

	out, err := a.friendsSvc.ListOverview(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleFriendsOnline(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())

	out, err := a.friendsSvc.ListOnline(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleFriendsSuggested(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())

	out, err := a.friendsSvc.Suggested(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleFriendsCreateRequest(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())

	var req friendTargetRequest
	if !readJSON(w, r, &req) {
		return
	}

	fr, err := a.friendsSvc.SendRequest(r.Context(), u.ID, req.UserID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, fr)
}

func (a *api) handleFriendsAdd(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())

	var req friendTargetRequest
	if !readJSON(w, r, &req) {
		return
	}

	if err := a.friendsSvc.Add(r.Context(), u.ID, req.UserID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

