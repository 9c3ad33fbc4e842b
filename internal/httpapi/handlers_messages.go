package httpapi

import "net/http"

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (a *api) handleMessagesList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	out, err := a.messagesSvc.List(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleMessagesSend(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req sendMessageRequest
	if !readJSON(w, r, &req) {
		return
	}

	msg, err := a.messagesSvc.Send(r.Context(), id, u.ID, req.Content)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

func (a *api) handleMessagesStream(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a.realtime.Serve(w, r, id)
}
