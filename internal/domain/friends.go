package domain

import "time"

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

type FriendRequest struct {
	ID         string              `json:"id"`
	FromUserID string              `json:"from_user_id"`
	ToUserID   string              `json:"to_user_id"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Links reports whether the request connects a and b in either direction.
func (r FriendRequest) Links(a, b string) bool {
	return (r.FromUserID == a && r.ToUserID == b) || (r.FromUserID == b && r.ToUserID == a)
}

type FriendsOverview struct {
	Friends []User `json:"friends"`
	Online  int    `json:"online"`
	Offline int    `json:"offline"`
}
