package domain

import "strings"

type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceOffline Presence = "offline"
	PresenceIdle    Presence = "idle"
	PresenceDND     Presence = "dnd"
)

func (p Presence) Valid() bool {
	switch p {
	case PresenceOnline, PresenceOffline, PresenceIdle, PresenceDND:
		return true
	}
	return false
}

type User struct {
	ID            string   `json:"id"`
	Username      string   `json:"username"`
	Discriminator string   `json:"discriminator"`
	Avatar        string   `json:"avatar,omitempty"`
	Status        Presence `json:"status"`
}

// Tag renders the user as "username#discriminator".
func (u User) Tag() string {
	return u.Username + "#" + u.Discriminator
}

// MatchesQuery reports whether the username or the full tag contains q, ignoring case.
func (u User) MatchesQuery(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(u.Username), q) ||
		strings.Contains(strings.ToLower(u.Tag()), q)
}
