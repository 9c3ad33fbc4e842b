package domain

import "time"

type ChannelType string

const (
	ChannelText         ChannelType = "text"
	ChannelVoice        ChannelType = "voice"
	ChannelAnnouncement ChannelType = "announcement"
)

func (t ChannelType) Valid() bool {
	switch t {
	case ChannelText, ChannelVoice, ChannelAnnouncement:
		return true
	}
	return false
}

type Channel struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     ChannelType `json:"type"`
	ServerID string      `json:"server_id"`
}

type Server struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	ImageURL string    `json:"image_url,omitempty"`
	OwnerID  string    `json:"owner_id"`
	Members  []string  `json:"members"`
	Channels []Channel `json:"channels"`
}

func (s Server) HasMember(userID string) bool {
	for _, m := range s.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with s.
func (s Server) Clone() Server {
	out := s
	out.Members = append([]string{}, s.Members...)
	out.Channels = append([]Channel{}, s.Channels...)
	return out
}

// ServerPatch carries the fields UpdateServer merges; nil means unchanged.
type ServerPatch struct {
	Name     *string `json:"name,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

func (p ServerPatch) Apply(s *Server) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.ImageURL != nil {
		s.ImageURL = *p.ImageURL
	}
}

type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	ChannelID string    `json:"channel_id"`
	CreatedAt time.Time `json:"created_at"`
}
