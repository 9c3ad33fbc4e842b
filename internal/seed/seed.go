// Package seed loads the demo dataset the store starts with.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"chatlite/internal/domain"

	"gopkg.in/yaml.v2"
)

//go:embed demo.yaml
var demoYAML []byte

type Dataset struct {
	Users   []User   `yaml:"users"`
	Servers []Server `yaml:"servers"`
}

type User struct {
	ID            string `yaml:"id"`
	Username      string `yaml:"username"`
	Discriminator string `yaml:"discriminator"`
	Avatar        string `yaml:"avatar"`
	Status        string `yaml:"status"`
}

type Server struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	ImageURL string    `yaml:"image_url"`
	OwnerID  string    `yaml:"owner_id"`
	Members  []string  `yaml:"members"`
	Channels []Channel `yaml:"channels"`
}

type Channel struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Target is what a dataset is loaded into.
type Target interface {
	Empty(ctx context.Context) (bool, error)
	SeedUsers(ctx context.Context, users []domain.User) error
	SeedServer(ctx context.Context, srv domain.Server) (domain.Server, error)
}

// Load reads path, or the embedded demo dataset when path is empty.
func Load(path string) (Dataset, error) {
	data := demoYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Dataset{}, fmt.Errorf("read seed file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

func Parse(data []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.UnmarshalStrict(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("parse seed: %w", err)
	}
	if err := ds.validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

func (ds Dataset) validate() error {
	tags := make(map[string]bool, len(ds.Users))
	ids := make(map[string]bool, len(ds.Users))
	for i, u := range ds.Users {
		if u.Username == "" {
			return fmt.Errorf("seed user %d: username required", i)
		}
		if !validDiscriminator(u.Discriminator) {
			return fmt.Errorf("seed user %s: discriminator must be 4 digits", u.Username)
		}
		if u.Status != "" && !domain.Presence(u.Status).Valid() {
			return fmt.Errorf("seed user %s: unknown status %q", u.Username, u.Status)
		}
		tag := u.Username + "#" + u.Discriminator
		if tags[tag] {
			return fmt.Errorf("seed user %s: duplicate tag", tag)
		}
		tags[tag] = true
		if u.ID != "" {
			ids[u.ID] = true
		}
	}
	for _, s := range ds.Servers {
		if s.Name == "" {
			return fmt.Errorf("seed server: name required")
		}
		if !ids[s.OwnerID] {
			return fmt.Errorf("seed server %s: unknown owner %q", s.Name, s.OwnerID)
		}
		for _, ch := range s.Channels {
			if !domain.ChannelType(ch.Type).Valid() {
				return fmt.Errorf("seed server %s: channel %s has unknown type %q", s.Name, ch.Name, ch.Type)
			}
		}
	}
	return nil
}

// Apply loads ds into t. A target that already holds data is left untouched
// and Apply reports false.
func Apply(ctx context.Context, t Target, ds Dataset) (bool, error) {
	empty, err := t.Empty(ctx)
	if err != nil {
		return false, fmt.Errorf("check seed target: %w", err)
	}
	if !empty {
		return false, nil
	}

	users := make([]domain.User, 0, len(ds.Users))
	for _, u := range ds.Users {
		status := domain.Presence(u.Status)
		if status == "" {
			status = domain.PresenceOffline
		}
		users = append(users, domain.User{
			ID:            u.ID,
			Username:      u.Username,
			Discriminator: u.Discriminator,
			Avatar:        u.Avatar,
			Status:        status,
		})
	}
	if err := t.SeedUsers(ctx, users); err != nil {
		return false, fmt.Errorf("seed users: %w", err)
	}

	for _, s := range ds.Servers {
		srv := domain.Server{
			ID:       s.ID,
			Name:     s.Name,
			ImageURL: s.ImageURL,
			OwnerID:  s.OwnerID,
			Members:  []string{s.OwnerID},
		}
		for _, m := range s.Members {
			if m != s.OwnerID {
				srv.Members = append(srv.Members, m)
			}
		}
		for _, ch := range s.Channels {
			srv.Channels = append(srv.Channels, domain.Channel{
				ID:   ch.ID,
				Name: ch.Name,
				Type: domain.ChannelType(ch.Type),
			})
		}
		if _, err := t.SeedServer(ctx, srv); err != nil {
			return false, fmt.Errorf("seed server %s: %w", s.Name, err)
		}
	}
	return true, nil
}

func validDiscriminator(d string) bool {
	if len(d) != 4 {
		return false
	}
	for _, r := range d {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
