package postgres

import (
	"context"
	"errors"
	"fmt"

	"chatlite/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const serverSelect = `
	SELECT s.id, s.name, s.image_url, s.owner_id,
	       COALESCE((SELECT array_agg(m.user_id ORDER BY m.seq) FROM server_members m WHERE m.server_id = s.id), '{}')
	FROM servers s
`

// loadServers runs serverSelect with where appended and fills in channels.
func loadServers(ctx context.Context, q querier, where string, args ...any) ([]domain.Server, error) {
	rows, err := q.Query(ctx, serverSelect+where+` ORDER BY s.seq ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	defer rows.Close()

	out := []domain.Server{}
	ids := []string{}
	for rows.Next() {
		srv := domain.Server{Channels: []domain.Channel{}}
		if err := rows.Scan(&srv.ID, &srv.Name, &srv.ImageURL, &srv.OwnerID, &srv.Members); err != nil {
			return nil, fmt.Errorf("scan server: %w", err)
		}
		out = append(out, srv)
		ids = append(ids, srv.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	channels, err := listChannels(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if chs, ok := channels[out[i].ID]; ok {
			out[i].Channels = chs
		}
	}
	return out, nil
}

func listChannels(ctx context.Context, q querier, serverIDs []string) (map[string][]domain.Channel, error) {
	const query = `
		SELECT id, name, type, server_id
		FROM channels
		WHERE server_id = ANY($1)
		ORDER BY seq ASC
	`
	rows, err := q.Query(ctx, query, serverIDs)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Channel, len(serverIDs))
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Type, &ch.ServerID); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out[ch.ServerID] = append(out[ch.ServerID], ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return out, nil
}

func getServer(ctx context.Context, q querier, serverID string) (domain.Server, bool, error) {
	servers, err := loadServers(ctx, q, `WHERE s.id = $1`, serverID)
	if err != nil {
		return domain.Server{}, false, err
	}
	if len(servers) == 0 {
		return domain.Server{}, false, nil
	}
	return servers[0], true, nil
}

func (s *Store) SeedServer(ctx context.Context, srv domain.Server) (domain.Server, error) {
	if srv.ID == "" {
		srv.ID = s.newID()
	}
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		const insertServer = `INSERT INTO servers (id, name, image_url, owner_id) VALUES ($1, $2, $3, $4)`
		if _, err := tx.Exec(ctx, insertServer, srv.ID, srv.Name, srv.ImageURL, srv.OwnerID); err != nil {
			return fmt.Errorf("insert server: %w", err)
		}
		const insertMember = `INSERT INTO server_members (server_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		for _, m := range append([]string{srv.OwnerID}, srv.Members...) {
			if _, err := tx.Exec(ctx, insertMember, srv.ID, m); err != nil {
				return fmt.Errorf("insert member: %w", err)
			}
		}
		const insertChannel = `INSERT INTO channels (id, server_id, name, type) VALUES ($1, $2, $3, $4)`
		for _, ch := range srv.Channels {
			if ch.ID == "" {
				ch.ID = s.newID()
			}
			if _, err := tx.Exec(ctx, insertChannel, ch.ID, srv.ID, ch.Name, string(ch.Type)); err != nil {
				return fmt.Errorf("insert channel: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Server{}, fmt.Errorf("seed server: %w", err)
	}
	out, _, err := getServer(ctx, s.pool, srv.ID)
	return out, err
}

func (s *Store) CreateServer(ctx context.Context, name, ownerID string) (domain.Server, error) {
	srv := domain.Server{
		ID:       s.newID(),
		Name:     name,
		OwnerID:  ownerID,
		Members:  []string{ownerID},
		Channels: []domain.Channel{},
	}
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO servers (id, name, owner_id) VALUES ($1, $2, $3)`, srv.ID, name, ownerID); err != nil {
			return fmt.Errorf("insert server: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO server_members (server_id, user_id) VALUES ($1, $2)`, srv.ID, ownerID); err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Server{}, fmt.Errorf("create server: %w", err)
	}
	return srv, nil
}

func (s *Store) ListServers(ctx context.Context, userID string) ([]domain.Server, error) {
	return loadServers(ctx, s.pool, `WHERE EXISTS (SELECT 1 FROM server_members m WHERE m.server_id = s.id AND m.user_id = $1)`, userID)
}

func (s *Store) GetServer(ctx context.Context, serverID string) (domain.Server, bool, error) {
	return getServer(ctx, s.pool, serverID)
}

func (s *Store) UpdateServer(ctx context.Context, serverID string, patch domain.ServerPatch) (domain.Server, error) {
	const q = `
		UPDATE servers
		SET name = COALESCE($2, name), image_url = COALESCE($3, image_url)
		WHERE id = $1
	`
	ct, err := s.pool.Exec(ctx, q, serverID, patch.Name, patch.ImageURL)
	if err != nil {
		return domain.Server{}, fmt.Errorf("update server: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.Server{}, domain.ServerNotFound(serverID)
	}
	srv, ok, err := getServer(ctx, s.pool, serverID)
	if err != nil {
		return domain.Server{}, err
	}
	if !ok {
		return domain.Server{}, domain.ServerNotFound(serverID)
	}
	return srv, nil
}

// DeleteServer removes the messages of every channel of the server, deleted
// channels included, before the server row. Channels, memberships and
// detached channel ids cascade.
func (s *Store) DeleteServer(ctx context.Context, serverID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const purge = `
			DELETE FROM messages
			WHERE channel_id IN (
				SELECT id FROM channels WHERE server_id = $1
				UNION ALL
				SELECT channel_id FROM detached_channels WHERE server_id = $1
			)
		`
		if _, err := tx.Exec(ctx, purge, serverID); err != nil {
			return fmt.Errorf("purge server messages: %w", err)
		}
		ct, err := tx.Exec(ctx, `DELETE FROM servers WHERE id = $1`, serverID)
		if err != nil {
			return fmt.Errorf("delete server: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return domain.ServerNotFound(serverID)
		}
		return nil
	})
}

func (s *Store) ListMembers(ctx context.Context, serverID string) ([]domain.User, error) {
	const q = `
		SELECT u.id, u.username, u.discriminator, u.avatar, u.status
		FROM server_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.server_id = $1
		ORDER BY m.seq ASC
	`
	rows, err := s.pool.Query(ctx, q, serverID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out, err := scanUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return out, nil
}

func (s *Store) CreateChannel(ctx context.Context, serverID, name string, typ domain.ChannelType) (domain.Channel, error) {
	const q = `INSERT INTO channels (id, server_id, name, type) VALUES ($1, $2, $3, $4)`
	ch := domain.Channel{ID: s.newID(), Name: name, Type: typ, ServerID: serverID}
	_, err := s.pool.Exec(ctx, q, ch.ID, serverID, name, string(typ))
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.Channel{}, domain.ServerNotFound(serverID)
		}
		return domain.Channel{}, fmt.Errorf("create channel: %w", err)
	}
	return ch, nil
}

// DeleteChannel removes the channel row and remembers its id for
// DeleteServer; its messages stay.
func (s *Store) DeleteChannel(ctx context.Context, serverID, channelID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM servers WHERE id = $1)`, serverID).Scan(&exists); err != nil {
			return fmt.Errorf("lookup server: %w", err)
		}
		if !exists {
			return domain.ServerNotFound(serverID)
		}
		ct, err := tx.Exec(ctx, `DELETE FROM channels WHERE id = $1 AND server_id = $2`, channelID, serverID)
		if err != nil {
			return fmt.Errorf("delete channel: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return domain.ChannelNotFound(channelID)
		}
		const detach = `INSERT INTO detached_channels (channel_id, server_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, detach, channelID, serverID); err != nil {
			return fmt.Errorf("detach channel: %w", err)
		}
		return nil
	})
}

func (s *Store) ListChannels(ctx context.Context, serverID string) ([]domain.Channel, error) {
	channels, err := listChannels(ctx, s.pool, []string{serverID})
	if err != nil {
		return nil, err
	}
	if chs, ok := channels[serverID]; ok {
		return chs, nil
	}
	return []domain.Channel{}, nil
}

// GenerateInviteCode returns a random code. Codes are not recorded anywhere.
func (s *Store) GenerateInviteCode(_ context.Context, _ string) (string, error) {
	return domain.NewInviteCode(), nil
}

// JoinServer adds userID to the oldest server it is not yet a member of.
// The invite code is not resolved to a server.
func (s *Store) JoinServer(ctx context.Context, _ string, userID string) (domain.Server, error) {
	var serverID string
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		const pick = `
			SELECT s.id FROM servers s
			WHERE NOT EXISTS (SELECT 1 FROM server_members m WHERE m.server_id = s.id AND m.user_id = $1)
			ORDER BY s.seq ASC
			LIMIT 1
			FOR UPDATE
		`
		if err := tx.QueryRow(ctx, pick, userID).Scan(&serverID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNoJoinableServer
			}
			return fmt.Errorf("pick server: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO server_members (server_id, user_id) VALUES ($1, $2)`, serverID, userID); err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Server{}, err
	}
	srv, _, err := getServer(ctx, s.pool, serverID)
	return srv, err
}
