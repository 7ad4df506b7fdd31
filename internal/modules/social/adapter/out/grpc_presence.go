package out

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	socialrpc "dinod/internal/modules/social/adapter/out/rpc"
	"dinod/internal/modules/social/domain"
	socialout "dinod/internal/modules/social/port/out"
	apperrors "dinod/internal/platform/errors"
)

const callTimeout = 5 * time.Second

// GRPCPresenceClient pushes and reads leaderboard entries over gRPC. The
// connection is lazy; call failures surface as ErrRemoteSyncUnavailable so
// the daemon can stay in local-only mode.
type GRPCPresenceClient struct {
	conn   *grpc.ClientConn
	client socialrpc.LeaderboardClient
}

var _ socialout.PresenceClient = (*GRPCPresenceClient)(nil)

func NewGRPCPresenceClient(addr string) (*GRPCPresenceClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial leaderboard: %w", err)
	}
	return &GRPCPresenceClient{conn: conn, client: socialrpc.NewLeaderboardClient(conn)}, nil
}

func (c *GRPCPresenceClient) Push(ctx context.Context, presence domain.Presence) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	_, err := c.client.Push(ctx, &socialrpc.PushRequest{Entry: toEntry(presence)})
	if err != nil {
		return fmt.Errorf("%w: push: %v", apperrors.ErrRemoteSyncUnavailable, err)
	}
	return nil
}

func (c *GRPCPresenceClient) List(ctx context.Context) ([]domain.Presence, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	response, err := c.client.List(ctx, &socialrpc.ListRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", apperrors.ErrRemoteSyncUnavailable, err)
	}
	out := make([]domain.Presence, 0, len(response.Entries))
	for _, entry := range response.Entries {
		out = append(out, fromEntry(entry))
	}
	return out, nil
}

func (c *GRPCPresenceClient) Close() error {
	return c.conn.Close()
}

func toEntry(p domain.Presence) socialrpc.PresenceEntry {
	return socialrpc.PresenceEntry{
		UserID:        p.UserID,
		Username:      p.Username,
		State:         p.State,
		Health:        p.Health,
		SessionEarned: p.SessionEarned,
		TotalEarned:   p.TotalEarned,
		LastActivity:  p.LastActivity,
	}
}

func fromEntry(e socialrpc.PresenceEntry) domain.Presence {
	return domain.Presence{
		UserID:        e.UserID,
		Username:      e.Username,
		State:         e.State,
		Health:        e.Health,
		SessionEarned: e.SessionEarned,
		TotalEarned:   e.TotalEarned,
		LastActivity:  e.LastActivity,
	}
}
