package rpc

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	serviceName   = "dinod.social.v1.Leaderboard"
	jsonCodecName = "json"
	methodPush    = "/" + serviceName + "/Push"
	methodList    = "/" + serviceName + "/List"
)

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type PresenceEntry struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	State         string    `json:"state"`
	Health        float64   `json:"health"`
	SessionEarned float64   `json:"session_earned"`
	TotalEarned   float64   `json:"total_earned"`
	LastActivity  time.Time `json:"last_activity"`
}

type PushRequest struct {
	Entry PresenceEntry `json:"entry"`
}

type PushResponse struct{}

type ListRequest struct{}

type ListResponse struct {
	Entries []PresenceEntry `json:"entries"`
}

type LeaderboardClient interface {
	Push(ctx context.Context, in *PushRequest) (*PushResponse, error)
	List(ctx context.Context, in *ListRequest) (*ListResponse, error)
}

type leaderboardClient struct {
	conn *grpc.ClientConn
}

func NewLeaderboardClient(conn *grpc.ClientConn) LeaderboardClient {
	return &leaderboardClient{conn: conn}
}

func (c *leaderboardClient) Push(ctx context.Context, in *PushRequest) (*PushResponse, error) {
	out := &PushResponse{}
	if err := c.conn.Invoke(ctx, methodPush, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *leaderboardClient) List(ctx context.Context, in *ListRequest) (*ListResponse, error) {
	out := &ListResponse{}
	if err := c.conn.Invoke(ctx, methodList, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}
