package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/hashicorp/go-plugin"

	activityrpc "dinod/internal/modules/activity/adapter/out/rpc"
)

// server reads the current activity signal from a JSON file so any script or
// desktop integration can feed the sampler by rewriting one small file.
//
//	{"app_name": "Terminal", "url": "", "title": "vim"}
type server struct {
	path string
}

type fileSignal struct {
	AppName string `json:"app_name"`
	URL     string `json:"url"`
	Title   string `json:"title"`
}

func (s *server) Sample(_ context.Context, _ *activityrpc.Empty) (*activityrpc.Sample, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return &activityrpc.Sample{Available: false}, nil
	}
	var sig fileSignal
	if err := json.Unmarshal(raw, &sig); err != nil {
		return &activityrpc.Sample{Available: false}, nil
	}
	return &activityrpc.Sample{
		AppName:   sig.AppName,
		URL:       sig.URL,
		Title:     sig.Title,
		Available: sig.AppName != "",
	}, nil
}

func main() {
	path := os.Getenv("DINOD_ACTIVITY_FILE")
	if path == "" {
		path = os.ExpandEnv("$HOME/.dinod/activity.json")
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: activityrpc.HandshakeConfig,
		Plugins:         activityrpc.PluginMap(&server{path: path}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
