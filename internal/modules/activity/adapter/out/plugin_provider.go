package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	activityrpc "dinod/internal/modules/activity/adapter/out/rpc"
	"dinod/internal/modules/activity/domain"
	activityout "dinod/internal/modules/activity/port/out"
	apperrors "dinod/internal/platform/errors"
)

const (
	pluginStartTimeout = 3 * time.Second
	pluginCallTimeout  = 5 * time.Second
)

// PluginProvider samples activity through an external provider binary. The
// subprocess is started lazily and kept alive between samples; a dead
// subprocess is restarted on the next call.
type PluginProvider struct {
	binary string

	mu     sync.Mutex
	client *plugin.Client
	rpc    activityrpc.ActivityProviderClient
}

var _ activityout.Provider = (*PluginProvider)(nil)

func NewPluginProvider(binary string) *PluginProvider {
	return &PluginProvider{binary: binary}
}

func (p *PluginProvider) Sample(ctx context.Context) (domain.Signal, error) {
	client, err := p.connect()
	if err != nil {
		return domain.Signal{}, fmt.Errorf("%w: %v", apperrors.ErrActivityUnavailable, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, pluginCallTimeout)
	defer cancel()
	sample, err := client.Sample(callCtx)
	if err != nil {
		p.reset()
		return domain.Signal{}, fmt.Errorf("%w: %v", apperrors.ErrActivityUnavailable, err)
	}
	if !sample.Available {
		return domain.Signal{}, apperrors.ErrActivityUnavailable
	}
	return domain.Signal{AppName: sample.AppName, URL: sample.URL, Title: sample.Title}, nil
}

func (p *PluginProvider) Close() {
	p.reset()
}

func (p *PluginProvider) connect() (activityrpc.ActivityProviderClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rpc != nil && !p.client.Exited() {
		return p.rpc, nil
	}
	if p.client != nil {
		p.client.Kill()
		p.client, p.rpc = nil, nil
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  activityrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          activityrpc.PluginMap(nil),
		Cmd:              exec.Command(p.binary),
		Managed:          true,
		StartTimeout:     pluginStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start provider plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(activityrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense provider: %w", err)
	}
	typed, ok := raw.(activityrpc.ActivityProviderClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("provider rpc client type mismatch")
	}
	p.client, p.rpc = client, typed
	return typed, nil
}

func (p *PluginProvider) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Kill()
	}
	p.client, p.rpc = nil, nil
}
