package out

import (
	"context"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"time"

	"dinod/internal/modules/session/domain"
	sessionout "dinod/internal/modules/session/port/out"
)

type JSONRPCServer struct{}

type JSONRPCClient struct{}

func NewJSONRPCServer() sessionout.IPCServer {
	return &JSONRPCServer{}
}

func NewJSONRPCClient() sessionout.IPCClient {
	return &JSONRPCClient{}
}

type rpcHandler struct {
	h sessionout.IPCHandler
}

type empty struct{}

type statusResp struct {
	Report sessionout.StatusReport
}

type sessionResp struct {
	Session domain.Session
}

type syncResp struct {
	Peers int
}

func (s *rpcHandler) Status(_ empty, resp *statusResp) error {
	report, err := s.h.Status(context.Background())
	if err != nil {
		return err
	}
	resp.Report = report
	return nil
}

func (s *rpcHandler) Feed(_ empty, resp *sessionResp) error {
	session, err := s.h.Feed(context.Background())
	if err != nil {
		return err
	}
	resp.Session = session
	return nil
}

func (s *rpcHandler) Pet(_ empty, resp *sessionResp) error {
	session, err := s.h.Pet(context.Background())
	if err != nil {
		return err
	}
	resp.Session = session
	return nil
}

func (s *rpcHandler) Break(_ empty, resp *sessionResp) error {
	session, err := s.h.Break(context.Background())
	if err != nil {
		return err
	}
	resp.Session = session
	return nil
}

func (s *rpcHandler) SyncNow(_ empty, resp *syncResp) error {
	peers, err := s.h.SyncNow(context.Background())
	if err != nil {
		return err
	}
	resp.Peers = peers
	return nil
}

func (s *rpcHandler) RulesReload(_ empty, _ *empty) error {
	return s.h.RulesReload(context.Background())
}

func (s *rpcHandler) Stop(_ empty, _ *empty) error {
	return s.h.Stop(context.Background())
}

func (s *JSONRPCServer) Serve(ctx context.Context, socketPath string, handler sessionout.IPCHandler) error {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return fmt.Errorf("create ipc dir: %w", err)
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale ipc socket: %w", err)
	}
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen ipc socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		_ = ln.Close()
		return fmt.Errorf("chmod ipc socket: %w", err)
	}
	defer ln.Close()

	rpcSrv := rpc.NewServer()
	if err := rpcSrv.RegisterName("Dinod", &rpcHandler{h: handler}); err != nil {
		return fmt.Errorf("register ipc handler: %w", err)
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return err
		}
		go rpcSrv.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

func (c *JSONRPCClient) Status(ctx context.Context, socketPath string) (sessionout.StatusReport, error) {
	client, err := dialClient(ctx, socketPath)
	if err != nil {
		return sessionout.StatusReport{}, err
	}
	defer client.Close()
	resp := statusResp{}
	if err := client.Call("Dinod.Status", empty{}, &resp); err != nil {
		return sessionout.StatusReport{}, err
	}
	return resp.Report, nil
}

func (c *JSONRPCClient) Feed(ctx context.Context, socketPath string) (domain.Session, error) {
	return c.callSession(ctx, socketPath, "Dinod.Feed")
}

func (c *JSONRPCClient) Pet(ctx context.Context, socketPath string) (domain.Session, error) {
	return c.callSession(ctx, socketPath, "Dinod.Pet")
}

func (c *JSONRPCClient) Break(ctx context.Context, socketPath string) (domain.Session, error) {
	return c.callSession(ctx, socketPath, "Dinod.Break")
}

func (c *JSONRPCClient) SyncNow(ctx context.Context, socketPath string) (int, error) {
	client, err := dialClient(ctx, socketPath)
	if err != nil {
		return 0, err
	}
	defer client.Close()
	resp := syncResp{}
	if err := client.Call("Dinod.SyncNow", empty{}, &resp); err != nil {
		return 0, err
	}
	return resp.Peers, nil
}

func (c *JSONRPCClient) RulesReload(ctx context.Context, socketPath string) error {
	client, err := dialClient(ctx, socketPath)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Call("Dinod.RulesReload", empty{}, &empty{})
}

func (c *JSONRPCClient) Stop(ctx context.Context, socketPath string) error {
	client, err := dialClient(ctx, socketPath)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Call("Dinod.Stop", empty{}, &empty{})
}

func (c *JSONRPCClient) callSession(ctx context.Context, socketPath, method string) (domain.Session, error) {
	client, err := dialClient(ctx, socketPath)
	if err != nil {
		return domain.Session{}, err
	}
	defer client.Close()
	resp := sessionResp{}
	if err := client.Call(method, empty{}, &resp); err != nil {
		return domain.Session{}, err
	}
	return resp.Session, nil
}

func dialClient(ctx context.Context, socketPath string) (*rpc.Client, error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, err
	}
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))
	client := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return client, nil
}
