package out

import (
	"context"

	"dinod/internal/modules/session/domain"
	socialdomain "dinod/internal/modules/social/domain"
)

// SnapshotStore persists the full session aggregate. Load returns
// apperrors.ErrNoSnapshot on first run and apperrors.ErrSnapshotCorrupt when
// the stored payload cannot be decoded.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
}

// DaemonStore tracks the background process artifacts.
type DaemonStore interface {
	WritePID(ctx context.Context, pid int) error
	ReadPID(ctx context.Context) (int, error)
	ClearPID(ctx context.Context) error
	SocketPath() string
	LogPath() string
}

// StatusReport is the live view the daemon serves over IPC.
type StatusReport struct {
	Session     domain.Session
	FriendCode  string
	Leaderboard []socialdomain.Presence
	RemoteSync  bool
}

// IPCHandler is the surface the daemon exposes on its unix socket.
type IPCHandler interface {
	Status(ctx context.Context) (StatusReport, error)
	Feed(ctx context.Context) (domain.Session, error)
	Pet(ctx context.Context) (domain.Session, error)
	Break(ctx context.Context) (domain.Session, error)
	SyncNow(ctx context.Context) (int, error)
	RulesReload(ctx context.Context) error
	Stop(ctx context.Context) error
}

type IPCServer interface {
	Serve(ctx context.Context, socketPath string, handler IPCHandler) error
}

type IPCClient interface {
	Status(ctx context.Context, socketPath string) (StatusReport, error)
	Feed(ctx context.Context, socketPath string) (domain.Session, error)
	Pet(ctx context.Context, socketPath string) (domain.Session, error)
	Break(ctx context.Context, socketPath string) (domain.Session, error)
	SyncNow(ctx context.Context, socketPath string) (int, error)
	RulesReload(ctx context.Context, socketPath string) error
	Stop(ctx context.Context, socketPath string) error
}

// DaemonRuntimeStatus is what `daemon status` reports.
type DaemonRuntimeStatus struct {
	PID        int
	Running    bool
	SocketPath string
}
