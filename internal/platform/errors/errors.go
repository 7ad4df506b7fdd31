package apperrors

import "errors"

var (
	ErrActivityUnavailable   = errors.New("activity signal unavailable")
	ErrInsufficientFunds     = errors.New("insufficient dumplings")
	ErrNoSnapshot            = errors.New("no saved snapshot")
	ErrSnapshotCorrupt       = errors.New("snapshot is corrupt")
	ErrDaemonNotRunning      = errors.New("dinod daemon is not running")
	ErrDaemonStartFailed     = errors.New("dinod daemon start failed")
	ErrRemoteSyncUnavailable = errors.New("leaderboard sync unavailable")
)
