package dto

import "time"

// StatusOutput is the session summary rendered by the CLI and the TUI.
type StatusOutput struct {
	Username   string  `json:"username"`
	FriendCode string  `json:"friend_code"`
	State      string  `json:"state"`
	Category   string  `json:"category"`
	Domain     string  `json:"domain,omitempty"`
	Health     float64 `json:"health"`
	Happiness  float64 `json:"happiness"`
	Energy     float64 `json:"energy"`

	Balance       float64 `json:"balance"`
	SessionEarned float64 `json:"session_earned"`
	TotalEarned   float64 `json:"total_earned"`

	CodingStreakSeconds float64 `json:"coding_streak_seconds"`
	SocialStreakSeconds float64 `json:"social_streak_seconds"`

	TimeSpent map[string]float64 `json:"time_spent"`

	SessionStartedAt time.Time `json:"session_started_at"`
	DaemonRunning    bool      `json:"daemon_running"`
	RemoteSync       bool      `json:"remote_sync"`

	Leaderboard []LeaderboardEntry `json:"leaderboard,omitempty"`
}

type LeaderboardEntry struct {
	Username      string    `json:"username"`
	State         string    `json:"state"`
	SessionEarned float64   `json:"session_earned"`
	TotalEarned   float64   `json:"total_earned"`
	LastActivity  time.Time `json:"last_activity"`
	You           bool      `json:"you"`
}

// ActionOutput reports a care action back to the user.
type ActionOutput struct {
	Message   string  `json:"message"`
	Health    float64 `json:"health"`
	Happiness float64 `json:"happiness"`
	Energy    float64 `json:"energy"`
	Balance   float64 `json:"balance"`
}

type DaemonStatusOutput struct {
	PID        int    `json:"pid"`
	Running    bool   `json:"running"`
	SocketPath string `json:"socket_path"`
}
