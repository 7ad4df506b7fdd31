package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir         string
	DBPath          string
	RulesPath       string
	UserIDPath      string
	UsernamePath    string
	PIDPath         string
	SocketPath      string
	LogPath         string
	ProviderPath    string
	LeaderboardAddr string
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".dinod")
	}
	return Config{
		DataDir:         dataDir,
		DBPath:          filepath.Join(dataDir, "dinod.db"),
		RulesPath:       filepath.Join(dataDir, "rules.yaml"),
		UserIDPath:      filepath.Join(dataDir, "user_id"),
		UsernamePath:    filepath.Join(dataDir, "username"),
		PIDPath:         filepath.Join(dataDir, "daemon.pid"),
		SocketPath:      filepath.Join(dataDir, "daemon.sock"),
		LogPath:         filepath.Join(dataDir, "daemon.log"),
		ProviderPath:    os.Getenv("DINOD_ACTIVITY_PROVIDER"),
		LeaderboardAddr: os.Getenv("DINOD_LEADERBOARD_ADDR"),
	}, nil
}
