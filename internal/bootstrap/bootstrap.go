package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	activityinadapter "dinod/internal/modules/activity/adapter/in"
	activityoutadapter "dinod/internal/modules/activity/adapter/out"
	activityout "dinod/internal/modules/activity/port/out"
	activityservice "dinod/internal/modules/activity/service"
	activityusecase "dinod/internal/modules/activity/usecase"
	notifyoutadapter "dinod/internal/modules/notify/adapter/out"
	sessioninadapter "dinod/internal/modules/session/adapter/in"
	sessionoutadapter "dinod/internal/modules/session/adapter/out"
	sessionservice "dinod/internal/modules/session/service"
	sessionusecase "dinod/internal/modules/session/usecase"
	socialoutadapter "dinod/internal/modules/social/adapter/out"
	socialdomain "dinod/internal/modules/social/domain"
	socialout "dinod/internal/modules/social/port/out"
	"dinod/internal/platform/clock"
	"dinod/internal/platform/config"
	"dinod/internal/platform/id"
	uiapp "dinod/internal/ui/app"
)

type App struct {
	Username   string
	FriendCode string

	SessionCLI  sessioninadapter.CLIHandler
	ActivityCLI activityinadapter.CLIHandler
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}

	userID, err := loadOrCreate(cfg.UserIDPath, func() string { return id.RandomHex{}.New() })
	if err != nil {
		return nil, fmt.Errorf("load user id: %w", err)
	}
	username, err := loadOrCreate(cfg.UsernamePath, defaultUsername)
	if err != nil {
		return nil, fmt.Errorf("load username: %w", err)
	}

	ruleStore := activityoutadapter.NewYAMLRuleStore(cfg.RulesPath)
	classifierSvc, err := activityservice.NewClassifierService(ruleStore)
	if err != nil {
		return nil, fmt.Errorf("new classifier: %w", err)
	}
	activityUC := activityusecase.NewInteractor(classifierSvc)

	var provider activityout.Provider
	if cfg.ProviderPath != "" {
		provider = activityoutadapter.NewPluginProvider(cfg.ProviderPath)
	} else {
		provider = activityoutadapter.NewOsascriptProvider()
	}

	var presence socialout.PresenceClient
	if cfg.LeaderboardAddr != "" {
		client, err := socialoutadapter.NewGRPCPresenceClient(cfg.LeaderboardAddr)
		if err != nil {
			return nil, fmt.Errorf("new leaderboard client: %w", err)
		}
		presence = client
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "dinod",
		Level: hclog.Info,
	})

	sessionSvc := sessionservice.NewSessionService(
		userID,
		username,
		cfg.DataDir,
		clk,
		log,
		classifierSvc,
		provider,
		notifyoutadapter.NewOsascriptNotifier(),
		presence,
		sessionoutadapter.NewSQLiteSnapshotStore(cfg.DBPath),
		sessionoutadapter.NewFileDaemonStore(cfg.PIDPath, cfg.SocketPath, cfg.LogPath),
		sessionoutadapter.NewJSONRPCServer(),
		sessionoutadapter.NewJSONRPCClient(),
	)
	sessionUC := sessionusecase.NewInteractor(sessionSvc)

	return &App{
		Username:    username,
		FriendCode:  socialdomain.FriendCode(userID, username),
		SessionCLI:  sessioninadapter.NewCLIHandler(sessionUC),
		ActivityCLI: activityinadapter.NewCLIHandler(activityUC),
	}, nil
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Username, app.FriendCode, app.SessionCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// loadOrCreate reads a single-line identity file, generating and persisting it
// on first run so the same value survives reinstalls of the daemon.
func loadOrCreate(path string, generate func() string) (string, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		if value := strings.TrimSpace(string(raw)); value != "" {
			return value, nil
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}
	value := generate()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(value+"\n"), 0o644); err != nil {
		return "", err
	}
	return value, nil
}

func defaultUsername() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "dino"
}
