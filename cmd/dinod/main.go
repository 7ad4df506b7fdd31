package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dinod/internal/bootstrap"
	activitydto "dinod/internal/modules/activity/dto"
	sessionin "dinod/internal/modules/session/adapter/in"
	sessiondto "dinod/internal/modules/session/dto"
	"dinod/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "dinod",
		Short:         "A virtual dino that lives off your productivity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default ~/.dinod)")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newFeedCmd(&dataDir))
	root.AddCommand(newPetCmd(&dataDir))
	root.AddCommand(newBreakCmd(&dataDir))
	root.AddCommand(newSyncCmd(&dataDir))
	root.AddCommand(newRulesCmd(&dataDir))
	root.AddCommand(newIDCmd(&dataDir))
	root.AddCommand(newDaemonCmd(&dataDir))
	return root
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the dino dashboard",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pet and session status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.SessionCLI.Status(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) state=%s", out.Username, out.FriendCode, out.State)
			if out.Category != "" && out.Category != out.State {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " doing=%s", out.Category)
			}
			if out.Domain != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " on=%s", out.Domain)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "health=%.0f happiness=%.0f energy=%.0f\n", out.Health, out.Happiness, out.Energy)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "coins=%.1f today=%+.1f lifetime=%.1f\n", out.Balance, out.SessionEarned, out.TotalEarned)
			if out.CodingStreakSeconds > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "coding_streak=%s\n", time.Duration(out.CodingStreakSeconds)*time.Second)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "daemon=%t remote_sync=%t\n", out.DaemonRunning, out.RemoteSync)
			for rank, entry := range out.Leaderboard {
				marker := " "
				if entry.You {
					marker = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d. %s\t%.1f\n", marker, rank+1, entry.Username, entry.SessionEarned)
			}
			return nil
		},
	}
}

func newFeedCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Feed the dino (costs coins)",
		RunE:  actionRunE(dataDir, sessionin.CLIHandler.Feed),
	}
}

func newPetCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "pet",
		Short: "Pet the dino",
		RunE:  actionRunE(dataDir, sessionin.CLIHandler.Pet),
	}
}

func newBreakCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "break",
		Short: "Take a screen break with the dino",
		RunE:  actionRunE(dataDir, sessionin.CLIHandler.Break),
	}
}

func actionRunE(dataDir *string, action func(sessionin.CLIHandler, context.Context) (sessiondto.ActionOutput, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		app, err := loadApp(*dataDir)
		if err != nil {
			return err
		}
		out, err := action(app.SessionCLI, context.Background())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "health=%.0f happiness=%.0f energy=%.0f coins=%.1f\n", out.Health, out.Happiness, out.Energy, out.Balance)
		return nil
	}
}

func newSyncCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push presence and refresh the leaderboard now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			peers, err := app.SessionCLI.SyncNow(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "synced with %d peers\n", peers)
			return nil
		},
	}
}

func newRulesCmd(dataDir *string) *cobra.Command {
	rules := &cobra.Command{Use: "rules", Short: "Classification rule commands"}

	rules.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show user rule overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			overrides, err := app.ActivityCLI.Overrides(context.Background())
			if err != nil {
				return err
			}
			if len(overrides) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no overrides")
				return nil
			}
			for _, rule := range overrides {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t-> %s\n", rule.Match, rule.Pattern, rule.Category)
			}
			return nil
		},
	})

	rules.AddCommand(&cobra.Command{
		Use:   "reload",
		Short: "Reload rules from disk (hits the daemon when running)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.SessionCLI.RulesReload(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "rules reloaded")
			return nil
		},
	})

	var testApp, testURL, testTitle string
	test := &cobra.Command{
		Use:   "test --app <name>",
		Short: "Classify a signal without touching the pet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			out, err := app.ActivityCLI.Classify(context.Background(), activitydto.SignalInput{
				AppName: testApp,
				URL:     testURL,
				Title:   testTitle,
			}, 100)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "category=%s state=%s productive=%t", out.Category, out.State, out.Productive)
			if out.Domain != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " domain=%s", out.Domain)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), " rate=%.1f/min\n", out.RatePerMinute)
			return nil
		},
	}
	test.Flags().StringVar(&testApp, "app", "", "frontmost app name")
	test.Flags().StringVar(&testURL, "url", "", "browser url")
	test.Flags().StringVar(&testTitle, "title", "", "window title")
	rules.AddCommand(test)

	return rules
}

func newIDCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Show your friend code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", app.Username, app.FriendCode)
			return nil
		},
	}
}

func newDaemonCmd(dataDir *string) *cobra.Command {
	daemon := &cobra.Command{Use: "daemon", Short: "Manage the sampler daemon"}

	daemon.AddCommand(&cobra.Command{
		Use:     "run",
		Aliases: []string{"__run"},
		Short:   "Run the daemon in the foreground",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.SessionCLI.RunDaemon(ctx)
		},
	})

	daemon.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.SessionCLI.StartDaemon(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "daemon started")
			return nil
		},
	})

	daemon.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			if err := app.SessionCLI.StopDaemon(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "daemon stopped")
			return nil
		},
	})

	daemon.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			status, err := app.SessionCLI.DaemonStatus(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "running=%t pid=%d socket=%s\n", status.Running, status.PID, status.SocketPath)
			return nil
		},
	})

	var logTail int
	logs := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon logs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			payload, err := app.SessionCLI.DaemonLogs(context.Background(), logTail)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}
	logs.Flags().IntVar(&logTail, "tail", 50, "log lines to show from the end")
	daemon.AddCommand(logs)

	return daemon
}
