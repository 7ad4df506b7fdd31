package usecase

import (
	"context"

	"dinod/internal/modules/session/domain"
	"dinod/internal/modules/session/dto"
	sessionin "dinod/internal/modules/session/port/in"
	sessionout "dinod/internal/modules/session/port/out"
	"dinod/internal/modules/session/service"
	socialdomain "dinod/internal/modules/social/domain"
)

type Interactor struct {
	svc *service.SessionService
}

func NewInteractor(svc *service.SessionService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	report, err := i.svc.Status(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	daemon, _ := i.svc.DaemonStatus(ctx)
	return toStatusOutput(report, daemon.Running), nil
}

func (i *Interactor) Feed(ctx context.Context) (dto.ActionOutput, error) {
	session, err := i.svc.Feed(ctx)
	if err != nil {
		return dto.ActionOutput{}, err
	}
	return toActionOutput("Yum! Your dino devours the dumplings.", session), nil
}

func (i *Interactor) Pet(ctx context.Context) (dto.ActionOutput, error) {
	session, err := i.svc.Pet(ctx)
	if err != nil {
		return dto.ActionOutput{}, err
	}
	return toActionOutput("Your dino leans into the scritches.", session), nil
}

func (i *Interactor) Break(ctx context.Context) (dto.ActionOutput, error) {
	session, err := i.svc.Break(ctx)
	if err != nil {
		return dto.ActionOutput{}, err
	}
	return toActionOutput("Break taken. Your dino stretches its tiny arms.", session), nil
}

func (i *Interactor) SyncNow(ctx context.Context) (int, error) {
	return i.svc.SyncNow(ctx)
}

func (i *Interactor) RulesReload(ctx context.Context) error {
	return i.svc.RulesReload(ctx)
}

func (i *Interactor) RunDaemon(ctx context.Context) error {
	return i.svc.RunDaemon(ctx)
}

func (i *Interactor) StartDaemon(ctx context.Context) error {
	return i.svc.StartDaemon(ctx)
}

func (i *Interactor) StopDaemon(ctx context.Context) error {
	return i.svc.StopDaemon(ctx)
}

func (i *Interactor) DaemonLogs(ctx context.Context, tail int) (string, error) {
	return i.svc.DaemonLogs(ctx, tail)
}

func (i *Interactor) DaemonStatus(ctx context.Context) (dto.DaemonStatusOutput, error) {
	status, err := i.svc.DaemonStatus(ctx)
	if err != nil {
		return dto.DaemonStatusOutput{}, err
	}
	return dto.DaemonStatusOutput{
		PID:        status.PID,
		Running:    status.Running,
		SocketPath: status.SocketPath,
	}, nil
}

func toStatusOutput(report sessionout.StatusReport, daemonRunning bool) dto.StatusOutput {
	session := report.Session
	out := dto.StatusOutput{
		Username:            session.Username,
		FriendCode:          report.FriendCode,
		State:               string(session.CurrentState),
		Category:            string(session.CurrentCategory),
		Domain:              session.CurrentDomain,
		Health:              session.Stats.Health,
		Happiness:           session.Stats.Happiness,
		Energy:              session.Stats.Energy,
		Balance:             session.Ledger.Balance,
		SessionEarned:       session.Ledger.SessionEarned,
		TotalEarned:         session.Ledger.TotalEarned,
		CodingStreakSeconds: session.Streaks.Coding,
		SocialStreakSeconds: session.Streaks.Social,
		TimeSpent:           session.TimeSpent,
		SessionStartedAt:    session.SessionStartedAt,
		DaemonRunning:       daemonRunning,
		RemoteSync:          report.RemoteSync,
	}
	for _, peer := range socialdomain.Rank(report.Leaderboard) {
		out.Leaderboard = append(out.Leaderboard, dto.LeaderboardEntry{
			Username:      peer.Username,
			State:         peer.State,
			SessionEarned: peer.SessionEarned,
			TotalEarned:   peer.TotalEarned,
			LastActivity:  peer.LastActivity,
			You:           peer.UserID == session.UserID,
		})
	}
	return out
}

func toActionOutput(message string, session domain.Session) dto.ActionOutput {
	return dto.ActionOutput{
		Message:   message,
		Health:    session.Stats.Health,
		Happiness: session.Stats.Happiness,
		Energy:    session.Stats.Energy,
		Balance:   session.Ledger.Balance,
	}
}
