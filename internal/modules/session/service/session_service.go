package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	activitydomain "dinod/internal/modules/activity/domain"
	activityout "dinod/internal/modules/activity/port/out"
	notifydomain "dinod/internal/modules/notify/domain"
	notifyout "dinod/internal/modules/notify/port/out"
	petdomain "dinod/internal/modules/pet/domain"
	"dinod/internal/modules/session/domain"
	sessionout "dinod/internal/modules/session/port/out"
	socialdomain "dinod/internal/modules/social/domain"
	socialout "dinod/internal/modules/social/port/out"
	"dinod/internal/platform/clock"
	apperrors "dinod/internal/platform/errors"
)

const (
	sampleInterval = 3 * time.Second
	settleInterval = 60 * time.Second
	healthInterval = 30 * time.Second
	syncInterval   = 120 * time.Second

	daemonStartTimeout  = 5 * time.Second
	feedCost            = 5.0
	breakBonus          = 2.0
	defaultLogTailLines = 50

	// A sleeping laptop produces one giant elapsed interval on wake. Cap it
	// so the pet doesn't starve or feast on time that never ticked.
	maxElapsed = 5 * time.Minute
)

// Classifier is the slice of the activity module the sampler needs.
type Classifier interface {
	Classify(ctx context.Context, sig activitydomain.Signal, health float64) activitydomain.Classification
	Effect(category activitydomain.Category) activitydomain.Effect
	Reload(ctx context.Context) error
}

type runtimeState struct {
	cancel      context.CancelFunc
	leaderboard []socialdomain.Presence
}

// SessionService owns the session aggregate. All mutation happens behind one
// mutex; the engines it drives are pure.
type SessionService struct {
	userID   string
	username string
	dataDir  string

	clock      clock.Clock
	log        hclog.Logger
	classifier Classifier
	provider   activityout.Provider
	notifier   notifyout.Notifier
	presence   socialout.PresenceClient // nil means local-only
	snapshot   sessionout.SnapshotStore
	daemon     sessionout.DaemonStore
	ipcServer  sessionout.IPCServer
	ipcClient  sessionout.IPCClient

	mu      sync.Mutex
	session domain.Session
	dirty   bool
	runtime *runtimeState
}

func NewSessionService(
	userID string,
	username string,
	dataDir string,
	clk clock.Clock,
	log hclog.Logger,
	classifier Classifier,
	provider activityout.Provider,
	notifier notifyout.Notifier,
	presence socialout.PresenceClient,
	snapshot sessionout.SnapshotStore,
	daemon sessionout.DaemonStore,
	ipcServer sessionout.IPCServer,
	ipcClient sessionout.IPCClient,
) *SessionService {
	return &SessionService{
		userID:     userID,
		username:   username,
		dataDir:    dataDir,
		clock:      clk,
		log:        log,
		classifier: classifier,
		provider:   provider,
		notifier:   notifier,
		presence:   presence,
		snapshot:   snapshot,
		daemon:     daemon,
		ipcServer:  ipcServer,
		ipcClient:  ipcClient,
	}
}

// RunDaemon is the sampler loop. It blocks until ctx is cancelled or the IPC
// server fails.
func (s *SessionService) RunDaemon(ctx context.Context) error {
	if err := s.cleanupStaleArtifacts(ctx); err != nil {
		return err
	}

	session, err := s.loadOrDefault(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.session = session
	s.runtime = &runtimeState{cancel: cancel}
	s.mu.Unlock()

	if err := s.daemon.WritePID(ctx, os.Getpid()); err != nil {
		cancel()
		return err
	}
	if err := s.snapshot.Save(ctx, session); err != nil {
		cancel()
		_ = s.daemon.ClearPID(ctx)
		return err
	}
	s.log.Info("daemon started", "user", s.username, "data_dir", s.dataDir)

	ipcErr := make(chan error, 1)
	go func() {
		if s.ipcServer == nil {
			ipcErr <- fmt.Errorf("ipc server is not configured")
			return
		}
		ipcErr <- s.ipcServer.Serve(runCtx, s.daemon.SocketPath(), s)
	}()

	sample := time.NewTicker(sampleInterval)
	settle := time.NewTicker(settleInterval)
	health := time.NewTicker(healthInterval)
	remote := time.NewTicker(syncInterval)
	defer sample.Stop()
	defer settle.Stop()
	defer health.Stop()
	defer remote.Stop()

	for {
		select {
		case <-runCtx.Done():
			s.cleanupRuntime(context.Background())
			return nil
		case err := <-ipcErr:
			s.cleanupRuntime(context.Background())
			if err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case <-sample.C:
			s.sampleTick(runCtx)
		case <-settle.C:
			s.settleTick(runCtx)
		case <-health.C:
			s.healthTick(runCtx)
		case <-remote.C:
			s.syncTick(runCtx)
		}
	}
}

// sampleTick runs the classification pipeline for one interval. A provider
// failure is a "no signal" tick: the held category keeps accruing.
func (s *SessionService) sampleTick(ctx context.Context) {
	now := s.clock.Now()

	signal, sampleErr := s.provider.Sample(ctx)

	s.mu.Lock()
	session := s.session.Rollover(now)
	elapsed := now.Sub(session.LastTickAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > maxElapsed {
		elapsed = maxElapsed
	}

	previousDomain := session.CurrentDomain
	if sampleErr == nil {
		classification := s.classifier.Classify(ctx, signal, session.Stats.Health)
		session.CurrentCategory = classification.Category
		session.CurrentState = classification.State
		session.CurrentBrowsing = classification.Browsing
		session.CurrentDomain = classification.Domain
	} else if !errors.Is(sampleErr, apperrors.ErrActivityUnavailable) {
		s.log.Warn("activity sample failed", "error", sampleErr)
	}

	category := session.CurrentCategory
	effect := s.classifier.Effect(category)
	session.Stats = session.Stats.ApplyTick(category, effect, elapsed)

	streaks, crossed := session.Streaks.Update(category, session.CurrentBrowsing, elapsed)
	session.Streaks = streaks

	session = session.RecordTime(elapsed)

	breakDue := false
	if category.Productive() {
		before := time.Duration(session.ProductiveSinceBreak) * time.Second
		breakDue = notifydomain.BreakDue(before, elapsed)
		session.ProductiveSinceBreak += elapsed.Seconds()
	}

	session.LastTickAt = now
	s.session = session
	s.dirty = true
	s.mu.Unlock()

	switch crossed {
	case petdomain.StreakEventCoding:
		s.dispatch(ctx, now, notifydomain.EventStreakReward,
			"Coding streak!", "30 minutes in the zone", "Your dino is thrilled. Earnings boosted while the run lasts.")
	case petdomain.StreakEventSocialWarn:
		s.dispatch(ctx, now, notifydomain.EventStreakReward,
			"Doomscroll alert", "15 minutes on social media", "Your dino is getting queasy. Time to switch tabs.")
	}
	if breakDue {
		s.dispatch(ctx, now, notifydomain.EventBreakDue,
			"Break time", "45 minutes of focus", "Stretch your legs. Your dino could use one too.")
	}
	if sampleErr == nil && session.CurrentBrowsing && session.CurrentDomain != previousDomain && session.CurrentDomain != "" {
		s.dispatch(ctx, now, notifydomain.EventWebsiteChanged,
			"Now browsing", session.CurrentDomain, fmt.Sprintf("Classified as %s.", session.CurrentCategory))
	}

	s.persist(ctx)
}

// settleTick books earnings for the elapsed interval and nudges the mood.
func (s *SessionService) settleTick(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	session := s.session.Rollover(now)
	minutes := now.Sub(session.LastSettledAt).Minutes()
	if minutes < 0 {
		minutes = 0
	}

	effect := s.classifier.Effect(session.CurrentCategory)
	ledger, settlement := session.Ledger.Settle(effect.RatePerMinute, session.Stats.Health, session.Streaks.CodingBonus, minutes)
	session.Ledger = ledger
	if settlement.Applied > 0 {
		session.Stats = session.Stats.Nudge(1, 0.5)
	} else if settlement.Applied < 0 {
		session.Stats = session.Stats.Nudge(-0.5, -0.2)
	}
	session.LastSettledAt = now
	s.session = session
	s.dirty = true
	s.mu.Unlock()

	for _, level := range settlement.Milestones {
		s.dispatch(ctx, now, notifydomain.EventMilestone,
			"Milestone!", fmt.Sprintf("%d dumplings earned", level), "Lifetime earnings just crossed a new mark.")
	}
	s.persist(ctx)
}

// healthTick raises throttled health alerts.
func (s *SessionService) healthTick(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	health := s.session.Stats.Health
	s.mu.Unlock()

	switch {
	case health < notifydomain.HealthCriticalBelow:
		s.dispatch(ctx, now, notifydomain.EventHealthCritical,
			"Your dino is dying!", fmt.Sprintf("Health %.0f", health), "Feed it or take a break, fast.")
	case health < notifydomain.HealthWarningBelow:
		s.dispatch(ctx, now, notifydomain.EventHealthWarning,
			"Your dino feels sick", fmt.Sprintf("Health %.0f", health), "Some productive time would help.")
	}
	s.persist(ctx)
}

// syncTick pushes presence to the leaderboard and pulls the peer list.
// Fire-and-forget: failures log and leave the session untouched.
func (s *SessionService) syncTick(ctx context.Context) {
	if s.presence == nil {
		return
	}
	now := s.clock.Now()

	s.mu.Lock()
	local := s.presenceLocked(now)
	s.mu.Unlock()

	if err := s.presence.Push(ctx, local); err != nil {
		s.log.Warn("presence push failed", "error", err)
		return
	}
	peers, err := s.presence.List(ctx)
	if err != nil {
		s.log.Warn("presence list failed", "error", err)
		return
	}

	s.mu.Lock()
	if s.runtime != nil {
		s.runtime.leaderboard = peers
	}
	s.mu.Unlock()

	if peer, ok := socialdomain.Overtaken(local, peers, notifydomain.OvertakeMargin, now); ok {
		s.dispatch(ctx, now, notifydomain.EventSocialOvertaken,
			"Overtaken!", fmt.Sprintf("%s is ahead of you", peer.Username),
			fmt.Sprintf("%.1f vs your %.1f dumplings today.", peer.SessionEarned, local.SessionEarned))
	}
}

func (s *SessionService) presenceLocked(now time.Time) socialdomain.Presence {
	return socialdomain.Presence{
		UserID:        s.userID,
		Username:      s.username,
		State:         string(s.session.CurrentState),
		Health:        s.session.Stats.Health,
		SessionEarned: s.session.Ledger.SessionEarned,
		TotalEarned:   s.session.Ledger.TotalEarned,
		LastActivity:  now,
	}
}

// dispatch applies the notification policy and posts through the notifier.
func (s *SessionService) dispatch(ctx context.Context, now time.Time, kind notifydomain.EventKind, title, subtitle, body string) {
	if s.notifier == nil || title == "" {
		return
	}

	s.mu.Lock()
	if !s.session.NotificationsEnabled || !notifydomain.Allow(kind, s.session.NotifiedAt(kind), now) {
		s.mu.Unlock()
		return
	}
	s.session = s.session.MarkNotified(kind, now)
	s.dirty = true
	s.mu.Unlock()

	if err := s.notifier.Notify(ctx, kind, title, subtitle, body); err != nil {
		s.log.Warn("notification failed", "kind", kind, "error", err)
	}
}

// persist saves the aggregate when it changed. A failed write stays dirty and
// is retried on the next tick.
func (s *SessionService) persist(ctx context.Context) {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	session := s.session
	s.mu.Unlock()

	if err := s.snapshot.Save(ctx, session); err != nil {
		s.log.Error("snapshot save failed", "error", err)
		return
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

func (s *SessionService) loadOrDefault(ctx context.Context) (domain.Session, error) {
	now := s.clock.Now()
	session, err := s.snapshot.Load(ctx)
	switch {
	case err == nil:
		session.UserID = s.userID
		session.Username = s.username
		return session.Rollover(now), nil
	case errors.Is(err, apperrors.ErrNoSnapshot):
		return domain.Default(now, s.userID, s.username), nil
	case errors.Is(err, apperrors.ErrSnapshotCorrupt):
		s.log.Warn("snapshot corrupt, starting fresh", "error", err)
		return domain.Default(now, s.userID, s.username), nil
	default:
		return domain.Session{}, err
	}
}

// --- IPC handler surface ---

func (s *SessionService) Status(ctx context.Context) (sessionout.StatusReport, error) {
	s.mu.Lock()
	rt := s.runtime
	report := sessionout.StatusReport{
		Session:    s.session,
		FriendCode: socialdomain.FriendCode(s.userID, s.username),
		RemoteSync: s.presence != nil,
	}
	if rt != nil {
		report.Leaderboard = rt.leaderboard
	}
	s.mu.Unlock()

	if rt != nil {
		return report, nil
	}

	if s.ipcClient != nil && socketReachable(s.daemon.SocketPath()) {
		return s.ipcClient.Status(ctx, s.daemon.SocketPath())
	}

	session, err := s.loadOrDefault(ctx)
	if err != nil {
		return sessionout.StatusReport{}, err
	}
	report.Session = session
	return report, nil
}

func (s *SessionService) Feed(ctx context.Context) (domain.Session, error) {
	return s.action(ctx, "Feed", func(session domain.Session) (domain.Session, error) {
		ledger, err := session.Ledger.Spend(feedCost)
		if err != nil {
			return session, err
		}
		session.Ledger = ledger
		session.Stats = session.Stats.Feed()
		// Transient display state until the next sample reclassifies.
		session.CurrentState = activitydomain.StateEating
		return session, nil
	})
}

func (s *SessionService) Pet(ctx context.Context) (domain.Session, error) {
	return s.action(ctx, "Pet", func(session domain.Session) (domain.Session, error) {
		session.Stats = session.Stats.Pet()
		session.CurrentState = activitydomain.StateExcited
		return session, nil
	})
}

func (s *SessionService) Break(ctx context.Context) (domain.Session, error) {
	return s.action(ctx, "Break", func(session domain.Session) (domain.Session, error) {
		session.Stats = session.Stats.Break()
		session.Streaks = session.Streaks.ResetDistractions()
		session.ProductiveSinceBreak = 0
		ledger, _ := session.Ledger.Award(breakBonus)
		session.Ledger = ledger
		return session, nil
	})
}

// action runs a care action either in-process, through the daemon, or
// directly against the snapshot when no daemon is up. The mutated session is
// persisted before returning.
func (s *SessionService) action(ctx context.Context, name string, mutate func(domain.Session) (domain.Session, error)) (domain.Session, error) {
	s.mu.Lock()
	rt := s.runtime
	s.mu.Unlock()

	if rt == nil && s.ipcClient != nil && socketReachable(s.daemon.SocketPath()) {
		switch name {
		case "Feed":
			return s.ipcClient.Feed(ctx, s.daemon.SocketPath())
		case "Pet":
			return s.ipcClient.Pet(ctx, s.daemon.SocketPath())
		case "Break":
			return s.ipcClient.Break(ctx, s.daemon.SocketPath())
		}
	}

	if rt != nil {
		s.mu.Lock()
		session, err := mutate(s.session.Rollover(s.clock.Now()))
		if err != nil {
			s.mu.Unlock()
			return domain.Session{}, err
		}
		s.session = session
		s.dirty = true
		s.mu.Unlock()
		s.persist(ctx)
		return session, nil
	}

	session, err := s.loadOrDefault(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	session, err = mutate(session)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.snapshot.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionService) SyncNow(ctx context.Context) (int, error) {
	s.mu.Lock()
	rt := s.runtime
	s.mu.Unlock()

	if rt == nil {
		if s.ipcClient != nil && socketReachable(s.daemon.SocketPath()) {
			return s.ipcClient.SyncNow(ctx, s.daemon.SocketPath())
		}
		return 0, apperrors.ErrDaemonNotRunning
	}
	if s.presence == nil {
		return 0, apperrors.ErrRemoteSyncUnavailable
	}
	s.syncTick(ctx)
	s.mu.Lock()
	count := 0
	if s.runtime != nil {
		count = len(s.runtime.leaderboard)
	}
	s.mu.Unlock()
	return count, nil
}

func (s *SessionService) RulesReload(ctx context.Context) error {
	s.mu.Lock()
	rt := s.runtime
	s.mu.Unlock()

	if rt == nil && s.ipcClient != nil && socketReachable(s.daemon.SocketPath()) {
		return s.ipcClient.RulesReload(ctx, s.daemon.SocketPath())
	}
	return s.classifier.Reload(ctx)
}

func (s *SessionService) Stop(ctx context.Context) error {
	return s.StopDaemon(ctx)
}

// --- daemon lifecycle ---

func (s *SessionService) StartDaemon(ctx context.Context) error {
	if err := s.cleanupStaleArtifacts(ctx); err != nil {
		return err
	}
	status, err := s.DaemonStatus(ctx)
	if err == nil && status.Running {
		if socketReachable(s.daemon.SocketPath()) {
			return nil
		}
		return fmt.Errorf("%w: daemon process is alive but socket is unavailable", apperrors.ErrDaemonStartFailed)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.daemon.LogPath()), 0o755); err != nil {
		return fmt.Errorf("create daemon log dir: %w", err)
	}
	if err := os.Remove(s.daemon.SocketPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale daemon socket: %w", err)
	}

	logFile, err := os.OpenFile(s.daemon.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(execPath, "daemon", "__run", "--data", s.dataDir)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	if err := s.daemon.WritePID(ctx, cmd.Process.Pid); err != nil {
		return err
	}
	_ = cmd.Process.Release()

	if err := waitForSocket(s.daemon.SocketPath(), daemonStartTimeout); err != nil {
		_ = s.daemon.ClearPID(ctx)
		return fmt.Errorf("%w: %v", apperrors.ErrDaemonStartFailed, err)
	}
	return nil
}

func (s *SessionService) StopDaemon(ctx context.Context) error {
	s.mu.Lock()
	rt := s.runtime
	s.mu.Unlock()
	if rt != nil && rt.cancel != nil {
		rt.cancel()
		return nil
	}

	if s.ipcClient != nil {
		_ = s.ipcClient.Stop(ctx, s.daemon.SocketPath())
	}

	pid, err := s.daemon.ReadPID(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_ = os.Remove(s.daemon.SocketPath())
			return nil
		}
		return err
	}
	if pid <= 0 || !processAlive(pid) {
		_ = s.daemon.ClearPID(ctx)
		_ = os.Remove(s.daemon.SocketPath())
		return nil
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("stop daemon pid=%d: %w", pid, err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if processAlive(pid) {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
	if err := s.daemon.ClearPID(ctx); err != nil {
		return err
	}
	_ = os.Remove(s.daemon.SocketPath())
	return nil
}

func (s *SessionService) DaemonStatus(ctx context.Context) (sessionout.DaemonRuntimeStatus, error) {
	out := sessionout.DaemonRuntimeStatus{SocketPath: s.daemon.SocketPath()}
	pid, err := s.daemon.ReadPID(ctx)
	if err == nil {
		out.PID = pid
		out.Running = processAlive(pid)
	}
	return out, nil
}

func (s *SessionService) DaemonLogs(_ context.Context, tail int) (string, error) {
	if tail <= 0 {
		tail = defaultLogTailLines
	}
	file, err := os.Open(s.daemon.LogPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("open daemon log: %w", err)
	}
	defer file.Close()

	lines := make([]string, 0, tail)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if len(lines) < tail {
			lines = append(lines, line)
			continue
		}
		copy(lines, lines[1:])
		lines[len(lines)-1] = line
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("scan daemon log: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *SessionService) cleanupRuntime(ctx context.Context) {
	s.mu.Lock()
	rt := s.runtime
	s.runtime = nil
	session := s.session
	s.mu.Unlock()
	if rt != nil {
		if err := s.snapshot.Save(ctx, session); err != nil {
			s.log.Error("final snapshot save failed", "error", err)
		}
	}
	_ = s.daemon.ClearPID(ctx)
	_ = os.Remove(s.daemon.SocketPath())
	s.log.Info("daemon stopped")
}

func (s *SessionService) cleanupStaleArtifacts(ctx context.Context) error {
	pid, err := s.daemon.ReadPID(ctx)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	} else if pid > 0 && !processAlive(pid) {
		_ = s.daemon.ClearPID(ctx)
		_ = os.Remove(s.daemon.SocketPath())
	}

	if _, statErr := os.Stat(s.daemon.SocketPath()); statErr == nil {
		if !socketReachable(s.daemon.SocketPath()) {
			if removeErr := os.Remove(s.daemon.SocketPath()); removeErr != nil && !os.IsNotExist(removeErr) {
				return fmt.Errorf("remove stale daemon socket: %w", removeErr)
			}
		}
	}
	return nil
}

func waitForSocket(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if socketReachable(path) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("daemon socket not ready: %s", path)
}

func socketReachable(path string) bool {
	conn, err := net.DialTimeout("unix", path, 150*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
