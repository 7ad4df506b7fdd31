package service

import (
	"context"
	"errors"
	"testing"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	activitydomain "dinod/internal/modules/activity/domain"
	notifydomain "dinod/internal/modules/notify/domain"
	"dinod/internal/modules/session/domain"
	socialdomain "dinod/internal/modules/social/domain"
	apperrors "dinod/internal/platform/errors"
)

type fakeClock struct {
	values []time.Time
	index  int
}

func (c *fakeClock) Now() time.Time {
	if c.index >= len(c.values) {
		return c.values[len(c.values)-1]
	}
	value := c.values[c.index]
	c.index++
	return value
}

type fakeProvider struct {
	signal activitydomain.Signal
	err    error
}

func (p *fakeProvider) Sample(context.Context) (activitydomain.Signal, error) {
	return p.signal, p.err
}

type fakeClassifier struct {
	classification activitydomain.Classification
	effects        map[activitydomain.Category]activitydomain.Effect
	reloads        int
}

func (c *fakeClassifier) Classify(context.Context, activitydomain.Signal, float64) activitydomain.Classification {
	return c.classification
}

func (c *fakeClassifier) Effect(category activitydomain.Category) activitydomain.Effect {
	return c.effects[category]
}

func (c *fakeClassifier) Reload(context.Context) error {
	c.reloads++
	return nil
}

type sentNotification struct {
	kind  notifydomain.EventKind
	title string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (n *fakeNotifier) Notify(_ context.Context, kind notifydomain.EventKind, title, _, _ string) error {
	n.sent = append(n.sent, sentNotification{kind: kind, title: title})
	return nil
}

type fakeSnapshotStore struct {
	session domain.Session
	loaded  bool
	saves   int
	saveErr error
	loadErr error
}

func (s *fakeSnapshotStore) Load(context.Context) (domain.Session, error) {
	if s.loadErr != nil {
		return domain.Session{}, s.loadErr
	}
	if !s.loaded {
		return domain.Session{}, apperrors.ErrNoSnapshot
	}
	return s.session, nil
}

func (s *fakeSnapshotStore) Save(_ context.Context, session domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.session = session
	s.loaded = true
	s.saves++
	return nil
}

type fakeDaemonStore struct {
	pid int
}

func (s *fakeDaemonStore) WritePID(_ context.Context, pid int) error { s.pid = pid; return nil }
func (s *fakeDaemonStore) ReadPID(context.Context) (int, error)      { return s.pid, nil }
func (s *fakeDaemonStore) ClearPID(context.Context) error            { s.pid = 0; return nil }
func (s *fakeDaemonStore) SocketPath() string                        { return "/nonexistent/daemon.sock" }
func (s *fakeDaemonStore) LogPath() string                           { return "/nonexistent/daemon.log" }

type fakePresence struct {
	pushed []socialdomain.Presence
	peers  []socialdomain.Presence
	err    error
}

func (p *fakePresence) Push(_ context.Context, presence socialdomain.Presence) error {
	if p.err != nil {
		return p.err
	}
	p.pushed = append(p.pushed, presence)
	return nil
}

func (p *fakePresence) List(context.Context) ([]socialdomain.Presence, error) {
	return p.peers, p.err
}

type fixture struct {
	svc        *SessionService
	clock      *fakeClock
	provider   *fakeProvider
	classifier *fakeClassifier
	notifier   *fakeNotifier
	snapshot   *fakeSnapshotStore
	presence   *fakePresence
}

func newFixture(t *testing.T, times ...time.Time) *fixture {
	t.Helper()
	if len(times) == 0 {
		times = []time.Time{time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	}
	f := &fixture{
		clock:    &fakeClock{values: times},
		provider: &fakeProvider{signal: activitydomain.Signal{AppName: "Code"}},
		classifier: &fakeClassifier{
			classification: activitydomain.Classification{
				Category: activitydomain.CategoryCoding,
				State:    activitydomain.StateCoding,
			},
			effects: activitydomain.DefaultEffects(),
		},
		notifier: &fakeNotifier{},
		snapshot: &fakeSnapshotStore{},
		presence: &fakePresence{},
	}
	f.svc = NewSessionService(
		"user-1", "alice", t.TempDir(),
		f.clock, hclog.NewNullLogger(),
		f.classifier, f.provider, f.notifier, f.presence,
		f.snapshot, &fakeDaemonStore{}, nil, nil,
	)
	return f
}

func (f *fixture) seed(session domain.Session) {
	f.svc.session = session
	f.svc.runtime = &runtimeState{cancel: func() {}}
	f.snapshot.session = session
	f.snapshot.loaded = true
}

func TestSampleTickAppliesEffectAndStreak(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start.Add(3*time.Second))

	session := domain.Default(start, "user-1", "alice")
	session.Stats.Health = 50
	f.seed(session)

	f.svc.sampleTick(context.Background())

	got := f.svc.session
	if got.CurrentCategory != activitydomain.CategoryCoding {
		t.Fatalf("category = %q", got.CurrentCategory)
	}
	if got.Stats.Health != 51 {
		t.Fatalf("health = %v, want 51 after one coding tick", got.Stats.Health)
	}
	if got.Streaks.Coding != 3 {
		t.Fatalf("coding streak = %v, want 3", got.Streaks.Coding)
	}
	if got.TimeSpent[string(activitydomain.StateCoding)] != 3 {
		t.Fatalf("time spent = %v", got.TimeSpent)
	}
	if got.ProductiveSinceBreak != 3 {
		t.Fatalf("productive since break = %v", got.ProductiveSinceBreak)
	}
	if f.snapshot.saves == 0 {
		t.Fatal("tick did not persist")
	}
}

func TestSampleTickNoSignalHoldsCategory(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start.Add(3*time.Second))
	f.provider.err = apperrors.ErrActivityUnavailable

	session := domain.Default(start, "user-1", "alice")
	session.CurrentCategory = activitydomain.CategoryCoding
	session.CurrentState = activitydomain.StateCoding
	session.Stats.Health = 50
	f.seed(session)

	f.svc.sampleTick(context.Background())

	got := f.svc.session
	if got.CurrentCategory != activitydomain.CategoryCoding {
		t.Fatalf("category changed on no-signal tick: %q", got.CurrentCategory)
	}
	if got.Stats.Health != 51 {
		t.Fatalf("held category stopped accruing: health = %v", got.Stats.Health)
	}
	if got.Streaks.Coding != 3 {
		t.Fatalf("held category stopped streaking: %v", got.Streaks.Coding)
	}
}

func TestSampleTickRollsOverAtMidnight(t *testing.T) {
	t.Parallel()

	yesterday := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	today := time.Date(2025, 3, 2, 0, 0, 30, 0, time.UTC)
	f := newFixture(t, today)

	session := domain.Default(yesterday, "user-1", "alice")
	session.Ledger.Balance = 30
	session.Ledger.TotalEarned = 30
	session.Ledger.SessionEarned = 30
	session.TimeSpent = map[string]float64{"coding": 1000}
	f.seed(session)

	f.svc.sampleTick(context.Background())

	got := f.svc.session
	if got.Ledger.SessionEarned != 0 {
		t.Fatalf("session earned survived rollover: %v", got.Ledger.SessionEarned)
	}
	if got.Ledger.Balance != 30 || got.Ledger.TotalEarned != 30 {
		t.Fatalf("lifetime totals lost: %+v", got.Ledger)
	}
	if !got.SessionStartedAt.Equal(today) {
		t.Fatalf("session start = %v", got.SessionStartedAt)
	}
}

func TestSettleTickEndToEndCoding(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start.Add(5*time.Minute))

	// coding at 2.0/min, health 50: no multipliers apply.
	session := domain.Default(start, "user-1", "alice")
	session.Stats.Health = 50
	session.CurrentCategory = activitydomain.CategoryCoding
	session.CurrentState = activitydomain.StateCoding
	f.seed(session)

	f.svc.settleTick(context.Background())

	got := f.svc.session
	if got.Ledger.SessionEarned != 10.0 || got.Ledger.Balance != 10.0 {
		t.Fatalf("ledger = %+v, want sessionEarned 10.0 balance 10.0", got.Ledger)
	}
	if got.Stats.Happiness != 51 || got.Stats.Energy != 50.5 {
		t.Fatalf("positive earn nudge missing: %+v", got.Stats)
	}
	// +10 crossed the first milestone.
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].kind != notifydomain.EventMilestone {
		t.Fatalf("notifications = %+v, want one milestone", f.notifier.sent)
	}
}

func TestSettleTickSocialDrainClampsAtZero(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start.Add(10*time.Minute))

	session := domain.Default(start, "user-1", "alice")
	session.Stats.Health = 90 // high health must not soften the loss
	session.Ledger.Balance = 1.0
	session.Ledger.TotalEarned = 1.0
	session.CurrentCategory = activitydomain.CategorySocial
	session.CurrentState = activitydomain.BrowsingState(activitydomain.CategorySocial)
	f.seed(session)

	f.svc.settleTick(context.Background())

	got := f.svc.session
	if got.Ledger.Balance != 0 {
		t.Fatalf("balance = %v, want 0", got.Ledger.Balance)
	}
	if got.Ledger.TotalEarned != 1.0 {
		t.Fatalf("total earned moved on loss: %v", got.Ledger.TotalEarned)
	}
	if got.Stats.Happiness != 49.5 {
		t.Fatalf("negative nudge missing: %+v", got.Stats)
	}
}

func TestHealthTickThrottled(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	times := make([]time.Time, 0, 20)
	for i := 0; i < 19; i++ {
		times = append(times, start.Add(time.Duration(i)*30*time.Second))
	}
	f := newFixture(t, times...)

	session := domain.Default(start, "user-1", "alice")
	session.Stats.Health = 20
	f.seed(session)

	// 19 health ticks cover 9 minutes: one critical fits in the 10m window.
	for i := 0; i < 19; i++ {
		f.svc.healthTick(context.Background())
	}
	critical := 0
	for _, sent := range f.notifier.sent {
		if sent.kind == notifydomain.EventHealthCritical {
			critical++
		}
	}
	if critical != 1 {
		t.Fatalf("critical notifications = %d, want 1", critical)
	}
}

func TestHealthTickRespectsDisableToggle(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start)

	session := domain.Default(start, "user-1", "alice")
	session.Stats.Health = 10
	session.NotificationsEnabled = false
	f.seed(session)

	f.svc.healthTick(context.Background())
	if len(f.notifier.sent) != 0 {
		t.Fatalf("notifications sent while disabled: %+v", f.notifier.sent)
	}
}

func TestFeedSpendsThenBoosts(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start, start)

	session := domain.Default(start, "user-1", "alice")
	session.Stats.Health = 40
	session.Ledger.Balance = 7
	f.seed(session)

	got, err := f.svc.Feed(context.Background())
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if got.Ledger.Balance != 2 {
		t.Fatalf("balance = %v, want 2", got.Ledger.Balance)
	}
	if got.Stats.Health != 60 || got.Stats.Happiness != 65 {
		t.Fatalf("stats = %+v", got.Stats)
	}
}

func TestFeedInsufficientFunds(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start, start)

	session := domain.Default(start, "user-1", "alice")
	session.Ledger.Balance = 3
	f.seed(session)

	if _, err := f.svc.Feed(context.Background()); !errors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if f.svc.session.Ledger.Balance != 3 {
		t.Fatalf("balance mutated on rejected feed: %v", f.svc.session.Ledger.Balance)
	}
}

func TestBreakResetsDistractionsAndAwards(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start, start)

	session := domain.Default(start, "user-1", "alice")
	session.Stats.Health = 40
	session.Streaks.Social = 500
	session.Streaks.Browsing = 900
	session.ProductiveSinceBreak = 2000
	f.seed(session)

	got, err := f.svc.Break(context.Background())
	if err != nil {
		t.Fatalf("Break: %v", err)
	}
	if got.Streaks.Social != 0 || got.Streaks.Browsing != 0 {
		t.Fatalf("distraction streaks kept: %+v", got.Streaks)
	}
	if got.ProductiveSinceBreak != 0 {
		t.Fatalf("productive counter kept: %v", got.ProductiveSinceBreak)
	}
	if got.Ledger.Balance != 2.0 {
		t.Fatalf("break bonus missing: %v", got.Ledger.Balance)
	}
}

func TestSyncTickPushesAndDetectsOvertake(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start)
	f.presence.peers = []socialdomain.Presence{
		{UserID: "rival", Username: "bob", SessionEarned: 8, LastActivity: start},
	}

	session := domain.Default(start, "user-1", "alice")
	session.Ledger.SessionEarned = 5
	f.seed(session)

	f.svc.syncTick(context.Background())

	if len(f.presence.pushed) != 1 || f.presence.pushed[0].SessionEarned != 5 {
		t.Fatalf("pushed = %+v", f.presence.pushed)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].kind != notifydomain.EventSocialOvertaken {
		t.Fatalf("notifications = %+v, want one overtake", f.notifier.sent)
	}
	if len(f.svc.runtime.leaderboard) != 1 {
		t.Fatal("leaderboard cache not updated")
	}
}

func TestSyncTickSwallowsRemoteFailure(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start)
	f.presence.err = apperrors.ErrRemoteSyncUnavailable

	session := domain.Default(start, "user-1", "alice")
	session.Ledger.Balance = 9
	f.seed(session)

	f.svc.syncTick(context.Background())
	if f.svc.session.Ledger.Balance != 9 {
		t.Fatal("remote failure touched local state")
	}
}

func TestLoadOrDefaultCorruptSnapshot(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start)
	f.snapshot.loadErr = apperrors.ErrSnapshotCorrupt

	session, err := f.svc.loadOrDefault(context.Background())
	if err != nil {
		t.Fatalf("loadOrDefault: %v", err)
	}
	if session.Stats.Health != 100 || session.Ledger.Balance != 0 {
		t.Fatalf("corrupt snapshot did not fall back to default: %+v", session)
	}
}

func TestRulesReloadInProcess(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start)
	f.seed(domain.Default(start, "user-1", "alice"))

	if err := f.svc.RulesReload(context.Background()); err != nil {
		t.Fatalf("RulesReload: %v", err)
	}
	if f.classifier.reloads != 1 {
		t.Fatalf("reloads = %d, want 1", f.classifier.reloads)
	}
}
