package domain

import (
	"time"

	activitydomain "dinod/internal/modules/activity/domain"
	economydomain "dinod/internal/modules/economy/domain"
	notifydomain "dinod/internal/modules/notify/domain"
	petdomain "dinod/internal/modules/pet/domain"
)

// Session is the persisted aggregate: everything the daemon knows about one
// user across one day plus the lifetime totals that survive rollover.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`

	Stats   petdomain.Stats      `json:"stats"`
	Ledger  economydomain.Ledger `json:"ledger"`
	Streaks petdomain.Streaks    `json:"streaks"`

	CurrentCategory activitydomain.Category  `json:"current_category"`
	CurrentState    activitydomain.DinoState `json:"current_state"`
	CurrentBrowsing bool                     `json:"current_browsing"`
	CurrentDomain   string                   `json:"current_domain"`

	TimeSpent            map[string]float64                   `json:"time_spent"`
	LastNotified         map[notifydomain.EventKind]time.Time `json:"last_notified"`
	ProductiveSinceBreak float64                              `json:"productive_since_break"`
	NotificationsEnabled bool                                 `json:"notifications_enabled"`

	SessionStartedAt time.Time `json:"session_started_at"`
	LastTickAt       time.Time `json:"last_tick_at"`
	LastSettledAt    time.Time `json:"last_settled_at"`
}

// Default is a brand-new session: full health, neutral mood, empty wallet.
func Default(now time.Time, userID, username string) Session {
	return Session{
		UserID:               userID,
		Username:             username,
		Stats:                petdomain.DefaultStats(),
		Ledger:               economydomain.NewLedger(),
		CurrentCategory:      activitydomain.CategoryIdle,
		CurrentState:         activitydomain.StateIdle,
		TimeSpent:            map[string]float64{},
		LastNotified:         map[notifydomain.EventKind]time.Time{},
		NotificationsEnabled: true,
		SessionStartedAt:     now,
		LastTickAt:           now,
		LastSettledAt:        now,
	}
}

// SameDay reports whether the session was started on now's calendar day.
func (s Session) SameDay(now time.Time) bool {
	y1, m1, d1 := s.SessionStartedAt.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Rollover starts a fresh day: per-day accumulators reset, while balance,
// lifetime earnings, stats and fired milestones carry over. Calling it on a
// session already started today is a no-op.
func (s Session) Rollover(now time.Time) Session {
	if s.SameDay(now) {
		return s
	}
	s.TimeSpent = map[string]float64{}
	s.Ledger = s.Ledger.ResetSession()
	s.Streaks = s.Streaks.Reset()
	s.ProductiveSinceBreak = 0
	s.SessionStartedAt = now
	s.LastTickAt = now
	s.LastSettledAt = now
	return s
}

// RecordTime accrues elapsed seconds against the current display state.
func (s Session) RecordTime(elapsed time.Duration) Session {
	if elapsed <= 0 {
		return s
	}
	spent := make(map[string]float64, len(s.TimeSpent)+1)
	for state, seconds := range s.TimeSpent {
		spent[state] = seconds
	}
	spent[string(s.CurrentState)] += elapsed.Seconds()
	s.TimeSpent = spent
	return s
}

// NotifiedAt returns when kind last fired, zero if never.
func (s Session) NotifiedAt(kind notifydomain.EventKind) time.Time {
	return s.LastNotified[kind]
}

// MarkNotified records a dispatched notification.
func (s Session) MarkNotified(kind notifydomain.EventKind, now time.Time) Session {
	fired := make(map[notifydomain.EventKind]time.Time, len(s.LastNotified)+1)
	for k, at := range s.LastNotified {
		fired[k] = at
	}
	fired[kind] = now
	s.LastNotified = fired
	return s
}
