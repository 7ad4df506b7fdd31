package domain

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"
)

// ActiveWindow is how recently a peer must have reported in to count as
// present on the leaderboard.
const ActiveWindow = 30 * time.Minute

// Presence is one user's leaderboard entry.
type Presence struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	State         string    `json:"state"`
	Health        float64   `json:"health"`
	SessionEarned float64   `json:"session_earned"`
	TotalEarned   float64   `json:"total_earned"`
	LastActivity  time.Time `json:"last_activity"`
}

func (p Presence) ActiveWithin(now time.Time, window time.Duration) bool {
	return !p.LastActivity.IsZero() && now.Sub(p.LastActivity) <= window
}

// FriendCode derives a short shareable handle from the user identity.
func FriendCode(userID, username string) string {
	prefix := strings.ToUpper(username)
	prefix = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, prefix)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	if prefix == "" {
		prefix = "DINO"
	}

	h := fnv.New32a()
	h.Write([]byte(userID + "-" + username))
	return fmt.Sprintf("%s-%06X", prefix, h.Sum32()&0xFFFFFF)
}

// Rank orders entries by session earnings, best first. Ties break on
// username so the order is stable across refreshes.
func Rank(entries []Presence) []Presence {
	out := make([]Presence, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SessionEarned != out[j].SessionEarned {
			return out[i].SessionEarned > out[j].SessionEarned
		}
		return out[i].Username < out[j].Username
	})
	return out
}

// Overtaken returns the closest active peer whose session earnings exceed
// the local user's by at least margin, or false when nobody is ahead.
func Overtaken(local Presence, peers []Presence, margin float64, now time.Time) (Presence, bool) {
	var (
		closest Presence
		found   bool
	)
	for _, peer := range peers {
		if peer.UserID == local.UserID || !peer.ActiveWithin(now, ActiveWindow) {
			continue
		}
		if peer.SessionEarned-local.SessionEarned < margin {
			continue
		}
		if !found || peer.SessionEarned < closest.SessionEarned {
			closest = peer
			found = true
		}
	}
	return closest, found
}
