package domain

import (
	"strings"
	"testing"
	"time"
)

func TestFriendCodeShapeAndStability(t *testing.T) {
	t.Parallel()

	code := FriendCode("user-1234", "alice")
	if !strings.HasPrefix(code, "ALIC-") {
		t.Fatalf("code = %q, want ALIC- prefix", code)
	}
	if len(code) != len("ALIC-")+6 {
		t.Fatalf("code = %q, want 6 hash characters", code)
	}
	if again := FriendCode("user-1234", "alice"); again != code {
		t.Fatalf("code not stable: %q vs %q", code, again)
	}
	if other := FriendCode("user-9999", "alice"); other == code {
		t.Fatal("different users must get different codes")
	}
}

func TestFriendCodeDegenerateUsername(t *testing.T) {
	t.Parallel()

	code := FriendCode("user-1", "@!?")
	if !strings.HasPrefix(code, "DINO-") {
		t.Fatalf("code = %q, want DINO- fallback prefix", code)
	}
}

func TestRankOrdersBySessionEarned(t *testing.T) {
	t.Parallel()

	entries := []Presence{
		{Username: "bob", SessionEarned: 5},
		{Username: "carol", SessionEarned: 12},
		{Username: "alice", SessionEarned: 5},
	}
	ranked := Rank(entries)
	if ranked[0].Username != "carol" || ranked[1].Username != "alice" || ranked[2].Username != "bob" {
		t.Fatalf("ranked = %v", ranked)
	}
	if entries[0].Username != "bob" {
		t.Fatal("Rank mutated its input")
	}
}

func TestOvertaken(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	local := Presence{UserID: "me", SessionEarned: 10}
	peers := []Presence{
		{UserID: "me", SessionEarned: 10, LastActivity: now},
		{UserID: "a", Username: "a", SessionEarned: 10.5, LastActivity: now},
		{UserID: "b", Username: "b", SessionEarned: 12, LastActivity: now},
		{UserID: "c", Username: "c", SessionEarned: 20, LastActivity: now.Add(-time.Hour)},
	}

	peer, ok := Overtaken(local, peers, 1.0, now)
	if !ok {
		t.Fatal("expected an overtaking peer")
	}
	// a leads by only 0.5 (< margin); c is stale; b is the closest qualifying peer.
	if peer.UserID != "b" {
		t.Fatalf("peer = %q, want b", peer.UserID)
	}

	if _, ok := Overtaken(Presence{UserID: "me", SessionEarned: 19.5}, peers, 1.0, now); ok {
		t.Fatal("no active peer leads by the margin")
	}
}

func TestActiveWithin(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := Presence{LastActivity: now.Add(-10 * time.Minute)}
	stale := Presence{LastActivity: now.Add(-40 * time.Minute)}
	if !fresh.ActiveWithin(now, ActiveWindow) || stale.ActiveWithin(now, ActiveWindow) {
		t.Fatal("active window misjudged")
	}
	if (Presence{}).ActiveWithin(now, ActiveWindow) {
		t.Fatal("zero LastActivity must be inactive")
	}
}
