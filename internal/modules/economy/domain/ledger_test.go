package domain

import (
	"errors"
	"testing"

	apperrors "dinod/internal/platform/errors"
)

func TestSettlePositiveNoMultipliers(t *testing.T) {
	t.Parallel()

	// coding at 2.0/min for 5 minutes, health 50: no bonus, no penalty.
	ledger, settlement := NewLedger().Settle(2.0, 50, false, 5)
	if settlement.Applied != 10.0 {
		t.Fatalf("applied = %v, want 10.0", settlement.Applied)
	}
	if ledger.Balance != 10.0 || ledger.SessionEarned != 10.0 || ledger.TotalEarned != 10.0 {
		t.Fatalf("ledger = %+v", ledger)
	}
}

func TestSettleMultiplierStack(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		health      float64
		streakBonus bool
		want        float64
	}{
		{"streak only", 50, true, 15.0},
		{"health bonus only", 90, false, 12.0},
		{"streak and bonus", 90, true, 18.0},
		{"penalty only", 20, false, 5.0},
		{"streak and penalty", 20, true, 7.5},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, settlement := NewLedger().Settle(2.0, tc.health, tc.streakBonus, 5)
			if settlement.Applied != tc.want {
				t.Fatalf("applied = %v, want %v", settlement.Applied, tc.want)
			}
		})
	}
}

func TestSettleNegativeBypassesMultipliersAndClamps(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.Balance = 1.0
	ledger.TotalEarned = 1.0

	// social at -0.2/min for 10 minutes would lose 2.0; only 1.0 is there.
	// health 90 must not soften the loss.
	ledger, settlement := ledger.Settle(-0.2, 90, true, 10)
	if settlement.Applied != -1.0 {
		t.Fatalf("applied = %v, want -1.0", settlement.Applied)
	}
	if ledger.Balance != 0 {
		t.Fatalf("balance = %v, want 0", ledger.Balance)
	}
	if ledger.TotalEarned != 1.0 {
		t.Fatalf("total earned moved on loss: %v", ledger.TotalEarned)
	}
	if ledger.SessionEarned != -1.0 {
		t.Fatalf("session earned = %v, want -1.0", ledger.SessionEarned)
	}
}

func TestMilestonesFireOncePerLifetime(t *testing.T) {
	t.Parallel()

	ledger, settlement := NewLedger().Settle(6.0, 50, false, 2) // +12
	if len(settlement.Milestones) != 1 || settlement.Milestones[0] != 10 {
		t.Fatalf("milestones = %v, want [10]", settlement.Milestones)
	}

	// Same level never refires, also after a session reset.
	ledger = ledger.ResetSession()
	ledger, settlement = ledger.Settle(10.0, 50, false, 2) // total 32
	if len(settlement.Milestones) != 1 || settlement.Milestones[0] != 25 {
		t.Fatalf("milestones = %v, want [25]", settlement.Milestones)
	}

	_, settlement = ledger.Settle(0.1, 50, false, 1)
	if len(settlement.Milestones) != 0 {
		t.Fatalf("milestones refired: %v", settlement.Milestones)
	}
}

func TestMilestoneMultipleCrossingsInOneSettle(t *testing.T) {
	t.Parallel()

	_, settlement := NewLedger().Settle(60.0, 50, false, 1) // +60 crosses 10, 25, 50
	want := []int{10, 25, 50}
	if len(settlement.Milestones) != len(want) {
		t.Fatalf("milestones = %v, want %v", settlement.Milestones, want)
	}
	for i, level := range want {
		if settlement.Milestones[i] != level {
			t.Fatalf("milestones = %v, want %v", settlement.Milestones, want)
		}
	}
}

func TestSpendAtomic(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.Balance = 4.0
	ledger.SessionEarned = 4.0

	if _, err := ledger.Spend(5.0); !errors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if ledger.Balance != 4.0 {
		t.Fatalf("balance mutated on rejected spend: %v", ledger.Balance)
	}

	ledger, err := ledger.Spend(3.0)
	if err != nil {
		t.Fatalf("Spend: %v", err)
	}
	if ledger.Balance != 1.0 || ledger.SessionEarned != 4.0 {
		t.Fatalf("ledger after spend = %+v", ledger)
	}
}

func TestAwardIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	ledger, settlement := NewLedger().Award(-3)
	if settlement.Applied != 0 || ledger.Balance != 0 {
		t.Fatalf("negative award applied: %+v %+v", ledger, settlement)
	}

	ledger, settlement = ledger.Award(2.0)
	if settlement.Applied != 2.0 || ledger.Balance != 2.0 || ledger.TotalEarned != 2.0 {
		t.Fatalf("award: %+v %+v", ledger, settlement)
	}
}
