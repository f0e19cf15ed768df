package progression

import (
	"testing"

	"github.com/claude/ironquest/internal/models"
)

// TestApplyXPNoLevelUp verifies XP below the threshold accumulates without
// leveling.
func TestApplyXPNoLevelUp(t *testing.T) {
	p := models.UserProfile{Level: 1, CurrentXP: 100, XPRequired: 1000}
	res := ApplyXP(p, 200)

	if res.LevelsGained != 0 {
		t.Errorf("LevelsGained = %d, want 0", res.LevelsGained)
	}
	if res.Profile.Level != 1 || res.Profile.CurrentXP != 300 || res.Profile.XPRequired != 1000 {
		t.Errorf("profile = %+v, want level 1, xp 300, required 1000", res.Profile)
	}
}

// TestApplyXPSingleRollover runs the reference scenario: level 1 at
// 950/1000 earning 120 rolls to level 2 with 70 XP and a grown threshold.
func TestApplyXPSingleRollover(t *testing.T) {
	p := models.UserProfile{Level: 1, CurrentXP: 950, XPRequired: 1000}
	res := ApplyXP(p, 120)

	if res.LevelsGained != 1 {
		t.Errorf("LevelsGained = %d, want 1", res.LevelsGained)
	}
	if res.Profile.Level != 2 {
		t.Errorf("Level = %d, want 2", res.Profile.Level)
	}
	if res.Profile.CurrentXP != 70 {
		t.Errorf("CurrentXP = %d, want 70", res.Profile.CurrentXP)
	}
	if res.Profile.XPRequired != 1200 { // 1000 * 1.2
		t.Errorf("XPRequired = %d, want 1200", res.Profile.XPRequired)
	}
}

// TestApplyXPMultiLevel verifies a single large award rolls over multiple
// levels: 3000 XP from a fresh level 1 crosses 1000 then 1200.
func TestApplyXPMultiLevel(t *testing.T) {
	p := models.UserProfile{Level: 1, CurrentXP: 0, XPRequired: 1000}
	res := ApplyXP(p, 3000)

	if res.LevelsGained != 2 {
		t.Errorf("LevelsGained = %d, want 2", res.LevelsGained)
	}
	if res.Profile.Level != 3 {
		t.Errorf("Level = %d, want 3", res.Profile.Level)
	}
	// 3000 - 1000 - 1200 = 800, below the new 1440 threshold.
	if res.Profile.CurrentXP != 800 {
		t.Errorf("CurrentXP = %d, want 800", res.Profile.CurrentXP)
	}
	if res.Profile.XPRequired != 1440 {
		t.Errorf("XPRequired = %d, want 1440", res.Profile.XPRequired)
	}
}

// TestApplyXPZero verifies a zero award is a no-op.
func TestApplyXPZero(t *testing.T) {
	p := models.UserProfile{Level: 4, CurrentXP: 10, XPRequired: 1728}
	res := ApplyXP(p, 0)
	if res.LevelsGained != 0 || res.Profile.Level != 4 || res.Profile.CurrentXP != 10 || res.Profile.XPRequired != 1728 {
		t.Errorf("zero award changed state: %+v", res)
	}
}

// TestApplyXPExactThreshold verifies landing exactly on the threshold
// levels up with zero remainder.
func TestApplyXPExactThreshold(t *testing.T) {
	p := models.UserProfile{Level: 1, CurrentXP: 0, XPRequired: 1000}
	res := ApplyXP(p, 1000)
	if res.Profile.Level != 2 || res.Profile.CurrentXP != 0 {
		t.Errorf("level/xp = %d/%d, want 2/0", res.Profile.Level, res.Profile.CurrentXP)
	}
}

// TestApplyXPGuardsZeroThreshold verifies a corrupt zero threshold cannot
// loop forever.
func TestApplyXPGuardsZeroThreshold(t *testing.T) {
	p := models.UserProfile{Level: 1, CurrentXP: 0, XPRequired: 0}
	res := ApplyXP(p, 500)
	if res.LevelsGained != 0 {
		t.Errorf("LevelsGained = %d, want 0 with zero threshold", res.LevelsGained)
	}
}
