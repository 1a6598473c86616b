package engine

import "testing"

func TestLevelOf(t *testing.T) {
	tests := []struct {
		name        string
		xp          int
		wantLevel   int
		wantTheme   string
		wantPercent int
	}{
		{"fresh account", 0, 1, "Explorer", 0},
		{"negative clamps to zero", -50, 1, "Explorer", 0},
		{"mid first level", 50, 1, "Explorer", 50},
		{"exactly level 2", 100, 2, "Explorer", 0},
		{"mid second level", 160, 2, "Explorer", 50},
		{"exactly level 3", 220, 3, "Explorer", 0},
		{"one below level 10", 1619, 9, "Explorer", 99},
		{"exactly level 10", 1620, 10, "Explorer", 0},
		{"exactly level 11", 1900, 11, "Adventurer", 0},
		{"level cap", 1_000_000, 99, "Grandmaster", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := LevelOf(tt.xp)
			if p.Level != tt.wantLevel {
				t.Errorf("LevelOf(%d).Level = %d, want %d", tt.xp, p.Level, tt.wantLevel)
			}
			if p.Theme != tt.wantTheme {
				t.Errorf("LevelOf(%d).Theme = %q, want %q", tt.xp, p.Theme, tt.wantTheme)
			}
			if p.ProgressPercent != tt.wantPercent {
				t.Errorf("LevelOf(%d).ProgressPercent = %d, want %d", tt.xp, p.ProgressPercent, tt.wantPercent)
			}
		})
	}
}

func TestLevelOfMilestones(t *testing.T) {
	p := LevelOf(1620)
	if !p.IsMilestone {
		t.Fatal("level 10 should be a milestone")
	}
	if p.MilestoneReward != "Bronze Star Badge" {
		t.Errorf("level 10 reward = %q, want %q", p.MilestoneReward, "Bronze Star Badge")
	}

	if p := LevelOf(1900); p.IsMilestone {
		t.Errorf("level %d should not be a milestone", p.Level)
	}

	top := LevelOf(xpThresholds[maxLevel-1])
	if top.Level != 99 || !top.IsMilestone || top.MilestoneReward != "Grandmaster Trophy" {
		t.Errorf("level 99 progress = %+v, want milestone with Grandmaster Trophy", top)
	}
}

func TestThresholdsMonotonic(t *testing.T) {
	if len(xpThresholds) != maxLevel {
		t.Fatalf("threshold table has %d entries, want %d", len(xpThresholds), maxLevel)
	}
	for i := 1; i < len(xpThresholds); i++ {
		if xpThresholds[i] <= xpThresholds[i-1] {
			t.Fatalf("threshold for level %d (%d) not above level %d (%d)",
				i+1, xpThresholds[i], i, xpThresholds[i-1])
		}
		step := xpThresholds[i] - xpThresholds[i-1]
		if want := 100 + (i-1)*20; step != want {
			t.Fatalf("step into level %d = %d, want %d", i+1, step, want)
		}
	}
}

func TestThemeBandsCoverEveryLevel(t *testing.T) {
	want := map[int]string{
		1:  "Explorer",
		10: "Explorer",
		11: "Adventurer",
		21: "Pathfinder",
		55: "Navigator",
		91: "Grandmaster",
		99: "Grandmaster",
	}
	for lvl, theme := range want {
		if got := LevelOf(xpThresholds[lvl-1]); got.Theme != theme {
			t.Errorf("level %d theme = %q, want %q", lvl, got.Theme, theme)
		}
	}
}
