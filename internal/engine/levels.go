package engine

// Progress decorates a cumulative XP total with level information. It is a
// pure lookup against the static progression table; the submission pipeline
// queries it after reporting a score.
type Progress struct {
	Level           int    `json:"level"`
	Theme           string `json:"theme"`
	ProgressPercent int    `json:"progress_percent"`
	IsMilestone     bool   `json:"is_milestone"`
	MilestoneReward string `json:"milestone_reward,omitempty"`
}

const maxLevel = 99

// xpThresholds[i] is the cumulative XP required to reach level i+1.
// Level 1 starts at 0; each step costs 100 XP plus 20 more per level gained.
var xpThresholds = buildThresholds()

func buildThresholds() []int {
	thresholds := make([]int, maxLevel)
	total := 0
	for lvl := 1; lvl <= maxLevel; lvl++ {
		thresholds[lvl-1] = total
		total += 100 + (lvl-1)*20
	}
	return thresholds
}

// themes names each ten-level band, lowest first.
var themes = []string{
	"Explorer",
	"Adventurer",
	"Pathfinder",
	"Trailblazer",
	"Voyager",
	"Navigator",
	"Pioneer",
	"Champion",
	"Legend",
	"Grandmaster",
}

// milestoneRewards is the fixed milestone subset with its canned rewards.
var milestoneRewards = map[int]string{
	10: "Bronze Star Badge",
	20: "Silver Star Badge",
	30: "Gold Star Badge",
	40: "Sapphire Shield",
	50: "Ruby Shield",
	60: "Emerald Shield",
	70: "Diamond Crown",
	80: "Platinum Crown",
	90: "Royal Scepter",
	99: "Grandmaster Trophy",
}

// LevelOf maps a cumulative XP total to its level, theme, and milestone
// status. Level is the greatest table entry whose threshold is <= xp,
// capped at 99.
func LevelOf(xp int) Progress {
	if xp < 0 {
		xp = 0
	}

	level := 1
	for i := len(xpThresholds) - 1; i >= 0; i-- {
		if xp >= xpThresholds[i] {
			level = i + 1
			break
		}
	}

	p := Progress{
		Level: level,
		Theme: themes[(level-1)/10],
	}

	if level >= maxLevel {
		p.ProgressPercent = 100
	} else {
		span := xpThresholds[level] - xpThresholds[level-1]
		p.ProgressPercent = (xp - xpThresholds[level-1]) * 100 / span
	}

	if reward, ok := milestoneRewards[level]; ok {
		p.IsMilestone = true
		p.MilestoneReward = reward
	}

	return p
}
