package character

import "math"

// LevelUp reports the outcome of CheckLevelUp.
type LevelUp struct {
	Leveled             bool
	NewLevel            int
	NewThreshold        int
	PassiveSlotUnlocked bool
}

// CheckLevelUp advances at most one level when Experience >= XPToNextLevel.
// The threshold is subtracted from Experience and the next threshold is
// floor(old·1.5). A passive slot unlocks whenever the new level is a multiple
// of passiveInterval.
//
// Precondition: passiveInterval >= 1.
// Postcondition: Level increases by at most 1 per call.
func (c *Character) CheckLevelUp(passiveInterval int) LevelUp {
	if c.XPToNextLevel <= 0 || c.Experience < c.XPToNextLevel {
		return LevelUp{NewLevel: c.Level, NewThreshold: c.XPToNextLevel}
	}
	old := c.XPToNextLevel
	c.Experience -= old
	c.Level++
	c.XPToNextLevel = int(math.Floor(float64(old) * 1.5))

	out := LevelUp{Leveled: true, NewLevel: c.Level, NewThreshold: c.XPToNextLevel}
	if passiveInterval > 0 && c.Level%passiveInterval == 0 {
		c.PassiveSlots++
		out.PassiveSlotUnlocked = true
	}
	return out
}
