package models

import "math"

// LevelForXP converts accumulated experience into a level: level = floor(0.1 * sqrt(xp))
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 0
	}
	return int(math.Floor(0.1 * math.Sqrt(float64(xp))))
}

// XPForLevel returns the experience needed to reach level
func XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	return int64(level) * int64(level) * 100
}
