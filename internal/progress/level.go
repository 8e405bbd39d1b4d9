package progress

import "math"

// Level is a rung of the streak ladder. Max is exclusive; the top rung has
// Max = 0 and no upper bound.
type Level struct {
	Name string
	Min  int
	Max  int
}

// Levels is the streak ladder in ascending order.
var Levels = []Level{
	{Name: "Beginner", Min: 0, Max: 7},
	{Name: "Consistent", Min: 7, Max: 30},
	{Name: "Dedicated", Min: 30, Max: 90},
	{Name: "Committed", Min: 90, Max: 180},
	{Name: "Master", Min: 180, Max: 365},
	{Name: "Legendary", Min: 365},
}

// legendaryYears is how many years of streak fill the top rung.
const legendaryYears = 5

// LevelFor returns the rung streak falls on. Negative streaks count as zero.
func LevelFor(streak int) Level {
	for i := len(Levels) - 1; i > 0; i-- {
		if streak >= Levels[i].Min {
			return Levels[i]
		}
	}
	return Levels[0]
}

// Progress returns how far streak is through l, from 0 to 1. On the top rung
// progress is counted in whole years.
func (l Level) Progress(streak int) float64 {
	if l.Max == 0 {
		years := streak / 365
		return math.Min(float64(years)/legendaryYears, 1)
	}
	if streak <= l.Min {
		return 0
	}
	return math.Min(float64(streak-l.Min)/float64(l.Max-l.Min), 1)
}
