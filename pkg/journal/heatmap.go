package journal

import "time"

// Level is the display intensity of a heatmap cell.
type Level int

const (
	LevelNone   Level = iota // 0 entries
	LevelLow                 // 1-2 entries
	LevelMedium              // 3-4 entries
	LevelHigh                // 5+ entries
)

// IntensityLevel buckets an entry count.
func IntensityLevel(count int) Level {
	switch {
	case count >= 5:
		return LevelHigh
	case count >= 3:
		return LevelMedium
	case count >= 1:
		return LevelLow
	default:
		return LevelNone
	}
}

// HeatmapCell is one day of the grid.
type HeatmapCell struct {
	Date    time.Time
	Count   int
	Level   Level
	InRange bool // false for alignment padding before start or after end
}

// Heatmap is a grid of weeks, each running Monday to Sunday.
type Heatmap struct {
	Start time.Time
	End   time.Time
	Weeks [][7]HeatmapCell
}

// YearRange returns January 1st and December 31st of year.
func YearRange(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// BuildHeatmap lays counts (as returned by EntryCountsInRange) out on a
// weekly grid. The first week starts on the Monday on or before start; the
// last week is padded through Sunday. Dates missing from counts are 0.
func BuildHeatmap(counts map[string]int, start, end time.Time) Heatmap {
	start, end = civilDate(start), civilDate(end)
	h := Heatmap{Start: start, End: end}
	if end.Before(start) {
		return h
	}

	offset := (int(start.Weekday()) + 6) % 7 // Monday = 0
	d := start.AddDate(0, 0, -offset)

	for !d.After(end) {
		var week [7]HeatmapCell
		for i := range week {
			cell := HeatmapCell{Date: d}
			if !d.Before(start) && !d.After(end) {
				cell.InRange = true
				cell.Count = counts[FormatDate(d)]
				cell.Level = IntensityLevel(cell.Count)
			}
			week[i] = cell
			d = d.AddDate(0, 0, 1)
		}
		h.Weeks = append(h.Weeks, week)
	}

	return h
}
