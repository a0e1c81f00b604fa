package models

import "fmt"

// TrendWindow is the trailing window of a daily trend, in days.
type TrendWindow int

// TrendWindows are the presets the trend view cycles through.
var TrendWindows = []TrendWindow{30, 90, 180, 365}

// DefaultTrendWindow is used when no window is configured.
const DefaultTrendWindow TrendWindow = 180

// Days returns the window length in days.
func (w TrendWindow) Days() int {
	if w <= 0 {
		return int(DefaultTrendWindow)
	}
	return int(w)
}

// String returns the display name for the window.
func (w TrendWindow) String() string {
	return fmt.Sprintf("%d Days", w.Days())
}

// Next cycles to the next larger preset, wrapping to the smallest.
func (w TrendWindow) Next() TrendWindow {
	for _, p := range TrendWindows {
		if p > w {
			return p
		}
	}
	return TrendWindows[0]
}
