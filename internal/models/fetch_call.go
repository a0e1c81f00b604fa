package models

import "time"

// FetchCall is one logged request against the event feed.
type FetchCall struct {
	Timestamp  time.Time
	RequestID  string
	Mode       string
	Drug       string
	Error      string
	ID         int64
	Limit      int
	StatusCode int
	Results    int
	DurationMs int
}

// Failed reports whether the call ended in a transport failure.
func (c *FetchCall) Failed() bool {
	return c.Error != ""
}

// FetchStats represents aggregated fetch log statistics.
type FetchStats struct {
	LastCall      time.Time
	TotalCalls    int
	FailedCalls   int
	NotFoundCalls int
	TotalResults  int64
	AvgDurationMs float64
}

// SuccessRate returns the share of calls that did not fail, in percent.
func (s FetchStats) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.TotalCalls-s.FailedCalls) / float64(s.TotalCalls) * 100
}
