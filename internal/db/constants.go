package db

// timestampLayout is how fetch times are stored. It sorts lexically and is
// understood by SQLite's date functions.
const timestampLayout = "2006-01-02 15:04:05.000"

// DefaultRecentCalls is how many fetch log rows the Info tab shows.
const DefaultRecentCalls = 10

// FetchLogRetention is how many fetch log rows a file-backed database keeps
// between runs.
const FetchLogRetention = 5000
