package db

import "time"

// Fetch run outcomes stored in fetch_runs.status.
const (
	RunStatusOK    = "ok"
	RunStatusError = "error"
)

// FetchRun records one attempt to pull a platform's saved posts.
type FetchRun struct {
	ID         int64
	Platform   string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Count      int
	Error      string
}
