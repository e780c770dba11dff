package domain

import "time"

// Job is a posting link found on a careers page.
type Job struct {
	Title string
	URL   string
}

// JobRecord is a Job as kept in the job index.
type JobRecord struct {
	Company   string
	Title     string
	URL       string
	FirstSeen time.Time
	LastSeen  time.Time
}
