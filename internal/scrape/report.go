package scrape

import (
	"context"
	"time"

	"careerscan/internal/domain"
	"careerscan/internal/store"
)

// NewJobs returns the postings first seen at or after since, newest first.
// Without a job index there is nothing to report.
func (s *Scraper) NewJobs(ctx context.Context, since time.Time) ([]domain.JobRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	recs, err := store.ListJobs(ctx, s.db, "")
	if err != nil {
		return nil, err
	}

	// first_seen is stored with second precision
	since = since.Truncate(time.Second)
	var out []domain.JobRecord
	for _, r := range recs {
		if r.FirstSeen.Before(since) {
			break
		}
		out = append(out, r)
	}
	return out, nil
}
