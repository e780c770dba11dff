package scrape

import (
	"iter"

	"careerscan/internal/domain"
)

// FilterJobs keeps the links that c's careers regex recognises as postings.
func FilterJobs(c domain.Company, links iter.Seq[Link]) []domain.Job {
	var out []domain.Job
	for l := range links {
		if !c.Matches(l.URL) {
			continue
		}
		out = append(out, domain.Job{Title: l.Text, URL: l.URL})
	}
	return out
}
