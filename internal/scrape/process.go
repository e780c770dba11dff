package scrape

import (
	"context"
	"fmt"
	"log"

	"careerscan/internal/domain"
	"careerscan/internal/store"
)

// CompanyJobs returns the postings on c's careers page. Companies without a
// careers URL or regex yield nothing and cost no fetch.
func (s *Scraper) CompanyJobs(ctx context.Context, c domain.Company) ([]domain.Job, error) {
	if !c.Scrapable() {
		return nil, nil
	}

	content, err := s.pages.Get(ctx, c.CareerURL)
	if err != nil {
		return nil, err
	}

	links, err := ExtractLinks(content, c.CareerURL)
	if err != nil {
		return nil, fmt.Errorf("extract links %s: %w", c.CareerURL, err)
	}
	return FilterJobs(c, links), nil
}

// emit prints, records and saves one company's result.
func (s *Scraper) emit(ctx context.Context, c domain.Company, jobs []domain.Job, sum *Summary) error {
	for _, j := range jobs {
		fmt.Fprintf(s.opts.Out, "\t %s %s\n", j.Title, j.URL)
	}
	sum.Jobs += len(jobs)
	if c.Scrapable() {
		sum.Scraped++
	}

	if s.db != nil && len(jobs) > 0 {
		added, err := store.RecordJobs(ctx, s.db, c.Name, jobs, s.opts.Now())
		if err != nil {
			return fmt.Errorf("record jobs for %s: %w", c.Name, err)
		}
		sum.Added += added
		log.Printf("[scrape] company=%q jobs=%d new=%d", c.Name, len(jobs), added)
	}

	if s.opts.DryRun || c.CareerURL == "" {
		return nil
	}
	path, err := SaveMarkdown(s.opts.OutputDir, c, jobs)
	if err != nil {
		return err
	}
	sum.Files++
	log.Printf("[scrape] saved company=%q path=%s", c.Name, path)
	return nil
}
