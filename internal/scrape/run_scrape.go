package scrape

import (
	"context"
	"fmt"
	"log"

	"careerscan/internal/config"
	"careerscan/internal/domain"
	"careerscan/internal/store"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
)

type companyResult struct {
	jobs []domain.Job
	err  error
}

// Run does one full pass: lock, reset the output dir, load companies, then
// fetch, print, record and save each company in list order. Up to
// Concurrency companies are fetched at once. The first error ends the run.
func (s *Scraper) Run(ctx context.Context) (sum Summary, err error) {
	if s.opts.LockPath != "" {
		lock := flock.New(s.opts.LockPath)
		ok, lerr := lock.TryLock()
		if lerr != nil {
			return sum, fmt.Errorf("lock %s: %w", s.opts.LockPath, lerr)
		}
		if !ok {
			return sum, ErrRunLocked
		}
		defer func() { _ = lock.Unlock() }()
	}

	if err := ResetOutputDir(s.opts.OutputDir); err != nil {
		return sum, err
	}

	companies, err := config.LoadCompanies(s.opts.CompaniesCSV)
	if err != nil {
		return sum, fmt.Errorf("load companies: %w", err)
	}
	sum.Companies = len(companies)
	log.Printf("[scrape] loaded companies=%d concurrency=%d dry_run=%v",
		len(companies), s.opts.Concurrency, s.opts.DryRun)

	if s.db != nil {
		runID, serr := store.StartRun(ctx, s.db, s.opts.Now())
		if serr != nil {
			return sum, fmt.Errorf("start run: %w", serr)
		}
		defer func() {
			if ferr := store.FinishRun(context.WithoutCancel(ctx), s.db, runID, s.opts.Now(),
				sum.Companies, sum.Jobs, sum.Added, err); ferr != nil {
				log.Printf("[store] finish run id=%d err=%v", runID, ferr)
			}
		}()
	}

	// Producers never cancel; the consumer does, once it reaches a failure in list order.
	fctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	ready := make([]chan companyResult, len(companies))
	for i := range ready {
		ready[i] = make(chan companyResult, 1)
	}

	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for i, c := range companies {
			g.Go(func() error {
				if err := fctx.Err(); err != nil {
					ready[i] <- companyResult{err: err}
					return nil
				}
				jobs, err := s.CompanyJobs(fctx, c)
				ready[i] <- companyResult{jobs: jobs, err: err}
				return nil
			})
		}
	}()

	for i, c := range companies {
		fmt.Fprintln(s.opts.Out, c.String())
		r := <-ready[i]
		if r.err != nil {
			err = fmt.Errorf("company %s: %w", c.Name, r.err)
			break
		}
		if err = s.emit(ctx, c, r.jobs, &sum); err != nil {
			break
		}
	}

	cancel()
	<-launched
	_ = g.Wait()

	if err != nil {
		return sum, err
	}
	log.Printf("[scrape] done companies=%d scraped=%d jobs=%d new=%d files=%d",
		sum.Companies, sum.Scraped, sum.Jobs, sum.Added, sum.Files)
	return sum, nil
}
