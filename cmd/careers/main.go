package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"careerscan/internal/browser"
	"careerscan/internal/config"
	"careerscan/internal/retry"
	"careerscan/internal/scrape"
	"careerscan/internal/scrape/util"
	"careerscan/internal/store"
)

func main() {
	// Data dir: use env if provided, else the working directory.
	dataDir := os.Getenv("CAREERS_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}

	cfg, err := config.Setup(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, scrape.ErrRunLocked) {
			log.Printf("[scrape] %v", err)
			return
		}
		stop()
		log.Fatalf("[scrape] run failed: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	limiter := util.NewHostLimiter(cfg.Scrape.HostRPS, cfg.Scrape.HostBurst)

	fetcher := browser.NewFetcher(browser.Config{
		Install:        cfg.Browser.Install,
		Headless:       cfg.Browser.Headless,
		NavTimeout:     cfg.NavTimeout(),
		Settle:         cfg.Settle(),
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		UserAgents:     cfg.Browser.UserAgents,
		Retry: retry.Config{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialDelay:   time.Duration(cfg.Retry.InitialDelayMS) * time.Millisecond,
			MaxDelay:       time.Duration(cfg.Retry.MaxDelayMS) * time.Millisecond,
			Multiplier:     cfg.Retry.Multiplier,
			JitterFraction: retry.DefaultConfig().JitterFraction,
		},
	}, limiter)
	defer func() {
		if err := fetcher.Close(); err != nil {
			log.Printf("[browser] stop failed: %v", err)
		}
	}()

	pages := store.NewPageCache(cfg.Resolve(cfg.App.CacheDir), fetcher)

	db, err := store.Open(cfg.Resolve("careers.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	s := scrape.New(scrape.Options{
		CompaniesCSV: cfg.Resolve(cfg.App.CompaniesCSV),
		OutputDir:    cfg.Resolve(cfg.App.OutputDir),
		LockPath:     cfg.Resolve(".careers.lock"),
		DryRun:       cfg.Scrape.DryRun,
		Concurrency:  cfg.Scrape.Concurrency,
		Out:          os.Stdout,
	}, pages, db.Pool)

	started := time.Now()
	sum, err := s.Run(ctx)
	hits, misses := pages.Stats()
	log.Printf("[cache] hits=%d misses=%d", hits, misses)
	if err != nil {
		return err
	}

	log.Printf("[scrape] companies=%d scraped=%d jobs=%d new=%d files=%d",
		sum.Companies, sum.Scraped, sum.Jobs, sum.Added, sum.Files)

	fresh, err := s.NewJobs(ctx, started)
	if err != nil {
		return err
	}
	for _, j := range fresh {
		log.Printf("[scrape] new company=%q title=%q url=%s", j.Company, j.Title, j.URL)
	}
	return nil
}
