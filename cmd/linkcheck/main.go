package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"careerscan/internal/config"
	"careerscan/internal/linkcheck"
	"careerscan/internal/scrape/util"
)

func main() {
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

	broken, err := run(ctx, cfg)
	if err != nil {
		stop()
		log.Fatalf("[linkcheck] %v", err)
	}
	if broken > 0 {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) (int, error) {
	doc := cfg.Resolve(cfg.LinkCheck.Document)
	f, err := os.Open(doc)
	if err != nil {
		return 0, err
	}
	urls, err := linkcheck.FindURLs(f)
	f.Close()
	if err != nil {
		return 0, err
	}
	log.Printf("[linkcheck] document=%s urls=%d", doc, len(urls))

	// Same per-host pacing as the scraper.
	limiter := util.NewHostLimiter(cfg.Scrape.HostRPS, cfg.Scrape.HostBurst)
	c := linkcheck.New(linkcheck.Config{
		Timeout:     cfg.LinkCheckTimeout(),
		Concurrency: cfg.LinkCheck.Concurrency,
		UserAgent:   cfg.LinkCheck.UserAgent,
	}, limiter, os.Stdout)

	results, err := c.Run(ctx, urls)
	if err != nil {
		return 0, err
	}
	linkcheck.PrintSummary(os.Stdout, results)
	return len(linkcheck.Broken(results)), nil
}
