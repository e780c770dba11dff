package scrape

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"
)

// ErrRunLocked means another run holds the lock on the data dir.
var ErrRunLocked = errors.New("another careers run is in progress")

// PageSource returns the HTML for a URL, from cache or a fresh render.
type PageSource interface {
	Get(ctx context.Context, url string) (string, error)
}

type Options struct {
	CompaniesCSV string
	OutputDir    string
	LockPath     string
	DryRun       bool
	Concurrency  int

	Out io.Writer
	Now func() time.Time
}

// Summary describes one finished run.
type Summary struct {
	Companies int
	Scraped   int
	Jobs      int
	Added     int
	Files     int
}

type Scraper struct {
	opts  Options
	pages PageSource
	db    *sql.DB // optional job index
}

func New(opts Options, pages PageSource, db *sql.DB) *Scraper {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scraper{opts: opts, pages: pages, db: db}
}
