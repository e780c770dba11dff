package linkcheck

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"careerscan/internal/scrape/util"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	Timeout     time.Duration
	Concurrency int
	UserAgent   string
}

// Result is the outcome of one GET. Status is 0 when no response arrived.
type Result struct {
	URL    string
	Status int
	Err    error
}

func (r Result) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 400
}

type Checker struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	out     io.Writer
}

func New(cfg Config, limiter *util.HostLimiter, out io.Writer) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if out == nil {
		out = io.Discard
	}
	return &Checker{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		out:     out,
	}
}

// Check GETs url and reports its status. Redirects are followed.
func (c *Checker) Check(ctx context.Context, url string) Result {
	res := Result{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		res.Err = err
		return res
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	if err := c.limiter.WaitURL(ctx, url); err != nil {
		res.Err = err
		return res
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	res.Status = resp.StatusCode
	return res
}

// Run checks urls with up to Concurrency requests in flight and prints
// progress in input order. A broken link never stops the run; only ctx
// cancellation does.
func (c *Checker) Run(ctx context.Context, urls []string) ([]Result, error) {
	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)

	ready := make([]chan Result, len(urls))
	for i := range ready {
		ready[i] = make(chan Result, 1)
	}
	go func() {
		for i, u := range urls {
			g.Go(func() error {
				ready[i] <- c.Check(ctx, u)
				return nil
			})
		}
	}()

	results := make([]Result, 0, len(urls))
	broken := 0
	for i := range urls {
		r := <-ready[i]
		results = append(results, r)

		if r.Status != 0 {
			fmt.Fprintf(c.out, "Checking %s: %d\n", r.URL, r.Status)
		}
		if !r.OK() {
			broken++
			fmt.Fprintf(c.out, "Broken link: %s\n", r.URL)
			if r.Err != nil {
				log.Printf("[linkcheck] url=%s err=%v", r.URL, r.Err)
			}
		}
	}
	_ = g.Wait()

	log.Printf("[linkcheck] checked=%d broken=%d", len(results), broken)
	return results, ctx.Err()
}

// Broken filters results down to the failures.
func Broken(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
