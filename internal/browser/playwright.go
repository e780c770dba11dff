package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"careerscan/internal/retry"
	"careerscan/internal/scrape/util"

	"github.com/playwright-community/playwright-go"
)

type Config struct {
	Install        bool
	Headless       bool
	NavTimeout     time.Duration
	Settle         time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgents     []string
	Retry          retry.Config
}

// Fetcher renders pages in headless Chromium. The Playwright driver is
// started once; every Fetch gets its own browser, which is closed before
// Fetch returns.
type Fetcher struct {
	cfg     Config
	limiter *util.HostLimiter

	mu  sync.Mutex
	pw  *playwright.Playwright
	rnd *rand.Rand
}

func NewFetcher(cfg Config, limiter *util.HostLimiter) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		limiter: limiter,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (f *Fetcher) driver() (*playwright.Playwright, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pw != nil {
		return f.pw, nil
	}

	if f.cfg.Install {
		log.Printf("[browser] installing chromium")
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	f.pw = pw
	return pw, nil
}

// Fetch renders url and returns the final HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	pw, err := f.driver()
	if err != nil {
		return "", err
	}

	var content string
	err = retry.Do(ctx, f.cfg.Retry, "render "+url, func(ctx context.Context) error {
		if err := f.limiter.WaitURL(ctx, url); err != nil {
			return err
		}
		c, err := f.render(ctx, pw, url)
		if err != nil {
			return err
		}
		content = c
		return nil
	})
	return content, err
}

func (f *Fetcher) render(ctx context.Context, pw *playwright.Playwright, url string) (string, error) {
	start := time.Now()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(f.cfg.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("launch chromium: %w", err))
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			log.Printf("[browser] close error url=%s err=%v", url, cerr)
		}
	}()

	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: f.cfg.ViewportWidth, Height: f.cfg.ViewportHeight},
	}
	if ua := f.userAgent(); ua != "" {
		opts.UserAgent = playwright.String(ua)
	}
	bctx, err := browser.NewContext(opts)
	if err != nil {
		return "", fmt.Errorf("new context: %w", err)
	}
	if err := ApplyStealth(bctx); err != nil {
		return "", fmt.Errorf("stealth: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		return "", fmt.Errorf("new page: %w", err)
	}

	// Unblock Goto if ctx is cancelled mid-navigation.
	stop := context.AfterFunc(ctx, func() { _ = browser.Close() })
	defer stop()

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(f.cfg.NavTimeout.Milliseconds())),
	})
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("goto %s: %w", url, err)
	}
	if resp != nil {
		if err := checkStatus(url, resp.Status()); err != nil {
			return "", err
		}
	}

	if err := TriggerLazyLoad(ctx, page, f.cfg.Settle); err != nil {
		return "", err
	}

	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	log.Printf("[browser] rendered url=%s bytes=%d took=%s", url, len(content), time.Since(start).Round(time.Millisecond))
	return content, nil
}

// checkStatus fails only on statuses worth retrying. Any other error page is
// still content: it gets cached and simply yields no postings.
func checkStatus(url string, status int) error {
	if retry.RetryableStatus(status) {
		return &retry.HTTPError{StatusCode: status, URL: url}
	}
	if status >= 400 {
		log.Printf("[browser] status=%d url=%s", status, url)
	}
	return nil
}

func (f *Fetcher) userAgent() string {
	if len(f.cfg.UserAgents) == 0 {
		return ""
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.UserAgents[f.rnd.Intn(len(f.cfg.UserAgents))]
}

// Close stops the Playwright driver if it was started.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pw == nil {
		return nil
	}
	err := f.pw.Stop()
	f.pw = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
