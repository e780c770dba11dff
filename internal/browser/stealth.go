package browser

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
)

// stealthScript hides the most common headless tells before any page script runs.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
window.chrome = window.chrome || { runtime: {} };
`

func ApplyStealth(bctx playwright.BrowserContext) error {
	return bctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)})
}

// mouseTarget is the subset of playwright.Mouse that TriggerLazyLoad needs.
type mouseTarget interface {
	Move(x, y float64, options ...playwright.MouseMoveOptions) error
}

// lazyLoadPath is where the pointer goes between settle pauses.
var lazyLoadPath = [][2]float64{{123, 123}, {125, 125}}

// TriggerLazyLoad waits for the page to settle, nudging the mouse between
// pauses so listings that load on first interaction show up.
func TriggerLazyLoad(ctx context.Context, page playwright.Page, settle time.Duration) error {
	return jiggle(ctx, page.Mouse(), settle)
}

func jiggle(ctx context.Context, m mouseTarget, settle time.Duration) error {
	if err := sleep(ctx, settle); err != nil {
		return err
	}
	for _, p := range lazyLoadPath {
		if err := m.Move(p[0], p[1]); err != nil {
			return err
		}
		if err := sleep(ctx, settle); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
