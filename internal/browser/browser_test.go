package browser

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"careerscan/internal/retry"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMouse struct {
	moves [][2]float64
	err   error
}

func (m *fakeMouse) Move(x, y float64, _ ...playwright.MouseMoveOptions) error {
	if m.err != nil {
		return m.err
	}
	m.moves = append(m.moves, [2]float64{x, y})
	return nil
}

func TestJiggleMovesBetweenPauses(t *testing.T) {
	m := &fakeMouse{}
	start := time.Now()

	require.NoError(t, jiggle(context.Background(), m, 5*time.Millisecond))

	assert.Equal(t, [][2]float64{{123, 123}, {125, 125}}, m.moves)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestJiggleStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &fakeMouse{}
	err := jiggle(ctx, m, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.moves)
}

func TestJiggleMoveError(t *testing.T) {
	boom := errors.New("page closed")
	err := jiggle(context.Background(), &fakeMouse{err: boom}, 0)
	assert.ErrorIs(t, err, boom)
}

func TestUserAgentPicksFromPool(t *testing.T) {
	f := NewFetcher(Config{UserAgents: []string{"a", "b"}}, nil)
	for i := 0; i < 10; i++ {
		assert.Contains(t, []string{"a", "b"}, f.userAgent())
	}
	assert.Empty(t, NewFetcher(Config{}, nil).userAgent())
}

func TestCheckStatus(t *testing.T) {
	for _, code := range []int{200, 301, 403, 404, 410} {
		assert.NoError(t, checkStatus("https://x.com/careers", code), code)
	}

	for _, code := range []int{429, 500, 503} {
		err := checkStatus("https://x.com/careers", code)
		var httpErr *retry.HTTPError
		require.ErrorAs(t, err, &httpErr, code)
		assert.Equal(t, code, httpErr.StatusCode)
		assert.True(t, retry.IsRetryable(err))
	}
}

func TestCloseWithoutDriver(t *testing.T) {
	assert.NoError(t, NewFetcher(Config{}, nil).Close())
}

// Needs Chromium and network access.
func TestFetchRendersPage(t *testing.T) {
	if testing.Short() || os.Getenv("CAREERS_BROWSER_TESTS") != "1" {
		t.Skip("set CAREERS_BROWSER_TESTS=1 to run browser tests")
	}

	f := NewFetcher(Config{
		Headless:       true,
		NavTimeout:     30 * time.Second,
		Settle:         200 * time.Millisecond,
		ViewportWidth:  1280,
		ViewportHeight: 800,
		Retry:          retry.Config{MaxAttempts: 1},
	}, nil)
	defer f.Close()

	html, err := f.Fetch(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Contains(t, html, "Example Domain")
}
