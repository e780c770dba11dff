package scrape

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"careerscan/internal/config"
	"careerscan/internal/domain"
	"careerscan/internal/store"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	mu     sync.Mutex
	pages  map[string]string
	delays map[string]time.Duration
	errs   map[string]error
	calls  []string
	n      atomic.Int32
}

func (f *fakePages) Get(ctx context.Context, url string) (string, error) {
	f.n.Add(1)
	f.mu.Lock()
	f.calls = append(f.calls, url)
	d := f.delays[url]
	err := f.errs[url]
	body, ok := f.pages[url]
	f.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("no such page " + url)
	}
	return body, nil
}

type testEnv struct {
	dir    string
	out    *bytes.Buffer
	pages  *fakePages
	outDir string
	csv    string
}

func newTestEnv(t *testing.T, companies string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	csv := filepath.Join(dir, "companies.csv")
	require.NoError(t, os.WriteFile(csv, []byte(companies), 0o644))
	return &testEnv{
		dir:    dir,
		out:    &bytes.Buffer{},
		pages:  &fakePages{pages: map[string]string{}},
		outDir: filepath.Join(dir, "job_postings"),
		csv:    csv,
	}
}

func (e *testEnv) scraper(mod func(*Options)) *Scraper {
	opts := Options{
		CompaniesCSV: e.csv,
		OutputDir:    e.outDir,
		LockPath:     filepath.Join(e.dir, ".careers.lock"),
		Out:          e.out,
	}
	if mod != nil {
		mod(&opts)
	}
	return New(opts, e.pages, nil)
}

const acmeCSV = `Acme, https://acme.com, https://acme.com/careers/, https://acme\.com/jobs/.*
Initech, https://initech.com, ,
Foo/Bar, https://foobar.io, https://foobar.io/jobs, https://foobar\.io/jobs/\d+
####
notes, after, the, footer
`

func TestCompanyJobsSkipsUnscrapable(t *testing.T) {
	e := newTestEnv(t, "")
	c, err := domain.NewCompany("Initech", "https://initech.com", "", "")
	require.NoError(t, err)

	jobs, err := e.scraper(nil).CompanyJobs(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Zero(t, e.pages.n.Load())
}

func TestRunWritesOutputAndMarkdown(t *testing.T) {
	e := newTestEnv(t, acmeCSV)
	e.pages.pages["https://acme.com/careers/"] = `
		<a href="/about">About</a>
		<a href="/jobs/1">Go Engineer</a>
		<a href="https://acme.com/jobs/2">SRE</a>`
	e.pages.pages["https://foobar.io/jobs"] = `<a href="/jobs/7">Designer</a><a href="/jobs/new">x</a>`

	// stale file from an earlier run
	require.NoError(t, os.MkdirAll(e.outDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.outDir, "Gone.md"), []byte("old"), 0o644))

	sum, err := e.scraper(nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Companies: 3, Scraped: 2, Jobs: 3, Files: 2}, sum)
	assert.Equal(t, strings.Join([]string{
		"Acme (https://acme.com/careers/ - https://acme\\.com/jobs/.*)",
		"\t Go Engineer https://acme.com/jobs/1",
		"\t SRE https://acme.com/jobs/2",
		"Initech ( - )",
		"Foo/Bar (https://foobar.io/jobs - https://foobar\\.io/jobs/\\d+)",
		"\t Designer https://foobar.io/jobs/7",
		"",
	}, "\n"), e.out.String())

	entries, err := os.ReadDir(e.outDir)
	require.NoError(t, err)
	var names []string
	for _, en := range entries {
		names = append(names, en.Name())
	}
	assert.ElementsMatch(t, []string{"Acme.md", "Foo (Bar).md"}, names)

	md, err := os.ReadFile(filepath.Join(e.outDir, "Acme.md"))
	require.NoError(t, err)
	assert.Equal(t, "\n# Acme\n- [Careers](https://acme.com/careers/)\n## Job Postings"+
		"\n- [Go Engineer](https://acme.com/jobs/1)"+
		"\n- [SRE](https://acme.com/jobs/2)", string(md))
}

func TestRunDryRunWritesNoFiles(t *testing.T) {
	e := newTestEnv(t, acmeCSV)
	e.pages.pages["https://acme.com/careers/"] = `<a href="/jobs/1">Go Engineer</a>`
	e.pages.pages["https://foobar.io/jobs"] = ``

	sum, err := e.scraper(func(o *Options) { o.DryRun = true }).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, sum.Files)
	assert.Equal(t, 1, sum.Jobs)
	entries, err := os.ReadDir(e.outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunKeepsCompanyOrderUnderConcurrency(t *testing.T) {
	var csv strings.Builder
	e := newTestEnv(t, "")
	for _, name := range []string{"A", "B", "C", "D"} {
		u := "https://" + strings.ToLower(name) + ".com/careers"
		csv.WriteString(name + ", https://x.com, " + u + ", https://.*/jobs/.*\n")
		e.pages.pages[u] = `<a href="/jobs/1">` + name + `</a>`
	}
	// earlier companies finish last
	e.pages.delays = map[string]time.Duration{
		"https://a.com/careers": 60 * time.Millisecond,
		"https://b.com/careers": 40 * time.Millisecond,
		"https://c.com/careers": 20 * time.Millisecond,
	}
	require.NoError(t, os.WriteFile(e.csv, []byte(csv.String()), 0o644))

	_, err := e.scraper(func(o *Options) { o.Concurrency = 4; o.DryRun = true }).Run(context.Background())
	require.NoError(t, err)

	var order []string
	for _, line := range strings.Split(e.out.String(), "\n") {
		if strings.HasPrefix(line, "\t ") {
			order = append(order, strings.Fields(line)[0])
		}
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, order)
}

func TestRunLaterFailureDoesNotCancelEarlierCompany(t *testing.T) {
	e := newTestEnv(t, "A, https://a.com, https://a.com/careers, https://a\\.com/jobs/.*\n"+
		"B, https://b.com, https://b.com/careers, https://b\\.com/jobs/.*\n")
	boom := errors.New("boom on B")
	e.pages.pages["https://a.com/careers"] = `<a href="/jobs/1">Slow but fine</a>`
	e.pages.delays = map[string]time.Duration{"https://a.com/careers": 200 * time.Millisecond}
	e.pages.errs = map[string]error{"https://b.com/careers": boom}

	sum, err := e.scraper(func(o *Options) { o.Concurrency = 2 }).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "company B")

	assert.Contains(t, e.out.String(), "\t Slow but fine https://a.com/jobs/1\n")
	assert.Equal(t, 1, sum.Files)
	assert.FileExists(t, filepath.Join(e.outDir, "A.md"))
}

func TestRunStopsOnFetchError(t *testing.T) {
	e := newTestEnv(t, acmeCSV)
	boom := errors.New("navigation timeout")
	e.pages.errs = map[string]error{"https://acme.com/careers/": boom}

	_, err := e.scraper(nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Acme")
	assert.NotContains(t, e.out.String(), "Initech")
}

func TestRunMalformedCompanyLine(t *testing.T) {
	e := newTestEnv(t, "Acme, https://acme.com, https://acme.com/careers\n")

	_, err := e.scraper(nil).Run(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalidCompanyLine)
	assert.Zero(t, e.pages.n.Load())
}

func TestRunLocked(t *testing.T) {
	e := newTestEnv(t, acmeCSV)
	lockPath := filepath.Join(e.dir, ".careers.lock")
	held := flock.New(lockPath)
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = held.Unlock() })

	_, err = e.scraper(nil).Run(context.Background())
	assert.ErrorIs(t, err, ErrRunLocked)
	assert.Zero(t, e.pages.n.Load())
}

func TestRunRecordsJobs(t *testing.T) {
	e := newTestEnv(t, acmeCSV)
	e.pages.pages["https://acme.com/careers/"] = `<a href="/jobs/1">Go Engineer</a>`
	e.pages.pages["https://foobar.io/jobs"] = ``

	db, err := store.Open(filepath.Join(e.dir, "careers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	opts := Options{CompaniesCSV: e.csv, OutputDir: e.outDir, Now: func() time.Time { return now }}

	s := New(opts, e.pages, db.Pool)
	sum, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Added)

	fresh, err := s.NewJobs(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "Acme", fresh[0].Company)
	assert.Equal(t, "Go Engineer", fresh[0].Title)

	now = now.Add(24 * time.Hour)
	sum, err = New(opts, e.pages, db.Pool).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.Added)

	fresh, err = s.NewJobs(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, fresh)

	recs, err := store.ListJobs(context.Background(), db.Pool, "Acme")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "https://acme.com/jobs/1", recs[0].URL)

	var runs int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM runs WHERE finished_at != '';`).Scan(&runs))
	assert.Equal(t, 2, runs)
}
