package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a trimmed copy of cfg plus whatever is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.App.DataDir = strings.TrimSpace(out.App.DataDir)
	out.App.CompaniesCSV = strings.TrimSpace(out.App.CompaniesCSV)
	out.App.CacheDir = strings.TrimSpace(out.App.CacheDir)
	out.App.OutputDir = strings.TrimSpace(out.App.OutputDir)
	out.Browser.UserAgents = trimList(out.Browser.UserAgents)

	// ---- paths ----
	if out.App.CompaniesCSV == "" {
		res.addErr("app.companies_csv is required")
	}
	if out.App.CacheDir == "" {
		res.addErr("app.cache_dir is required")
	}
	switch out.App.OutputDir {
	case "":
		res.addErr("app.output_dir is required")
	case ".", "/":
		// the output dir is deleted on every run
		res.addErr("app.output_dir %q would be wiped on every run", out.App.OutputDir)
	}
	if out.App.OutputDir != "" && out.App.OutputDir == out.App.CacheDir {
		res.addErr("app.output_dir and app.cache_dir must differ")
	}

	// ---- browser ----
	if out.Browser.NavTimeoutMS <= 0 {
		res.addErr("browser.nav_timeout_ms must be > 0")
	}
	if out.Browser.SettleMS < 0 {
		res.addErr("browser.settle_ms must be >= 0")
	} else if out.Browser.SettleMS < 250 {
		res.addWarn("browser.settle_ms is very low (%d); lazy-loaded listings may be missed.", out.Browser.SettleMS)
	}
	if out.Browser.ViewportWidth <= 0 || out.Browser.ViewportHeight <= 0 {
		res.addErr("browser.viewport_width and browser.viewport_height must be > 0")
	}
	if len(out.Browser.UserAgents) == 0 {
		res.addWarn("browser.user_agents is empty; the browser default user agent will be sent.")
	}

	// ---- retry ----
	if out.Retry.MaxAttempts < 1 {
		res.addErr("retry.max_attempts must be >= 1")
	}
	if out.Retry.InitialDelayMS < 0 || out.Retry.MaxDelayMS < 0 {
		res.addErr("retry delays must be >= 0")
	}
	if out.Retry.Multiplier < 1 {
		res.addErr("retry.multiplier must be >= 1")
	}

	// ---- scrape ----
	if out.Scrape.Concurrency < 1 {
		res.addErr("scrape.concurrency must be >= 1")
	} else if out.Scrape.Concurrency > 8 {
		res.addWarn("scrape.concurrency is %d; each worker runs its own browser.", out.Scrape.Concurrency)
	}
	if out.Scrape.HostRPS <= 0 {
		res.addErr("scrape.host_rps must be > 0")
	}
	if out.Scrape.HostBurst < 1 {
		res.addErr("scrape.host_burst must be >= 1")
	}

	// ---- linkcheck ----
	if strings.TrimSpace(out.LinkCheck.Document) == "" {
		res.addErr("linkcheck.document is required")
	}
	if out.LinkCheck.TimeoutSeconds <= 0 {
		res.addErr("linkcheck.timeout_seconds must be > 0")
	}
	if out.LinkCheck.Concurrency < 1 {
		res.addErr("linkcheck.concurrency must be >= 1")
	}

	return out, res
}
