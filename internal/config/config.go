// internal/config/config.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir      string `yaml:"data_dir"`
		CompaniesCSV string `yaml:"companies_csv"`
		CacheDir     string `yaml:"cache_dir"`
		OutputDir    string `yaml:"output_dir"`
	} `yaml:"app"`

	Browser struct {
		Install        bool     `yaml:"install"`
		Headless       bool     `yaml:"headless"`
		NavTimeoutMS   int      `yaml:"nav_timeout_ms"`
		SettleMS       int      `yaml:"settle_ms"`
		ViewportWidth  int      `yaml:"viewport_width"`
		ViewportHeight int      `yaml:"viewport_height"`
		UserAgents     []string `yaml:"user_agents"`
	} `yaml:"browser"`

	Retry struct {
		MaxAttempts    int     `yaml:"max_attempts"`
		InitialDelayMS int     `yaml:"initial_delay_ms"`
		MaxDelayMS     int     `yaml:"max_delay_ms"`
		Multiplier     float64 `yaml:"multiplier"`
	} `yaml:"retry"`

	Scrape struct {
		DryRun      bool    `yaml:"dry_run"`
		Concurrency int     `yaml:"concurrency"`
		HostRPS     float64 `yaml:"host_rps"`
		HostBurst   int     `yaml:"host_burst"`
	} `yaml:"scrape"`

	LinkCheck struct {
		Document       string `yaml:"document"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Concurrency    int    `yaml:"concurrency"`
		UserAgent      string `yaml:"user_agent"`
	} `yaml:"linkcheck"`
}

// Default returns the settings both tools run with when no config file exists.
func Default() Config {
	var cfg Config

	cfg.App.DataDir = "."
	cfg.App.CompaniesCSV = "companies.csv"
	cfg.App.CacheDir = ".cache"
	cfg.App.OutputDir = "job_postings"

	cfg.Browser.Headless = true
	cfg.Browser.NavTimeoutMS = 30000
	cfg.Browser.SettleMS = 1000
	cfg.Browser.ViewportWidth = 1366
	cfg.Browser.ViewportHeight = 768
	cfg.Browser.UserAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
	}

	cfg.Retry.MaxAttempts = 3
	cfg.Retry.InitialDelayMS = 1000
	cfg.Retry.MaxDelayMS = 10000
	cfg.Retry.Multiplier = 2.0

	cfg.Scrape.Concurrency = 1
	cfg.Scrape.HostRPS = 1.0
	cfg.Scrape.HostBurst = 2

	cfg.LinkCheck.Document = "README.md"
	cfg.LinkCheck.TimeoutSeconds = 15
	cfg.LinkCheck.Concurrency = 8
	cfg.LinkCheck.UserAgent = "Mozilla/5.0"

	return cfg
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Browser.NavTimeoutMS) * time.Millisecond
}

func (c Config) Settle() time.Duration {
	return time.Duration(c.Browser.SettleMS) * time.Millisecond
}

func (c Config) LinkCheckTimeout() time.Duration {
	return time.Duration(c.LinkCheck.TimeoutSeconds) * time.Second
}

// Resolve places a relative path under App.DataDir.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}
