// config/overlay.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with CAREERS_* environment variables.
func ApplyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("CAREERS_DATA_DIR", &cfg.App.DataDir)
	str("CAREERS_COMPANIES_CSV", &cfg.App.CompaniesCSV)
	str("CAREERS_CACHE_DIR", &cfg.App.CacheDir)
	str("CAREERS_OUTPUT_DIR", &cfg.App.OutputDir)
	str("CAREERS_LINKCHECK_DOCUMENT", &cfg.LinkCheck.Document)

	if err := boolean("CAREERS_DRY_RUN", &cfg.Scrape.DryRun); err != nil {
		return err
	}
	if err := boolean("CAREERS_HEADLESS", &cfg.Browser.Headless); err != nil {
		return err
	}
	if err := boolean("CAREERS_BROWSER_INSTALL", &cfg.Browser.Install); err != nil {
		return err
	}
	if err := integer("CAREERS_CONCURRENCY", &cfg.Scrape.Concurrency); err != nil {
		return err
	}
	if err := integer("CAREERS_NAV_TIMEOUT_MS", &cfg.Browser.NavTimeoutMS); err != nil {
		return err
	}
	return nil
}
