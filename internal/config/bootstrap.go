package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// EnsureUserConfig returns <dataDir>/config.yml, creating it from defaultPath
// or, when that is missing too, from Default().
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	// Copy defaultPath -> userPath
	src, err := os.Open(defaultPath)
	if errors.Is(err, os.ErrNotExist) {
		return userPath, SaveAtomic(userPath, Default())
	}
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}

// Setup is the startup sequence both commands share: <dataDir>/.env, then
// the user config (created on first run), then CAREERS_* overrides. Warnings
// are logged; any validation error fails.
func Setup(dataDir, defaultPath string) (Config, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Config{}, err
	}
	if err := LoadDotEnv(filepath.Join(dataDir, ".env")); err != nil {
		return Config{}, err
	}

	userCfgPath, err := EnsureUserConfig(dataDir, defaultPath)
	if err != nil {
		return Config{}, fmt.Errorf("config bootstrap failed: %w", err)
	}
	cfg, err := Load(userCfgPath)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg, v := NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !v.OK() {
		return cfg, fmt.Errorf("%s: config validation failed:\n- %s", userCfgPath, strings.Join(v.Errors, "\n- "))
	}
	return cfg, nil
}
