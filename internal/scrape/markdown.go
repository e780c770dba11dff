package scrape

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"careerscan/internal/domain"
)

// RenderMarkdown is the body of a company's postings file.
func RenderMarkdown(c domain.Company, jobs []domain.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n# %s\n- [Careers](%s)\n## Job Postings", c.Name, c.CareerURL)
	for _, j := range jobs {
		fmt.Fprintf(&b, "\n- [%s](%s)", j.Title, j.URL)
	}
	return b.String()
}

// SaveMarkdown writes <dir>/<safe name>.md and returns its path.
func SaveMarkdown(dir string, c domain.Company, jobs []domain.Job) (string, error) {
	name, err := c.SafeName()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+".md")
	if err := os.WriteFile(path, []byte(RenderMarkdown(c, jobs)), 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", c.Name, err)
	}
	return path, nil
}

// ResetOutputDir deletes dir and everything in it, then recreates it empty.
func ResetOutputDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear output dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
