package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidCompanyName  = errors.New("more than one slash in company name")
	ErrInvalidCareersRegex = errors.New("invalid careers regex")
)

// Company is one line of the company list. Scraping is disabled when
// CareerURL or CareersRegex is empty.
type Company struct {
	Name         string
	HomepageURL  string
	CareerURL    string
	CareersRegex string

	matcher *regexp.Regexp
}

// NewCompany compiles the careers regex up front so a bad pattern fails the
// load instead of the scrape.
func NewCompany(name, homepage, careerURL, careersRegex string) (Company, error) {
	c := Company{
		Name:         name,
		HomepageURL:  homepage,
		CareerURL:    careerURL,
		CareersRegex: careersRegex,
	}
	if careersRegex == "" {
		return c, nil
	}

	// anchored at the start only, like a prefix match
	re, err := regexp.Compile(`^(?:` + careersRegex + `)`)
	if err != nil {
		return Company{}, fmt.Errorf("%w %q for %s: %v", ErrInvalidCareersRegex, careersRegex, name, err)
	}
	c.matcher = re
	return c, nil
}

func (c Company) Scrapable() bool {
	return c.CareerURL != "" && c.CareersRegex != ""
}

// Matches reports whether u looks like one of this company's job postings.
func (c Company) Matches(u string) bool {
	if c.matcher == nil {
		return false
	}
	return c.matcher.MatchString(u)
}

// SafeName renders "Foo/Bar" as "Foo (Bar)" for use as a file name.
func (c Company) SafeName() (string, error) {
	if !strings.Contains(c.Name, "/") {
		return c.Name, nil
	}

	parts := strings.Split(c.Name, "/")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCompanyName, c.Name)
	}
	return fmt.Sprintf("%s (%s)", parts[0], parts[1]), nil
}

func (c Company) String() string {
	return fmt.Sprintf("%s (%s - %s)", c.Name, c.CareerURL, c.CareersRegex)
}
