package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"careerscan/internal/domain"
)

// ErrInvalidCompanyLine is returned for a company line without exactly four fields.
var ErrInvalidCompanyLine = errors.New("invalid company line")

// companiesFooter ends the list; anything after it is notes.
const companiesFooter = "####"

func LoadCompanies(path string) ([]domain.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCompanies(f)
}

// ParseCompanies reads "name, homepage, careers_url, careers_regex" lines.
// Any line without exactly four fields, a blank one included, is malformed.
// It stops at the first malformed line and returns what came before it
// alongside the error.
func ParseCompanies(r io.Reader) ([]domain.Company, error) {
	var out []domain.Company

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, companiesFooter) {
			break
		}
		parts := strings.Split(line, ",")
		if len(parts) != 4 {
			return out, fmt.Errorf("%w %d: %q", ErrInvalidCompanyLine, lineNo, line)
		}

		c, err := domain.NewCompany(
			parts[0],
			strings.TrimSpace(parts[1]),
			strings.TrimSpace(parts[2]),
			strings.TrimSpace(parts[3]),
		)
		if err != nil {
			return out, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, c)
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}
