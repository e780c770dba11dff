package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"careerscan/internal/domain"
)

// RecordJobs upserts the postings found for company and returns how many
// were seen for the first time.
func RecordJobs(ctx context.Context, db *sql.DB, company string, jobs []domain.Job, now time.Time) (added int, err error) {
	company = strings.TrimSpace(company)
	if company == "" || len(jobs) == 0 {
		return 0, nil
	}
	ts := now.UTC().Format(time.RFC3339)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, j := range jobs {
		res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs(company, title, url, first_seen, last_seen)
VALUES(?,?,?,?,?);`,
			company, j.Title, j.URL, ts, ts,
		)
		if err != nil {
			return 0, fmt.Errorf("insert job url=%q: %w", j.URL, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
			continue
		}

		// already known; keep the latest title
		if _, err := tx.ExecContext(ctx, `
UPDATE jobs
SET title = ?, last_seen = ?
WHERE company = ? AND url = ?;`,
			j.Title, ts, company, j.URL,
		); err != nil {
			return 0, fmt.Errorf("touch job url=%q: %w", j.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ListJobs returns every posting recorded for company, newest first. An
// empty company lists all of them.
func ListJobs(ctx context.Context, db *sql.DB, company string) ([]domain.JobRecord, error) {
	rows, err := db.QueryContext(ctx, `
SELECT company, title, url, first_seen, last_seen
FROM jobs
WHERE ?1 = '' OR company = ?1
ORDER BY first_seen DESC, id ASC;`, strings.TrimSpace(company))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.JobRecord
	for rows.Next() {
		var r domain.JobRecord
		var first, last string
		if err := rows.Scan(&r.Company, &r.Title, &r.URL, &first, &last); err != nil {
			return nil, err
		}
		r.FirstSeen, _ = time.Parse(time.RFC3339, first)
		r.LastSeen, _ = time.Parse(time.RFC3339, last)
		out = append(out, r)
	}
	return out, rows.Err()
}

// StartRun opens a row in runs and returns its id.
func StartRun(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `INSERT INTO runs(started_at) VALUES(?);`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun stores the outcome of a run started with StartRun.
func FinishRun(ctx context.Context, db *sql.DB, id int64, now time.Time, companies, jobs, added int, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := db.ExecContext(ctx, `
UPDATE runs
SET finished_at = ?, companies = ?, jobs = ?, added = ?, error = ?
WHERE id = ?;`,
		now.UTC().Format(time.RFC3339), companies, jobs, added, msg, id,
	)
	return err
}
