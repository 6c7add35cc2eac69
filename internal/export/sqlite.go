package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"uwcatalog/internal/export/db"
	"uwcatalog/internal/scrapers/uwcatalog"
)

// OpenDB opens (or creates) a sqlite database with the export schema.
func OpenDB(path string) (*sql.DB, error) {
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("apply schema: %w", err), sqlite.Close())
	}
	return sqlite, nil
}

const (
	insertCourse = `insert or replace into course (
	campus, department, code, name, credits,
	areas_of_knowledge, prerequisites, offered_quarters
) values (?, ?, ?, ?, ?, ?, ?, ?)`
	insertPage = `insert or replace into page (
	campus, link, department, records, unparseable, fetch_error
) values (?, ?, ?, ?, ?, ?)`
	deleteFailures = `delete from decode_failure where campus = ? and link = ?`
	insertFailure  = `insert into decode_failure (campus, link, kind, raw) values (?, ?, ?, ?)`
)

// WriteDB writes the result of a scrape in a single transaction, rows of a
// previous scrape with the same keys are replaced.
func WriteDB(ctx context.Context, sqlite *sql.DB, result uwcatalog.Result, options Options) error {
	tx, err := sqlite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, record := range result.Records {
		row := Row(record, options)
		var offered any
		if options.Schema == SCHEMA_EXTENDED {
			offered = row[7]
		}
		_, err = tx.ExecContext(
			ctx, insertCourse,
			row[0], row[1], row[2], row[3], row[4], row[5], row[6], offered,
		)
		if err != nil {
			return fmt.Errorf("insert course %s: %w", record.Key(), err)
		}
	}

	for _, page := range result.Pages {
		_, err = tx.ExecContext(
			ctx, insertPage,
			page.Campus.String(), page.Link, page.Department,
			len(page.Records), page.Unparseable, nil,
		)
		if err != nil {
			return fmt.Errorf("insert page %s: %w", page.Link, err)
		}
		_, err = tx.ExecContext(ctx, deleteFailures, page.Campus.String(), page.Link)
		if err != nil {
			return fmt.Errorf("clear failures of %s: %w", page.Link, err)
		}
		for _, failure := range page.Failures {
			_, err = tx.ExecContext(
				ctx, insertFailure,
				page.Campus.String(), page.Link, failure.Kind.String(), failure.Raw,
			)
			if err != nil {
				return fmt.Errorf("insert failure of %s: %w", page.Link, err)
			}
		}
	}

	for _, pageErr := range result.Errors {
		_, err = tx.ExecContext(
			ctx, insertPage,
			pageErr.Campus.String(), pageErr.Link, "",
			0, false, pageErr.Err.Error(),
		)
		if err != nil {
			return fmt.Errorf("insert page error %s: %w", pageErr.Link, err)
		}
		_, err = tx.ExecContext(ctx, deleteFailures, pageErr.Campus.String(), pageErr.Link)
		if err != nil {
			return fmt.Errorf("clear failures of %s: %w", pageErr.Link, err)
		}
	}

	return tx.Commit()
}
