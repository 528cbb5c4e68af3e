// internal/adapters/db/decode.go
package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

// decodeError classifies a Scan failure. Type mismatches and unexpected
// NULLs become DataCorruptionError; anything else is returned unchanged.
func decodeError(entity string, columns []string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var argErr pgx.ScanArgError
	if errors.As(err, &argErr) {
		column := ""
		if argErr.ColumnIndex >= 0 && argErr.ColumnIndex < len(columns) {
			column = columns[argErr.ColumnIndex]
		}
		return &domain.DataCorruptionError{Entity: entity, Column: column, Err: argErr.Err}
	}

	return err
}

// checkColumns fails fast when a result set does not carry exactly the
// expected columns in the expected order.
func checkColumns(entity string, fields []pgconn.FieldDescription, expected []string) error {
	if len(fields) == 0 {
		// the query failed; the error surfaces from rows.Err
		return nil
	}
	if len(fields) != len(expected) {
		return &domain.DataCorruptionError{
			Entity: entity,
			Err:    fmt.Errorf("expected %d columns, got %d", len(expected), len(fields)),
		}
	}
	for i, f := range fields {
		if f.Name != expected[i] {
			return &domain.DataCorruptionError{
				Entity: entity,
				Column: expected[i],
				Err:    fmt.Errorf("unexpected column %q at position %d", f.Name, i),
			}
		}
	}
	return nil
}

// escapeLike escapes the LIKE metacharacters in a user supplied term
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
