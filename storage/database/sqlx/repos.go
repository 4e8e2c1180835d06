// Package sqlxrepos provides PostgreSQL-backed repositories on top of sqlx.
package sqlxrepos

import (
	"database/sql"

	"github.com/pkg/errors"
)

// trapNoRowsErr converts a sql.ErrNoRows cause into the domain's own
// not-found sentinel.
func trapNoRowsErr(err, notFound error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return err
}
