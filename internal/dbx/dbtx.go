// Package dbx provides tiny DB abstractions shared by repositories.
package dbx

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DBTX is the subset of sqlx used by repositories. Both *sqlx.DB and
// *sqlx.Tx satisfy it, so a repository can be bound to either.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

var (
	_ DBTX = (*sqlx.DB)(nil)
	_ DBTX = (*sqlx.Tx)(nil)
)
