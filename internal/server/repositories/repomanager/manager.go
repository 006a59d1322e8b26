// Package repomanager vends repository implementations bound to a
// dbx.DBTX, so callers can run the same repository against *sql.DB or
// inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/otpcodes"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	OTPCodes(db dbx.DBTX) otpcodes.Repository
}
