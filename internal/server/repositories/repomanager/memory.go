package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/otpcodes"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out process-local repositories that ignore
// the DBTX they are bound to. Every call shares the same state, so a
// service wired to it behaves like one backed by a single database.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	otpCodes *otpcodes.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		otpCodes: otpcodes.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) OTPCodes(dbx.DBTX) otpcodes.Repository { return m.otpCodes }
