package persistence

import (
	"context"

	appcollection "github.com/callbridge/backend/internal/application/collection"
	"github.com/callbridge/backend/internal/domain/collection"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn rolls the
// transaction back; a nil return commits it.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcollection.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProfileRepo returns the profile repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProfileRepo() collection.ProfileRepository {
	return NewGormProfileRepository(r.tx)
}

var _ appcollection.TransactionScope = (*GormTransactionScope)(nil)
var _ appcollection.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
