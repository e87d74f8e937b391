package collection

import (
	"context"

	"github.com/callbridge/backend/internal/domain/collection"
)

// TransactionScope provides transactional access to the collections store.
// Every repository call made through the repositories handed to fn is part
// of one transaction, committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction
type TransactionalRepositories interface {
	// ProfileRepo returns the profile repository scoped to the transaction
	ProfileRepo() collection.ProfileRepository
}

// NoOpTransactionScope runs fn against a plain repository without a
// transaction. Useful in tests and for stores without transaction support.
type NoOpTransactionScope struct {
	profileRepo collection.ProfileRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(profileRepo collection.ProfileRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{profileRepo: profileRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProfileRepo returns the wrapped repository
func (s *NoOpTransactionScope) ProfileRepo() collection.ProfileRepository {
	return s.profileRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
