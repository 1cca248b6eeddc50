package persistence

import (
	"context"

	"github.com/plfog/backoffice/internal/application/commerce"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/education"
	"github.com/plfog/backoffice/internal/domain/outreach"
	"github.com/plfog/backoffice/internal/domain/tools"
	"gorm.io/gorm"
)

// GormTransactionScope implements commerce.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos commerce.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Orders() billing.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) Classes() education.ClassRepository {
	return NewGormClassRepository(r.tx)
}

func (r *gormTransactionalRepositories) Rentals() tools.RentalRepository {
	return NewGormRentalRepository(r.tx)
}

func (r *gormTransactionalRepositories) Buyables() outreach.BuyableRepository {
	return NewGormBuyableRepository(r.tx)
}

var _ commerce.TransactionScope = (*GormTransactionScope)(nil)
var _ commerce.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
