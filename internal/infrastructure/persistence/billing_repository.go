package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements billing.OrderRepository using GORM
type GormOrderRepository struct {
	db  *gorm.DB
	loc *time.Location
}

// NewGormOrderRepository creates a new GormOrderRepository reading
// calendar dates in UTC
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db, loc: time.UTC}
}

// InLocation returns a copy that reads calendar dates in loc
func (r *GormOrderRepository) InLocation(loc *time.Location) *GormOrderRepository {
	return &GormOrderRepository{db: r.db, loc: loc}
}

// FindByID finds an order with its revenue split
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	var o billing.Order
	if err := r.db.WithContext(ctx).Preload("RevenueSplit").First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// FindPaidWithSplitBetween returns paid orders with a split whose issue
// date, read in the repository's location, falls within [start, end],
// oldest first
func (r *GormOrderRepository) FindPaidWithSplitBetween(ctx context.Context, start, end time.Time) ([]billing.Order, error) {
	from, to := shared.DayRange(start, end, r.loc)
	var orders []billing.Order
	if err := r.db.WithContext(ctx).Preload("RevenueSplit").
		Where("status = ?", billing.OrderStatusPaid).
		Where("revenue_split_id IS NOT NULL").
		Where("issued_at >= ? AND issued_at < ?", from.UTC(), to.UTC()).
		Order("issued_at, id").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindUserIDsWithTab returns the distinct users holding on-tab orders
func (r *GormOrderRepository) FindUserIDsWithTab(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&billing.Order{}).
		Where("status = ?", billing.OrderStatusOnTab).
		Distinct().
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindOnTabByUser returns the user's on-tab orders, oldest first
func (r *GormOrderRepository) FindOnTabByUser(ctx context.Context, userID uuid.UUID) ([]billing.Order, error) {
	var orders []billing.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, billing.OrderStatusOnTab).
		Order("issued_at, id").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkBilled flips on-tab orders among ids to billed and stamps billed_at
func (r *GormOrderRepository) MarkBilled(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&billing.Order{}).
		Where("id IN ? AND status = ?", ids, billing.OrderStatusOnTab).
		Updates(map[string]any{
			"status":     billing.OrderStatusBilled,
			"billed_at":  at,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}

// Save inserts or updates an order row
func (r *GormOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var inv billing.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

// FindByUser lists the user's invoices, newest first
func (r *GormInvoiceRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("issued_at DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save inserts or updates an invoice row
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(invoice).Error
}

// GormPayoutRepository implements billing.PayoutRepository using GORM
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewGormPayoutRepository creates a new GormPayoutRepository
func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// FindByID finds a payout by ID
func (r *GormPayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payout, error) {
	var p billing.Payout
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// SaveAll inserts every payout in a single transaction
func (r *GormPayoutRepository) SaveAll(ctx context.Context, payouts []*billing.Payout) error {
	if len(payouts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range payouts {
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Save inserts or updates a payout
func (r *GormPayoutRepository) Save(ctx context.Context, payout *billing.Payout) error {
	return r.db.WithContext(ctx).Save(payout).Error
}

// GormRevenueSplitRepository implements billing.RevenueSplitRepository
type GormRevenueSplitRepository struct {
	db *gorm.DB
}

// NewGormRevenueSplitRepository creates a new GormRevenueSplitRepository
func NewGormRevenueSplitRepository(db *gorm.DB) *GormRevenueSplitRepository {
	return &GormRevenueSplitRepository{db: db}
}

// FindByID finds a split by ID
func (r *GormRevenueSplitRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RevenueSplit, error) {
	var s billing.RevenueSplit
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// FindByName finds a split by its unique name
func (r *GormRevenueSplitRepository) FindByName(ctx context.Context, name string) (*billing.RevenueSplit, error) {
	var s billing.RevenueSplit
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Save inserts or updates a split
func (r *GormRevenueSplitRepository) Save(ctx context.Context, split *billing.RevenueSplit) error {
	return r.db.WithContext(ctx).Save(split).Error
}

// GormSubscriptionRepository implements billing.SubscriptionRepository
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindPlanByName finds a subscription plan by name
func (r *GormSubscriptionRepository) FindPlanByName(ctx context.Context, name string) (*billing.SubscriptionPlan, error) {
	var p billing.SubscriptionPlan
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// SavePlan inserts or updates a subscription plan
func (r *GormSubscriptionRepository) SavePlan(ctx context.Context, plan *billing.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// FindActiveByUser returns the user's active subscriptions with their plans
func (r *GormSubscriptionRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]billing.MemberSubscription, error) {
	var subs []billing.MemberSubscription
	if err := r.db.WithContext(ctx).Preload("SubscriptionPlan").
		Where("user_id = ? AND status = ?", userID, billing.SubscriptionStatusActive).
		Order("starts_at").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// Save inserts or updates a member subscription row
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *billing.MemberSubscription) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(sub).Error
}
