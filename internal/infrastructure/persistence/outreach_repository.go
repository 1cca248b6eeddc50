package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/outreach"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLeadRepository implements outreach.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID finds a lead by ID
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*outreach.Lead, error) {
	var l outreach.Lead
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// FindByEmail finds the most recent lead with the email, ignoring case
func (r *GormLeadRepository) FindByEmail(ctx context.Context, email string) (*outreach.Lead, error) {
	var l outreach.Lead
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC").
		First(&l).Error; err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// Save inserts or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, lead *outreach.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

// SaveTour inserts or updates a tour and, when loaded, its lead
func (r *GormLeadRepository) SaveTour(ctx context.Context, tour *outreach.Tour) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tour.Lead != nil {
			if err := tx.Save(tour.Lead).Error; err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(tour).Error
	})
}

// GormEventRepository implements outreach.EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// FindByName finds an event by name
func (r *GormEventRepository) FindByName(ctx context.Context, name string) (*outreach.Event, error) {
	var e outreach.Event
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&e).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// Save inserts or updates an event row
func (r *GormEventRepository) Save(ctx context.Context, event *outreach.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(event).Error
}

// GormBuyableRepository implements outreach.BuyableRepository using GORM
type GormBuyableRepository struct {
	db *gorm.DB
}

// NewGormBuyableRepository creates a new GormBuyableRepository
func NewGormBuyableRepository(db *gorm.DB) *GormBuyableRepository {
	return &GormBuyableRepository{db: db}
}

// FindByID finds a buyable with its split
func (r *GormBuyableRepository) FindByID(ctx context.Context, id uuid.UUID) (*outreach.Buyable, error) {
	var b outreach.Buyable
	if err := r.db.WithContext(ctx).Preload("RevenueSplit").First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// FindByName finds a buyable by name
func (r *GormBuyableRepository) FindByName(ctx context.Context, name string) (*outreach.Buyable, error) {
	var b outreach.Buyable
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// Save inserts or updates a buyable row
func (r *GormBuyableRepository) Save(ctx context.Context, b *outreach.Buyable) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

// IncrementSold adds qty to the sold counter in a single UPDATE
func (r *GormBuyableRepository) IncrementSold(ctx context.Context, id uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).Model(&outreach.Buyable{}).
		Where("id = ?", id).
		UpdateColumn("total_quantity_sold", gorm.Expr("total_quantity_sold + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound)
	}
	return nil
}

// SavePurchase inserts or updates a purchase row
func (r *GormBuyableRepository) SavePurchase(ctx context.Context, p *outreach.BuyablePurchase) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}
