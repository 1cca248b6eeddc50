package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/tools"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormToolRepository implements tools.ToolRepository using GORM
type GormToolRepository struct {
	db *gorm.DB
}

// NewGormToolRepository creates a new GormToolRepository
func NewGormToolRepository(db *gorm.DB) *GormToolRepository {
	return &GormToolRepository{db: db}
}

// FindByID finds a tool with its guild
func (r *GormToolRepository) FindByID(ctx context.Context, id uuid.UUID) (*tools.Tool, error) {
	var t tools.Tool
	if err := r.db.WithContext(ctx).Preload("Guild").First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// FindByName finds the first tool with the given name
func (r *GormToolRepository) FindByName(ctx context.Context, name string) (*tools.Tool, error) {
	var t tools.Tool
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("created_at").First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// FindByGuild lists a guild's tools by name
func (r *GormToolRepository) FindByGuild(ctx context.Context, guildID uuid.UUID) ([]tools.Tool, error) {
	var list []tools.Tool
	if err := r.db.WithContext(ctx).Where("guild_id = ?", guildID).Order("name").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Save inserts or updates a tool row
func (r *GormToolRepository) Save(ctx context.Context, tool *tools.Tool) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(tool).Error
}

// SaveReservation inserts or updates a reservation
func (r *GormToolRepository) SaveReservation(ctx context.Context, res *tools.ToolReservation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(res).Error
}

// SaveDocument inserts or updates document metadata
func (r *GormToolRepository) SaveDocument(ctx context.Context, d *tools.Document) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// GormRentalRepository implements tools.RentalRepository using GORM
type GormRentalRepository struct {
	db *gorm.DB
}

// NewGormRentalRepository creates a new GormRentalRepository
func NewGormRentalRepository(db *gorm.DB) *GormRentalRepository {
	return &GormRentalRepository{db: db}
}

// FindRentable finds a rentable with its tool and split
func (r *GormRentalRepository) FindRentable(ctx context.Context, id uuid.UUID) (*tools.Rentable, error) {
	var rt tools.Rentable
	if err := r.db.WithContext(ctx).Preload("Tool").Preload("RevenueSplit").First(&rt, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rt, nil
}

// FindRentableByTool finds the rentable offer for a tool
func (r *GormRentalRepository) FindRentableByTool(ctx context.Context, toolID uuid.UUID) (*tools.Rentable, error) {
	var rt tools.Rentable
	if err := r.db.WithContext(ctx).Preload("Tool").Where("tool_id = ?", toolID).First(&rt).Error; err != nil {
		return nil, notFound(err)
	}
	return &rt, nil
}

// SaveRentable inserts or updates a rentable row
func (r *GormRentalRepository) SaveRentable(ctx context.Context, rt *tools.Rentable) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rt).Error
}

// CountActiveRentals counts rentals of the rentable not yet returned
func (r *GormRentalRepository) CountActiveRentals(ctx context.Context, rentableID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&tools.Rental{}).
		Where("rentable_id = ? AND returned_at IS NULL", rentableID).
		Count(&n).Error
	return n, err
}

// FindRental finds a rental with its rentable and tool
func (r *GormRentalRepository) FindRental(ctx context.Context, id uuid.UUID) (*tools.Rental, error) {
	var rental tools.Rental
	if err := r.db.WithContext(ctx).
		Preload("Rentable.Tool").
		Preload("Rentable.RevenueSplit").
		First(&rental, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rental, nil
}

// SaveRental inserts or updates a rental row
func (r *GormRentalRepository) SaveRental(ctx context.Context, rental *tools.Rental) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rental).Error
}
