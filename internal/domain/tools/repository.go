package tools

import (
	"context"

	"github.com/google/uuid"
)

// ToolRepository persists tools and their reservations
type ToolRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tool, error)
	FindByName(ctx context.Context, name string) (*Tool, error)
	FindByGuild(ctx context.Context, guildID uuid.UUID) ([]Tool, error)
	Save(ctx context.Context, tool *Tool) error
	SaveReservation(ctx context.Context, r *ToolReservation) error
	SaveDocument(ctx context.Context, d *Document) error
}

// RentalRepository persists rentables and rentals
type RentalRepository interface {
	// FindRentable preloads the tool
	FindRentable(ctx context.Context, id uuid.UUID) (*Rentable, error)
	FindRentableByTool(ctx context.Context, toolID uuid.UUID) (*Rentable, error)
	SaveRentable(ctx context.Context, r *Rentable) error
	CountActiveRentals(ctx context.Context, rentableID uuid.UUID) (int64, error)
	// FindRental preloads the rentable and its tool
	FindRental(ctx context.Context, id uuid.UUID) (*Rental, error)
	SaveRental(ctx context.Context, r *Rental) error
}
