package outreach

import (
	"context"

	"github.com/google/uuid"
)

// LeadRepository persists leads and tours
type LeadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	Save(ctx context.Context, lead *Lead) error
	SaveTour(ctx context.Context, tour *Tour) error
}

// EventRepository persists events
type EventRepository interface {
	FindByName(ctx context.Context, name string) (*Event, error)
	Save(ctx context.Context, event *Event) error
}

// BuyableRepository persists buyables and purchases
type BuyableRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Buyable, error)
	FindByName(ctx context.Context, name string) (*Buyable, error)
	Save(ctx context.Context, b *Buyable) error
	// IncrementSold atomically adds qty to total_quantity_sold
	IncrementSold(ctx context.Context, id uuid.UUID, qty int) error
	SavePurchase(ctx context.Context, p *BuyablePurchase) error
}
