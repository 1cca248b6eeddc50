package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything stored with a BaseEntity
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity holds the identity and timestamps every table carries
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

// Touch marks the row as modified now
func (e *BaseEntity) Touch() { e.UpdatedAt = time.Now().UTC() }

// NewBaseEntity starts a row with a random ID
func NewBaseEntity() BaseEntity {
	return NewBaseEntityWithID(uuid.New())
}

// NewBaseEntityWithID starts a row with a known ID, so fixture re-imports
// land on the rows they created before.
func NewBaseEntityWithID(id uuid.UUID) BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{ID: id, CreatedAt: now, UpdatedAt: now}
}
