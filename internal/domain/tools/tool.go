// Package tools covers shared equipment: the tool inventory, reservations,
// rentable offerings with their rentals, and attached documents.
package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OwnerType says who owns a tool
type OwnerType string

const (
	OwnerTypeGuild  OwnerType = "guild"
	OwnerTypeMember OwnerType = "member"
	OwnerTypeOrg    OwnerType = "org"
)

// Choices implements shared.Choices
func (OwnerType) Choices() []string {
	return []string{string(OwnerTypeGuild), string(OwnerTypeMember), string(OwnerTypeOrg)}
}

// Tool is a piece of equipment in the space
type Tool struct {
	shared.BaseEntity
	GuildID        *uuid.UUID        `gorm:"type:uuid;index" json:"guild_id,omitempty"`
	Guild          *membership.Guild `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	Name           string            `gorm:"type:varchar(255);not null;index" json:"name"`
	Description    string            `gorm:"type:text" json:"description"`
	Image          string            `gorm:"type:varchar(500)" json:"image"`
	EstimatedValue *decimal.Decimal  `gorm:"type:decimal(10,2)" json:"estimated_value,omitempty"`
	OwnerType      OwnerType         `gorm:"type:varchar(20);not null;default:'org'" json:"owner_type"`
	OwnerID        *uuid.UUID        `gorm:"type:uuid" json:"owner_id,omitempty"`
	IsReservable   bool              `gorm:"not null;default:false" json:"is_reservable"`
	IsRentable     bool              `gorm:"not null;default:false" json:"is_rentable"`
	Notes          string            `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Tool) TableName() string {
	return "tools"
}

// NewTool creates an org-owned tool
func NewTool(name string, guildID *uuid.UUID) (*Tool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TOOL_NAME", "Tool name cannot be empty")
	}
	return &Tool{
		BaseEntity: shared.NewBaseEntity(),
		GuildID:    guildID,
		Name:       name,
		OwnerType:  OwnerTypeOrg,
	}, nil
}

func (t *Tool) String() string {
	return t.Name
}

// ReservationStatus is the state of a tool reservation
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Choices implements shared.Choices
func (ReservationStatus) Choices() []string {
	return []string{string(ReservationStatusActive), string(ReservationStatusCompleted), string(ReservationStatusCancelled)}
}

// ToolReservation books a tool for a window of time
type ToolReservation struct {
	shared.BaseEntity
	ToolID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"tool_id"`
	Tool     *Tool             `gorm:"foreignKey:ToolID" json:"tool,omitempty"`
	UserID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User     *identity.User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StartsAt time.Time         `gorm:"not null" json:"starts_at"`
	EndsAt   time.Time         `gorm:"not null" json:"ends_at"`
	Status   ReservationStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
}

// TableName returns the table name for GORM
func (ToolReservation) TableName() string {
	return "tool_reservations"
}

// NewToolReservation books tool for user between starts and ends
func NewToolReservation(toolID, userID uuid.UUID, starts, ends time.Time) (*ToolReservation, error) {
	if !ends.After(starts) {
		return nil, shared.NewDomainError("INVALID_TIME_RANGE", "Reservation must end after it starts")
	}
	return &ToolReservation{
		BaseEntity: shared.NewBaseEntity(),
		ToolID:     toolID,
		UserID:     userID,
		StartsAt:   starts,
		EndsAt:     ends,
		Status:     ReservationStatusActive,
	}, nil
}

func (r *ToolReservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}

func (r *ToolReservation) String() string {
	var tool, user string
	if r.Tool != nil {
		tool = r.Tool.Name
	}
	if r.User != nil {
		user = r.User.Username
	}
	return fmt.Sprintf("%s - %s (%s)", tool, user, r.StartsAt.Format(shared.DateLayout))
}

// Document is a file attached to any record (tool manuals, waivers)
type Document struct {
	shared.BaseEntity
	DocumentableType string     `gorm:"type:varchar(100);not null;index:idx_documentable,priority:1" json:"documentable_type"`
	DocumentableID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_documentable,priority:2" json:"documentable_id"`
	Name             string     `gorm:"type:varchar(255);not null" json:"name"`
	FilePath         string     `gorm:"type:varchar(500);not null" json:"file_path"`
	UploadedByID     *uuid.UUID `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

func (d *Document) String() string {
	return d.Name
}
