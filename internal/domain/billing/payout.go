package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/shared"
)

// PayoutStatus is the distribution state of a payout
type PayoutStatus string

const (
	PayoutStatusPending     PayoutStatus = "pending"
	PayoutStatusDistributed PayoutStatus = "distributed"
)

// Choices implements shared.Choices
func (PayoutStatus) Choices() []string {
	return []string{string(PayoutStatusPending), string(PayoutStatusDistributed)}
}

// PayeeKey identifies a payout recipient
type PayeeKey struct {
	Type EntityType
	ID   uuid.UUID
}

// Payout is money owed to a recipient for a period
type Payout struct {
	shared.BaseEntity
	PayeeType       EntityType   `gorm:"type:varchar(20);not null;index" json:"payee_type"`
	PayeeID         uuid.UUID    `gorm:"type:uuid;not null" json:"payee_id"`
	Amount          int64        `gorm:"not null" json:"amount"`
	InvoiceIDs      []uuid.UUID  `gorm:"type:jsonb;serializer:json" json:"invoice_ids"`
	Status          PayoutStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DistributedAt   *time.Time   `json:"distributed_at,omitempty"`
	DistributedByID *uuid.UUID   `gorm:"type:uuid" json:"distributed_by_id,omitempty"`
	PeriodStart     time.Time    `gorm:"type:date;not null" json:"period_start"`
	PeriodEnd       time.Time    `gorm:"type:date;not null" json:"period_end"`
}

// TableName returns the table name for GORM
func (Payout) TableName() string {
	return "payouts"
}

// NewPendingPayout creates a pending payout for a period
func NewPendingPayout(payee PayeeKey, amount int64, start, end time.Time) *Payout {
	return &Payout{
		BaseEntity:  shared.NewBaseEntity(),
		PayeeType:   payee.Type,
		PayeeID:     payee.ID,
		Amount:      amount,
		InvoiceIDs:  []uuid.UUID{},
		Status:      PayoutStatusPending,
		PeriodStart: shared.DateOf(start),
		PeriodEnd:   shared.DateOf(end),
	}
}

func (p *Payout) FormattedAmount() string { return shared.FormatCents(p.Amount) }
func (p *Payout) IsDistributed() bool     { return p.Status == PayoutStatusDistributed }

func (p *Payout) String() string {
	return fmt.Sprintf("Payout %s - %s (%s:%s)", p.ID, p.FormattedAmount(), p.PayeeType, p.PayeeID)
}

// MarkDistributed records who paid out the money and when
func (p *Payout) MarkDistributed(by uuid.UUID, now time.Time) error {
	if p.Status != PayoutStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending payouts can be distributed")
	}
	p.Status = PayoutStatusDistributed
	p.DistributedAt = &now
	p.DistributedByID = &by
	p.Touch()
	return nil
}
