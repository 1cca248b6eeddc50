// Package outreach is the CRM side of the space: prospective members,
// tours given to them, public events, and small goods sold over the
// counter.
package outreach

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/shared"
)

// LeadStatus tracks a prospect through the funnel
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusToured    LeadStatus = "toured"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// Choices implements shared.Choices
func (LeadStatus) Choices() []string {
	return []string{
		string(LeadStatusNew), string(LeadStatusContacted), string(LeadStatusToured),
		string(LeadStatusConverted), string(LeadStatusLost),
	}
}

// Lead is a prospective member
type Lead struct {
	shared.BaseEntity
	Name                      string     `gorm:"type:varchar(255);not null" json:"name"`
	Email                     string     `gorm:"type:varchar(254);index" json:"email"`
	Phone                     string     `gorm:"type:varchar(20)" json:"phone"`
	Interests                 string     `gorm:"type:text" json:"interests"`
	Notes                     string     `gorm:"type:text" json:"notes"`
	Source                    string     `gorm:"type:varchar(255)" json:"source"`
	Status                    LeadStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	GreenlightedForMembership bool       `gorm:"not null;default:false" json:"greenlighted_for_membership"`
}

// TableName returns the table name for GORM
func (Lead) TableName() string {
	return "leads"
}

// NewLead creates a lead in status new
func NewLead(name, email string) (*Lead, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_LEAD_NAME", "Lead name cannot be empty")
	}
	return &Lead{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Email:      strings.TrimSpace(email),
		Status:     LeadStatusNew,
	}, nil
}

func (l *Lead) String() string {
	return l.Name
}

// TourStatus is the state of a tour
type TourStatus string

const (
	TourStatusScheduled TourStatus = "scheduled"
	TourStatusClaimed   TourStatus = "claimed"
	TourStatusCompleted TourStatus = "completed"
	TourStatusCancelled TourStatus = "cancelled"
	TourStatusNoShow    TourStatus = "no_show"
)

// Choices implements shared.Choices
func (TourStatus) Choices() []string {
	return []string{
		string(TourStatusScheduled), string(TourStatusClaimed), string(TourStatusCompleted),
		string(TourStatusCancelled), string(TourStatusNoShow),
	}
}

// Tour is a walkthrough of the space given to a lead
type Tour struct {
	shared.BaseEntity
	LeadID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"lead_id"`
	Lead            *Lead      `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	ScheduledAt     time.Time  `gorm:"not null" json:"scheduled_at"`
	ClaimedByID     *uuid.UUID `gorm:"type:uuid" json:"claimed_by_id,omitempty"`
	ClaimedAt       *time.Time `json:"claimed_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CompletionNotes string     `gorm:"type:text" json:"completion_notes"`
	Status          TourStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
}

// TableName returns the table name for GORM
func (Tour) TableName() string {
	return "tours"
}

// NewTour schedules a tour for lead
func NewTour(leadID uuid.UUID, at time.Time) *Tour {
	return &Tour{
		BaseEntity:  shared.NewBaseEntity(),
		LeadID:      leadID,
		ScheduledAt: at,
		Status:      TourStatusScheduled,
	}
}

// Claim assigns a guide to a scheduled tour
func (t *Tour) Claim(by uuid.UUID, now time.Time) error {
	if t.Status != TourStatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only scheduled tours can be claimed")
	}
	t.Status = TourStatusClaimed
	t.ClaimedByID = &by
	t.ClaimedAt = &now
	t.Touch()
	return nil
}

// Complete finishes a claimed tour and moves the lead to toured
func (t *Tour) Complete(notes string, now time.Time) error {
	if t.Status != TourStatusClaimed {
		return shared.NewDomainError("INVALID_STATE", "Only claimed tours can be completed")
	}
	t.Status = TourStatusCompleted
	t.CompletedAt = &now
	t.CompletionNotes = notes
	if t.Lead != nil && (t.Lead.Status == LeadStatusNew || t.Lead.Status == LeadStatusContacted) {
		t.Lead.Status = LeadStatusToured
		t.Lead.Touch()
	}
	t.Touch()
	return nil
}

// String renders "Tour for name (status)". The lead must be loaded.
func (t *Tour) String() string {
	name := ""
	if t.Lead != nil {
		name = t.Lead.Name
	}
	return fmt.Sprintf("Tour for %s (%s)", name, t.Status)
}
