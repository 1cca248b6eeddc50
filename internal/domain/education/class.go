package education

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClassStatus is the publication state of a class
type ClassStatus string

const (
	ClassStatusDraft     ClassStatus = "draft"
	ClassStatusPublished ClassStatus = "published"
	ClassStatusArchived  ClassStatus = "archived"
)

// Choices implements shared.Choices
func (ClassStatus) Choices() []string {
	return []string{string(ClassStatusDraft), string(ClassStatusPublished), string(ClassStatusArchived)}
}

// MakerClass is a course offered by a guild
type MakerClass struct {
	shared.BaseEntity
	GuildID               *uuid.UUID            `gorm:"type:uuid;index" json:"guild_id,omitempty"`
	Guild                 *membership.Guild     `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	Name                  string                `gorm:"type:varchar(255);not null" json:"name"`
	Description           string                `gorm:"type:text" json:"description"`
	Image                 string                `gorm:"type:varchar(500)" json:"image"`
	Location              string                `gorm:"type:varchar(255)" json:"location"`
	Price                 decimal.Decimal       `gorm:"type:decimal(8,2);not null" json:"price"`
	MaxStudents           *int                  `json:"max_students,omitempty"`
	RevenueSplitID        *uuid.UUID            `gorm:"type:uuid;index" json:"revenue_split_id,omitempty"`
	RevenueSplit          *billing.RevenueSplit `gorm:"foreignKey:RevenueSplitID" json:"revenue_split,omitempty"`
	RegistrationEmailCopy string                `gorm:"type:text" json:"registration_email_copy"`
	Status                ClassStatus           `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	CreatedByID           *uuid.UUID            `gorm:"type:uuid" json:"created_by_id,omitempty"`
	PublishedAt           *time.Time            `json:"published_at,omitempty"`
	Instructors           []identity.User       `gorm:"many2many:maker_class_instructors;" json:"instructors,omitempty"`
	DiscountCodes         []ClassDiscountCode   `gorm:"many2many:maker_class_discount_codes;" json:"discount_codes,omitempty"`
	Sessions              []ClassSession        `gorm:"foreignKey:MakerClassID" json:"sessions,omitempty"`
}

// TableName returns the table name for GORM
func (MakerClass) TableName() string {
	return "maker_classes"
}

// NewMakerClass creates a draft class
func NewMakerClass(name string, price decimal.Decimal) (*MakerClass, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CLASS_NAME", "Class name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Class price cannot be negative")
	}
	return &MakerClass{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Price:      price,
		Status:     ClassStatusDraft,
	}, nil
}

func (c *MakerClass) String() string {
	return c.Name
}

func (c *MakerClass) IsPublished() bool {
	return c.Status == ClassStatusPublished
}

// Publish makes the class visible for registration
func (c *MakerClass) Publish(now time.Time) error {
	if c.Status == ClassStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived classes cannot be published")
	}
	c.Status = ClassStatusPublished
	c.PublishedAt = &now
	c.Touch()
	return nil
}

// Archive retires the class
func (c *MakerClass) Archive() {
	c.Status = ClassStatusArchived
	c.Touch()
}

// HasAvailableSpots reports whether another student fits. A class without
// a cap always has room.
func (c *MakerClass) HasAvailableSpots(enrolled int64) bool {
	if c.MaxStudents == nil {
		return true
	}
	return enrolled < int64(*c.MaxStudents)
}

// AcceptsCode reports whether code is attached to this class and active
func (c *MakerClass) AcceptsCode(code *ClassDiscountCode) bool {
	if code == nil || !code.IsActive {
		return false
	}
	for _, dc := range c.DiscountCodes {
		if dc.ID == code.ID {
			return true
		}
	}
	return false
}

// ClassSession is one meeting of a class
type ClassSession struct {
	shared.BaseEntity
	MakerClassID uuid.UUID   `gorm:"type:uuid;not null;index" json:"maker_class_id"`
	MakerClass   *MakerClass `gorm:"foreignKey:MakerClassID" json:"maker_class,omitempty"`
	StartsAt     time.Time   `gorm:"not null" json:"starts_at"`
	EndsAt       time.Time   `gorm:"not null" json:"ends_at"`
	Notes        string      `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (ClassSession) TableName() string {
	return "class_sessions"
}

// NewClassSession validates that the session ends after it starts
func NewClassSession(classID uuid.UUID, starts, ends time.Time) (*ClassSession, error) {
	if !ends.After(starts) {
		return nil, shared.NewDomainError("INVALID_TIME_RANGE", "Session must end after it starts")
	}
	return &ClassSession{BaseEntity: shared.NewBaseEntity(), MakerClassID: classID, StartsAt: starts, EndsAt: ends}, nil
}

func (s *ClassSession) String() string {
	name := ""
	if s.MakerClass != nil {
		name = s.MakerClass.Name
	}
	return fmt.Sprintf("%s - %s", name, s.StartsAt.Format(shared.DateLayout))
}

// ClassImage is a gallery image for a class
type ClassImage struct {
	shared.BaseEntity
	MakerClassID uuid.UUID `gorm:"type:uuid;not null;index" json:"maker_class_id"`
	ImagePath    string    `gorm:"type:varchar(500);not null" json:"image_path"`
	SortOrder    int       `gorm:"not null;default:0" json:"sort_order"`
}

// TableName returns the table name for GORM
func (ClassImage) TableName() string {
	return "class_images"
}

// Student is a registration for a class. Walk-ins have no user.
type Student struct {
	shared.BaseEntity
	MakerClassID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"maker_class_id"`
	MakerClass     *MakerClass        `gorm:"foreignKey:MakerClassID" json:"maker_class,omitempty"`
	UserID         *uuid.UUID         `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name           string             `gorm:"type:varchar(255);not null" json:"name"`
	Email          string             `gorm:"type:varchar(254);not null" json:"email"`
	Phone          string             `gorm:"type:varchar(20)" json:"phone"`
	DiscountCodeID *uuid.UUID         `gorm:"type:uuid" json:"discount_code_id,omitempty"`
	DiscountCode   *ClassDiscountCode `gorm:"foreignKey:DiscountCodeID" json:"discount_code,omitempty"`
	AmountPaid     decimal.Decimal    `gorm:"type:decimal(8,2);not null;default:0" json:"amount_paid"`
	InvoiceID      string             `gorm:"type:varchar(255)" json:"invoice_id"`
	RegisteredAt   time.Time          `gorm:"not null" json:"registered_at"`
}

// TableName returns the table name for GORM
func (Student) TableName() string {
	return "students"
}

// NewStudent registers name/email for a class now
func NewStudent(classID uuid.UUID, name, email string) (*Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_STUDENT_NAME", "Student name cannot be empty")
	}
	if strings.TrimSpace(email) == "" {
		return nil, shared.NewDomainError("INVALID_STUDENT_EMAIL", "Student email cannot be empty")
	}
	return &Student{
		BaseEntity:   shared.NewBaseEntity(),
		MakerClassID: classID,
		Name:         name,
		Email:        strings.TrimSpace(email),
		AmountPaid:   decimal.Zero,
		RegisteredAt: time.Now(),
	}, nil
}

// IsMember reports whether the student is linked to a user account
func (s *Student) IsMember() bool {
	return s.UserID != nil
}
