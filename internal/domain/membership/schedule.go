package membership

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// MemberSchedule holds a user's availability blocks
type MemberSchedule struct {
	shared.BaseEntity
	UserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *identity.User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Notes  string          `gorm:"type:text" json:"notes"`
	Blocks []ScheduleBlock `gorm:"foreignKey:ScheduleID" json:"blocks,omitempty"`
}

// TableName returns the table name for GORM
func (MemberSchedule) TableName() string {
	return "member_schedules"
}

// NewMemberSchedule creates an empty schedule for userID
func NewMemberSchedule(userID uuid.UUID) *MemberSchedule {
	return &MemberSchedule{BaseEntity: shared.NewBaseEntity(), UserID: userID}
}

func (s *MemberSchedule) String() string {
	var username string
	if s.User != nil {
		username = s.User.Username
	}
	return "Schedule for " + username
}

// ScheduleBlock is a window of availability on one weekday
type ScheduleBlock struct {
	shared.BaseEntity
	ScheduleID  uuid.UUID `gorm:"type:uuid;not null;index" json:"schedule_id"`
	DayOfWeek   int       `gorm:"not null" json:"day_of_week"`
	StartTime   string    `gorm:"type:varchar(8);not null" json:"start_time"`
	EndTime     string    `gorm:"type:varchar(8);not null" json:"end_time"`
	IsRecurring bool      `gorm:"not null" json:"is_recurring"`
}

// TableName returns the table name for GORM
func (ScheduleBlock) TableName() string {
	return "schedule_blocks"
}

// NewScheduleBlock validates and creates a block. day is 0 (Sunday) to 6;
// start and end are "HH:MM" and start must come first.
func NewScheduleBlock(scheduleID uuid.UUID, day int, start, end string) (*ScheduleBlock, error) {
	if day < 0 || day > 6 {
		return nil, shared.NewDomainError("INVALID_DAY", "Day of week must be between 0 and 6")
	}
	st, err := parseClock(start)
	if err != nil {
		return nil, err
	}
	et, err := parseClock(end)
	if err != nil {
		return nil, err
	}
	if !st.Before(et) {
		return nil, shared.NewDomainError("INVALID_TIME_RANGE", "Start time must be before end time")
	}
	return &ScheduleBlock{
		BaseEntity:  shared.NewBaseEntity(),
		ScheduleID:  scheduleID,
		DayOfWeek:   day,
		StartTime:   st.Format("15:04"),
		EndTime:     et.Format("15:04"),
		IsRecurring: true,
	}, nil
}

// DayName returns the weekday name for DayOfWeek
func (b *ScheduleBlock) DayName() string {
	if b.DayOfWeek < 0 || b.DayOfWeek > 6 {
		return ""
	}
	return dayNames[b.DayOfWeek]
}

func (b *ScheduleBlock) String() string {
	return fmt.Sprintf("%s %s-%s", b.DayName(), b.StartTime, b.EndTime)
}

func parseClock(s string) (time.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, shared.NewDomainError("INVALID_TIME", fmt.Sprintf("Invalid time %q", s))
}
