package education

import (
	"context"

	"github.com/google/uuid"
)

// ClassRepository persists classes and their registrations
type ClassRepository interface {
	// FindByID preloads discount codes
	FindByID(ctx context.Context, id uuid.UUID) (*MakerClass, error)
	FindByName(ctx context.Context, name string) (*MakerClass, error)
	Save(ctx context.Context, class *MakerClass) error
	SaveSession(ctx context.Context, session *ClassSession) error
	CountStudents(ctx context.Context, classID uuid.UUID) (int64, error)
	SaveStudent(ctx context.Context, student *Student) error
	FindDiscountCode(ctx context.Context, code string) (*ClassDiscountCode, error)
	SaveDiscountCode(ctx context.Context, code *ClassDiscountCode) error
}

// OrientationRepository persists orientations and bookings
type OrientationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Orientation, error)
	FindByName(ctx context.Context, guildID uuid.UUID, name string) (*Orientation, error)
	Save(ctx context.Context, o *Orientation) error
	FindScheduled(ctx context.Context, id uuid.UUID) (*ScheduledOrientation, error)
	SaveScheduled(ctx context.Context, s *ScheduledOrientation) error
}
