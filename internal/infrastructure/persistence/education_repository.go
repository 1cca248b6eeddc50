package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/education"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormClassRepository implements education.ClassRepository using GORM
type GormClassRepository struct {
	db *gorm.DB
}

// NewGormClassRepository creates a new GormClassRepository
func NewGormClassRepository(db *gorm.DB) *GormClassRepository {
	return &GormClassRepository{db: db}
}

// FindByID finds a class with its discount codes, instructors and sessions
func (r *GormClassRepository) FindByID(ctx context.Context, id uuid.UUID) (*education.MakerClass, error) {
	var c education.MakerClass
	if err := r.db.WithContext(ctx).
		Preload("DiscountCodes").
		Preload("Instructors").
		Preload("Sessions", func(db *gorm.DB) *gorm.DB { return db.Order("starts_at") }).
		First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindByName finds a class by name
func (r *GormClassRepository) FindByName(ctx context.Context, name string) (*education.MakerClass, error) {
	var c education.MakerClass
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Save writes the class row and replaces its instructor and discount code links
func (r *GormClassRepository) Save(ctx context.Context, class *education.MakerClass) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(class).Error; err != nil {
			return err
		}
		if err := replaceLinks(tx, class, "Instructors", class.Instructors, len(class.Instructors)); err != nil {
			return err
		}
		return replaceLinks(tx, class, "DiscountCodes", class.DiscountCodes, len(class.DiscountCodes))
	})
}

// SaveSession inserts or updates a session
func (r *GormClassRepository) SaveSession(ctx context.Context, session *education.ClassSession) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(session).Error
}

// CountStudents counts the registrations for a class
func (r *GormClassRepository) CountStudents(ctx context.Context, classID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&education.Student{}).Where("maker_class_id = ?", classID).Count(&n).Error
	return n, err
}

// SaveStudent inserts or updates a registration
func (r *GormClassRepository) SaveStudent(ctx context.Context, student *education.Student) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(student).Error
}

// FindDiscountCode finds a code case-insensitively
func (r *GormClassRepository) FindDiscountCode(ctx context.Context, code string) (*education.ClassDiscountCode, error) {
	var dc education.ClassDiscountCode
	if err := r.db.WithContext(ctx).Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).First(&dc).Error; err != nil {
		return nil, notFound(err)
	}
	return &dc, nil
}

// SaveDiscountCode inserts or updates a discount code
func (r *GormClassRepository) SaveDiscountCode(ctx context.Context, code *education.ClassDiscountCode) error {
	return r.db.WithContext(ctx).Save(code).Error
}

// GormOrientationRepository implements education.OrientationRepository
type GormOrientationRepository struct {
	db *gorm.DB
}

// NewGormOrientationRepository creates a new GormOrientationRepository
func NewGormOrientationRepository(db *gorm.DB) *GormOrientationRepository {
	return &GormOrientationRepository{db: db}
}

// FindByID finds an orientation with its tools, orienters and split
func (r *GormOrientationRepository) FindByID(ctx context.Context, id uuid.UUID) (*education.Orientation, error) {
	var o education.Orientation
	if err := r.db.WithContext(ctx).
		Preload("Tools").
		Preload("Orienters").
		Preload("RevenueSplit").
		First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// FindByName finds a guild's orientation by name
func (r *GormOrientationRepository) FindByName(ctx context.Context, guildID uuid.UUID, name string) (*education.Orientation, error) {
	var o education.Orientation
	if err := r.db.WithContext(ctx).Where("guild_id = ? AND name = ?", guildID, name).First(&o).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// Save writes the orientation row and replaces its tool and orienter links
func (r *GormOrientationRepository) Save(ctx context.Context, o *education.Orientation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(o).Error; err != nil {
			return err
		}
		if err := replaceLinks(tx, o, "Tools", o.Tools, len(o.Tools)); err != nil {
			return err
		}
		return replaceLinks(tx, o, "Orienters", o.Orienters, len(o.Orienters))
	})
}

// FindScheduled finds a booking with its orientation
func (r *GormOrientationRepository) FindScheduled(ctx context.Context, id uuid.UUID) (*education.ScheduledOrientation, error) {
	var s education.ScheduledOrientation
	if err := r.db.WithContext(ctx).Preload("Orientation.RevenueSplit").First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// SaveScheduled inserts or updates a booking row
func (r *GormOrientationRepository) SaveScheduled(ctx context.Context, s *education.ScheduledOrientation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

// replaceLinks rewrites a many2many join table without touching the
// associated rows themselves
func replaceLinks(tx *gorm.DB, owner any, name string, values any, n int) error {
	assoc := tx.Model(owner).Omit(name + ".*").Association(name)
	if n == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}
