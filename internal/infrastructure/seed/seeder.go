// Package seed loads a demo data set into the database. Every row is
// looked up by its natural key first so a second run changes nothing.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// placeholder is the body of every seeded document
var placeholder = []byte("placeholder")

// joinTables are cleared before their owning rows on flush
var joinTables = []string{
	"maker_class_instructors",
	"maker_class_discount_codes",
	"orientation_tools",
	"orientation_orienters",
}

// Seeder writes a Dataset through gorm. Placeholder documents go to files
// when it is set.
type Seeder struct {
	db     *gorm.DB
	files  shared.ObjectStorage
	out    io.Writer
	logger *zap.Logger
	now    func() time.Time
}

// NewSeeder creates a seeder that reports progress to out
func NewSeeder(db *gorm.DB, files shared.ObjectStorage, out io.Writer, logger *zap.Logger) *Seeder {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, files: files, out: out, logger: logger, now: time.Now}
}

// WithClock overrides the time relative offsets are resolved against
func (s *Seeder) WithClock(now func() time.Time) *Seeder {
	s.now = now
	return s
}

// Run loads ds in a single transaction. With flush set, existing data
// apart from superusers, groups and permissions is removed first.
func (s *Seeder) Run(ctx context.Context, ds *Dataset, flush bool) error {
	start := time.Now()
	now := s.now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if flush {
			if err := s.flush(tx); err != nil {
				return err
			}
		}
		r := newRun(ctx, tx, ds, s.files, s.out, now)
		for _, step := range r.steps() {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Seed failed", zap.Error(err))
		return err
	}
	fmt.Fprintln(s.out, "\nSeed complete.")
	s.logger.Info("Seed complete", zap.Bool("flush", flush), zap.Duration("took", time.Since(start)))
	return nil
}

// Flush removes seeded data without loading anything
func (s *Seeder) Flush(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(s.flush)
}

func (s *Seeder) flush(tx *gorm.DB) error {
	fmt.Fprintln(s.out, "Flushing existing data...")
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

	if err := tx.Exec("DELETE FROM user_groups WHERE user_id IN (SELECT id FROM users WHERE is_superuser = ?)", false).Error; err != nil {
		return fmt.Errorf("flush user_groups: %w", err)
	}
	for _, table := range joinTables {
		if err := all.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("flush %s: %w", table, err)
		}
	}

	models := persistence.AllModels()
	for i := len(models) - 1; i >= 0; i-- {
		var err error
		switch m := models[i].(type) {
		case *identity.Permission, *identity.Group:
			continue
		case *identity.User:
			err = tx.Where("is_superuser = ?", false).Delete(m).Error
		default:
			err = all.Delete(m).Error
		}
		if err != nil {
			return fmt.Errorf("flush %T: %w", models[i], err)
		}
	}
	fmt.Fprintln(s.out, "Flush complete.")
	return nil
}

// getOrCreate returns the row matching where, or creates the one build
// returns. omit skips association upserts on create.
func getOrCreate[T any](tx *gorm.DB, where map[string]any, build func() (*T, error), omit ...string) (*T, bool, error) {
	var found T
	err := tx.Where(where).Take(&found).Error
	if err == nil {
		return &found, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	v, err := build()
	if err != nil {
		return nil, false, err
	}
	create := tx
	if len(omit) > 0 {
		create = tx.Omit(omit...)
	}
	if err := create.Create(v).Error; err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func lookup[T any](m map[string]*T, kind, key string) (*T, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("unknown %s %q", kind, key)
	}
	return v, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q", field, s)
	}
	return d, nil
}

func parseDecimalPtr(field string, s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := parseDecimal(field, *s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func idPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// documentFile is the placeholder file name for a document title
func documentFile(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_") + ".pdf"
}

func (r *run) putPlaceholder(key string) error {
	if r.files == nil {
		return nil
	}
	if err := r.files.Put(r.ctx, key, bytes.NewReader(placeholder), int64(len(placeholder)), "application/pdf"); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func guildDocumentKey(guildID, docID uuid.UUID, name string) string {
	return path.Join("guild_documents", guildID.String(), docID.String(), documentFile(name))
}

func toolDocumentKey(toolID, docID uuid.UUID, name string) string {
	return path.Join("documents", toolDocumentable, toolID.String(), docID.String(), documentFile(name))
}
