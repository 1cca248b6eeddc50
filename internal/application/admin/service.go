package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reserved query parameters that are never treated as filters
const (
	ParamSearch   = "q"
	ParamPage     = "page"
	ParamPageSize = "page_size"
	ParamOrderBy  = "order_by"
	ParamOrderDir = "order_dir"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListQuery holds the list parameters of one request
type ListQuery struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// Row is one list entry projected onto the display columns
type Row map[string]any

// Service runs CRUD on registered models
type Service struct {
	db       *gorm.DB
	registry *Registry
	logger   *zap.Logger
}

// NewService creates a new admin service
func NewService(db *gorm.DB, registry *Registry, logger *zap.Logger) *Service {
	return &Service{db: db, registry: registry, logger: logger}
}

// Registry returns the model registry
func (s *Service) Registry() *Registry {
	return s.registry
}

// Model resolves a registered model or returns a not-found error
func (s *Service) Model(name string) (*Model, error) {
	m, ok := s.registry.Get(name)
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Unknown model %q", name))
	}
	return m, nil
}

// List returns one page of rows and the total match count
func (s *Service) List(ctx context.Context, m *Model, q ListQuery) ([]Row, int64, error) {
	pred, err := Predicate(m, q.Search, q.Filters)
	if err != nil {
		return nil, 0, err
	}

	db := s.db.WithContext(ctx).Model(m.New())
	if pred != nil {
		where, args, err := pred.ToSql()
		if err != nil {
			return nil, 0, fmt.Errorf("build %s filter: %w", m.Name, err)
		}
		db = db.Where(where, args...)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", m.Name, err)
	}

	filter := shared.Filter{Page: q.Page, PageSize: q.PageSize, OrderBy: orderColumn(m, q.OrderBy), OrderDir: q.OrderDir}
	normalizePage(&filter)
	rows := m.NewSlice()
	if err := db.Scopes(persistence.Paginate(filter, sortable(m), "created_at")).Find(rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", m.Name, err)
	}

	out, err := project(m, rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get loads one row by id
func (s *Service) Get(ctx context.Context, m *Model, id uuid.UUID) (any, error) {
	v := m.New()
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(v).Error; err != nil {
		return nil, persistence.TranslateError(err)
	}
	return v, nil
}

// Create decodes body into a new row, fills the base fields and saves it
func (s *Service) Create(ctx context.Context, m *Model, body []byte) (any, error) {
	v := m.New()
	if err := decode(body, v); err != nil {
		return nil, err
	}
	base := reflect.ValueOf(v).Elem().FieldByName("BaseEntity")
	if base.IsValid() {
		base.Set(reflect.ValueOf(shared.NewBaseEntity()))
	}
	if err := prepare(m, v); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return nil, persistence.TranslateError(err)
	}
	s.logger.Info("Admin row created", zap.String("model", m.Name), zap.Any("id", idOf(v)))
	return v, nil
}

// Update overlays body onto the stored row. Identity and creation time are
// kept.
func (s *Service) Update(ctx context.Context, m *Model, id uuid.UUID, body []byte) (any, error) {
	v, err := s.Get(ctx, m, id)
	if err != nil {
		return nil, err
	}
	base := reflect.ValueOf(v).Elem().FieldByName("BaseEntity")
	var saved reflect.Value
	if base.IsValid() {
		saved = reflect.New(base.Type()).Elem()
		saved.Set(base)
	}
	if err := decode(body, v); err != nil {
		return nil, err
	}
	if base.IsValid() {
		base.Set(saved)
	}
	if e, ok := v.(interface{ Touch() }); ok {
		e.Touch()
	}
	if err := prepare(m, v); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(v).Error; err != nil {
		return nil, persistence.TranslateError(err)
	}
	s.logger.Info("Admin row updated", zap.String("model", m.Name), zap.String("id", id.String()))
	return v, nil
}

// Delete removes one row together with its join-table links
func (s *Service) Delete(ctx context.Context, m *Model, id uuid.UUID) error {
	v, err := s.Get(ctx, m, id)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if links := manyToMany(m); len(links) > 0 {
		db = db.Select(links)
	}
	if err := db.Delete(v).Error; err != nil {
		return persistence.TranslateError(err)
	}
	s.logger.Info("Admin row deleted", zap.String("model", m.Name), zap.String("id", id.String()))
	return nil
}

// Predicate builds the WHERE clause for a search term and filter values.
// Every whitespace separated term must match at least one search field.
// It returns nil when nothing constrains the query.
func Predicate(m *Model, search string, filters map[string]string) (sq.Sqlizer, error) {
	var and sq.And

	if len(m.Search) > 0 {
		for _, term := range strings.Fields(strings.ToLower(search)) {
			or := make(sq.Or, 0, len(m.Search))
			for _, name := range m.Search {
				f := m.fields[name]
				or = append(or, sq.Like{"LOWER(" + f.Column + ")": "%" + term + "%"})
			}
			and = append(and, or)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(filters)) {
		raw := filters[name]
		f, ok := m.Filter(name)
		if !ok {
			return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Cannot filter %s by %q", m.Name, name))
		}
		cond, err := f.condition(raw)
		if err != nil {
			return nil, err
		}
		and = append(and, cond)
	}

	if len(and) == 0 {
		return nil, nil
	}
	return and, nil
}

func (f *Field) condition(raw string) (sq.Sqlizer, error) {
	invalid := func() error {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid value %q for %s", raw, f.Name))
	}
	switch f.Kind {
	case KindChoice:
		if !slices.Contains(f.Choices, raw) {
			return nil, invalid()
		}
		return sq.Eq{f.Column: raw}, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalid()
		}
		return sq.Eq{f.Column: b}, nil
	case KindDate:
		day, err := shared.ParseDate(raw)
		if err != nil {
			return nil, invalid()
		}
		return sq.And{sq.GtOrEq{f.Column: day}, sq.Lt{f.Column: day.AddDate(0, 0, 1)}}, nil
	case KindForeignKey:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, invalid()
		}
		return sq.Eq{f.Column: id.String()}, nil
	}
	return nil, invalid()
}

func normalizePage(f *shared.Filter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
}

func sortable(m *Model) map[string]bool {
	cols := make([]string, 0, len(m.fields))
	for _, f := range m.fields {
		cols = append(cols, f.Column)
	}
	return persistence.SortFields(cols...)
}

// orderColumn maps an API field name to its column, passing unknown
// names through so the sort whitelist rejects them
func orderColumn(m *Model, name string) string {
	if f, ok := m.fields[name]; ok {
		return f.Column
	}
	return name
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return shared.NewDomainError("INVALID_INPUT", "Invalid request body: "+err.Error())
	}
	return nil
}

// prepare fills derived fields and checks choice columns before a save
func prepare(m *Model, v any) error {
	if s, ok := v.(interface{ EnsureSlug() }); ok {
		s.EnsureSlug()
	}
	rv := reflect.ValueOf(v).Elem()
	for _, f := range m.fields {
		if f.Kind != KindChoice {
			continue
		}
		fv := rv.FieldByIndex(f.field.StructField.Index)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		s := fv.String()
		if s == "" {
			continue
		}
		if !slices.Contains(f.Choices, s) {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("%q is not a valid %s", s, f.Name))
		}
	}
	return nil
}

// project marshals each row and keeps the display columns
func project(m *Model, rows any) ([]Row, error) {
	rv := reflect.ValueOf(rows).Elem()
	out := make([]Row, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Addr().Interface()
		data, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", m.Name, err)
		}
		var full map[string]any
		if err := json.Unmarshal(data, &full); err != nil {
			return nil, fmt.Errorf("decode %s: %w", m.Name, err)
		}
		row := make(Row, len(m.Display)+1)
		for _, col := range m.Display {
			row[col] = full[col]
		}
		if s, ok := item.(fmt.Stringer); ok {
			row["__str__"] = s.String()
		}
		out = append(out, row)
	}
	return out, nil
}

func manyToMany(m *Model) []string {
	var names []string
	for name, rel := range m.schema.Relationships.Relations {
		if rel.JoinTable != nil {
			names = append(names, name)
		}
	}
	return names
}

func idOf(v any) any {
	if e, ok := v.(shared.Entity); ok {
		return e.GetID()
	}
	return nil
}
