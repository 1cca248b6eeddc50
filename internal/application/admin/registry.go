// Package admin exposes every persisted model through a generic CRUD
// surface. Column roles (display, search, filter) are derived from the gorm
// schema of each model so new models need no hand-written configuration.
package admin

import (
	"fmt"
	"path"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/plfog/backoffice/internal/application/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// MaxDisplayFields caps the list columns, id included
const MaxDisplayFields = 6

// DefaultExcludedGroups are managed through setup-roles and create-user
var DefaultExcludedGroups = []string{"identity"}

// DefaultHidden holds models that carry browser credentials
var DefaultHidden = []string{"pushsubscription"}

// FieldKind classifies a column for filtering
type FieldKind string

// Field kinds
const (
	KindText       FieldKind = "text"
	KindChoice     FieldKind = "choice"
	KindBool       FieldKind = "boolean"
	KindDate       FieldKind = "date"
	KindForeignKey FieldKind = "foreign_key"
	KindOther      FieldKind = "other"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	choicesType = reflect.TypeOf((*shared.Choices)(nil)).Elem()
	autoFields  = []string{"ID", "CreatedAt", "UpdatedAt"}
	camelSplit  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Field describes one concrete column
type Field struct {
	Name    string    `json:"name"`
	Column  string    `json:"column"`
	Kind    FieldKind `json:"kind"`
	Choices []string  `json:"choices,omitempty"`

	field *schema.Field
}

// Model is the admin configuration of one registered model
type Model struct {
	Name        string   `json:"name"`
	Group       string   `json:"group"`
	VerboseName string   `json:"verbose_name"`
	Table       string   `json:"table"`
	Display     []string `json:"list_display"`
	Search      []string `json:"search_fields"`
	Filters     []Field  `json:"list_filter"`

	typ    reflect.Type
	schema *schema.Schema
	fields map[string]*Field
}

// New returns a pointer to a zero value of the model
func (m *Model) New() any {
	return reflect.New(m.typ).Interface()
}

// NewSlice returns a pointer to an empty slice of the model
func (m *Model) NewSlice() any {
	return reflect.New(reflect.SliceOf(m.typ)).Interface()
}

// Field returns the concrete field with the given JSON name
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Filter returns the filter field with the given name
func (m *Model) Filter(name string) (*Field, bool) {
	for i := range m.Filters {
		if m.Filters[i].Name == name {
			return &m.Filters[i], true
		}
	}
	return nil, false
}

// Option configures a Registry
type Option func(*Registry)

// WithExcludedGroups replaces the groups whose models are never registered
func WithExcludedGroups(groups ...string) Option {
	return func(r *Registry) {
		r.excluded = groups
	}
}

// WithHidden replaces the explicitly hidden model names
func WithHidden(names ...string) Option {
	return func(r *Registry) {
		r.hidden = names
	}
}

// Registry holds the registered models keyed by lowercase name
type Registry struct {
	namer    schema.Namer
	cache    *sync.Map
	excluded []string
	hidden   []string
	models   map[string]*Model
	order    []string
}

// NewRegistry creates an empty registry that parses schemas with the
// naming strategy of db
func NewRegistry(db *gorm.DB, opts ...Option) *Registry {
	r := &Registry{
		namer:    db.NamingStrategy,
		cache:    &sync.Map{},
		excluded: DefaultExcludedGroups,
		hidden:   DefaultHidden,
		models:   make(map[string]*Model),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterAll registers each model and reports how many were registered
// and how many were skipped
func (r *Registry) RegisterAll(models []any) (registered, skipped int, err error) {
	for _, m := range models {
		ok, err := r.Register(m)
		if err != nil {
			return registered, skipped, err
		}
		if ok {
			registered++
		} else {
			skipped++
		}
	}
	return registered, skipped, nil
}

// Register adds model unless its group is excluded, it is hidden or it is
// already registered
func (r *Registry) Register(model any) (bool, error) {
	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	name := strings.ToLower(typ.Name())
	group := path.Base(typ.PkgPath())
	if slices.Contains(r.excluded, group) || slices.Contains(r.hidden, name) {
		return false, nil
	}
	if _, ok := r.models[name]; ok {
		return false, nil
	}

	s, err := schema.Parse(model, r.cache, r.namer)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", typ.Name(), err)
	}
	m := &Model{
		Name:        name,
		Group:       group,
		VerboseName: VerboseName(typ.Name()),
		Table:       s.Table,
		typ:         typ,
		schema:      s,
		fields:      make(map[string]*Field),
	}
	m.build()

	r.models[name] = m
	r.order = append(r.order, name)
	return true, nil
}

// Get looks a model up by lowercase name
func (r *Registry) Get(name string) (*Model, bool) {
	m, ok := r.models[strings.ToLower(name)]
	return m, ok
}

// Models returns the registered models in registration order
func (r *Registry) Models() []*Model {
	out := make([]*Model, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.models[name])
	}
	return out
}

// PermissionModels lists the registered models for the permission catalogue
func (r *Registry) PermissionModels() []identity.ModelRef {
	out := make([]identity.ModelRef, 0, len(r.order))
	for _, m := range r.Models() {
		out = append(out, identity.ModelRef{Name: m.typ.Name(), VerboseName: m.VerboseName})
	}
	return out
}

// VerboseName turns a Go type name into a lowercase label:
// "GuildWishlistItem" -> "guild wishlist item"
func VerboseName(typeName string) string {
	return strings.ToLower(camelSplit.ReplaceAllString(typeName, "$1 $2"))
}

func (m *Model) build() {
	foreignKeys := make(map[*schema.Field]bool)
	for _, rel := range m.schema.Relationships.Relations {
		if rel.Type != schema.BelongsTo {
			continue
		}
		for _, ref := range rel.References {
			if ref.OwnPrimaryKey {
				continue
			}
			foreignKeys[ref.ForeignKey] = true
		}
	}

	var pk string
	var rest []string
	for _, sf := range m.schema.Fields {
		if sf.DBName == "" {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}
		f := &Field{Name: name, Column: sf.DBName, Kind: kindOf(sf, foreignKeys[sf]), field: sf}
		if f.Kind == KindChoice {
			f.Choices = choicesOf(sf)
		}
		m.fields[name] = f

		if sf.PrimaryKey {
			pk = name
			continue
		}
		if slices.Contains(autoFields, sf.Name) {
			continue
		}
		rest = append(rest, name)
		switch f.Kind {
		case KindText:
			m.Search = append(m.Search, name)
		case KindChoice, KindBool, KindDate, KindForeignKey:
			m.Filters = append(m.Filters, *f)
		}
	}

	if pk != "" {
		m.Display = append(m.Display, pk)
	}
	n := min(len(rest), MaxDisplayFields-len(m.Display))
	m.Display = append(m.Display, rest[:n]...)
	if len(m.Display) == 0 {
		m.Display = []string{"__str__"}
	}
}

// jsonName is the key the field marshals under, or "" when it is hidden
func jsonName(sf *schema.Field) string {
	tag := sf.StructField.Tag.Get("json")
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return ""
	case "":
		return sf.DBName
	}
	return name
}

func kindOf(sf *schema.Field, foreignKey bool) FieldKind {
	t := sf.IndirectFieldType
	switch {
	case t.Implements(choicesType) || reflect.PointerTo(t).Implements(choicesType):
		return KindChoice
	case foreignKey:
		return KindForeignKey
	case t == timeType:
		return KindDate
	case t.Kind() == reflect.Bool:
		return KindBool
	case t.Kind() == reflect.String:
		return KindText
	}
	return KindOther
}

func choicesOf(sf *schema.Field) []string {
	v := reflect.New(sf.IndirectFieldType).Interface()
	if c, ok := v.(shared.Choices); ok {
		return c.Choices()
	}
	return nil
}
