package identity

import (
	"sort"
	"strings"

	"github.com/plfog/backoffice/internal/domain/shared"
)

// Permission actions, one codename per action per model
const (
	ActionView   = "view"
	ActionAdd    = "add"
	ActionChange = "change"
	ActionDelete = "delete"
)

// Actions lists the actions every model receives
var Actions = []string{ActionView, ActionAdd, ActionChange, ActionDelete}

// Permission is a single named capability such as "change_lease"
type Permission struct {
	shared.BaseEntity
	Codename string `gorm:"type:varchar(100);not null;uniqueIndex" json:"codename"`
	Name     string `gorm:"type:varchar(255)" json:"name"`
}

// TableName returns the table name for GORM
func (Permission) TableName() string {
	return "permissions"
}

// Codename builds "<action>_<model>" with the model lowercased
func Codename(action, model string) string {
	return action + "_" + strings.ToLower(model)
}

// NewPermission creates a permission for action on model
func NewPermission(action, model, verboseName string) *Permission {
	return &Permission{
		BaseEntity: shared.NewBaseEntity(),
		Codename:   Codename(action, model),
		Name:       "Can " + action + " " + verboseName,
	}
}

// Group is a named set of permissions; users inherit the union of their groups
type Group struct {
	shared.BaseEntity
	Name        string       `gorm:"type:varchar(150);not null;uniqueIndex" json:"name"`
	Permissions []Permission `gorm:"many2many:group_permissions;" json:"permissions,omitempty"`
}

// TableName returns the table name for GORM
func (Group) TableName() string {
	return "groups"
}

// NewGroup creates an empty group
func NewGroup(name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_GROUP_NAME", "Group name cannot be empty")
	}
	return &Group{BaseEntity: shared.NewBaseEntity(), Name: name}, nil
}

// Codenames returns the sorted codenames held by the group
func (g *Group) Codenames() []string {
	out := make([]string, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		out = append(out, p.Codename)
	}
	sort.Strings(out)
	return out
}

// EffectiveCodenames returns the sorted, de-duplicated permission codenames
// a user holds through its groups. all is the full catalogue, used for
// superusers.
func EffectiveCodenames(u *User, all []Permission) []string {
	seen := make(map[string]struct{})
	if u.IsSuperuser {
		for _, p := range all {
			seen[p.Codename] = struct{}{}
		}
	} else {
		for _, g := range u.Groups {
			for _, p := range g.Permissions {
				seen[p.Codename] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
