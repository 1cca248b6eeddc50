package persistence

import (
	"strings"

	"github.com/plfog/backoffice/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortFields is a column whitelist for list ordering. The base columns
// every model carries are always present.
func SortFields(cols ...string) map[string]bool {
	out := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, c := range cols {
		out[c] = true
	}
	return out
}

// MemberSortFields are the orderable member columns
var MemberSortFields = SortFields("full_legal_name", "preferred_name", "email", "status", "role", "join_date")

// Paginate orders by filter.OrderBy when allowed lists it (fallback
// otherwise; an empty fallback leaves the order alone) and applies the
// page window. Any direction other than "asc" sorts descending.
func Paginate(filter shared.Filter, allowed map[string]bool, fallback string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if col := sortColumn(filter.OrderBy, allowed, fallback); col != "" {
			db = db.Order(clause.OrderByColumn{
				Column: clause.Column{Name: col},
				Desc:   !strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc"),
			})
		}
		if filter.PageSize > 0 {
			db = db.Limit(filter.PageSize).Offset(filter.Offset())
		}
		return db
	}
}

func sortColumn(field string, allowed map[string]bool, fallback string) string {
	if f := strings.TrimSpace(field); allowed[f] {
		return f
	}
	return fallback
}
