package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Save inserts or updates a user. Group membership is managed through
// GormGroupRepository.AddUser.
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindByUsername finds a user by case-insensitive username, with groups and
// their permissions loaded
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).
		Preload("Groups.Permissions").
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindByIDs returns the users with the given IDs; missing IDs are skipped
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	var users []identity.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteNonSuperusers removes every non-superuser account and its group links
func (r *GormUserRepository) DeleteNonSuperusers(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		victims := tx.Model(&identity.User{}).Select("id").Where("is_superuser = ?", false)
		if err := tx.Exec("DELETE FROM user_groups WHERE user_id IN (?)", victims).Error; err != nil {
			return err
		}
		result := tx.Where("is_superuser = ?", false).Delete(&identity.User{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// GormGroupRepository implements identity.GroupRepository using GORM
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// FindByName finds a group with its permissions loaded
func (r *GormGroupRepository) FindByName(ctx context.Context, name string) (*identity.Group, error) {
	var group identity.Group
	if err := r.db.WithContext(ctx).Preload("Permissions").Where("name = ?", name).First(&group).Error; err != nil {
		return nil, notFound(err)
	}
	return &group, nil
}

// Save inserts or updates the group row only
func (r *GormGroupRepository) Save(ctx context.Context, group *identity.Group) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(group).Error
}

// ReplacePermissions swaps the group's permission set in one transaction
func (r *GormGroupRepository) ReplacePermissions(ctx context.Context, group *identity.Group, perms []identity.Permission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(group).Association("Permissions").Clear(); err != nil {
			return err
		}
		if len(perms) == 0 {
			group.Permissions = nil
			return nil
		}
		return tx.Model(group).Association("Permissions").Append(perms)
	})
}

// AddUser links user to group; an existing link is left as is
func (r *GormGroupRepository) AddUser(ctx context.Context, group *identity.Group, user *identity.User) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO user_groups (user_id, group_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		user.ID, group.ID,
	).Error
}

// GormPermissionRepository implements identity.PermissionRepository using GORM
type GormPermissionRepository struct {
	db *gorm.DB
}

// NewGormPermissionRepository creates a new GormPermissionRepository
func NewGormPermissionRepository(db *gorm.DB) *GormPermissionRepository {
	return &GormPermissionRepository{db: db}
}

// FindAll returns the catalogue ordered by codename
func (r *GormPermissionRepository) FindAll(ctx context.Context) ([]identity.Permission, error) {
	var perms []identity.Permission
	if err := r.db.WithContext(ctx).Order("codename").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// FindByCodenames returns the permissions whose codename is in codenames
func (r *GormPermissionRepository) FindByCodenames(ctx context.Context, codenames []string) ([]identity.Permission, error) {
	var perms []identity.Permission
	if len(codenames) == 0 {
		return perms, nil
	}
	if err := r.db.WithContext(ctx).Where("codename IN ?", codenames).Order("codename").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// Ensure inserts the permissions not yet present and reports how many were new
func (r *GormPermissionRepository) Ensure(ctx context.Context, perms []*identity.Permission) (int, error) {
	if len(perms) == 0 {
		return 0, nil
	}
	codenames := make([]string, 0, len(perms))
	for _, p := range perms {
		codenames = append(codenames, p.Codename)
	}

	created := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []string
		if err := tx.Model(&identity.Permission{}).Where("codename IN ?", codenames).Pluck("codename", &existing).Error; err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, c := range existing {
			have[c] = true
		}
		var missing []*identity.Permission
		for _, p := range perms {
			if !have[p.Codename] {
				have[p.Codename] = true
				missing = append(missing, p)
			}
		}
		if len(missing) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(missing, 200).Error; err != nil {
			return err
		}
		created = len(missing)
		return nil
	})
	return created, err
}
