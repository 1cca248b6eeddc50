package identity

import (
	"context"
	"errors"

	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// SuperAdminRole receives every permission in the catalogue
const SuperAdminRole = "super-admin"

// Role is a named permission set created by SetupRoles
type Role struct {
	Name      string
	Codenames []string
}

// Roles lists every staff role in setup order. super-admin has no explicit
// codenames because it is granted the full catalogue.
var Roles = []Role{
	{Name: SuperAdminRole},
	{Name: "guild-manager", Codenames: []string{
		"view_guild", "change_guild", "add_guild", "delete_guild",
		"view_guildmembership", "change_guildmembership", "add_guildmembership", "delete_guildmembership",
		"view_guilddocument", "change_guilddocument", "add_guilddocument", "delete_guilddocument",
		"view_guildwishlistitem", "change_guildwishlistitem", "add_guildwishlistitem", "delete_guildwishlistitem",
		"view_guildvote", "change_guildvote",
		"view_tool", "change_tool", "add_tool", "delete_tool",
	}},
	{Name: "class-manager", Codenames: []string{
		"view_makerclass", "change_makerclass", "add_makerclass", "delete_makerclass",
		"view_classsession", "change_classsession", "add_classsession", "delete_classsession",
		"view_classimage", "change_classimage", "add_classimage", "delete_classimage",
		"view_classdiscountcode", "change_classdiscountcode", "add_classdiscountcode", "delete_classdiscountcode",
		"view_student", "change_student", "add_student", "delete_student",
	}},
	{Name: "orientation-manager", Codenames: []string{
		"view_orientation", "change_orientation", "add_orientation", "delete_orientation",
		"view_scheduledorientation", "change_scheduledorientation", "add_scheduledorientation", "delete_scheduledorientation",
	}},
	{Name: "accountant", Codenames: []string{
		"view_order", "change_order",
		"view_invoice", "change_invoice",
		"view_payout", "change_payout", "add_payout",
		"view_revenuesplit", "change_revenuesplit", "add_revenuesplit",
		"view_subscriptionplan", "view_membersubscription",
	}},
	{Name: "tour-guide", Codenames: []string{
		"view_lead", "change_lead",
		"view_tour", "change_tour", "add_tour",
	}},
	{Name: "membership-manager", Codenames: []string{
		"view_member", "change_member", "add_member",
		"view_membershipplan", "change_membershipplan",
		"view_space", "change_space",
		"view_lease", "change_lease", "add_lease", "delete_lease",
		"view_memberschedule", "change_memberschedule",
		"view_scheduleblock", "change_scheduleblock", "add_scheduleblock", "delete_scheduleblock",
	}},
	{Name: "guild-lead", Codenames: []string{
		"view_guild", "change_guild",
		"view_guildmembership", "change_guildmembership", "add_guildmembership",
		"view_guilddocument", "change_guilddocument", "add_guilddocument",
		"view_guildwishlistitem", "change_guildwishlistitem", "add_guildwishlistitem",
		"view_tool", "change_tool",
	}},
	{Name: "orienter", Codenames: []string{
		"view_orientation",
		"view_scheduledorientation", "change_scheduledorientation",
	}},
	{Name: "teacher", Codenames: []string{
		"view_makerclass",
		"view_classsession",
		"view_student", "change_student",
	}},
}

// RoleService maintains the permission catalogue and staff groups
type RoleService struct {
	groupRepo identity.GroupRepository
	permRepo  identity.PermissionRepository
	logger    *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(
	groupRepo identity.GroupRepository,
	permRepo identity.PermissionRepository,
	logger *zap.Logger,
) *RoleService {
	return &RoleService{
		groupRepo: groupRepo,
		permRepo:  permRepo,
		logger:    logger,
	}
}

// SyncPermissions creates the view/add/change/delete permission of every
// model that lacks one and returns how many were created
func (s *RoleService) SyncPermissions(ctx context.Context, models []ModelRef) (int, error) {
	perms := make([]*identity.Permission, 0, len(models)*len(identity.Actions))
	for _, m := range models {
		for _, action := range identity.Actions {
			perms = append(perms, identity.NewPermission(action, m.Name, m.VerboseName))
		}
	}

	created, err := s.permRepo.Ensure(ctx, perms)
	if err != nil {
		s.logger.Error("Failed to sync permissions", zap.Error(err))
		return 0, err
	}
	if created > 0 {
		s.logger.Info("Permissions synced", zap.Int("created", created))
	}
	return created, nil
}

// SetupRoles get-or-creates every group in Roles and replaces its permission
// set. Codenames missing from the catalogue are skipped. Running it twice
// leaves the same state.
func (s *RoleService) SetupRoles(ctx context.Context) ([]RoleResult, error) {
	all, err := s.permRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]RoleResult, 0, len(Roles))
	for _, role := range Roles {
		group, created, err := s.getOrCreateGroup(ctx, role.Name)
		if err != nil {
			return results, err
		}

		perms := all
		if role.Name != SuperAdminRole {
			perms, err = s.permRepo.FindByCodenames(ctx, role.Codenames)
			if err != nil {
				return results, err
			}
		}

		if err := s.groupRepo.ReplacePermissions(ctx, group, perms); err != nil {
			s.logger.Error("Failed to set group permissions", zap.String("group", role.Name), zap.Error(err))
			return results, err
		}

		results = append(results, RoleResult{Name: role.Name, Created: created, PermissionCount: len(perms)})
	}

	s.logger.Info("Roles set up", zap.Int("groups", len(results)))
	return results, nil
}

func (s *RoleService) getOrCreateGroup(ctx context.Context, name string) (*identity.Group, bool, error) {
	group, err := s.groupRepo.FindByName(ctx, name)
	if err == nil {
		return group, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	group, err = identity.NewGroup(name)
	if err != nil {
		return nil, false, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, false, err
	}
	return group, true, nil
}
