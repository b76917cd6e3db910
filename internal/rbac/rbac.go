package rbac

import (
	"context"

	app_errors "github.com/makerloft/craftfolio-backend/internal/errors"
)

// Permission names a single allowed action.
type Permission string

const (
	// Upload permissions
	PermissionFileUpload Permission = "file:upload"

	// Portfolio permissions
	PermissionPortfolioView      Permission = "portfolio:view"
	PermissionPortfolioEdit      Permission = "portfolio:edit"
	PermissionPortfolioDelete    Permission = "portfolio:delete"
	PermissionPortfolioDuplicate Permission = "portfolio:duplicate"

	// Profile permissions
	PermissionUserViewProfile Permission = "user:view_profile"
	PermissionUserEditProfile Permission = "user:edit_profile"

	// Administrative permissions
	PermissionAdminViewLogs Permission = "admin:view_logs"
)

// Role names a level of access.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleFreelancer Role = "freelancer"
	RoleClient     Role = "client"
)

// RBAC maps roles to their permissions.
type RBAC struct {
	rolePermissions map[Role][]Permission
}

func NewRBAC() *RBAC {
	rbac := &RBAC{
		rolePermissions: make(map[Role][]Permission),
	}
	rbac.initializeRolePermissions()
	return rbac
}

func (r *RBAC) initializeRolePermissions() {
	r.rolePermissions[RoleAdmin] = []Permission{
		PermissionFileUpload,
		PermissionPortfolioView,
		PermissionPortfolioEdit,
		PermissionPortfolioDelete,
		PermissionPortfolioDuplicate,
		PermissionUserViewProfile,
		PermissionUserEditProfile,
		PermissionAdminViewLogs,
	}

	// Freelancers publish portfolios; they get the full portfolio surface.
	r.rolePermissions[RoleFreelancer] = []Permission{
		PermissionFileUpload,
		PermissionPortfolioView,
		PermissionPortfolioEdit,
		PermissionPortfolioDelete,
		PermissionPortfolioDuplicate,
		PermissionUserViewProfile,
		PermissionUserEditProfile,
	}

	// Clients browse; they never mutate portfolio content.
	r.rolePermissions[RoleClient] = []Permission{
		PermissionPortfolioView,
		PermissionUserViewProfile,
		PermissionUserEditProfile,
	}
}

// CheckPermission resolves the caller's role from the request context.
func (r *RBAC) CheckPermission(ctx context.Context, permission Permission) (bool, error) {
	if roleValue := ctx.Value("user_role"); roleValue != nil {
		if role, ok := roleValue.(Role); ok {
			return r.hasPermission(role, permission), nil
		}
	}
	return false, app_errors.ErrUserRoleNotFoundInContext
}

// CheckPermissionWithRole checks a permission for an explicit role.
func (r *RBAC) CheckPermissionWithRole(role Role, permission Permission) bool {
	return r.hasPermission(role, permission)
}

func (r *RBAC) hasPermission(role Role, permission Permission) bool {
	permissions, exists := r.rolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetRolePermissions returns a copy of the role's permission list.
func (r *RBAC) GetRolePermissions(role Role) []Permission {
	permissions, exists := r.rolePermissions[role]
	if !exists {
		return []Permission{}
	}
	result := make([]Permission, len(permissions))
	copy(result, permissions)
	return result
}

// GetAllRoles lists every known role.
func (r *RBAC) GetAllRoles() []Role {
	return []Role{RoleAdmin, RoleFreelancer, RoleClient}
}

// IsValidRole reports whether the role is known to the system.
func (r *RBAC) IsValidRole(role Role) bool {
	_, exists := r.rolePermissions[role]
	return exists
}
