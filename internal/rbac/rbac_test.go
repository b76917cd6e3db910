package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRBAC_CheckPermissionWithRole(t *testing.T) {
	rbac := NewRBAC()

	tests := []struct {
		name       string
		role       Role
		permission Permission
		want       bool
	}{
		// Admin permissions
		{"Admin can view logs", RoleAdmin, PermissionAdminViewLogs, true},
		{"Admin can upload files", RoleAdmin, PermissionFileUpload, true},
		{"Admin can edit portfolio", RoleAdmin, PermissionPortfolioEdit, true},

		// Freelancer permissions
		{"Freelancer can upload files", RoleFreelancer, PermissionFileUpload, true},
		{"Freelancer can edit portfolio", RoleFreelancer, PermissionPortfolioEdit, true},
		{"Freelancer can duplicate portfolio", RoleFreelancer, PermissionPortfolioDuplicate, true},
		{"Freelancer CANNOT view admin logs", RoleFreelancer, PermissionAdminViewLogs, false},

		// Client permissions
		{"Client can view portfolio", RoleClient, PermissionPortfolioView, true},
		{"Client can edit own profile", RoleClient, PermissionUserEditProfile, true},
		{"Client CANNOT upload files", RoleClient, PermissionFileUpload, false},
		{"Client CANNOT edit portfolio", RoleClient, PermissionPortfolioEdit, false},
		{"Client CANNOT view admin logs", RoleClient, PermissionAdminViewLogs, false},

		// Invalid role
		{"Unknown role has no permissions", "super_hacker", PermissionPortfolioView, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rbac.CheckPermissionWithRole(tt.role, tt.permission)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRBAC_IsValidRole(t *testing.T) {
	rbac := NewRBAC()

	assert.True(t, rbac.IsValidRole(RoleAdmin))
	assert.True(t, rbac.IsValidRole(RoleFreelancer))
	assert.True(t, rbac.IsValidRole(RoleClient))
	assert.False(t, rbac.IsValidRole("ghost"))
}

func TestRBAC_GetRolePermissions_ReturnsCopy(t *testing.T) {
	rbac := NewRBAC()

	perms := rbac.GetRolePermissions(RoleClient)
	assert.NotEmpty(t, perms)

	// Mutating the returned slice must not affect the RBAC table.
	perms[0] = PermissionAdminViewLogs
	assert.False(t, rbac.CheckPermissionWithRole(RoleClient, PermissionAdminViewLogs))
}
