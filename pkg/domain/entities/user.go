package entities

import "slices"

// Role groups permissions for a user.
type Role string

const (
	RoleSuperAdmin         Role = "super_admin"
	RoleProcurementOfficer Role = "procurement_officer"
	RoleFinanceOfficer     Role = "finance_officer"
	RoleVendor             Role = "vendor"
)

// Permission is a single capability checked by policies.
type Permission string

const (
	PermViewVendors          Permission = "view_vendors"
	PermManageVendors        Permission = "manage_vendors"
	PermApproveVendors       Permission = "approve_vendors"
	PermManageRFQs           Permission = "manage_rfqs"
	PermEvaluateRFQs         Permission = "evaluate_rfqs"
	PermManageContracts      Permission = "manage_contracts"
	PermManagePurchaseOrders Permission = "manage_purchase_orders"
	PermManageInvoices       Permission = "manage_invoices"
	PermProcessPayments      Permission = "process_payments"
)

// AllPermissions lists every permission known to the system.
var AllPermissions = []Permission{
	PermViewVendors,
	PermManageVendors,
	PermApproveVendors,
	PermManageRFQs,
	PermEvaluateRFQs,
	PermManageContracts,
	PermManagePurchaseOrders,
	PermManageInvoices,
	PermProcessPayments,
}

// RolePermissions is the seeded role to permission assignment.
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: AllPermissions,
	RoleProcurementOfficer: {
		PermViewVendors,
		PermManageVendors,
		PermApproveVendors,
		PermManageRFQs,
		PermEvaluateRFQs,
		PermManageContracts,
		PermManagePurchaseOrders,
	},
	RoleFinanceOfficer: {
		PermViewVendors,
		PermManageInvoices,
		PermProcessPayments,
	},
	RoleVendor: {},
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	_, ok := RolePermissions[r]
	return r, ok
}

// User is an authenticated principal: staff member or vendor contact.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"`
	Roles        []Role `json:"roles"`
}

// HasRole reports whether the user carries role.
func (u *User) HasRole(role Role) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// AssignRole adds role once.
func (u *User) AssignRole(role Role) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}

// Can reports whether any of the user's roles grants permission.
func (u *User) Can(permission Permission) bool {
	if u == nil {
		return false
	}
	for _, role := range u.Roles {
		if slices.Contains(RolePermissions[role], permission) {
			return true
		}
	}
	return false
}
