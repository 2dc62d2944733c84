package domain

// SystemRole is the app-wide classification of a user. A user holds exactly one.
type SystemRole string

const (
	RoleSuperadmin      SystemRole = "superadmin"
	RoleCustomer        SystemRole = "customer"
	RoleRestaurantOwner SystemRole = "restaurant_owner"
	RoleSuspended       SystemRole = "suspended"
)

func (r SystemRole) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleCustomer, RoleRestaurantOwner, RoleSuspended:
		return true
	}
	return false
}

// SelfAssignable reports whether a user may pick this role at registration.
func (r SystemRole) SelfAssignable() bool {
	switch r {
	case RoleCustomer, RoleRestaurantOwner:
		return true
	case RoleSuperadmin, RoleSuspended:
		return false
	}
	return false
}

// OrgRole is a restaurant-scoped role granted through a Membership.
type OrgRole string

const (
	OrgRoleAdmin    OrgRole = "restaurant_admin"
	OrgRoleEmployee OrgRole = "employee"
)

func (r OrgRole) Valid() bool {
	switch r {
	case OrgRoleAdmin, OrgRoleEmployee:
		return true
	}
	return false
}

// ApprovalStatus is the moderation state of a restaurant.
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalSuspended ApprovalStatus = "suspended"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalSuspended:
		return true
	}
	return false
}

// Orderable reports whether customers may place orders and browse the menu.
func (s ApprovalStatus) Orderable() bool {
	switch s {
	case ApprovalApproved:
		return true
	case ApprovalPending, ApprovalRejected, ApprovalSuspended:
		return false
	}
	return false
}
