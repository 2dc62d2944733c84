package access

import "github.com/derrickshema/recipe-manager/order-svc/internal/domain"

type Capability string

const (
	CreateRestaurant Capability = "create_restaurant"
	ManageRestaurant Capability = "manage_restaurant"
	EditMenu         Capability = "edit_menu"
	ReadRestaurant   Capability = "read_restaurant"
	Moderate         Capability = "moderate"
)

type rule struct {
	systemRoles []domain.SystemRole
	orgRoles    []domain.OrgRole
}

var superadminOnly = []domain.SystemRole{domain.RoleSuperadmin}

func (c Capability) rule() (rule, bool) {
	switch c {
	case CreateRestaurant, Moderate:
		return rule{systemRoles: superadminOnly}, true
	case ManageRestaurant:
		return rule{
			systemRoles: superadminOnly,
			orgRoles:    []domain.OrgRole{domain.OrgRoleAdmin},
		}, true
	case EditMenu, ReadRestaurant:
		return rule{
			systemRoles: superadminOnly,
			orgRoles:    []domain.OrgRole{domain.OrgRoleAdmin, domain.OrgRoleEmployee},
		}, true
	}
	return rule{}, false
}
