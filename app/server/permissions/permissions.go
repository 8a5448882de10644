// Package permissions derives the capability record of a profile.
// Capabilities are never stored; they are recomputed from role and ban state on every read.
package permissions

import "membership-dashboard/app/server/models"

type Permissions struct {
	CanCreateContent    bool `json:"can_create_content"`
	CanEditContent      bool `json:"can_edit_content"`
	CanDeleteContent    bool `json:"can_delete_content"`
	CanManageUsers      bool `json:"can_manage_users"`
	CanBanUsers         bool `json:"can_ban_users"`
	CanViewAdminPanel   bool `json:"can_view_admin_panel"`
	CanModerateComments bool `json:"can_moderate_comments"`
	CanEditProfile      bool `json:"can_edit_profile"`
	CanComment          bool `json:"can_comment"`
}

// Default is what every signed-in member gets, banned members included.
func Default() Permissions {
	return Permissions{
		CanEditProfile: true,
		CanComment:     true,
	}
}

func All() Permissions {
	return Permissions{
		CanCreateContent:    true,
		CanEditContent:      true,
		CanDeleteContent:    true,
		CanManageUsers:      true,
		CanBanUsers:         true,
		CanViewAdminPanel:   true,
		CanModerateComments: true,
		CanEditProfile:      true,
		CanComment:          true,
	}
}

// Resolve maps a profile to its capabilities. A ban outranks the admin role.
func Resolve(p *models.Profile) Permissions {
	switch {
	case p == nil:
		return Default()
	case p.IsBanned:
		return Default()
	case IsAdmin(p.Role):
		return All()
	default:
		return Default()
	}
}

// Capability selects one flag of a Permissions record.
type Capability func(Permissions) bool

var (
	CreateContent    Capability = func(p Permissions) bool { return p.CanCreateContent }
	EditContent      Capability = func(p Permissions) bool { return p.CanEditContent }
	DeleteContent    Capability = func(p Permissions) bool { return p.CanDeleteContent }
	ManageUsers      Capability = func(p Permissions) bool { return p.CanManageUsers }
	BanUsers         Capability = func(p Permissions) bool { return p.CanBanUsers }
	ViewAdminPanel   Capability = func(p Permissions) bool { return p.CanViewAdminPanel }
	ModerateComments Capability = func(p Permissions) bool { return p.CanModerateComments }
	EditProfile      Capability = func(p Permissions) bool { return p.CanEditProfile }
	Comment          Capability = func(p Permissions) bool { return p.CanComment }
)
