package domain

import "fmt"

// Action names a resource operation guarded by the authorization policy.
type Action string

const (
	ActionPostCreate Action = "post:create"
	ActionPostUpdate Action = "post:update"
	ActionPostDelete Action = "post:delete"
	ActionPostLike   Action = "post:like"

	ActionPageCreate Action = "page:create"
	ActionPageUpdate Action = "page:update"
	ActionPageDelete Action = "page:delete"

	ActionCategoryCreate Action = "category:create"
	ActionCategoryUpdate Action = "category:update"
	ActionCategoryDelete Action = "category:delete"

	ActionMediaUpload Action = "media:upload"
	ActionMediaUpdate Action = "media:update"
	ActionMediaDelete Action = "media:delete"

	ActionCommentCreate Action = "comment:create"
	ActionCommentUpdate Action = "comment:update"
	ActionCommentDelete Action = "comment:delete"

	ActionUserList         Action = "user:list"
	ActionUserCreate       Action = "user:create"
	ActionUserUpdate       Action = "user:update"
	ActionUserDelete       Action = "user:delete"
	ActionUserChangeRole   Action = "user:change-role"
	ActionUserToggleStatus Action = "user:toggle-status"
)

// rule is one row of the policy table. roles may perform the action on any
// record; owner reports whether owning the record is enough on its own.
type rule struct {
	roles []Role
	owner bool
}

var (
	anyRole     = []Role{RoleAdmin, RoleEditor, RoleViewer}
	contentRole = []Role{RoleAdmin, RoleEditor}
	adminOnly   = []Role{RoleAdmin}
)

var policy = map[Action]rule{
	ActionPostCreate: {roles: contentRole},
	ActionPostUpdate: {roles: contentRole, owner: true},
	ActionPostDelete: {roles: adminOnly, owner: true},
	ActionPostLike:   {roles: anyRole},

	ActionPageCreate: {roles: contentRole},
	ActionPageUpdate: {roles: contentRole, owner: true},
	ActionPageDelete: {roles: adminOnly, owner: true},

	ActionCategoryCreate: {roles: contentRole},
	ActionCategoryUpdate: {roles: contentRole, owner: true},
	ActionCategoryDelete: {roles: adminOnly, owner: true},

	ActionMediaUpload: {roles: anyRole},
	ActionMediaUpdate: {roles: adminOnly, owner: true},
	ActionMediaDelete: {roles: adminOnly, owner: true},

	ActionCommentCreate: {roles: anyRole},
	ActionCommentUpdate: {roles: adminOnly, owner: true},
	ActionCommentDelete: {roles: adminOnly, owner: true},

	ActionUserList:         {roles: contentRole},
	ActionUserCreate:       {roles: adminOnly},
	ActionUserUpdate:       {roles: adminOnly},
	ActionUserDelete:       {roles: adminOnly},
	ActionUserChangeRole:   {roles: adminOnly},
	ActionUserToggleStatus: {roles: adminOnly},
}

// RoleGated reports whether ownership alone can never satisfy action.
func RoleGated(action Action) bool {
	r, ok := policy[action]
	return !ok || !r.owner
}

// CanPerform is the pure policy decision. Rules apply in order: admin
// override, role allow-list, ownership for actions that are not role-gated.
// Unknown actions are denied.
func CanPerform(role Role, action Action, isOwner bool) bool {
	r, ok := policy[action]
	if !ok || !role.Valid() {
		return false
	}
	if role == RoleAdmin {
		return true
	}
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return r.owner && isOwner
}

// Authorize checks principal against action on a record owned by ownerID.
// Pass an empty ownerID for actions that do not target an existing record.
func Authorize(p Principal, action Action, ownerID string) error {
	isOwner := ownerID != "" && p.ID != "" && p.ID == ownerID
	if CanPerform(p.Role, action, isOwner) {
		return nil
	}
	return &AuthorizationError{
		Action: action,
		Reason: fmt.Sprintf("Role %q is not allowed to perform %s", p.Role, action),
	}
}

// AuthorizeUserAction applies the policy to an action targeting another
// account, then the self-targeting restrictions that bind admins too.
func AuthorizeUserAction(p Principal, action Action, target *User) error {
	if err := Authorize(p, action, ""); err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	self := p.ID == target.ID
	switch action {
	case ActionUserDelete:
		if self {
			return &AuthorizationError{Action: action, Reason: "You cannot delete your own account"}
		}
		if target.Role == RoleAdmin && p.Role != RoleAdmin {
			return &AuthorizationError{Action: action, Reason: "Only admins can delete admin accounts"}
		}
	case ActionUserChangeRole:
		if self {
			return &AuthorizationError{Action: action, Reason: "You cannot change your own role"}
		}
	case ActionUserToggleStatus:
		if self {
			return &AuthorizationError{Action: action, Reason: "You cannot change your own status"}
		}
	}
	return nil
}
