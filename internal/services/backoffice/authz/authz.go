// Package authz evaluates operator capabilities for back-office resources.
package authz

import (
	"strings"

	"github.com/louisbranch/backoffice/internal/platform/requestctx"
	"github.com/louisbranch/backoffice/internal/services/backoffice/resource"
)

// Capabilities is the permission view of one operator.
type Capabilities struct {
	UserID      string
	Admin       bool
	Permissions map[string]bool
}

// New builds capabilities from a permission list.
func New(userID string, admin bool, permissions ...string) Capabilities {
	caps := Capabilities{
		UserID:      strings.TrimSpace(userID),
		Admin:       admin,
		Permissions: make(map[string]bool, len(permissions)),
	}
	for _, permission := range permissions {
		if permission = strings.TrimSpace(permission); permission != "" {
			caps.Permissions[permission] = true
		}
	}
	return caps
}

// FromOperator builds capabilities for the request operator.
func FromOperator(operator requestctx.Operator) Capabilities {
	return New(operator.UserID, operator.Admin, operator.Permissions...)
}

// Has reports whether the operator holds permission explicitly.
func (c Capabilities) Has(permission string) bool {
	return c.Permissions[permission]
}

// Can reports whether the operator may use permission on a record owned by
// ownerID. Admins may do anything, and owners may act on their own records.
// A blank or "0" owner never matches.
func (c Capabilities) Can(permission string, ownerID string) bool {
	if c.Admin || c.Has(permission) {
		return true
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || ownerID == "0" || c.UserID == "" {
		return false
	}
	return ownerID == c.UserID
}

// RowActions is the set of row controls rendered for one record.
type RowActions struct {
	Edit   bool
	Delete bool
	Toggle bool
}

// Row evaluates the row controls for a record of def owned by ownerID.
func (c Capabilities) Row(def resource.Definition, ownerID string) RowActions {
	if def.ReadOnly {
		return RowActions{}
	}
	edit := c.Can(def.PermissionFor(resource.VerbEdit), ownerID)
	actions := RowActions{
		Edit:   edit,
		Delete: c.Can(def.PermissionFor(resource.VerbDelete), ownerID),
	}
	if def.ActiveField != "" {
		actions.Toggle = edit || c.Has(def.PermissionFor(resource.VerbApprove))
	}
	return actions
}

// CanView reports whether the operator may open the resource list.
func (c Capabilities) CanView(def resource.Definition) bool {
	return c.Admin || c.Has(def.PermissionFor(resource.VerbView)) || c.ownsScoped(def)
}

// CanCreate reports whether the operator may create records of def.
func (c Capabilities) CanCreate(def resource.Definition) bool {
	if def.ReadOnly {
		return false
	}
	return c.Admin || c.Has(def.PermissionFor(resource.VerbCreate)) || c.ownsScoped(def)
}

// CanAction reports whether the operator may run a custom action.
func (c Capabilities) CanAction(def resource.Definition, action resource.Action, ownerID string) bool {
	return c.Can(def.ActionPermission(action), ownerID)
}

// ScopedToOwner reports whether list requests must be narrowed to the
// operator's own records.
func (c Capabilities) ScopedToOwner(def resource.Definition) bool {
	if c.Admin || def.OwnerField == "" {
		return false
	}
	return !c.Has(def.PermissionFor(resource.VerbView))
}

// ownsScoped lets operators without explicit grants work with their own
// records of owner-scoped resources.
func (c Capabilities) ownsScoped(def resource.Definition) bool {
	return def.OwnerField != "" && c.UserID != "" && c.UserID != "0"
}
