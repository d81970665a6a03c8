// Package policy decides which actions a user may perform. It is the single
// source of truth for role checks; handlers and clients only consult it.
package policy

import "github.com/erazemk/inventar/internal/model"

// Actor is the authenticated user a decision is made for. The zero value is
// an unauthenticated visitor.
type Actor struct {
	UserID   int64      `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// Authenticated reports whether the actor carries a known identity and role.
func (a Actor) Authenticated() bool {
	return a.Username != "" && a.Role.Valid()
}

// Action names an operation subject to authorization.
type Action string

// Actions.
const (
	ViewInventory   Action = "view_inventory"
	ViewRequests    Action = "view_requests"
	CreateItem      Action = "create_item"
	EditItem        Action = "edit_item"
	DeleteItem      Action = "delete_item"
	UploadImage     Action = "upload_image"
	ShowAddItem     Action = "show_add_item"
	ExportInventory Action = "export_inventory"
	SubmitRequest   Action = "submit_request"
	ResolveRequest  Action = "resolve_request"
	ViewArchive     Action = "view_archive"
	ListUsers       Action = "list_users"
	Register        Action = "register"
)

// Resource carries the attributes of the target that some decisions depend on.
type Resource struct {
	// Owner is the username that added an item.
	Owner string
	// Status is the current state of a request.
	Status model.RequestStatus
}

// Allowed reports whether actor may perform action on res. Unknown roles and
// unknown actions are denied.
func Allowed(actor Actor, action Action, res Resource) bool {
	if action == Register {
		return !actor.Authenticated()
	}
	if !actor.Authenticated() {
		return false
	}

	switch action {
	case ViewInventory, ViewRequests, SubmitRequest, ExportInventory:
		return true
	case CreateItem, ShowAddItem:
		return actor.Role == model.RoleAdmin || actor.Role == model.RoleIT
	case EditItem, DeleteItem, UploadImage:
		return ownsOrAdmin(actor, res.Owner)
	case ResolveRequest:
		canResolve := actor.Role == model.RoleAdmin || actor.Role == model.RoleManager
		return canResolve && res.Status == model.StatusPending
	case ViewArchive:
		return actor.Role != model.RoleAudit && actor.Role != model.RoleSupervisor
	case ListUsers:
		return actor.Role == model.RoleAdmin
	}
	return false
}

// CanResolve reports whether the actor's role may resolve requests at all,
// independent of any particular request's state.
func CanResolve(actor Actor) bool {
	return Allowed(actor, ResolveRequest, Resource{Status: model.StatusPending})
}

func ownsOrAdmin(actor Actor, owner string) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	return actor.Role == model.RoleIT && owner != "" && actor.Username == owner
}

// Capabilities returns the resource-independent decisions for the actor. It is
// meant for clients deciding which controls to render; it grants nothing.
// Item edit rights depend on ownership and are reported per item instead.
func Capabilities(actor Actor) map[Action]bool {
	return map[Action]bool{
		ViewInventory:   Allowed(actor, ViewInventory, Resource{}),
		ViewRequests:    Allowed(actor, ViewRequests, Resource{}),
		ShowAddItem:     Allowed(actor, ShowAddItem, Resource{}),
		ExportInventory: Allowed(actor, ExportInventory, Resource{}),
		SubmitRequest:   Allowed(actor, SubmitRequest, Resource{}),
		ResolveRequest:  CanResolve(actor),
		ViewArchive:     Allowed(actor, ViewArchive, Resource{}),
		ListUsers:       Allowed(actor, ListUsers, Resource{}),
	}
}
