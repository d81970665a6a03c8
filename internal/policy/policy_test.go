package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erazemk/inventar/internal/model"
)

var (
	admin      = Actor{UserID: 1, Username: "root", Role: model.RoleAdmin}
	alice      = Actor{UserID: 2, Username: "alice", Role: model.RoleIT}
	bob        = Actor{UserID: 3, Username: "bob", Role: model.RoleIT}
	manager    = Actor{UserID: 4, Username: "mia", Role: model.RoleManager}
	supervisor = Actor{UserID: 5, Username: "sam", Role: model.RoleSupervisor}
	auditor    = Actor{UserID: 6, Username: "ada", Role: model.RoleAudit}
	anonymous  = Actor{}
)

func TestAllowedItemOwnership(t *testing.T) {
	owned := Resource{Owner: "alice"}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		want   bool
	}{
		{"admin edits foreign item", admin, EditItem, true},
		{"admin deletes foreign item", admin, DeleteItem, true},
		{"owner edits own item", alice, EditItem, true},
		{"owner deletes own item", alice, DeleteItem, true},
		{"other IT edits", bob, EditItem, false},
		{"owner uploads image", alice, UploadImage, true},
		{"other IT uploads image", bob, UploadImage, false},
		{"other IT deletes", bob, DeleteItem, false},
		{"manager edits", manager, EditItem, false},
		{"supervisor deletes", supervisor, DeleteItem, false},
		{"anonymous edits", anonymous, EditItem, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.actor, tt.action, owned))
		})
	}
}

func TestAllowedEditRequiresKnownOwner(t *testing.T) {
	ghost := Actor{Username: "", Role: model.RoleIT}
	assert.False(t, Allowed(ghost, EditItem, Resource{Owner: ""}))
	assert.False(t, Allowed(alice, EditItem, Resource{Owner: ""}))
}

func TestAllowedCreateItem(t *testing.T) {
	assert.True(t, Allowed(admin, CreateItem, Resource{}))
	assert.True(t, Allowed(alice, CreateItem, Resource{}))
	assert.False(t, Allowed(manager, CreateItem, Resource{}))
	assert.False(t, Allowed(auditor, CreateItem, Resource{}))
	assert.False(t, Allowed(anonymous, CreateItem, Resource{}))
}

func TestAllowedResolveRequest(t *testing.T) {
	pending := Resource{Status: model.StatusPending}
	approved := Resource{Status: model.StatusApproved}

	assert.True(t, Allowed(admin, ResolveRequest, pending))
	assert.True(t, Allowed(manager, ResolveRequest, pending))
	assert.False(t, Allowed(alice, ResolveRequest, pending))
	assert.False(t, Allowed(supervisor, ResolveRequest, pending))
	assert.False(t, Allowed(manager, ResolveRequest, approved))
	assert.False(t, Allowed(admin, ResolveRequest, Resource{Status: model.StatusRejected}))
}

func TestAllowedViewArchive(t *testing.T) {
	assert.True(t, Allowed(admin, ViewArchive, Resource{}))
	assert.True(t, Allowed(alice, ViewArchive, Resource{}))
	assert.True(t, Allowed(manager, ViewArchive, Resource{}))
	assert.False(t, Allowed(supervisor, ViewArchive, Resource{}))
	assert.False(t, Allowed(auditor, ViewArchive, Resource{}))
	assert.False(t, Allowed(anonymous, ViewArchive, Resource{}))
}

func TestAllowedAnyAuthenticated(t *testing.T) {
	for _, actor := range []Actor{admin, alice, manager, supervisor, auditor} {
		for _, action := range []Action{ViewInventory, ViewRequests, SubmitRequest, ExportInventory} {
			assert.True(t, Allowed(actor, action, Resource{}), "%s %s", actor.Role, action)
		}
	}
	for _, action := range []Action{ViewInventory, ViewRequests, SubmitRequest, ExportInventory} {
		assert.False(t, Allowed(anonymous, action, Resource{}), "anonymous %s", action)
	}
}

func TestAllowedRegisterOnlyAnonymous(t *testing.T) {
	assert.True(t, Allowed(anonymous, Register, Resource{}))
	assert.False(t, Allowed(alice, Register, Resource{}))
}

func TestAllowedUnknownRoleFailsClosed(t *testing.T) {
	intruder := Actor{Username: "eve", Role: "Root"}
	for _, action := range []Action{ViewInventory, CreateItem, EditItem, ResolveRequest, ViewArchive} {
		assert.False(t, Allowed(intruder, action, Resource{Owner: "eve", Status: model.StatusPending}))
	}
	assert.False(t, Allowed(admin, Action("drop_tables"), Resource{}))
}

func TestCapabilities(t *testing.T) {
	caps := Capabilities(manager)
	assert.True(t, caps[ResolveRequest])
	assert.False(t, caps[ShowAddItem])
	assert.True(t, caps[ViewArchive])
	assert.False(t, caps[ListUsers])

	caps = Capabilities(auditor)
	assert.False(t, caps[ResolveRequest])
	assert.False(t, caps[ViewArchive])
	assert.True(t, caps[ViewInventory])

	caps = Capabilities(alice)
	assert.True(t, caps[ShowAddItem])
	assert.False(t, caps[ResolveRequest])
}
