package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleAuthor))
	assert.True(t, RoleAuthor.AtLeast(RoleAuthor))
	assert.False(t, RoleReader.AtLeast(RoleAuthor))
	assert.True(t, RoleEditor.AtLeast(RoleReader))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("EDITOR")
	assert.True(t, ok)
	assert.Equal(t, RoleEditor, r)

	_, ok = ParseRole("SUPERUSER")
	assert.False(t, ok)
}

func TestScopeValidate(t *testing.T) {
	assert.NoError(t, OrgScope().Validate())
	assert.NoError(t, SpaceScope("s1").Validate())
	assert.NoError(t, PrivateScope("u1", "u2").Validate())
	assert.NoError(t, PrivateScope().Validate())

	assert.Error(t, Scope{Visibility: VisibilitySpace}.Validate(), "SPACE needs a space")
	assert.Error(t, Scope{Visibility: VisibilityOrg, SpaceID: "s1"}.Validate())
	assert.Error(t, Scope{Visibility: VisibilityOrg, Invitees: []string{"u1"}}.Validate())
	assert.Error(t, Scope{Visibility: VisibilitySpace, SpaceID: "s1", Invitees: []string{"u1"}}.Validate())
	assert.Error(t, Scope{Visibility: VisibilityPrivate, SpaceID: "s1"}.Validate())
	assert.Error(t, Scope{Visibility: "LOUD"}.Validate())
}

func TestScopeInvited(t *testing.T) {
	s := PrivateScope("u1", "u2")
	assert.True(t, s.Invited("u2"))
	assert.False(t, s.Invited("u3"))
}
