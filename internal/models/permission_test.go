package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionLevelRank(t *testing.T) {
	assert.Equal(t, 0, PermissionView.Rank())
	assert.Equal(t, 1, PermissionEdit.Rank())
	assert.Equal(t, 2, PermissionContribute.Rank())
	assert.Equal(t, 3, PermissionOwner.Rank())
	assert.Equal(t, -1, PermissionLevel("superuser").Rank())
}

func TestPermissionLevelIsHigherThan(t *testing.T) {
	assert.True(t, PermissionOwner.IsHigherThan(PermissionContribute))
	assert.True(t, PermissionContribute.IsHigherThan(PermissionEdit))
	assert.True(t, PermissionEdit.IsHigherThan(PermissionView))
	assert.False(t, PermissionView.IsHigherThan(PermissionView))
	assert.False(t, PermissionEdit.IsHigherThan(PermissionOwner))
	// Unknown levels rank below everything, including view.
	assert.True(t, PermissionView.IsHigherThan(PermissionLevel("bogus")))
}

func TestHighestPermission(t *testing.T) {
	assert.Equal(t, PermissionView, HighestPermission(nil))
	assert.Equal(t, PermissionView, HighestPermission([]PermissionLevel{}))
	assert.Equal(t, PermissionContribute, HighestPermission([]PermissionLevel{
		PermissionView, PermissionContribute, PermissionEdit,
	}))
	assert.Equal(t, PermissionOwner, HighestPermission([]PermissionLevel{
		PermissionOwner, PermissionView,
	}))
}

func TestCapabilitiesAreNested(t *testing.T) {
	order := []PermissionLevel{PermissionView, PermissionEdit, PermissionContribute, PermissionOwner}
	for i := 1; i < len(order); i++ {
		lower := order[i-1]
		higher := order[i]
		for _, c := range lower.Capabilities() {
			assert.True(t, higher.Can(c), "%s should keep %s from %s", higher, c, lower)
		}
		assert.Greater(t, len(higher.Capabilities()), len(lower.Capabilities()))
	}
}

func TestOnlyOwnerSharesAndManages(t *testing.T) {
	for _, level := range []PermissionLevel{PermissionView, PermissionEdit, PermissionContribute} {
		assert.False(t, level.Can(CapabilityShare), "%s must not share", level)
		assert.False(t, level.Can(CapabilityManagePermissions), "%s must not manage", level)
		assert.False(t, level.Can(CapabilityDelete), "%s must not delete", level)
	}
	assert.True(t, PermissionOwner.Can(CapabilityShare))
	assert.True(t, PermissionOwner.Can(CapabilityManagePermissions))
	assert.True(t, PermissionOwner.Can(CapabilityDelete))
}

func TestShareScopeValid(t *testing.T) {
	for _, s := range []ShareScope{ScopePrivate, ScopeClass, ScopeSchool, ScopePublic} {
		assert.True(t, s.Valid())
	}
	assert.False(t, ShareScope("galaxy").Valid())
}

func TestGrantRecipientType(t *testing.T) {
	userID := "u1"
	classID := "c1"
	role := RoleStudent

	assert.Equal(t, RecipientUser, (&PermissionGrant{UserID: &userID}).RecipientType())
	assert.Equal(t, RecipientClass, (&PermissionGrant{ClassID: &classID}).RecipientType())
	assert.Equal(t, RecipientRole, (&PermissionGrant{Role: &role}).RecipientType())
}
