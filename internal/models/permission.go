package models

import "time"

// PermissionLevel is one step in the file-sharing hierarchy. The order
// view < edit < contribute < owner is fixed; comparisons always go through
// Rank so the ordering lives in exactly one place.
type PermissionLevel string

const (
	PermissionView       PermissionLevel = "view"
	PermissionEdit       PermissionLevel = "edit"
	PermissionContribute PermissionLevel = "contribute"
	PermissionOwner      PermissionLevel = "owner"
)

var permissionRanks = map[PermissionLevel]int{
	PermissionView:       0,
	PermissionEdit:       1,
	PermissionContribute: 2,
	PermissionOwner:      3,
}

// Rank returns the position of the level in the hierarchy, or -1 for an
// unknown level so that garbage values never outrank real ones.
func (l PermissionLevel) Rank() int {
	if rank, ok := permissionRanks[l]; ok {
		return rank
	}
	return -1
}

// Valid reports whether the level is part of the hierarchy.
func (l PermissionLevel) Valid() bool {
	_, ok := permissionRanks[l]
	return ok
}

// IsHigherThan reports whether l is strictly above other in the hierarchy.
func (l PermissionLevel) IsHigherThan(other PermissionLevel) bool {
	return l.Rank() > other.Rank()
}

// HighestPermission returns the maximum level in the slice, defaulting to
// view for an empty input.
func HighestPermission(levels []PermissionLevel) PermissionLevel {
	highest := PermissionView
	for _, level := range levels {
		if level.IsHigherThan(highest) {
			highest = level
		}
	}
	return highest
}

// Capability is a named action enabled by a permission level.
type Capability string

const (
	CapabilityRead              Capability = "read"
	CapabilityDownload          Capability = "download"
	CapabilityComment           Capability = "comment"
	CapabilityEdit              Capability = "edit"
	CapabilityUpload            Capability = "upload"
	CapabilityDelete            Capability = "delete"
	CapabilityShare             Capability = "share"
	CapabilityManagePermissions Capability = "manage_permissions"
)

// levelCapabilities maps each level to its allowed actions. Each level is a
// strict superset of the one below it; only owner may share or manage grants.
var levelCapabilities = map[PermissionLevel][]Capability{
	PermissionView:       {CapabilityRead, CapabilityDownload},
	PermissionEdit:       {CapabilityRead, CapabilityDownload, CapabilityComment, CapabilityEdit},
	PermissionContribute: {CapabilityRead, CapabilityDownload, CapabilityComment, CapabilityEdit, CapabilityUpload},
	PermissionOwner: {
		CapabilityRead, CapabilityDownload, CapabilityComment, CapabilityEdit,
		CapabilityUpload, CapabilityDelete, CapabilityShare, CapabilityManagePermissions,
	},
}

// Can reports whether the level grants the capability.
func (l PermissionLevel) Can(capability Capability) bool {
	for _, c := range levelCapabilities[l] {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns the actions enabled by the level.
func (l PermissionLevel) Capabilities() []Capability {
	caps := levelCapabilities[l]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// ShareScope is a descriptive visibility tag, orthogonal to the permission
// hierarchy.
type ShareScope string

const (
	ScopePrivate ShareScope = "private"
	ScopeClass   ShareScope = "class"
	ScopeSchool  ShareScope = "school"
	ScopePublic  ShareScope = "public"
)

// Valid reports whether the scope is one of the known tags.
func (s ShareScope) Valid() bool {
	switch s {
	case ScopePrivate, ScopeClass, ScopeSchool, ScopePublic:
		return true
	}
	return false
}

// RecipientType discriminates who a grant targets.
type RecipientType string

const (
	RecipientUser  RecipientType = "user"
	RecipientClass RecipientType = "class"
	RecipientRole  RecipientType = "role"
)

// PermissionGrant is one persisted sharing rule. Exactly one of UserID,
// ClassID and Role is set. Grants are immutable; changing one means delete
// and recreate.
type PermissionGrant struct {
	ID              string          `db:"id" json:"id"`
	FileID          string          `db:"file_id" json:"file_id"`
	PermissionLevel PermissionLevel `db:"permission_level" json:"permission_level"`
	ShareScope      ShareScope      `db:"share_scope" json:"share_scope"`
	UserID          *string         `db:"user_id" json:"user_id,omitempty"`
	ClassID         *string         `db:"class_id" json:"class_id,omitempty"`
	Role            *UserRole       `db:"role" json:"role,omitempty"`
	GrantedBy       string          `db:"granted_by" json:"granted_by"`
	GrantedAt       time.Time       `db:"granted_at" json:"granted_at"`
	ExpiresAt       *time.Time      `db:"expires_at" json:"expires_at,omitempty"`
}

// RecipientType returns which kind of recipient the grant targets.
func (g *PermissionGrant) RecipientType() RecipientType {
	switch {
	case g.UserID != nil:
		return RecipientUser
	case g.ClassID != nil:
		return RecipientClass
	default:
		return RecipientRole
	}
}

// PermissionGrantDetail is a grant joined with a display name for its
// recipient.
type PermissionGrantDetail struct {
	PermissionGrant
	RecipientName string `db:"recipient_name" json:"recipient_name"`
}
