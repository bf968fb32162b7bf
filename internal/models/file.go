package models

import "time"

// FileRecord represents a row in file_metadata. The owner reference is
// immutable; ownership is never reassigned by the sharing subsystem.
type FileRecord struct {
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SharedFile is a file surfaced through a direct grant, annotated with the
// granted level and whether the recipient may re-share it.
type SharedFile struct {
	FileRecord
	PermissionLevel PermissionLevel `db:"permission_level" json:"permission_level"`
	CanReshare      bool            `db:"-" json:"can_reshare"`
}

// EffectivePermission is the resolver's answer for a file/user pair.
type EffectivePermission struct {
	FileID       string          `json:"file_id"`
	Level        PermissionLevel `json:"permission_level"`
	Capabilities []Capability    `json:"capabilities"`
}
