package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Sallvainian/teaching-tools-api/internal/models"
)

const grantColumns = `id, file_id, permission_level, share_scope, user_id, class_id, role, granted_by, granted_at, expires_at`

// PermissionRepository handles persistence of file permission grants.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository constructs the repository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// FindByID returns a grant by its ID.
func (r *PermissionRepository) FindByID(ctx context.Context, id string) (*models.PermissionGrant, error) {
	query := fmt.Sprintf(`SELECT %s FROM file_permissions WHERE id = $1`, grantColumns)
	var grant models.PermissionGrant
	if err := r.db.GetContext(ctx, &grant, query, id); err != nil {
		return nil, err
	}
	return &grant, nil
}

// ListDirectByFileAndUser returns grants targeting the user directly.
func (r *PermissionRepository) ListDirectByFileAndUser(ctx context.Context, fileID, userID string) ([]models.PermissionGrant, error) {
	query := fmt.Sprintf(`SELECT %s FROM file_permissions WHERE file_id = $1 AND user_id = $2`, grantColumns)
	var grants []models.PermissionGrant
	if err := r.db.SelectContext(ctx, &grants, query, fileID, userID); err != nil {
		return nil, fmt.Errorf("list direct grants: %w", err)
	}
	return grants, nil
}

// ListClassGrantsByFile returns all class-targeted grants for a file.
func (r *PermissionRepository) ListClassGrantsByFile(ctx context.Context, fileID string) ([]models.PermissionGrant, error) {
	query := fmt.Sprintf(`SELECT %s FROM file_permissions WHERE file_id = $1 AND class_id IS NOT NULL`, grantColumns)
	var grants []models.PermissionGrant
	if err := r.db.SelectContext(ctx, &grants, query, fileID); err != nil {
		return nil, fmt.Errorf("list class grants: %w", err)
	}
	return grants, nil
}

// ListRoleGrantsByFile returns grants targeting the given role on a file.
func (r *PermissionRepository) ListRoleGrantsByFile(ctx context.Context, fileID string, role models.UserRole) ([]models.PermissionGrant, error) {
	query := fmt.Sprintf(`SELECT %s FROM file_permissions WHERE file_id = $1 AND role = $2`, grantColumns)
	var grants []models.PermissionGrant
	if err := r.db.SelectContext(ctx, &grants, query, fileID, role); err != nil {
		return nil, fmt.Errorf("list role grants: %w", err)
	}
	return grants, nil
}

// ListDetailsByFile returns all grants for a file joined with recipient
// display names. Role grants come back with an empty name; the caller renders
// those.
func (r *PermissionRepository) ListDetailsByFile(ctx context.Context, fileID string) ([]models.PermissionGrantDetail, error) {
	const query = `SELECT p.id, p.file_id, p.permission_level, p.share_scope, p.user_id, p.class_id, p.role,
        p.granted_by, p.granted_at, p.expires_at,
        COALESCE(u.full_name, c.name, '') AS recipient_name
        FROM file_permissions p
        LEFT JOIN app_users u ON u.id = p.user_id
        LEFT JOIN classes c ON c.id = p.class_id
        WHERE p.file_id = $1
        ORDER BY p.granted_at DESC`
	var details []models.PermissionGrantDetail
	if err := r.db.SelectContext(ctx, &details, query, fileID); err != nil {
		return nil, fmt.Errorf("list grant details: %w", err)
	}
	return details, nil
}

// ListSharedWithUser returns files surfaced through direct grants to the
// user, excluding files the user owns. A file may appear once per grant.
func (r *PermissionRepository) ListSharedWithUser(ctx context.Context, userID string) ([]models.SharedFile, error) {
	const query = `SELECT f.id, f.user_id, f.name, f.created_at, p.permission_level
        FROM file_permissions p
        JOIN file_metadata f ON f.id = p.file_id
        WHERE p.user_id = $1 AND f.user_id <> $1
        ORDER BY p.granted_at DESC`
	var files []models.SharedFile
	if err := r.db.SelectContext(ctx, &files, query, userID); err != nil {
		return nil, fmt.Errorf("list shared files: %w", err)
	}
	return files, nil
}

// Create persists a new grant record.
func (r *PermissionRepository) Create(ctx context.Context, grant *models.PermissionGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	if grant.GrantedAt.IsZero() {
		grant.GrantedAt = time.Now().UTC()
	}
	const query = `INSERT INTO file_permissions (id, file_id, permission_level, share_scope, user_id, class_id, role, granted_by, granted_at, expires_at)
        VALUES (:id, :file_id, :permission_level, :share_scope, :user_id, :class_id, :role, :granted_by, :granted_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grant); err != nil {
		return fmt.Errorf("create grant: %w", err)
	}
	return nil
}

// Delete removes a grant record.
func (r *PermissionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM file_permissions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}

// DeleteExpired purges grants whose expiry has passed, returning the number
// of rows removed.
func (r *PermissionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM file_permissions WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired grants: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired grants: %w", err)
	}
	return affected, nil
}
