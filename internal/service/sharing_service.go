package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Sallvainian/teaching-tools-api/internal/models"
	appErrors "github.com/Sallvainian/teaching-tools-api/pkg/errors"
	"github.com/Sallvainian/teaching-tools-api/pkg/export"
)

type permissionRepository interface {
	FindByID(ctx context.Context, id string) (*models.PermissionGrant, error)
	ListDirectByFileAndUser(ctx context.Context, fileID, userID string) ([]models.PermissionGrant, error)
	ListClassGrantsByFile(ctx context.Context, fileID string) ([]models.PermissionGrant, error)
	ListRoleGrantsByFile(ctx context.Context, fileID string, role models.UserRole) ([]models.PermissionGrant, error)
	ListDetailsByFile(ctx context.Context, fileID string) ([]models.PermissionGrantDetail, error)
	ListSharedWithUser(ctx context.Context, userID string) ([]models.SharedFile, error)
	Create(ctx context.Context, grant *models.PermissionGrant) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type fileReader interface {
	FindByID(ctx context.Context, id string) (*models.FileRecord, error)
}

type classReader interface {
	ListClassIDsByStudent(ctx context.Context, studentID string) ([]string, error)
	ListTaughtByTeacher(ctx context.Context, teacherID string) ([]models.ClassContext, error)
	ListEnrolledByStudent(ctx context.Context, studentID string) ([]models.ClassContext, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ShareFileRequest describes a sharing request. Exactly one recipient is
// addressed: SharedWithID carries the user or class ID, Role the target role.
type ShareFileRequest struct {
	FileID          string                 `json:"file_id" validate:"required"`
	PermissionLevel models.PermissionLevel `json:"permission_level" validate:"required"`
	ShareScope      models.ShareScope      `json:"share_scope" validate:"required"`
	SharedWithType  models.RecipientType   `json:"shared_with_type" validate:"required,oneof=user class role"`
	SharedWithID    string                 `json:"shared_with_id,omitempty"`
	Role            models.UserRole        `json:"role,omitempty"`
	ExpiresAt       *time.Time             `json:"expires_at,omitempty"`
	Message         string                 `json:"message,omitempty"`
}

// SharingService resolves effective file permissions and authorizes sharing
// actions.
type SharingService struct {
	perms     permissionRepository
	files     fileReader
	classes   classReader
	users     userReader
	cache     *CacheService
	classTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger

	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewSharingService constructs SharingService.
func NewSharingService(perms permissionRepository, files fileReader, classes classReader, users userReader, cache *CacheService, classTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SharingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SharingService{
		perms:     perms,
		files:     files,
		classes:   classes,
		users:     users,
		cache:     cache,
		classTTL:  classTTL,
		validator: validate,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// GetUserFilePermission determines the user's effective permission level on a
// file. Tiers are checked in order (ownership, direct grants, class grants,
// role grants) and the first matching tier wins; tiers never combine. Any
// datastore error degrades to view rather than propagating: the subsystem
// fails open to baseline access.
func (s *SharingService) GetUserFilePermission(ctx context.Context, fileID, userID string) models.PermissionLevel {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		s.logger.Warn("ownership lookup failed, defaulting to view",
			zap.String("file_id", fileID), zap.Error(err))
		return models.PermissionView
	}
	if file.OwnerID == userID {
		return models.PermissionOwner
	}

	direct, err := s.perms.ListDirectByFileAndUser(ctx, fileID, userID)
	if err != nil {
		s.logger.Warn("direct grant lookup failed, defaulting to view",
			zap.String("file_id", fileID), zap.Error(err))
		return models.PermissionView
	}
	if len(direct) > 0 {
		return models.HighestPermission(grantLevels(direct))
	}

	classGrants, err := s.perms.ListClassGrantsByFile(ctx, fileID)
	if err != nil {
		s.logger.Warn("class grant lookup failed, defaulting to view",
			zap.String("file_id", fileID), zap.Error(err))
		return models.PermissionView
	}
	if len(classGrants) > 0 {
		memberships, err := s.classes.ListClassIDsByStudent(ctx, userID)
		if err != nil {
			s.logger.Warn("class membership lookup failed, defaulting to view",
				zap.String("user_id", userID), zap.Error(err))
			return models.PermissionView
		}
		memberSet := make(map[string]struct{}, len(memberships))
		for _, id := range memberships {
			memberSet[id] = struct{}{}
		}
		var matched []models.PermissionLevel
		for _, grant := range classGrants {
			if grant.ClassID == nil {
				continue
			}
			if _, ok := memberSet[*grant.ClassID]; ok {
				matched = append(matched, grant.PermissionLevel)
			}
		}
		if len(matched) > 0 {
			return models.HighestPermission(matched)
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("role lookup failed, defaulting to view",
			zap.String("user_id", userID), zap.Error(err))
		return models.PermissionView
	}
	roleGrants, err := s.perms.ListRoleGrantsByFile(ctx, fileID, user.Role)
	if err != nil {
		s.logger.Warn("role grant lookup failed, defaulting to view",
			zap.String("file_id", fileID), zap.Error(err))
		return models.PermissionView
	}
	if len(roleGrants) > 0 {
		return models.HighestPermission(grantLevels(roleGrants))
	}

	return models.PermissionView
}

// GetEffectivePermission returns the resolved level together with its
// capability set.
func (s *SharingService) GetEffectivePermission(ctx context.Context, fileID, userID string) models.EffectivePermission {
	level := s.GetUserFilePermission(ctx, fileID, userID)
	return models.EffectivePermission{
		FileID:       fileID,
		Level:        level,
		Capabilities: level.Capabilities(),
	}
}

// ShareFile authorizes and persists a new grant on behalf of the caller.
func (s *SharingService) ShareFile(ctx context.Context, req ShareFileRequest, currentUserID string) (*models.PermissionGrant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid share payload")
	}
	if !req.PermissionLevel.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid permission level")
	}
	if !req.ShareScope.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid share scope")
	}

	currentLevel := s.GetUserFilePermission(ctx, req.FileID, currentUserID)
	if !currentLevel.Can(models.CapabilityShare) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to share this file")
	}
	// Unreachable while only owner carries the share capability; kept so a
	// future sub-owner share capability cannot escalate.
	if req.PermissionLevel.IsHigherThan(currentLevel) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Cannot grant higher permission level than you have")
	}

	grant := &models.PermissionGrant{
		FileID:          req.FileID,
		PermissionLevel: req.PermissionLevel,
		ShareScope:      req.ShareScope,
		GrantedBy:       currentUserID,
		GrantedAt:       time.Now().UTC(),
		ExpiresAt:       req.ExpiresAt,
	}
	switch req.SharedWithType {
	case models.RecipientUser:
		if req.SharedWithID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "shared_with_id is required for user shares")
		}
		id := req.SharedWithID
		grant.UserID = &id
	case models.RecipientClass:
		if req.SharedWithID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "shared_with_id is required for class shares")
		}
		id := req.SharedWithID
		grant.ClassID = &id
	case models.RecipientRole:
		switch req.Role {
		case models.RoleTeacher, models.RoleStudent, models.RoleAdmin:
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid role for role shares")
		}
		role := req.Role
		grant.Role = &role
	}

	if err := s.perms.Create(ctx, grant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to share file")
	}
	return grant, nil
}

// GetFilePermissions returns all grants on a file with recipient display
// names. Query failures are logged and yield an empty list, never an error.
func (s *SharingService) GetFilePermissions(ctx context.Context, fileID string) []models.PermissionGrantDetail {
	details, err := s.perms.ListDetailsByFile(ctx, fileID)
	if err != nil {
		s.logger.Warn("grant listing failed", zap.String("file_id", fileID), zap.Error(err))
		return []models.PermissionGrantDetail{}
	}
	for i := range details {
		if details[i].Role != nil && details[i].RecipientName == "" {
			details[i].RecipientName = fmt.Sprintf("All %ss", *details[i].Role)
		}
	}
	if details == nil {
		details = []models.PermissionGrantDetail{}
	}
	return details
}

// RemovePermission deletes a grant. Allowed for file owners, and always for
// the user who created the grant, whatever their current level.
func (s *SharingService) RemovePermission(ctx context.Context, permissionID, currentUserID string) error {
	grant, err := s.perms.FindByID(ctx, permissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Permission not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to remove sharing")
	}

	if grant.GrantedBy != currentUserID {
		currentLevel := s.GetUserFilePermission(ctx, grant.FileID, currentUserID)
		if currentLevel != models.PermissionOwner {
			return appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to remove this sharing")
		}
	}

	if err := s.perms.Delete(ctx, permissionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to remove sharing")
	}
	return nil
}

// GetAvailableClasses returns the classes a user can share into. Teachers see
// the classes they teach with roster counts; students their enrolled classes.
func (s *SharingService) GetAvailableClasses(ctx context.Context, userID string) ([]models.ClassContext, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	cacheKey := fmt.Sprintf("sharing:classes:%s", userID)
	var cached []models.ClassContext
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	var classes []models.ClassContext
	switch user.Role {
	case models.RoleTeacher:
		classes, err = s.classes.ListTaughtByTeacher(ctx, userID)
	case models.RoleStudent:
		classes, err = s.classes.ListEnrolledByStudent(ctx, userID)
	default:
		classes = []models.ClassContext{}
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if classes == nil {
		classes = []models.ClassContext{}
	}

	_ = s.cache.Set(ctx, cacheKey, classes, s.classTTL)
	return classes, nil
}

// GetSharedWithUser returns files shared directly with the user, excluding
// files the user owns. Class and role based shares are not included.
func (s *SharingService) GetSharedWithUser(ctx context.Context, userID string) ([]models.SharedFile, error) {
	rows, err := s.perms.ListSharedWithUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shared files")
	}

	// A file with several direct grants shows up once at its highest level.
	byFile := make(map[string]int, len(rows))
	files := make([]models.SharedFile, 0, len(rows))
	for _, row := range rows {
		if idx, ok := byFile[row.ID]; ok {
			if row.PermissionLevel.IsHigherThan(files[idx].PermissionLevel) {
				files[idx].PermissionLevel = row.PermissionLevel
			}
			continue
		}
		byFile[row.ID] = len(files)
		files = append(files, row)
	}
	for i := range files {
		files[i].CanReshare = files[i].PermissionLevel.Can(models.CapabilityShare)
	}
	return files, nil
}

// ExportFilePermissions renders the grant list for a file as CSV or PDF.
// Only callers holding manage_permissions on the file may export.
func (s *SharingService) ExportFilePermissions(ctx context.Context, fileID, currentUserID, format string) ([]byte, string, error) {
	currentLevel := s.GetUserFilePermission(ctx, fileID, currentUserID)
	if !currentLevel.Can(models.CapabilityManagePermissions) {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to export sharing for this file")
	}

	details := s.GetFilePermissions(ctx, fileID)
	dataset := export.Dataset{
		Headers: []string{"Recipient", "Type", "Level", "Scope", "Granted By", "Granted At", "Expires At"},
	}
	for _, d := range details {
		expires := ""
		if d.ExpiresAt != nil {
			expires = d.ExpiresAt.UTC().Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Recipient":  d.RecipientName,
			"Type":       string(d.RecipientType()),
			"Level":      string(d.PermissionLevel),
			"Scope":      string(d.ShareScope),
			"Granted By": d.GrantedBy,
			"Granted At": d.GrantedAt.UTC().Format(time.RFC3339),
			"Expires At": expires,
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "file sharing audit")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// PurgeExpiredGrants removes grants whose expiry has passed. Resolution never
// consults expiry; the sweep only bounds how long a stale grant lingers.
func (s *SharingService) PurgeExpiredGrants(ctx context.Context) (int64, error) {
	removed, err := s.perms.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("purged expired grants", zap.Int64("removed", removed))
	}
	return removed, nil
}

func grantLevels(grants []models.PermissionGrant) []models.PermissionLevel {
	levels := make([]models.PermissionLevel, len(grants))
	for i, g := range grants {
		levels[i] = g.PermissionLevel
	}
	return levels
}
