package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sallvainian/teaching-tools-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func grantRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "file_id", "permission_level", "share_scope", "user_id", "class_id", "role", "granted_by", "granted_at", "expires_at"})
}

func TestPermissionRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, file_id, permission_level, share_scope, user_id, class_id, role, granted_by, granted_at, expires_at FROM file_permissions WHERE id = $1")).
		WithArgs("p1").
		WillReturnRows(grantRows().AddRow("p1", "f1", "edit", "class", "u1", nil, nil, "owner", time.Now(), nil))

	grant, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PermissionEdit, grant.PermissionLevel)
	require.NotNil(t, grant.UserID)
	assert.Equal(t, "u1", *grant.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectQuery("SELECT .+ FROM file_permissions WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	// sql.ErrNoRows passes through unwrapped so callers can branch on it.
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestPermissionRepositoryListDirectByFileAndUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, file_id, permission_level, share_scope, user_id, class_id, role, granted_by, granted_at, expires_at FROM file_permissions WHERE file_id = $1 AND user_id = $2")).
		WithArgs("f1", "u1").
		WillReturnRows(grantRows().
			AddRow("p1", "f1", "view", "class", "u1", nil, nil, "owner", time.Now(), nil).
			AddRow("p2", "f1", "edit", "class", "u1", nil, nil, "owner", time.Now(), nil))

	grants, err := repo.ListDirectByFileAndUser(context.Background(), "f1", "u1")
	require.NoError(t, err)
	assert.Len(t, grants, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryListClassGrantsByFile(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM file_permissions WHERE file_id = $1 AND class_id IS NOT NULL")).
		WithArgs("f1").
		WillReturnRows(grantRows().AddRow("p1", "f1", "edit", "class", nil, "c1", nil, "owner", time.Now(), nil))

	grants, err := repo.ListClassGrantsByFile(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.NotNil(t, grants[0].ClassID)
	assert.Equal(t, "c1", *grants[0].ClassID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryListRoleGrantsByFile(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM file_permissions WHERE file_id = $1 AND role = $2")).
		WithArgs("f1", models.RoleStudent).
		WillReturnRows(grantRows().AddRow("p1", "f1", "view", "school", nil, nil, "student", "owner", time.Now(), nil))

	grants, err := repo.ListRoleGrantsByFile(context.Background(), "f1", models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.NotNil(t, grants[0].Role)
	assert.Equal(t, models.RoleStudent, *grants[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryListDetailsByFile(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "file_id", "permission_level", "share_scope", "user_id", "class_id", "role", "granted_by", "granted_at", "expires_at", "recipient_name"}).
		AddRow("p1", "f1", "edit", "class", "u1", nil, nil, "owner", time.Now(), nil, "Student A").
		AddRow("p2", "f1", "view", "school", nil, nil, "student", "owner", time.Now(), nil, "")
	mock.ExpectQuery("LEFT JOIN app_users u ON u.id = p.user_id").
		WithArgs("f1").
		WillReturnRows(rows)

	details, err := repo.ListDetailsByFile(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Student A", details[0].RecipientName)
	assert.Empty(t, details[1].RecipientName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryListSharedWithUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "permission_level"}).
		AddRow("f2", "owner", "quiz.docx", time.Now(), "edit")
	mock.ExpectQuery("JOIN file_metadata f ON f.id = p.file_id").
		WithArgs("u1").
		WillReturnRows(rows)

	files, err := repo.ListSharedWithUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "quiz.docx", files[0].Name)
	assert.Equal(t, models.PermissionEdit, files[0].PermissionLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectExec("INSERT INTO file_permissions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID := "u1"
	grant := &models.PermissionGrant{
		FileID:          "f1",
		PermissionLevel: models.PermissionView,
		ShareScope:      models.ScopeClass,
		UserID:          &userID,
		GrantedBy:       "owner",
	}
	require.NoError(t, repo.Create(context.Background(), grant))
	assert.NotEmpty(t, grant.ID)
	assert.False(t, grant.GrantedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM file_permissions WHERE id = $1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryDeleteExpired(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM file_permissions WHERE expires_at IS NOT NULL AND expires_at <= $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
