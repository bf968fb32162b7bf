package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sallvainian/teaching-tools-api/internal/middleware"
	"github.com/Sallvainian/teaching-tools-api/internal/models"
	"github.com/Sallvainian/teaching-tools-api/internal/service"
	appErrors "github.com/Sallvainian/teaching-tools-api/pkg/errors"
)

type sharingServiceMock struct {
	effective models.EffectivePermission
	grant     *models.PermissionGrant
	shareErr  error
	details   []models.PermissionGrantDetail
	removeErr error
	classes   []models.ClassContext
	classErr  error
	shared    []models.SharedFile
	sharedErr error
	payload   []byte
	mime      string
	exportErr error

	lastShareReq  service.ShareFileRequest
	lastRemovedID string
	lastUserID    string
}

func (m *sharingServiceMock) GetEffectivePermission(ctx context.Context, fileID, userID string) models.EffectivePermission {
	m.lastUserID = userID
	return m.effective
}

func (m *sharingServiceMock) ShareFile(ctx context.Context, req service.ShareFileRequest, currentUserID string) (*models.PermissionGrant, error) {
	m.lastShareReq = req
	m.lastUserID = currentUserID
	return m.grant, m.shareErr
}

func (m *sharingServiceMock) GetFilePermissions(ctx context.Context, fileID string) []models.PermissionGrantDetail {
	return m.details
}

func (m *sharingServiceMock) RemovePermission(ctx context.Context, permissionID, currentUserID string) error {
	m.lastRemovedID = permissionID
	m.lastUserID = currentUserID
	return m.removeErr
}

func (m *sharingServiceMock) GetAvailableClasses(ctx context.Context, userID string) ([]models.ClassContext, error) {
	return m.classes, m.classErr
}

func (m *sharingServiceMock) GetSharedWithUser(ctx context.Context, userID string) ([]models.SharedFile, error) {
	return m.shared, m.sharedErr
}

func (m *sharingServiceMock) ExportFilePermissions(ctx context.Context, fileID, currentUserID, format string) ([]byte, string, error) {
	return m.payload, m.mime, m.exportErr
}

func newSharingTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != nil {
		reader = bytes.NewBuffer(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher})
	return c, w
}

func TestSharingHandlerMyPermission(t *testing.T) {
	mockSvc := &sharingServiceMock{effective: models.EffectivePermission{
		FileID: "f1", Level: models.PermissionOwner,
		Capabilities: models.PermissionOwner.Capabilities(),
	}}
	handler := NewSharingHandler(mockSvc)

	c, w := newSharingTestContext(t, http.MethodGet, "/files/f1/permission", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.MyPermission(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", mockSvc.lastUserID)

	var envelope struct {
		Data models.EffectivePermission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.PermissionOwner, envelope.Data.Level)
}

func TestSharingHandlerMyPermissionNoClaims(t *testing.T) {
	handler := NewSharingHandler(&sharingServiceMock{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/files/f1/permission", nil)
	c.Request = req

	handler.MyPermission(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSharingHandlerShare(t *testing.T) {
	userID := "student"
	mockSvc := &sharingServiceMock{grant: &models.PermissionGrant{ID: "p1", FileID: "f1", UserID: &userID}}
	handler := NewSharingHandler(mockSvc)

	body, _ := json.Marshal(map[string]interface{}{
		"permission_level": "edit",
		"share_scope":      "class",
		"shared_with_type": "user",
		"shared_with_id":   "student",
	})
	c, w := newSharingTestContext(t, http.MethodPost, "/files/f1/share", body)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.Share(c)
	require.Equal(t, http.StatusCreated, w.Code)
	// The file ID comes from the path, not the body.
	assert.Equal(t, "f1", mockSvc.lastShareReq.FileID)
	assert.Equal(t, models.PermissionEdit, mockSvc.lastShareReq.PermissionLevel)
	assert.Equal(t, "u1", mockSvc.lastUserID)
}

func TestSharingHandlerShareInvalidBody(t *testing.T) {
	handler := NewSharingHandler(&sharingServiceMock{})

	c, w := newSharingTestContext(t, http.MethodPost, "/files/f1/share", []byte(`{"permission_level":`))
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.Share(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSharingHandlerShareForbidden(t *testing.T) {
	mockSvc := &sharingServiceMock{shareErr: appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to share this file")}
	handler := NewSharingHandler(mockSvc)

	body, _ := json.Marshal(map[string]interface{}{
		"permission_level": "view",
		"share_scope":      "class",
		"shared_with_type": "user",
		"shared_with_id":   "student",
	})
	c, w := newSharingTestContext(t, http.MethodPost, "/files/f1/share", body)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.Share(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSharingHandlerList(t *testing.T) {
	userID := "student"
	mockSvc := &sharingServiceMock{details: []models.PermissionGrantDetail{
		{PermissionGrant: models.PermissionGrant{ID: "p1", FileID: "f1", UserID: &userID}, RecipientName: "Student A"},
	}}
	handler := NewSharingHandler(mockSvc)

	c, w := newSharingTestContext(t, http.MethodGet, "/files/f1/permissions", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.PermissionGrantDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Student A", envelope.Data[0].RecipientName)
}

func TestSharingHandlerExport(t *testing.T) {
	mockSvc := &sharingServiceMock{payload: []byte("Recipient,Type\n"), mime: "text/csv"}
	handler := NewSharingHandler(mockSvc)

	c, w := newSharingTestContext(t, http.MethodGet, "/files/f1/permissions/export?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sharing-f1.csv")
	assert.Equal(t, "Recipient,Type\n", w.Body.String())
}

func TestSharingHandlerRemove(t *testing.T) {
	mockSvc := &sharingServiceMock{}
	handler := NewSharingHandler(mockSvc)

	c, w := newSharingTestContext(t, http.MethodDelete, "/permissions/p1", nil)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}

	handler.Remove(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "p1", mockSvc.lastRemovedID)
}

func TestSharingHandlerRemoveNotFound(t *testing.T) {
	mockSvc := &sharingServiceMock{removeErr: appErrors.Clone(appErrors.ErrNotFound, "Permission not found")}
	handler := NewSharingHandler(mockSvc)

	c, w := newSharingTestContext(t, http.MethodDelete, "/permissions/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Remove(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSharingHandlerSharedWithMe(t *testing.T) {
	mockSvc := &sharingServiceMock{shared: []models.SharedFile{
		{FileRecord: models.FileRecord{ID: "f2", Name: "quiz.docx"}, PermissionLevel: models.PermissionEdit},
	}}
	handler := NewSharingHandler(mockSvc)

	c, w := newSharingTestContext(t, http.MethodGet, "/shared-with-me", nil)

	handler.SharedWithMe(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.SharedFile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "quiz.docx", envelope.Data[0].Name)
}

func TestSharingHandlerAvailableClasses(t *testing.T) {
	mockSvc := &sharingServiceMock{classes: []models.ClassContext{{ID: "c1", Name: "Physics", StudentCount: 24}}}
	handler := NewSharingHandler(mockSvc)

	c, w := newSharingTestContext(t, http.MethodGet, "/classes/available", nil)

	handler.AvailableClasses(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.ClassContext `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, 24, envelope.Data[0].StudentCount)
}
