package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grantPurgerMock struct {
	removed int64
	err     error
}

func (m *grantPurgerMock) PurgeExpiredGrants(ctx context.Context) (int64, error) {
	return m.removed, m.err
}

func TestMaintenanceHandlerPurgeExpired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMaintenanceHandler(&grantPurgerMock{removed: 3}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/maintenance/purge-expired", nil)
	c.Request = req

	handler.PurgeExpired(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":3`)
}

func TestMaintenanceHandlerPurgeExpiredFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMaintenanceHandler(&grantPurgerMock{err: errors.New("delete failed")}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/maintenance/purge-expired", nil)
	c.Request = req

	handler.PurgeExpired(c)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
