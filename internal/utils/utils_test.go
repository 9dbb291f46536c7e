package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"viksitkanpur/internal/models/records"
)

func TestLevelOf(t *testing.T) {
	assert.Equal(t, 1, LevelOf(records.RoleDistrictMagistrate))
	assert.Equal(t, 3, LevelOf(records.RoleFieldWorker))
	assert.Equal(t, 4, LevelOf(records.Role("unknown")))
}

func TestGetCurrentProtocolAndHost(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "http://dash.local/x", nil)
	assert.Equal(t, "http://dash.local", GetCurrentProtocolAndHost(c))

	c.Request.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://dash.local", GetCurrentProtocolAndHost(c))
}
