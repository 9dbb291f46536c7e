package utils

import (
	"github.com/gin-gonic/gin"
)

// GetCurrentProtocolAndHost returns the current protocol and host
func GetCurrentProtocolAndHost(c *gin.Context) string {
	protocol := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		protocol = "https"
	}
	return protocol + "://" + c.Request.Host
}

// ClientInfo returns the caller IP and user agent for audit records
func ClientInfo(c *gin.Context) (ip, userAgent string) {
	return c.ClientIP(), c.Request.UserAgent()
}
