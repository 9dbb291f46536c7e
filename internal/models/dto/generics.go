// Package dto contains Data Transfer Objects for API responses
package dto

import (
	"time"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/utils"
)

// BaseResponse holds the fields every response carries
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// SuccessResponse is the envelope of a successful call
type SuccessResponse struct {
	BaseResponse
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the envelope of a failed call
type ErrorResponse struct {
	BaseResponse
	Error   string      `json:"error"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// HealthResponse is the healthcheck body
type HealthResponse struct {
	BaseResponse
	Status  string            `json:"status" example:"OK"`
	Service string            `json:"service" example:"viksitkanpur-api"`
	Version string            `json:"version" example:"1.0.0"`
	Uptime  string            `json:"uptime,omitempty" example:"1h30m45s"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AuthErrorResponse is returned for missing or invalid credentials
type AuthErrorResponse struct {
	BaseResponse
	Error    string `json:"error" example:"unauthorized"`
	Code     int    `json:"code" example:"401"`
	Message  string `json:"message" example:"Invalid or expired session"`
	LoginURL string `json:"login_url,omitempty" example:"/auth/session"`
}

// RateLimitErrorResponse is returned when a client exceeds its quota
type RateLimitErrorResponse struct {
	BaseResponse
	Error      string    `json:"error" example:"rate_limit_exceeded"`
	Code       int       `json:"code" example:"429"`
	Message    string    `json:"message" example:"Request limit exceeded"`
	RetryAfter string    `json:"retry_after" example:"60s"`
	Limit      int       `json:"limit" example:"120"`
	Remaining  int       `json:"remaining" example:"0"`
	ResetTime  time.Time `json:"reset_time" example:"2025-01-01T12:01:00Z"`
}

func base(c *gin.Context, success bool) BaseResponse {
	return BaseResponse{
		Success:   success,
		Timestamp: time.Now().UTC(),
		RequestID: getRequestID(c),
	}
}

// NewSuccessResponse builds a success envelope
func NewSuccessResponse(c *gin.Context, data interface{}, message string) SuccessResponse {
	return SuccessResponse{
		BaseResponse: base(c, true),
		Data:         data,
		Message:      message,
	}
}

// NewErrorResponse builds an error envelope
func NewErrorResponse(c *gin.Context, code int, error string, message string, details interface{}) ErrorResponse {
	return ErrorResponse{
		BaseResponse: base(c, false),
		Error:        error,
		Code:         code,
		Message:      message,
		Details:      details,
	}
}

// NewHealthResponse builds the healthcheck body
func NewHealthResponse(c *gin.Context, status, service, version, uptime string, checks map[string]string) HealthResponse {
	return HealthResponse{
		BaseResponse: base(c, status == "OK"),
		Status:       status,
		Service:      service,
		Version:      version,
		Uptime:       uptime,
		Checks:       checks,
	}
}

// NewAuthErrorResponse builds a 401 body
func NewAuthErrorResponse(c *gin.Context, message string) AuthErrorResponse {
	return AuthErrorResponse{
		BaseResponse: base(c, false),
		Error:        "unauthorized",
		Code:         401,
		Message:      message,
		LoginURL:     utils.GetCurrentProtocolAndHost(c) + "/auth/session",
	}
}

// NewRateLimitErrorResponse builds a 429 body
func NewRateLimitErrorResponse(c *gin.Context, retryAfter string, limit, remaining int, resetTime time.Time) RateLimitErrorResponse {
	return RateLimitErrorResponse{
		BaseResponse: base(c, false),
		Error:        "rate_limit_exceeded",
		Code:         429,
		Message:      "Request limit exceeded",
		RetryAfter:   retryAfter,
		Limit:        limit,
		Remaining:    remaining,
		ResetTime:    resetTime,
	}
}

// getRequestID extracts the request id set by the id middleware
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
