package dto

import (
	"time"

	"viksitkanpur/internal/gateway"
	"viksitkanpur/internal/pipeline"
	"viksitkanpur/internal/refresh"
)

// LangQuery is the optional ?lang= override shared by the read endpoints.
type LangQuery struct {
	Lang  string `form:"lang" binding:"omitempty,ui_lang" example:"hi"`
	Fresh bool   `form:"fresh" example:"false"`
}

// FeedQuery pages the activity and notification feeds.
type FeedQuery struct {
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100" example:"10"`
	Lang  string `form:"lang" binding:"omitempty,ui_lang" example:"en"`
}

// HistoryQuery filters the snapshot archive.
type HistoryQuery struct {
	Since time.Time `form:"since" time_format:"2006-01-02" example:"2025-01-01"`
	Limit int       `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
}

// SectionResponse is a single dashboard breakdown.
type SectionResponse struct {
	Section     string            `json:"section" example:"wards"`
	Language    string            `json:"language" example:"en"`
	Source      pipeline.Source   `json:"source" example:"live"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Failures    []gateway.Failure `json:"failures"`
	Data        interface{}       `json:"data"`
}

// HistoryResponse lists archived snapshots.
type HistoryResponse struct {
	Count   int                      `json:"count" example:"2"`
	Records []pipeline.ArchiveRecord `json:"records"`
}

// ============================================
// REFRESH DTOs
// ============================================

// AutoRefreshRequest turns the periodic refresh of the session on or off.
type AutoRefreshRequest struct {
	Enabled *bool `json:"enabled" binding:"required" example:"true"`
}

// RealtimeResponse is the rolling chart of the last refresh ticks.
type RealtimeResponse struct {
	Running  bool             `json:"running" example:"true"`
	Interval string           `json:"interval" example:"1m0s"`
	Samples  []refresh.Sample `json:"samples"`
}
