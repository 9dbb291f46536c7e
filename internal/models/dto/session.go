package dto

import (
	"time"

	"viksitkanpur/internal/session"
)

// ============================================
// SESSION REQUEST DTOs
// ============================================

// LoginRequest carries the upstream credentials the dashboard obtained when
// signing in against the complaint backend.
type LoginRequest struct {
	Token    string `json:"token" binding:"required" example:"eyJhbGciOi..."`
	UserID   string `json:"userId" binding:"required,max=128" example:"u-1024"`
	Name     string `json:"name" binding:"omitempty,max=200" example:"Asha Verma"`
	Role     string `json:"role" binding:"omitempty,oneof=citizen field_worker department_head district_magistrate general" example:"department_head" enums:"citizen,field_worker,department_head,district_magistrate,general"`
	Language string `json:"language" binding:"omitempty,ui_lang" example:"hi" enums:"en,hi"`
}

// LanguageRequest switches the session language.
type LanguageRequest struct {
	Language string `json:"language" binding:"required,ui_lang" example:"hi" enums:"en,hi"`
}

// ============================================
// SESSION RESPONSE DTOs
// ============================================

// SessionView is the public part of a session; the upstream token stays on
// the server.
type SessionView struct {
	ID        string    `json:"id" example:"7f0c4f5e-3d0e-4c5b-8a53-6e1e4d0a1b2c"`
	UserID    string    `json:"userId" example:"u-1024"`
	Name      string    `json:"name,omitempty" example:"Asha Verma"`
	Role      string    `json:"role" example:"department_head"`
	Language  string    `json:"language" example:"hi"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string      `json:"token" example:"eyJhbGciOi..."`
	ExpiresAt time.Time   `json:"expiresAt"`
	Session   SessionView `json:"session"`
}

// NewSessionView strips sess down to what clients may see.
func NewSessionView(sess session.Session) SessionView {
	return SessionView{
		ID:        sess.ID,
		UserID:    sess.UserID,
		Name:      sess.Name,
		Role:      string(sess.Role),
		Language:  string(sess.Language),
		CreatedAt: sess.CreatedAt,
	}
}
