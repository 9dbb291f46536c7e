package entities

import "time"

// SessionAuditLog is one dashboard login or logout
type SessionAuditLog struct {
	Id           int       `json:"id" gorm:"column:Id;primaryKey;autoIncrement"`
	SessionId    string    `json:"sessionId" gorm:"column:SessionId;type:nvarchar(64);not null;index"`
	UserId       string    `json:"userId" gorm:"column:UserId;type:nvarchar(100);not null;index"`
	Role         string    `json:"role" gorm:"column:Role;type:nvarchar(50);not null"`
	Action       string    `json:"action" gorm:"column:Action;type:nvarchar(20);not null"`
	IPAddress    *string   `json:"ipAddress,omitempty" gorm:"column:IPAddress;type:nvarchar(50)"`
	UserAgent    *string   `json:"userAgent,omitempty" gorm:"column:UserAgent;type:nvarchar(500)"`
	Success      bool      `json:"success" gorm:"column:Success;type:bit;not null"`
	ErrorMessage *string   `json:"errorMessage,omitempty" gorm:"column:ErrorMessage;type:nvarchar(500)"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:CreatedAt;type:datetime2;not null"`
}

// TableName is the SQL Server table
func (SessionAuditLog) TableName() string {
	return "dbo.SessionAuditLogs"
}
