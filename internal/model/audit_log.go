package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog 审计日志，对应 audit_logs（只追加）
type AuditLog struct {
	AuditLogID string         `gorm:"type:uuid;primaryKey"          json:"audit_log_id"`
	UserID     *string        `gorm:"type:uuid;index"               json:"user_id,omitempty"`
	CasinoID   *string        `gorm:"type:uuid"                     json:"casino_id,omitempty"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	ModelName  string         `gorm:"type:varchar(50);not null"     json:"model_name"`
	RecordID   string         `gorm:"type:varchar(64);not null"     json:"record_id"`
	Details    datatypes.JSON `gorm:"type:jsonb"                    json:"details"`
	IPAddress  string         `gorm:"type:varchar(45)"              json:"ip_address"`
	UserAgent  string         `gorm:"type:varchar(255)"             json:"user_agent"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }

// BeforeCreate 生成主键
func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.AuditLogID == "" {
		a.AuditLogID = newID()
	}
	return nil
}
