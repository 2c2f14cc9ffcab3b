package dto

import "encoding/json"

// AuditLogListRequest 审计日志查询参数
type AuditLogListRequest struct {
	PaginationRequest
	UserID    string `form:"user_id"    binding:"omitempty,uuid"`
	Action    string `form:"action"     binding:"omitempty,max=50"`
	ModelName string `form:"model_name" binding:"omitempty,max=50"`
	RecordID  string `form:"record_id"  binding:"omitempty,max=64"`
}

// AuditLogResponse 审计日志
type AuditLogResponse struct {
	ID        string          `json:"id"`
	UserID    *string         `json:"user_id,omitempty"`
	CasinoID  *string         `json:"casino_id,omitempty"`
	Action    string          `json:"action"`
	ModelName string          `json:"model_name"`
	RecordID  string          `json:"record_id"`
	Details   json.RawMessage `json:"details,omitempty"`
	IPAddress string          `json:"ip_address"`
	UserAgent string          `json:"user_agent"`
	CreatedAt string          `json:"created_at"`
}
