package dto

import "github.com/shopspring/decimal"

// ── 提前下班模块 DTO ──

// CreateEarlyOutRequest 提前下班申请
type CreateEarlyOutRequest struct {
	PitNumber   string  `json:"pit_number"   binding:"max=10"`
	TableNumber *string `json:"table_number" binding:"omitempty,max=10"`
	Reason      string  `json:"reason"       binding:"omitempty,oneof=REGULAR SICK FMLA ADA"`
}

// AuthorizeEarlyOutRequest 批准提前下班
type AuthorizeEarlyOutRequest struct {
	HoursWorked *decimal.Decimal `json:"hours_worked"`
}

// EarlyOutListRequest 当日列表查询参数
type EarlyOutListRequest struct {
	ListType        string `form:"list_type"        binding:"omitempty,oneof=DEALER SUPERVISOR"`
	IncludeApproved bool   `form:"include_approved"`
	Status          string `form:"status"           binding:"omitempty,oneof=PENDING APPROVED DENIED REMOVED"`
}

// EarlyOutResponse 提前下班申请
type EarlyOutResponse struct {
	ID           string    `json:"id"`
	User         UserBrief `json:"user"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason"`
	PitNumber    string    `json:"pit_number"`
	TableNumber  *string   `json:"table_number,omitempty"`
	RequestDate  string    `json:"request_date"`
	SignOffID    *string   `json:"sign_off_id,omitempty"`
	AuthorizedBy *string   `json:"authorized_by,omitempty"`
	HoursWorked  *string   `json:"hours_worked,omitempty"`
	ProcessedAt  string    `json:"processed_at,omitempty"`
	CreatedAt    string    `json:"created_at"`
}
