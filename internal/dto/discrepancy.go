package dto

// ── 差异模块 DTO ──

// ReportDiscrepancyRequest 上报差异
type ReportDiscrepancyRequest struct {
	Description  string  `json:"description"    binding:"required,max=2000"`
	TokePeriodID *string `json:"toke_period_id" binding:"omitempty,uuid"`
}

// VerifyDiscrepancyRequest 核实差异
type VerifyDiscrepancyRequest struct {
	Outcome string `json:"outcome" binding:"omitempty"`
	Notes   string `json:"notes"   binding:"max=2000"`
}

// ResolveDiscrepancyRequest 处理差异
type ResolveDiscrepancyRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// DiscrepancyListRequest 差异列表查询参数
type DiscrepancyListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=PENDING VERIFIED RESOLVED"`
}

// DiscrepancyResponse 差异记录
type DiscrepancyResponse struct {
	ID                string  `json:"id"`
	ReportedBy        string  `json:"reported_by"`
	CasinoID          string  `json:"casino_id"`
	TokePeriodID      *string `json:"toke_period_id,omitempty"`
	Description       string  `json:"description"`
	Status            string  `json:"status"`
	VerifiedBy        *string `json:"verified_by,omitempty"`
	VerifiedAt        string  `json:"verified_at,omitempty"`
	VerificationNotes string  `json:"verification_notes"`
	ResolvedBy        *string `json:"resolved_by,omitempty"`
	ResolvedAt        string  `json:"resolved_at,omitempty"`
	ResolutionNotes   string  `json:"resolution_notes"`
	CreatedAt         string  `json:"created_at"`
}
