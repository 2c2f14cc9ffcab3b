package dto

import "github.com/shopspring/decimal"

// ── 小费池 / 签到模块 DTO ──

// SetPoolRequest 设置奖池金额
type SetPoolRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CreateSignOffRequest 签到请求
// ScheduledHours 为空时取配置的默认排班工时
type CreateSignOffRequest struct {
	TokePeriodID   string           `json:"toke_period_id"  binding:"required,uuid"`
	ScheduledHours *decimal.Decimal `json:"scheduled_hours"`
	ShiftStart     *string          `json:"shift_start"`
	ShiftEnd       *string          `json:"shift_end"`
	ShiftDate      string           `json:"shift_date"      binding:"required"`
}

// UpdateHoursRequest 调整实际工时
type UpdateHoursRequest struct {
	ActualHours *decimal.Decimal `json:"actual_hours"`
}

// PeriodListRequest 周期列表查询参数
type PeriodListRequest struct {
	PaginationRequest
}

// PeriodResponse 小费池周期
type PeriodResponse struct {
	ID              string  `json:"id"`
	CasinoID        string  `json:"casino_id"`
	Date            string  `json:"date"`
	State           string  `json:"state"`
	PoolAmount      *string `json:"pool_amount"`
	PerHourRate     *string `json:"per_hour_rate"`
	IsCollectionDay bool    `json:"is_collection_day"`
	Finalized       bool    `json:"finalized"`
	FinalizedBy     *string `json:"finalized_by,omitempty"`
	FinalizedAt     string  `json:"finalized_at,omitempty"`
	Version         int     `json:"version"`
}

// SetPoolResponse 设置奖池后的预览费率
// PreviewRate 为 nil 表示当前无可计入工时
type SetPoolResponse struct {
	Period      PeriodResponse `json:"period"`
	TotalHours  string         `json:"total_hours"`
	PreviewRate *string        `json:"preview_rate"`
}

// SignOffResponse 签到记录
type SignOffResponse struct {
	ID             string    `json:"id"`
	TokePeriodID   string    `json:"toke_period_id"`
	User           UserBrief `json:"user"`
	ScheduledHours string    `json:"scheduled_hours"`
	ActualHours    *string   `json:"actual_hours"`
	OriginalHours  string    `json:"original_hours"`
	TokeHours      *string   `json:"toke_hours"`
	ShiftDate      string    `json:"shift_date"`
	ShiftStart     *string   `json:"shift_start"`
	ShiftEnd       *string   `json:"shift_end"`
	SignedAt       string    `json:"signed_at"`
	Version        int       `json:"version"`
}

// RosterEntry 当日名册中的一行
// Kind 为 SIGN_OFF 时 SignOffID 非空；VACATION 为休假折算的整班工时
type RosterEntry struct {
	Kind           string    `json:"kind"`
	SignOffID      *string   `json:"sign_off_id,omitempty"`
	User           UserBrief `json:"user"`
	ScheduledHours string    `json:"scheduled_hours"`
	ActualHours    *string   `json:"actual_hours"`
	OriginalHours  string    `json:"original_hours"`
	TokeHours      *string   `json:"toke_hours"`
	ShiftStart     *string   `json:"shift_start"`
	ShiftEnd       *string   `json:"shift_end"`
	OnVacation     bool      `json:"on_vacation"`
	EarlyOutStatus *string   `json:"early_out_status"`
	Payout         *string   `json:"payout,omitempty"`
}

// PeriodSummary 名册汇总
type PeriodSummary struct {
	Headcount           int     `json:"headcount"`
	VacationCount       int     `json:"vacation_count"`
	EarlyOutCount       int     `json:"early_out_count"`
	TotalScheduledHours string  `json:"total_scheduled_hours"`
	TotalActualHours    string  `json:"total_actual_hours"`
	VacationHours       string  `json:"vacation_hours"`
	TotalPayout         *string `json:"total_payout,omitempty"`
}

// PeriodViewResponse 周期名册
type PeriodViewResponse struct {
	Period  PeriodResponse `json:"period"`
	Entries []RosterEntry  `json:"entries"`
	Summary PeriodSummary  `json:"summary"`
}
