package dto

// ── 休假模块 DTO ──

// CreateVacationRequest 休假申请
type CreateVacationRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date"   binding:"required"`
	Notes     string `json:"notes"      binding:"max=500"`
}

// VacationListRequest 休假列表查询参数
type VacationListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED DENIED CANCELLED"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// VacationResponse 休假记录
type VacationResponse struct {
	ID         string    `json:"id"`
	User       UserBrief `json:"user"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Days       int       `json:"days"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes"`
	ApprovedBy *string   `json:"approved_by,omitempty"`
	ApprovedAt string    `json:"approved_at,omitempty"`
	CreatedAt  string    `json:"created_at"`
}

// VacationMonthGroup 按月份分组的休假历史
type VacationMonthGroup struct {
	Month     string             `json:"month"` // YYYY-MM
	Vacations []VacationResponse `json:"vacations"`
}

// MonthlyReportRequest 月度休假报表查询参数
type MonthlyReportRequest struct {
	Year  int `form:"year"  binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}
