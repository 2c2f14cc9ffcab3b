package dto

// ── 赌场模块 DTO ──

// CasinoRequest 创建 / 更新赌场请求
// 班次边界为空时使用默认值
type CasinoRequest struct {
	Name       string `json:"name"        binding:"required,max=100"`
	GraveStart string `json:"grave_start" binding:"omitempty"`
	GraveEnd   string `json:"grave_end"   binding:"omitempty"`
	DayStart   string `json:"day_start"   binding:"omitempty"`
	DayEnd     string `json:"day_end"     binding:"omitempty"`
	SwingStart string `json:"swing_start" binding:"omitempty"`
	SwingEnd   string `json:"swing_end"   binding:"omitempty"`
}

// CasinoResponse 赌场信息
type CasinoResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	GraveStart string `json:"grave_start"`
	GraveEnd   string `json:"grave_end"`
	DayStart   string `json:"day_start"`
	DayEnd     string `json:"day_end"`
	SwingStart string `json:"swing_start"`
	SwingEnd   string `json:"swing_end"`
}

// CurrentShiftResponse 当前班次
type CurrentShiftResponse struct {
	CasinoID string `json:"casino_id"`
	Shift    string `json:"shift"`
	At       string `json:"at"`
}
