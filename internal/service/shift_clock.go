package service

import (
	"time"

	"tokebook/internal/model"
)

// Shift 班次
type Shift string

const (
	ShiftDay   Shift = "day"
	ShiftSwing Shift = "swing"
	ShiftGrave Shift = "grave"
)

// clockLayouts 班次边界允许的格式
var clockLayouts = []string{"15:04", "15:04:05"}

// parseClock 解析 HH:MM / HH:MM:SS，返回自零点起的分钟数
func parseClock(s string) (int, bool) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// inWindow 判断 minute 是否落在 [start, end) 内
// 只接受正向区间，边界非法或 start >= end 时一律不命中
func inWindow(minute int, start, end string) bool {
	s, ok1 := parseClock(start)
	e, ok2 := parseClock(end)
	if !ok1 || !ok2 || s >= e {
		return false
	}
	return minute >= s && minute < e
}

// CurrentShift 计算赌场在 instant 时刻所处的班次
// instant 应已转换到赌场所在时区；白班与夜班按正向区间判断，其余时间归中班
func CurrentShift(casino *model.Casino, instant time.Time) Shift {
	minute := instant.Hour()*60 + instant.Minute()

	switch {
	case inWindow(minute, casino.DayStart, casino.DayEnd):
		return ShiftDay
	case inWindow(minute, casino.GraveStart, casino.GraveEnd):
		return ShiftGrave
	default:
		return ShiftSwing
	}
}
