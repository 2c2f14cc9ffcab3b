package model

import "gorm.io/gorm"

// Casino 赌场表，对应 casinos
// 六个班次边界均为 "HH:MM"，夜班可跨越午夜
type Casino struct {
	CasinoID   string `gorm:"type:uuid;primaryKey"                    json:"casino_id"`
	Name       string `gorm:"type:varchar(100);not null;uniqueIndex"  json:"name"`
	GraveStart string `gorm:"type:varchar(5);not null;default:'01:30'" json:"grave_start"`
	GraveEnd   string `gorm:"type:varchar(5);not null;default:'09:30'" json:"grave_end"`
	DayStart   string `gorm:"type:varchar(5);not null;default:'09:30'" json:"day_start"`
	DayEnd     string `gorm:"type:varchar(5);not null;default:'17:30'" json:"day_end"`
	SwingStart string `gorm:"type:varchar(5);not null;default:'17:30'" json:"swing_start"`
	SwingEnd   string `gorm:"type:varchar(5);not null;default:'01:30'" json:"swing_end"`
	BaseModel
}

// TableName 指定表名
func (Casino) TableName() string { return "casinos" }

// BeforeCreate 生成主键
func (c *Casino) BeforeCreate(_ *gorm.DB) error {
	if c.CasinoID == "" {
		c.CasinoID = newID()
	}
	return nil
}

// 默认班次边界
const (
	DefaultGraveStart = "01:30"
	DefaultGraveEnd   = "09:30"
	DefaultDayStart   = "09:30"
	DefaultDayEnd     = "17:30"
	DefaultSwingStart = "17:30"
	DefaultSwingEnd   = "01:30"
)
