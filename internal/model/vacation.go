package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrVacationRange 结束日期早于开始日期
var ErrVacationRange = errors.New("休假结束日期不能早于开始日期")

// VacationStatus 休假状态
type VacationStatus string

const (
	VacationPending   VacationStatus = "PENDING"
	VacationApproved  VacationStatus = "APPROVED"
	VacationDenied    VacationStatus = "DENIED"
	VacationCancelled VacationStatus = "CANCELLED"
)

// DealerVacation 荷官休假，对应 dealer_vacations
type DealerVacation struct {
	VacationID string         `gorm:"type:uuid;primaryKey"                               json:"vacation_id"`
	UserID     string         `gorm:"type:uuid;not null;index"                           json:"user_id"`
	StartDate  time.Time      `gorm:"type:date;not null;index"                           json:"start_date"`
	EndDate    time.Time      `gorm:"type:date;not null;check:chk_vacation_range,end_date >= start_date" json:"end_date"`
	Status     VacationStatus `gorm:"type:varchar(10);not null;default:'PENDING';index"  json:"status"`
	Notes      string         `gorm:"type:text"                                          json:"notes"`
	ApprovedBy *string        `gorm:"type:uuid"                                          json:"approved_by,omitempty"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
	VersionedModel

	User *User `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName 指定表名
func (DealerVacation) TableName() string { return "dealer_vacations" }

// Covers 休假区间是否包含 date（闭区间）
func (v *DealerVacation) Covers(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(v.StartDate)) && !d.After(DateOf(v.EndDate))
}

// BeforeCreate 生成主键
func (v *DealerVacation) BeforeCreate(_ *gorm.DB) error {
	if v.VacationID == "" {
		v.VacationID = newID()
	}
	return nil
}

// BeforeSave 持久化前校验日期区间
func (v *DealerVacation) BeforeSave(_ *gorm.DB) error {
	if DateOf(v.EndDate).Before(DateOf(v.StartDate)) {
		return ErrVacationRange
	}
	return nil
}
