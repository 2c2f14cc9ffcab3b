package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TokePeriod 小费池周期，对应 toke_periods
// 每个赌场每个日历日一条；Finalized 只能由 false 变为 true
type TokePeriod struct {
	TokePeriodID    string           `gorm:"type:uuid;primaryKey"                                   json:"toke_period_id"`
	CasinoID        string           `gorm:"type:uuid;not null;uniqueIndex:uk_toke_periods_casino_date" json:"casino_id"`
	PeriodDate      time.Time        `gorm:"type:date;not null;uniqueIndex:uk_toke_periods_casino_date" json:"period_date"`
	PoolAmount      *decimal.Decimal `gorm:"type:decimal(12,2)"                                     json:"pool_amount"`
	PerHourRate     *decimal.Decimal `gorm:"type:decimal(20,10)"                                     json:"per_hour_rate"`
	IsCollectionDay bool             `gorm:"not null"                                               json:"is_collection_day"`
	Finalized       bool             `gorm:"not null;default:false"                                 json:"finalized"`
	FinalizedBy     *string          `gorm:"type:uuid"                                              json:"finalized_by,omitempty"`
	FinalizedAt     *time.Time       `json:"finalized_at,omitempty"`
	VersionedModel

	SignOffs []TokeSignOff `gorm:"foreignKey:TokePeriodID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (TokePeriod) TableName() string { return "toke_periods" }

// BeforeCreate 生成主键
func (p *TokePeriod) BeforeCreate(_ *gorm.DB) error {
	if p.TokePeriodID == "" {
		p.TokePeriodID = newID()
	}
	return nil
}

// PeriodState 周期状态
type PeriodState string

const (
	PeriodOpen      PeriodState = "OPEN"
	PeriodPoolSet   PeriodState = "POOL_SET"
	PeriodFinalized PeriodState = "FINALIZED"
)

// State 由字段推导周期状态
func (p *TokePeriod) State() PeriodState {
	switch {
	case p.Finalized:
		return PeriodFinalized
	case p.PoolAmount != nil:
		return PeriodPoolSet
	default:
		return PeriodOpen
	}
}

// TokeSignOff 工时签到，对应 toke_sign_offs
// (user_id, toke_period_id) 唯一；OriginalHours 创建后不再修改
type TokeSignOff struct {
	SignOffID      string           `gorm:"type:uuid;primaryKey"                                        json:"sign_off_id"`
	UserID         string           `gorm:"type:uuid;not null;uniqueIndex:uk_sign_offs_user_period"     json:"user_id"`
	TokePeriodID   string           `gorm:"type:uuid;not null;uniqueIndex:uk_sign_offs_user_period;index" json:"toke_period_id"`
	ScheduledHours decimal.Decimal  `gorm:"type:decimal(5,2);not null"                                  json:"scheduled_hours"`
	ActualHours    *decimal.Decimal `gorm:"type:decimal(5,2)"                                           json:"actual_hours"`
	OriginalHours  decimal.Decimal  `gorm:"type:decimal(5,2);not null"                                  json:"original_hours"`
	TokeHours      *decimal.Decimal `gorm:"type:decimal(5,2)"                                           json:"toke_hours"`
	ShiftDate      time.Time        `gorm:"type:date;not null"                                          json:"shift_date"`
	ShiftStart     *string          `gorm:"type:varchar(8)"                                             json:"shift_start"`
	ShiftEnd       *string          `gorm:"type:varchar(8)"                                             json:"shift_end"`
	SignedAt       time.Time        `gorm:"not null"                                                    json:"signed_at"`
	VersionedModel

	User *User `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName 指定表名
func (TokeSignOff) TableName() string { return "toke_sign_offs" }

// BeforeCreate 生成主键
func (s *TokeSignOff) BeforeCreate(_ *gorm.DB) error {
	if s.SignOffID == "" {
		s.SignOffID = newID()
	}
	return nil
}
