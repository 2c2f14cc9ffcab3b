package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EarlyOutStatus 提前下班申请状态
type EarlyOutStatus string

const (
	EarlyOutPending  EarlyOutStatus = "PENDING"
	EarlyOutApproved EarlyOutStatus = "APPROVED"
	EarlyOutDenied   EarlyOutStatus = "DENIED"
	EarlyOutRemoved  EarlyOutStatus = "REMOVED"
)

// Active PENDING / APPROVED 视为有效申请
func (s EarlyOutStatus) Active() bool {
	return s == EarlyOutPending || s == EarlyOutApproved
}

// EarlyOutReason 提前下班原因
type EarlyOutReason string

const (
	ReasonRegular EarlyOutReason = "REGULAR"
	ReasonSick    EarlyOutReason = "SICK"
	ReasonFMLA    EarlyOutReason = "FMLA"
	ReasonADA     EarlyOutReason = "ADA"
)

// Valid 是否为合法原因
func (r EarlyOutReason) Valid() bool {
	switch r {
	case ReasonRegular, ReasonSick, ReasonFMLA, ReasonADA:
		return true
	}
	return false
}

// EarlyOutRequest 提前下班申请，对应 early_out_requests
// ActiveDate 仅在 PENDING / APPROVED 时等于 RequestDate，终态清空；
// (user_id, active_date) 唯一索引保证每人每天至多一条有效申请
type EarlyOutRequest struct {
	EarlyOutID   string           `gorm:"type:uuid;primaryKey"                                 json:"early_out_id"`
	UserID       string           `gorm:"type:uuid;not null;uniqueIndex:uk_early_outs_user_active;index" json:"user_id"`
	Status       EarlyOutStatus   `gorm:"type:varchar(10);not null;default:'PENDING'"          json:"status"`
	Reason       EarlyOutReason   `gorm:"type:varchar(10);not null;default:'REGULAR'"          json:"reason"`
	PitNumber    string           `gorm:"type:varchar(10);not null"                            json:"pit_number"`
	TableNumber  *string          `gorm:"type:varchar(10)"                                     json:"table_number,omitempty"`
	RequestDate  time.Time        `gorm:"type:date;not null;index"                             json:"request_date"`
	ActiveDate   *time.Time       `gorm:"type:date;uniqueIndex:uk_early_outs_user_active"      json:"-"`
	SignOffID    *string          `gorm:"type:uuid"                                            json:"sign_off_id,omitempty"`
	AuthorizedBy *string          `gorm:"type:uuid"                                            json:"authorized_by,omitempty"`
	HoursWorked  *decimal.Decimal `gorm:"type:decimal(5,2)"                                    json:"hours_worked,omitempty"`
	ProcessedAt  *time.Time       `json:"processed_at,omitempty"`
	VersionedModel

	User    *User        `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	SignOff *TokeSignOff `gorm:"foreignKey:SignOffID;references:SignOffID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName 指定表名
func (EarlyOutRequest) TableName() string { return "early_out_requests" }

// BeforeCreate 生成主键
func (e *EarlyOutRequest) BeforeCreate(_ *gorm.DB) error {
	if e.EarlyOutID == "" {
		e.EarlyOutID = newID()
	}
	return nil
}
