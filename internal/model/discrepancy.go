package model

import (
	"time"

	"gorm.io/gorm"
)

// DiscrepancyStatus 差异单状态，只能单向推进
type DiscrepancyStatus string

const (
	DiscrepancyPending  DiscrepancyStatus = "PENDING"
	DiscrepancyVerified DiscrepancyStatus = "VERIFIED"
	DiscrepancyResolved DiscrepancyStatus = "RESOLVED"
)

// Discrepancy 小费清点差异，对应 discrepancies
type Discrepancy struct {
	DiscrepancyID     string            `gorm:"type:uuid;primaryKey"                              json:"discrepancy_id"`
	ReportedBy        string            `gorm:"type:uuid;not null;index"                          json:"reported_by"`
	CasinoID          string            `gorm:"type:uuid;index"                                   json:"casino_id"`
	TokePeriodID      *string           `gorm:"type:uuid;index"                                   json:"toke_period_id,omitempty"`
	Description       string            `gorm:"type:text;not null"                                json:"description"`
	Status            DiscrepancyStatus `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
	VerifiedBy        *string           `gorm:"type:uuid"                                         json:"verified_by,omitempty"`
	VerifiedAt        *time.Time        `json:"verified_at,omitempty"`
	VerificationNotes string            `gorm:"type:text"                                         json:"verification_notes"`
	ResolvedBy        *string           `gorm:"type:uuid"                                         json:"resolved_by,omitempty"`
	ResolvedAt        *time.Time        `json:"resolved_at,omitempty"`
	ResolutionNotes   string            `gorm:"type:text"                                         json:"resolution_notes"`
	VersionedModel
}

// TableName 指定表名
func (Discrepancy) TableName() string { return "discrepancies" }

// BeforeCreate 生成主键
func (d *Discrepancy) BeforeCreate(_ *gorm.DB) error {
	if d.DiscrepancyID == "" {
		d.DiscrepancyID = newID()
	}
	return nil
}
