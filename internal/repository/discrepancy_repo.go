package repository

import (
	"context"

	"gorm.io/gorm"

	"tokebook/internal/model"
	pkgerrors "tokebook/pkg/errors"
)

// DiscrepancyFilter 差异列表过滤条件，CasinoID 为空表示不限赌场
type DiscrepancyFilter struct {
	CasinoID string
	Status   model.DiscrepancyStatus
}

// DiscrepancyRepository 清点差异数据访问接口
type DiscrepancyRepository interface {
	Create(ctx context.Context, d *model.Discrepancy) error
	GetByID(ctx context.Context, id string) (*model.Discrepancy, error)
	List(ctx context.Context, filter DiscrepancyFilter, offset, limit int) ([]model.Discrepancy, int64, error)
	UpdateStatus(ctx context.Context, d *model.Discrepancy, fromStatus model.DiscrepancyStatus) error
}

type discrepancyRepo struct {
	db *gorm.DB
}

// NewDiscrepancyRepo 创建 DiscrepancyRepository 实例
func NewDiscrepancyRepo(db *gorm.DB) DiscrepancyRepository {
	return &discrepancyRepo{db: db}
}

func (r *discrepancyRepo) Create(ctx context.Context, d *model.Discrepancy) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *discrepancyRepo) GetByID(ctx context.Context, id string) (*model.Discrepancy, error) {
	var d model.Discrepancy
	err := r.db.WithContext(ctx).
		Where("discrepancy_id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *discrepancyRepo) List(ctx context.Context, filter DiscrepancyFilter, offset, limit int) ([]model.Discrepancy, int64, error) {
	var list []model.Discrepancy
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Discrepancy{})
	if filter.CasinoID != "" {
		db = db.Where("casino_id = ?", filter.CasinoID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *discrepancyRepo) UpdateStatus(ctx context.Context, d *model.Discrepancy, fromStatus model.DiscrepancyStatus) error {
	oldVersion := d.Version
	result := r.db.WithContext(ctx).
		Model(&model.Discrepancy{}).
		Where("discrepancy_id = ? AND version = ? AND status = ?", d.DiscrepancyID, oldVersion, fromStatus).
		Updates(map[string]interface{}{
			"status":             d.Status,
			"verified_by":        d.VerifiedBy,
			"verified_at":        d.VerifiedAt,
			"verification_notes": d.VerificationNotes,
			"resolved_by":        d.ResolvedBy,
			"resolved_at":        d.ResolvedAt,
			"resolution_notes":   d.ResolutionNotes,
			"updated_by":         d.UpdatedBy,
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	d.Version = oldVersion + 1
	return nil
}
