package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tokebook/internal/model"
	pkgerrors "tokebook/pkg/errors"
)

// 行锁强度
// 结算持有 UPDATE 锁，签到与工时调整持有 SHARE 锁，二者互斥
const (
	LockUpdate = "UPDATE"
	LockShare  = "SHARE"
)

// TokePeriodRepository 小费池周期数据访问接口
type TokePeriodRepository interface {
	Create(ctx context.Context, period *model.TokePeriod) error
	GetByID(ctx context.Context, id string) (*model.TokePeriod, error)
	// GetLocked 行锁读取，strength 为 LockUpdate / LockShare；仅在事务内有意义
	GetLocked(ctx context.Context, id string, strength string) (*model.TokePeriod, error)
	GetByCasinoDate(ctx context.Context, casinoID string, date time.Time) (*model.TokePeriod, error)
	List(ctx context.Context, casinoID string, offset, limit int) ([]model.TokePeriod, int64, error)
	// UpdatePool 仅对未结算且版本一致的周期生效
	UpdatePool(ctx context.Context, period *model.TokePeriod) error
	// MarkFinalized 仅对未结算且版本一致的周期生效
	MarkFinalized(ctx context.Context, period *model.TokePeriod) error
}

type tokePeriodRepo struct {
	db *gorm.DB
}

// NewTokePeriodRepo 创建 TokePeriodRepository 实例
func NewTokePeriodRepo(db *gorm.DB) TokePeriodRepository {
	return &tokePeriodRepo{db: db}
}

func (r *tokePeriodRepo) Create(ctx context.Context, period *model.TokePeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *tokePeriodRepo) GetByID(ctx context.Context, id string) (*model.TokePeriod, error) {
	var period model.TokePeriod
	err := r.db.WithContext(ctx).
		Where("toke_period_id = ?", id).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *tokePeriodRepo) GetLocked(ctx context.Context, id string, strength string) (*model.TokePeriod, error) {
	var period model.TokePeriod
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: strength}).
		Where("toke_period_id = ?", id).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *tokePeriodRepo) GetByCasinoDate(ctx context.Context, casinoID string, date time.Time) (*model.TokePeriod, error) {
	var period model.TokePeriod
	err := r.db.WithContext(ctx).
		Where("casino_id = ? AND period_date = ?", casinoID, model.DateOf(date)).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *tokePeriodRepo) List(ctx context.Context, casinoID string, offset, limit int) ([]model.TokePeriod, int64, error) {
	var periods []model.TokePeriod
	var total int64

	db := r.db.WithContext(ctx).Model(&model.TokePeriod{}).Where("casino_id = ?", casinoID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("period_date DESC").Offset(offset).Limit(limit).Find(&periods).Error; err != nil {
		return nil, 0, err
	}
	return periods, total, nil
}

func (r *tokePeriodRepo) UpdatePool(ctx context.Context, period *model.TokePeriod) error {
	return r.versionedUpdate(ctx, period, map[string]interface{}{
		"pool_amount": period.PoolAmount,
		"updated_by":  period.UpdatedBy,
	})
}

func (r *tokePeriodRepo) MarkFinalized(ctx context.Context, period *model.TokePeriod) error {
	return r.versionedUpdate(ctx, period, map[string]interface{}{
		"per_hour_rate": period.PerHourRate,
		"finalized":     true,
		"finalized_by":  period.FinalizedBy,
		"finalized_at":  period.FinalizedAt,
		"updated_by":    period.UpdatedBy,
	})
}

// versionedUpdate 未结算 + 版本号双重条件，保证结算后不可再改
func (r *tokePeriodRepo) versionedUpdate(ctx context.Context, period *model.TokePeriod, fields map[string]interface{}) error {
	oldVersion := period.Version
	fields["version"] = oldVersion + 1

	result := r.db.WithContext(ctx).
		Model(&model.TokePeriod{}).
		Where("toke_period_id = ? AND version = ? AND finalized = ?", period.TokePeriodID, oldVersion, false).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	period.Version = oldVersion + 1
	return nil
}
