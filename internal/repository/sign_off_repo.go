package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tokebook/internal/model"
	pkgerrors "tokebook/pkg/errors"
)

// SignOffRepository 工时签到数据访问接口
type SignOffRepository interface {
	// Create 依赖 (user_id, toke_period_id) 唯一约束，重复时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, signOff *model.TokeSignOff) error
	GetByID(ctx context.Context, id string) (*model.TokeSignOff, error)
	GetByUserPeriod(ctx context.Context, userID, periodID string) (*model.TokeSignOff, error)
	ListByPeriod(ctx context.Context, periodID string) ([]model.TokeSignOff, error)
	// ListByPeriodForUpdate 锁定周期内全部签到，结算事务专用
	ListByPeriodForUpdate(ctx context.Context, periodID string) ([]model.TokeSignOff, error)
	GetLatestByUser(ctx context.Context, userID string) (*model.TokeSignOff, error)
	UpdateActualHours(ctx context.Context, signOff *model.TokeSignOff) error
	// FreezeTokeHours 将周期内所有签到的 toke_hours 置为 actual_hours
	FreezeTokeHours(ctx context.Context, periodID string) (int64, error)
}

type signOffRepo struct {
	db *gorm.DB
}

// NewSignOffRepo 创建 SignOffRepository 实例
func NewSignOffRepo(db *gorm.DB) SignOffRepository {
	return &signOffRepo{db: db}
}

func (r *signOffRepo) Create(ctx context.Context, signOff *model.TokeSignOff) error {
	return r.db.WithContext(ctx).Omit("User").Create(signOff).Error
}

func (r *signOffRepo) GetByID(ctx context.Context, id string) (*model.TokeSignOff, error) {
	var so model.TokeSignOff
	err := r.db.WithContext(ctx).
		Where("sign_off_id = ?", id).
		First(&so).Error
	if err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *signOffRepo) GetByUserPeriod(ctx context.Context, userID, periodID string) (*model.TokeSignOff, error) {
	var so model.TokeSignOff
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND toke_period_id = ?", userID, periodID).
		First(&so).Error
	if err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *signOffRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.TokeSignOff, error) {
	var list []model.TokeSignOff
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("toke_period_id = ?", periodID).
		Order("signed_at ASC").
		Find(&list).Error
	return list, err
}

func (r *signOffRepo) ListByPeriodForUpdate(ctx context.Context, periodID string) ([]model.TokeSignOff, error) {
	var list []model.TokeSignOff
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: LockUpdate}).
		Where("toke_period_id = ?", periodID).
		Find(&list).Error
	return list, err
}

func (r *signOffRepo) GetLatestByUser(ctx context.Context, userID string) (*model.TokeSignOff, error) {
	var so model.TokeSignOff
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("shift_date DESC, signed_at DESC").
		First(&so).Error
	if err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *signOffRepo) UpdateActualHours(ctx context.Context, signOff *model.TokeSignOff) error {
	oldVersion := signOff.Version
	result := r.db.WithContext(ctx).
		Model(&model.TokeSignOff{}).
		Where("sign_off_id = ? AND version = ?", signOff.SignOffID, oldVersion).
		Updates(map[string]interface{}{
			"actual_hours": signOff.ActualHours,
			"updated_by":   signOff.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	signOff.Version = oldVersion + 1
	return nil
}

func (r *signOffRepo) FreezeTokeHours(ctx context.Context, periodID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.TokeSignOff{}).
		Where("toke_period_id = ?", periodID).
		Updates(map[string]interface{}{
			"toke_hours": gorm.Expr("actual_hours"),
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}
