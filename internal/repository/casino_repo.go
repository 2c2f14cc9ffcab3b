package repository

import (
	"context"

	"gorm.io/gorm"

	"tokebook/internal/model"
)

// CasinoRepository 赌场数据访问接口
type CasinoRepository interface {
	Create(ctx context.Context, casino *model.Casino) error
	GetByID(ctx context.Context, id string) (*model.Casino, error)
	List(ctx context.Context) ([]model.Casino, error)
	Update(ctx context.Context, casino *model.Casino) error
}

type casinoRepo struct {
	db *gorm.DB
}

// NewCasinoRepo 创建 CasinoRepository 实例
func NewCasinoRepo(db *gorm.DB) CasinoRepository {
	return &casinoRepo{db: db}
}

func (r *casinoRepo) Create(ctx context.Context, casino *model.Casino) error {
	return r.db.WithContext(ctx).Create(casino).Error
}

func (r *casinoRepo) GetByID(ctx context.Context, id string) (*model.Casino, error) {
	var casino model.Casino
	err := r.db.WithContext(ctx).
		Where("casino_id = ?", id).
		First(&casino).Error
	if err != nil {
		return nil, err
	}
	return &casino, nil
}

func (r *casinoRepo) List(ctx context.Context) ([]model.Casino, error) {
	var casinos []model.Casino
	err := r.db.WithContext(ctx).Order("name ASC").Find(&casinos).Error
	return casinos, err
}

func (r *casinoRepo) Update(ctx context.Context, casino *model.Casino) error {
	return r.db.WithContext(ctx).
		Model(&model.Casino{}).
		Where("casino_id = ?", casino.CasinoID).
		Updates(map[string]interface{}{
			"name":        casino.Name,
			"grave_start": casino.GraveStart,
			"grave_end":   casino.GraveEnd,
			"day_start":   casino.DayStart,
			"day_end":     casino.DayEnd,
			"swing_start": casino.SwingStart,
			"swing_end":   casino.SwingEnd,
			"updated_by":  casino.UpdatedBy,
		}).Error
}
