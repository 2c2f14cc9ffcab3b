package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tokebook/internal/model"
	pkgerrors "tokebook/pkg/errors"
)

// EarlyOutFilter 提前下班申请筛选条件
type EarlyOutFilter struct {
	CasinoID string
	Date     time.Time
	Statuses []model.EarlyOutStatus
	Role     model.Role
}

// EarlyOutRepository 提前下班申请数据访问接口
type EarlyOutRepository interface {
	// Create 依赖 (user_id, active_date) 唯一约束，同日已有有效申请时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, req *model.EarlyOutRequest) error
	GetByID(ctx context.Context, id string) (*model.EarlyOutRequest, error)
	GetActiveByUserDate(ctx context.Context, userID string, date time.Time) (*model.EarlyOutRequest, error)
	List(ctx context.Context, filter EarlyOutFilter) ([]model.EarlyOutRequest, error)
	// UpdateStatus 仅当状态与版本号均未变化时生效
	UpdateStatus(ctx context.Context, req *model.EarlyOutRequest, fromStatus model.EarlyOutStatus) error
}

type earlyOutRepo struct {
	db *gorm.DB
}

// NewEarlyOutRepo 创建 EarlyOutRepository 实例
func NewEarlyOutRepo(db *gorm.DB) EarlyOutRepository {
	return &earlyOutRepo{db: db}
}

func (r *earlyOutRepo) Create(ctx context.Context, req *model.EarlyOutRequest) error {
	return r.db.WithContext(ctx).Omit("User", "SignOff").Create(req).Error
}

func (r *earlyOutRepo) GetByID(ctx context.Context, id string) (*model.EarlyOutRequest, error) {
	var req model.EarlyOutRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("early_out_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *earlyOutRepo) GetActiveByUserDate(ctx context.Context, userID string, date time.Time) (*model.EarlyOutRequest, error) {
	var req model.EarlyOutRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active_date = ?", userID, model.DateOf(date)).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *earlyOutRepo) List(ctx context.Context, filter EarlyOutFilter) ([]model.EarlyOutRequest, error) {
	var list []model.EarlyOutRequest

	db := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.user_id = early_out_requests.user_id").
		Where("early_out_requests.request_date = ?", model.DateOf(filter.Date))
	if filter.CasinoID != "" {
		db = db.Where("users.casino_id = ?", filter.CasinoID)
	}
	if filter.Role != "" {
		db = db.Where("users.role = ?", filter.Role)
	}
	if len(filter.Statuses) > 0 {
		db = db.Where("early_out_requests.status IN ?", filter.Statuses)
	}

	err := db.Order("early_out_requests.created_at ASC").Find(&list).Error
	return list, err
}

func (r *earlyOutRepo) UpdateStatus(ctx context.Context, req *model.EarlyOutRequest, fromStatus model.EarlyOutStatus) error {
	oldVersion := req.Version
	result := r.db.WithContext(ctx).
		Model(&model.EarlyOutRequest{}).
		Where("early_out_id = ? AND version = ? AND status = ?", req.EarlyOutID, oldVersion, fromStatus).
		Updates(map[string]interface{}{
			"status":        req.Status,
			"active_date":   req.ActiveDate,
			"sign_off_id":   req.SignOffID,
			"authorized_by": req.AuthorizedBy,
			"hours_worked":  req.HoursWorked,
			"processed_at":  req.ProcessedAt,
			"updated_by":    req.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version = oldVersion + 1
	return nil
}
