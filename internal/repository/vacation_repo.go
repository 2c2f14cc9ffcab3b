package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tokebook/internal/model"
	pkgerrors "tokebook/pkg/errors"
)

// VacationFilter 休假列表筛选条件
// From / To 非零时筛选与区间 [From, To] 有交集的休假
type VacationFilter struct {
	UserID   string
	CasinoID string
	Status   model.VacationStatus
	From     time.Time
	To       time.Time
}

// VacationRepository 休假数据访问接口
type VacationRepository interface {
	Create(ctx context.Context, v *model.DealerVacation) error
	GetByID(ctx context.Context, id string) (*model.DealerVacation, error)
	List(ctx context.Context, filter VacationFilter) ([]model.DealerVacation, error)
	// ListByStartRange 按开始日期落在 [from, to) 查询
	ListByStartRange(ctx context.Context, from, to time.Time, status model.VacationStatus) ([]model.DealerVacation, error)
	UpdateStatus(ctx context.Context, v *model.DealerVacation, fromStatus model.VacationStatus) error
}

type vacationRepo struct {
	db *gorm.DB
}

// NewVacationRepo 创建 VacationRepository 实例
func NewVacationRepo(db *gorm.DB) VacationRepository {
	return &vacationRepo{db: db}
}

func (r *vacationRepo) Create(ctx context.Context, v *model.DealerVacation) error {
	return r.db.WithContext(ctx).Omit("User").Create(v).Error
}

func (r *vacationRepo) GetByID(ctx context.Context, id string) (*model.DealerVacation, error) {
	var v model.DealerVacation
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("vacation_id = ?", id).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vacationRepo) List(ctx context.Context, filter VacationFilter) ([]model.DealerVacation, error) {
	var list []model.DealerVacation

	db := r.db.WithContext(ctx).Preload("User")
	if filter.CasinoID != "" {
		db = db.Joins("JOIN users ON users.user_id = dealer_vacations.user_id").
			Where("users.casino_id = ?", filter.CasinoID)
	}
	if filter.UserID != "" {
		db = db.Where("dealer_vacations.user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("dealer_vacations.status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		db = db.Where("dealer_vacations.end_date >= ?", model.DateOf(filter.From))
	}
	if !filter.To.IsZero() {
		db = db.Where("dealer_vacations.start_date <= ?", model.DateOf(filter.To))
	}

	err := db.Order("dealer_vacations.start_date ASC").Find(&list).Error
	return list, err
}

func (r *vacationRepo) ListByStartRange(ctx context.Context, from, to time.Time, status model.VacationStatus) ([]model.DealerVacation, error) {
	var list []model.DealerVacation

	db := r.db.WithContext(ctx).
		Preload("User").
		Where("start_date >= ? AND start_date < ?", model.DateOf(from), model.DateOf(to))
	if status != "" {
		db = db.Where("status = ?", status)
	}

	err := db.Order("start_date ASC").Find(&list).Error
	return list, err
}

func (r *vacationRepo) UpdateStatus(ctx context.Context, v *model.DealerVacation, fromStatus model.VacationStatus) error {
	oldVersion := v.Version
	result := r.db.WithContext(ctx).
		Model(&model.DealerVacation{}).
		Where("vacation_id = ? AND version = ? AND status = ?", v.VacationID, oldVersion, fromStatus).
		Updates(map[string]interface{}{
			"status":      v.Status,
			"approved_by": v.ApprovedBy,
			"approved_at": v.ApprovedAt,
			"updated_by":  v.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	v.Version = oldVersion + 1
	return nil
}
