package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Casino      CasinoRepository
	User        UserRepository
	TokePeriod  TokePeriodRepository
	SignOff     SignOffRepository
	EarlyOut    EarlyOutRepository
	Vacation    VacationRepository
	Discrepancy DiscrepancyRepository
	AuditLog    AuditLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		Casino:      NewCasinoRepo(db),
		User:        NewUserRepo(db),
		TokePeriod:  NewTokePeriodRepo(db),
		SignOff:     NewSignOffRepo(db),
		EarlyOut:    NewEarlyOutRepo(db),
		Vacation:    NewVacationRepo(db),
		Discrepancy: NewDiscrepancyRepo(db),
		AuditLog:    NewAuditLogRepo(db),
	}
}

// BeginTx 开启事务，调用方负责 Commit / Rollback
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在单个事务中执行 fn，fn 返回错误时整体回滚
// 未绑定数据库的聚合（单元测试中手工组装的 mock）直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
