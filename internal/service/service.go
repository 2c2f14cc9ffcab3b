package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokebook/config"
	"tokebook/internal/model"
	"tokebook/internal/repository"
	pkgerrors "tokebook/pkg/errors"
	"tokebook/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	User        UserService
	Casino      CasinoService
	Toke        TokeService
	EarlyOut    EarlyOutService
	Vacation    VacationService
	Discrepancy DiscrepancyService
	Audit       AuditService
	Export      ExportService
}

// NewService 创建 Service 聚合
// blacklist 可为 nil（未启用 Redis 时登出只做客户端丢弃）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	audit := NewAuditService(repo, logger)
	return &Service{
		Auth:        NewAuthService(repo, jwtMgr, blacklist, logger),
		User:        NewUserService(repo, audit, logger),
		Casino:      NewCasinoService(&cfg.Toke, repo, audit, logger, opts...),
		Toke:        NewTokeService(&cfg.Toke, repo, audit, logger, opts...),
		EarlyOut:    NewEarlyOutService(&cfg.Toke, repo, audit, logger, opts...),
		Vacation:    NewVacationService(&cfg.Toke, repo, audit, logger, opts...),
		Discrepancy: NewDiscrepancyService(repo, audit, logger),
		Audit:       audit,
		Export:      NewExportService(repo, logger),
	}
}

// ── 工作流共享依赖 ──

// Option 工作流可选配置
type Option func(*workflow)

// WithClock 替换时钟（测试中固定"现在"）
func WithClock(now func() time.Time) Option {
	return func(w *workflow) { w.now = now }
}

// workflow 各业务 Service 共享的依赖与辅助方法
type workflow struct {
	repo   *repository.Repository
	audit  AuditSink
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

func newWorkflow(cfg *config.TokeConfig, repo *repository.Repository, audit AuditSink, logger *zap.Logger, opts []Option) workflow {
	w := workflow{
		repo:   repo,
		audit:  audit,
		logger: logger,
		loc:    time.UTC,
		now:    time.Now,
	}
	if cfg != nil {
		w.loc = cfg.Location()
	}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

// clock 当前 UTC 时间
func (w *workflow) clock() time.Time {
	return w.now().UTC()
}

// today 赌场本地日历日期
func (w *workflow) today() time.Time {
	return model.DateOf(w.now().In(w.loc))
}

// loadActor 加载操作者；已归档账号不能再发起任何操作
func (w *workflow) loadActor(ctx context.Context, callerID string) (*model.User, error) {
	user, err := w.repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		w.logger.Error("加载操作者失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrActorArchived
	}
	return user, nil
}

// loadUser 按 ID 加载用户
func (w *workflow) loadUser(ctx context.Context, id string) (*model.User, error) {
	user, err := w.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		w.logger.Error("查询用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// record 写审计日志（尽力而为）
func (w *workflow) record(ctx context.Context, actor *model.User, action, modelName, recordID string, details map[string]any) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, AuditEvent{
		Action:    action,
		ActorID:   actor.UserID,
		CasinoID:  actor.CasinoID,
		ModelName: modelName,
		RecordID:  recordID,
		Details:   details,
	})
}

// sameCasino 非管理员只能访问本赌场的数据
func sameCasino(actor *model.User, casinoID string) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if actor.CasinoID == nil || *actor.CasinoID != casinoID {
		return ErrCasinoMismatch
	}
	return nil
}

// lockConflict 乐观锁冲突统一视为状态冲突
func lockConflict(err error) error {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		return ErrInvalidState
	}
	return err
}
