package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokebook/config"
	"tokebook/internal/dto"
	"tokebook/internal/model"
	"tokebook/internal/policy"
	"tokebook/internal/repository"
	pkgerrors "tokebook/pkg/errors"
)

// TokeService 小费池周期、签到与结算业务接口
type TokeService interface {
	CurrentPeriod(ctx context.Context, callerID string) (*dto.PeriodResponse, error)
	PreviousPeriod(ctx context.Context, callerID string) (*dto.PeriodResponse, error)
	GetPeriod(ctx context.Context, periodID, callerID string) (*dto.PeriodResponse, error)
	ListPeriods(ctx context.Context, req *dto.PeriodListRequest, callerID string) ([]dto.PeriodResponse, int64, error)
	SetPoolAmount(ctx context.Context, periodID string, amount decimal.Decimal, callerID string) (*dto.SetPoolResponse, error)
	Finalize(ctx context.Context, periodID, callerID string) (*dto.PeriodResponse, error)
	CreateSignOff(ctx context.Context, req *dto.CreateSignOffRequest, callerID string) (*dto.SignOffResponse, error)
	UpdateActualHours(ctx context.Context, signOffID string, req *dto.UpdateHoursRequest, callerID string) (*dto.SignOffResponse, error)
	PeriodView(ctx context.Context, periodID, callerID string) (*dto.PeriodViewResponse, error)
	LastShift(ctx context.Context, callerID string) (*dto.SignOffResponse, error)
}

type tokeService struct {
	workflow
	scheduledHours decimal.Decimal
	vacationHours  decimal.Decimal
}

// NewTokeService 创建 TokeService 实例
func NewTokeService(cfg *config.TokeConfig, repo *repository.Repository, audit AuditSink, logger *zap.Logger, opts ...Option) TokeService {
	return &tokeService{
		workflow:       newWorkflow(cfg, repo, audit, logger, opts),
		scheduledHours: cfg.ScheduledHours(),
		vacationHours:  cfg.VacationHours(),
	}
}

// ────────────────────── 周期 ──────────────────────

func (s *tokeService) CurrentPeriod(ctx context.Context, callerID string) (*dto.PeriodResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if actor.CasinoID == nil {
		return nil, ErrNoCasinoAssigned
	}

	period, err := s.getOrCreatePeriod(ctx, *actor.CasinoID, s.today(), true)
	if err != nil {
		return nil, err
	}
	resp := toPeriodResponse(period)
	return &resp, nil
}

// PreviousPeriod 前一天的周期（分配日）
func (s *tokeService) PreviousPeriod(ctx context.Context, callerID string) (*dto.PeriodResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if actor.CasinoID == nil {
		return nil, ErrNoCasinoAssigned
	}

	period, err := s.getOrCreatePeriod(ctx, *actor.CasinoID, s.today().AddDate(0, 0, -1), false)
	if err != nil {
		return nil, err
	}
	resp := toPeriodResponse(period)
	return &resp, nil
}

func (s *tokeService) getOrCreatePeriod(ctx context.Context, casinoID string, date time.Time, collection bool) (*model.TokePeriod, error) {
	period, err := s.repo.TokePeriod.GetByCasinoDate(ctx, casinoID, date)
	if err == nil {
		return period, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询小费池周期失败", zap.String("casino_id", casinoID), zap.Error(err))
		return nil, err
	}

	period = &model.TokePeriod{
		CasinoID:        casinoID,
		PeriodDate:      model.DateOf(date),
		IsCollectionDay: collection,
	}
	if err := s.repo.TokePeriod.Create(ctx, period); err != nil {
		// 并发创建时以先写入者为准
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.repo.TokePeriod.GetByCasinoDate(ctx, casinoID, date)
		}
		s.logger.Error("创建小费池周期失败", zap.String("casino_id", casinoID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("创建小费池周期",
		zap.String("casino_id", casinoID),
		zap.String("date", formatDate(period.PeriodDate)),
	)
	return period, nil
}

func (s *tokeService) GetPeriod(ctx context.Context, periodID, callerID string) (*dto.PeriodResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	period, err := s.findPeriod(ctx, s.repo, periodID)
	if err != nil {
		return nil, err
	}
	if err := sameCasino(actor, period.CasinoID); err != nil {
		return nil, err
	}
	resp := toPeriodResponse(period)
	return &resp, nil
}

func (s *tokeService) ListPeriods(ctx context.Context, req *dto.PeriodListRequest, callerID string) ([]dto.PeriodResponse, int64, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	if actor.CasinoID == nil {
		return nil, 0, ErrNoCasinoAssigned
	}

	periods, total, err := s.repo.TokePeriod.List(ctx, *actor.CasinoID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询小费池周期列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.PeriodResponse, 0, len(periods))
	for i := range periods {
		result = append(result, toPeriodResponse(&periods[i]))
	}
	return result, total, nil
}

func (s *tokeService) findPeriod(ctx context.Context, repo *repository.Repository, id string) (*model.TokePeriod, error) {
	period, err := repo.TokePeriod.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询小费池周期失败", zap.String("period_id", id), zap.Error(err))
		return nil, err
	}
	return period, nil
}

func (s *tokeService) lockPeriod(ctx context.Context, tx *repository.Repository, id, strength string) (*model.TokePeriod, error) {
	period, err := tx.TokePeriod.GetLocked(ctx, id, strength)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	return period, nil
}

// ────────────────────── 奖池与结算 ──────────────────────

func (s *tokeService) SetPoolAmount(ctx context.Context, periodID string, amount decimal.Decimal, callerID string) (*dto.SetPoolResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionSetPool, policy.Target{}) {
		return nil, ErrForbidden
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	period, err := s.findPeriod(ctx, s.repo, periodID)
	if err != nil {
		return nil, err
	}
	if err := sameCasino(actor, period.CasinoID); err != nil {
		return nil, err
	}
	if period.Finalized {
		return nil, ErrAlreadyFinalized
	}

	previous := period.PoolAmount
	period.PoolAmount = &amount
	period.UpdatedBy = &actor.UserID
	if err := s.repo.TokePeriod.UpdatePool(ctx, period); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			if fresh, ferr := s.repo.TokePeriod.GetByID(ctx, periodID); ferr == nil && fresh.Finalized {
				return nil, ErrAlreadyFinalized
			}
			return nil, ErrInvalidState
		}
		s.logger.Error("更新奖池金额失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}

	signOffs, err := s.repo.SignOff.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询签到记录失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	total := TotalCreditedHours(signOffs)

	resp := &dto.SetPoolResponse{
		Period:     toPeriodResponse(period),
		TotalHours: hoursString(total),
	}
	if rate, ok := ComputeRate(amount, total); ok {
		preview := rate.StringFixed(RateScale)
		resp.PreviewRate = &preview
	}

	details := map[string]any{"amount": amount.StringFixed(2)}
	if previous != nil {
		details["previous"] = previous.StringFixed(2)
	}
	s.record(ctx, actor, string(policy.ActionSetPool), "toke_period", periodID, details)

	return resp, nil
}

// Finalize 冻结周期：计算费率、写入每条签到的 toke_hours 并标记结算，全部在同一事务内完成
func (s *tokeService) Finalize(ctx context.Context, periodID, callerID string) (*dto.PeriodResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionFinalize, policy.Target{}) {
		return nil, ErrForbidden
	}

	var (
		finalized *model.TokePeriod
		frozen    int64
		total     decimal.Decimal
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		period, err := s.lockPeriod(ctx, tx, periodID, repository.LockUpdate)
		if err != nil {
			return err
		}
		if err := sameCasino(actor, period.CasinoID); err != nil {
			return err
		}
		if period.Finalized {
			return ErrAlreadyFinalized
		}
		if period.PoolAmount == nil {
			return ErrPoolNotSet
		}

		signOffs, err := tx.SignOff.ListByPeriodForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		total = TotalCreditedHours(signOffs)
		rate, ok := ComputeRate(*period.PoolAmount, total)
		if !ok {
			return ErrNoEligibleHours
		}

		now := s.clock()
		period.PerHourRate = &rate
		period.FinalizedBy = &actor.UserID
		period.FinalizedAt = &now
		period.UpdatedBy = &actor.UserID
		if err := tx.TokePeriod.MarkFinalized(ctx, period); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				if fresh, ferr := tx.TokePeriod.GetByID(ctx, periodID); ferr == nil && fresh.Finalized {
					return ErrAlreadyFinalized
				}
				return ErrInvalidState
			}
			return err
		}
		period.Finalized = true

		frozen, err = tx.SignOff.FreezeTokeHours(ctx, periodID)
		if err != nil {
			return err
		}
		finalized = period
		return nil
	})
	if err != nil {
		if _, ok := pkgerrors.As(err); !ok {
			s.logger.Error("结算小费池失败", zap.String("period_id", periodID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("小费池已结算",
		zap.String("period_id", periodID),
		zap.String("rate", finalized.PerHourRate.StringFixed(RateScale)),
		zap.Int64("sign_offs", frozen),
	)
	s.record(ctx, actor, string(policy.ActionFinalize), "toke_period", periodID, map[string]any{
		"pool_amount":   finalized.PoolAmount.StringFixed(2),
		"total_hours":   hoursString(total),
		"per_hour_rate": finalized.PerHourRate.StringFixed(RateScale),
		"sign_offs":     frozen,
	})

	resp := toPeriodResponse(finalized)
	return &resp, nil
}

// ────────────────────── 签到 ──────────────────────

func (s *tokeService) CreateSignOff(ctx context.Context, req *dto.CreateSignOffRequest, callerID string) (*dto.SignOffResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionSignOff, policy.Target{OwnerID: actor.UserID}) {
		return nil, ErrForbidden
	}

	hours := s.scheduledHours
	if req.ScheduledHours != nil {
		hours = req.ScheduledHours.Round(2)
	}
	if !validHours(hours) {
		return nil, ErrInvalidHours
	}

	shiftDate, err := model.ParseDate(req.ShiftDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if !validClockPtr(req.ShiftStart) || !validClockPtr(req.ShiftEnd) {
		return nil, ErrInvalidTime
	}

	period, err := s.findPeriod(ctx, s.repo, req.TokePeriodID)
	if err != nil {
		return nil, err
	}
	if err := sameCasino(actor, period.CasinoID); err != nil {
		return nil, err
	}
	if !model.DateOf(shiftDate).Equal(model.DateOf(period.PeriodDate)) {
		return nil, ErrDateMismatch
	}

	actual := hours
	signOff := &model.TokeSignOff{
		UserID:         actor.UserID,
		TokePeriodID:   period.TokePeriodID,
		ScheduledHours: hours,
		ActualHours:    &actual,
		OriginalHours:  hours,
		ShiftDate:      model.DateOf(shiftDate),
		ShiftStart:     req.ShiftStart,
		ShiftEnd:       req.ShiftEnd,
		SignedAt:       s.clock(),
		VersionedModel: model.VersionedModel{BaseModel: model.BaseModel{CreatedBy: &actor.UserID}},
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		locked, err := s.lockPeriod(ctx, tx, period.TokePeriodID, repository.LockShare)
		if err != nil {
			return err
		}
		if locked.Finalized {
			return ErrAlreadyFinalized
		}
		if err := tx.SignOff.Create(ctx, signOff); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateSignOff
			}
			return err
		}
		return nil
	})
	if err != nil {
		if _, ok := pkgerrors.As(err); !ok {
			s.logger.Error("创建签到失败", zap.String("user_id", actor.UserID), zap.Error(err))
		}
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionSignOff), "toke_sign_off", signOff.SignOffID, map[string]any{
		"toke_period_id":  period.TokePeriodID,
		"scheduled_hours": hoursString(hours),
	})

	signOff.User = actor
	resp := toSignOffResponse(signOff)
	return &resp, nil
}

// UpdateActualHours 持 pencil 者调整实际工时；original_hours 保持不变
func (s *tokeService) UpdateActualHours(ctx context.Context, signOffID string, req *dto.UpdateHoursRequest, callerID string) (*dto.SignOffResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionAdjustHours, policy.Target{}) {
		return nil, ErrForbidden
	}
	if req.ActualHours == nil {
		return nil, ErrInvalidHours
	}
	hours := req.ActualHours.Round(2)
	if !validHours(hours) {
		return nil, ErrInvalidHours
	}

	var (
		updated  *model.TokeSignOff
		previous *decimal.Decimal
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		signOff, err := tx.SignOff.GetByID(ctx, signOffID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSignOffNotFound
			}
			return err
		}
		period, err := s.lockPeriod(ctx, tx, signOff.TokePeriodID, repository.LockShare)
		if err != nil {
			return err
		}
		if err := sameCasino(actor, period.CasinoID); err != nil {
			return err
		}
		if period.Finalized {
			return ErrAlreadyFinalized
		}

		previous = signOff.ActualHours
		signOff.ActualHours = &hours
		signOff.UpdatedBy = &actor.UserID
		if err := tx.SignOff.UpdateActualHours(ctx, signOff); err != nil {
			return lockConflict(err)
		}
		updated = signOff
		return nil
	})
	if err != nil {
		if _, ok := pkgerrors.As(err); !ok {
			s.logger.Error("调整实际工时失败", zap.String("sign_off_id", signOffID), zap.Error(err))
		}
		return nil, err
	}

	details := map[string]any{"actual_hours": hoursString(hours)}
	if previous != nil {
		details["previous"] = hoursString(*previous)
	}
	s.record(ctx, actor, string(policy.ActionAdjustHours), "toke_sign_off", signOffID, details)

	resp := toSignOffResponse(updated)
	return &resp, nil
}

// ────────────────────── 名册 ──────────────────────

// PeriodView 当日完整名册：签到 + 休假折算 + 提前下班状态
func (s *tokeService) PeriodView(ctx context.Context, periodID, callerID string) (*dto.PeriodViewResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	period, err := s.findPeriod(ctx, s.repo, periodID)
	if err != nil {
		return nil, err
	}
	if err := sameCasino(actor, period.CasinoID); err != nil {
		return nil, err
	}

	signOffs, err := s.repo.SignOff.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询签到记录失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	vacations, err := s.repo.Vacation.List(ctx, repository.VacationFilter{
		CasinoID: period.CasinoID,
		Status:   model.VacationApproved,
		From:     period.PeriodDate,
		To:       period.PeriodDate,
	})
	if err != nil {
		s.logger.Error("查询休假记录失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	requests, err := s.repo.EarlyOut.List(ctx, repository.EarlyOutFilter{
		CasinoID: period.CasinoID,
		Date:     period.PeriodDate,
		Statuses: []model.EarlyOutStatus{model.EarlyOutPending, model.EarlyOutApproved},
	})
	if err != nil {
		s.logger.Error("查询提前下班申请失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}

	earlyOuts := make(map[string]model.EarlyOutStatus, len(requests))
	for i := range requests {
		earlyOuts[requests[i].UserID] = requests[i].Status
	}

	var rate *decimal.Decimal
	if period.Finalized {
		rate = period.PerHourRate
	}

	views := BuildRoster(signOffs, vacations, period.PeriodDate, s.vacationHours)
	entries, summary := summarizeRoster(views, earlyOuts, rate)

	return &dto.PeriodViewResponse{
		Period:  toPeriodResponse(period),
		Entries: entries,
		Summary: summary,
	}, nil
}

// LastShift 调用者最近一次签到
func (s *tokeService) LastShift(ctx context.Context, callerID string) (*dto.SignOffResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	signOff, err := s.repo.SignOff.GetLatestByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoShiftHistory
		}
		s.logger.Error("查询最近班次失败", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	signOff.User = actor
	resp := toSignOffResponse(signOff)
	return &resp, nil
}

// validClockPtr 空值合法，否则必须为 HH:MM / HH:MM:SS
func validClockPtr(s *string) bool {
	if s == nil {
		return true
	}
	_, ok := parseClock(*s)
	return ok
}
