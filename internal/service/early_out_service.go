package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokebook/config"
	"tokebook/internal/dto"
	"tokebook/internal/model"
	"tokebook/internal/policy"
	"tokebook/internal/repository"
	pkgerrors "tokebook/pkg/errors"
)

// EarlyOutService 提前下班业务接口
type EarlyOutService interface {
	Request(ctx context.Context, req *dto.CreateEarlyOutRequest, callerID string) (*dto.EarlyOutResponse, error)
	Get(ctx context.Context, id, callerID string) (*dto.EarlyOutResponse, error)
	Remove(ctx context.Context, id, callerID string) (*dto.EarlyOutResponse, error)
	Authorize(ctx context.Context, id string, req *dto.AuthorizeEarlyOutRequest, callerID string) (*dto.EarlyOutResponse, error)
	Deny(ctx context.Context, id, callerID string) (*dto.EarlyOutResponse, error)
	CurrentList(ctx context.Context, req *dto.EarlyOutListRequest, callerID string) ([]dto.EarlyOutResponse, error)
}

type earlyOutService struct {
	workflow
}

// NewEarlyOutService 创建 EarlyOutService 实例
func NewEarlyOutService(cfg *config.TokeConfig, repo *repository.Repository, audit AuditSink, logger *zap.Logger, opts ...Option) EarlyOutService {
	return &earlyOutService{workflow: newWorkflow(cfg, repo, audit, logger, opts)}
}

// ────────────────────── Request ──────────────────────

func (s *earlyOutService) Request(ctx context.Context, req *dto.CreateEarlyOutRequest, callerID string) (*dto.EarlyOutResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionRequestEarlyOut, policy.Target{}) {
		return nil, ErrForbidden
	}

	pit := strings.TrimSpace(req.PitNumber)
	if pit == "" {
		return nil, ErrMissingPit
	}

	var table *string
	if actor.Role == model.RoleDealer {
		if req.TableNumber == nil || strings.TrimSpace(*req.TableNumber) == "" {
			return nil, ErrMissingTable
		}
		t := strings.TrimSpace(*req.TableNumber)
		table = &t
	}

	reason := model.ReasonRegular
	if req.Reason != "" {
		reason = model.EarlyOutReason(req.Reason)
		if !reason.Valid() {
			return nil, ErrInvalidReason
		}
	}

	today := s.today()
	request := &model.EarlyOutRequest{
		UserID:         actor.UserID,
		Status:         model.EarlyOutPending,
		Reason:         reason,
		PitNumber:      pit,
		TableNumber:    table,
		RequestDate:    today,
		ActiveDate:     &today,
		VersionedModel: model.VersionedModel{BaseModel: model.BaseModel{CreatedBy: &actor.UserID}},
	}
	if err := s.repo.EarlyOut.Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateRequest
		}
		s.logger.Error("创建提前下班申请失败", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionRequestEarlyOut), "early_out_request", request.EarlyOutID, map[string]any{
		"pit_number": pit,
		"reason":     string(reason),
	})

	request.User = actor
	resp := toEarlyOutResponse(request)
	return &resp, nil
}

func (s *earlyOutService) Get(ctx context.Context, id, callerID string) (*dto.EarlyOutResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	request, err := s.findRequest(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if request.UserID != actor.UserID {
		if actor.Role == model.RoleDealer {
			return nil, ErrForbidden
		}
		if err := s.sameCasinoAs(actor, request); err != nil {
			return nil, err
		}
	}
	resp := toEarlyOutResponse(request)
	return &resp, nil
}

// ────────────────────── Remove ──────────────────────

// Remove 申请人撤回；已批准的申请只能在班次开始前撤回，并恢复签到的实际工时
func (s *earlyOutService) Remove(ctx context.Context, id, callerID string) (*dto.EarlyOutResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	request, err := s.findRequest(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionRemoveEarlyOut, policy.Target{OwnerID: request.UserID}) {
		return nil, ErrForbidden
	}
	if !request.Status.Active() {
		return nil, ErrInvalidState
	}

	var linked *model.TokeSignOff
	if request.Status == model.EarlyOutApproved && request.SignOffID != nil {
		linked, err = s.repo.SignOff.GetByID(ctx, *request.SignOffID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询关联签到失败", zap.String("early_out_id", id), zap.Error(err))
			return nil, err
		}
		if linked != nil && s.shiftStarted(linked) {
			return nil, ErrShiftAlreadyStarted
		}
	}

	from := request.Status
	now := s.clock()
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 已结算周期的工时已冻结，不允许撤回
		if linked != nil {
			period, err := tx.TokePeriod.GetLocked(ctx, linked.TokePeriodID, repository.LockShare)
			if err != nil {
				return err
			}
			if period.Finalized {
				return ErrAlreadyFinalized
			}
		}

		request.Status = model.EarlyOutRemoved
		request.ActiveDate = nil
		request.ProcessedAt = &now
		request.UpdatedBy = &actor.UserID
		if err := tx.EarlyOut.UpdateStatus(ctx, request, from); err != nil {
			return lockConflict(err)
		}
		if linked == nil {
			return nil
		}

		signOff, err := tx.SignOff.GetByID(ctx, linked.SignOffID)
		if err != nil {
			return err
		}
		restored := signOff.OriginalHours
		signOff.ActualHours = &restored
		signOff.UpdatedBy = &actor.UserID
		return lockConflict(tx.SignOff.UpdateActualHours(ctx, signOff))
	})
	if err != nil {
		if _, ok := pkgerrors.As(err); !ok {
			s.logger.Error("撤回提前下班申请失败", zap.String("early_out_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionRemoveEarlyOut), "early_out_request", id, map[string]any{
		"from_status": string(from),
	})

	resp := toEarlyOutResponse(request)
	return &resp, nil
}

// shiftStarted 班次开始时间为空视为尚未开始
func (s *earlyOutService) shiftStarted(signOff *model.TokeSignOff) bool {
	if signOff.ShiftStart == nil {
		return false
	}
	minutes, ok := parseClock(*signOff.ShiftStart)
	if !ok {
		return false
	}
	y, m, d := signOff.ShiftDate.Date()
	start := time.Date(y, m, d, minutes/60, minutes%60, 0, 0, s.loc)
	return !s.now().Before(start)
}

// ────────────────────── Authorize / Deny ──────────────────────

// Authorize 批准申请并把签到的实际工时改为 hours_worked，两条记录在同一事务内更新
func (s *earlyOutService) Authorize(ctx context.Context, id string, req *dto.AuthorizeEarlyOutRequest, callerID string) (*dto.EarlyOutResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	request, err := s.findRequest(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDecider(actor, request); err != nil {
		return nil, err
	}
	if request.Status != model.EarlyOutPending {
		return nil, ErrInvalidState
	}
	if req.HoursWorked == nil {
		return nil, ErrMissingHours
	}
	hours := req.HoursWorked.Round(2)
	if !validHours(hours) {
		return nil, ErrInvalidHours
	}

	linked, err := s.linkedSignOff(ctx, request)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if linked != nil {
			period, err := tx.TokePeriod.GetLocked(ctx, linked.TokePeriodID, repository.LockShare)
			if err != nil {
				return err
			}
			if period.Finalized {
				return ErrAlreadyFinalized
			}
		}

		request.Status = model.EarlyOutApproved
		request.AuthorizedBy = &actor.UserID
		request.HoursWorked = &hours
		request.ProcessedAt = &now
		request.UpdatedBy = &actor.UserID
		if linked != nil {
			request.SignOffID = &linked.SignOffID
		}
		if err := tx.EarlyOut.UpdateStatus(ctx, request, model.EarlyOutPending); err != nil {
			return lockConflict(err)
		}
		if linked == nil {
			return nil
		}

		signOff, err := tx.SignOff.GetByID(ctx, linked.SignOffID)
		if err != nil {
			return err
		}
		signOff.ActualHours = &hours
		signOff.UpdatedBy = &actor.UserID
		return lockConflict(tx.SignOff.UpdateActualHours(ctx, signOff))
	})
	if err != nil {
		if _, ok := pkgerrors.As(err); !ok {
			s.logger.Error("批准提前下班申请失败", zap.String("early_out_id", id), zap.Error(err))
		}
		return nil, err
	}

	details := map[string]any{"hours_worked": hoursString(hours)}
	if linked != nil {
		details["sign_off_id"] = linked.SignOffID
	}
	s.record(ctx, actor, string(policy.ActionAuthorizeEarlyOut), "early_out_request", id, details)

	resp := toEarlyOutResponse(request)
	return &resp, nil
}

// linkedSignOff 查找申请人在申请当天周期内的签到
// 荷官必须已签到；主管没有签到时不关联
func (s *earlyOutService) linkedSignOff(ctx context.Context, request *model.EarlyOutRequest) (*model.TokeSignOff, error) {
	requester := request.User
	if requester == nil {
		var err error
		if requester, err = s.loadUser(ctx, request.UserID); err != nil {
			return nil, err
		}
	}
	required := requester.Role == model.RoleDealer

	if requester.CasinoID == nil {
		if required {
			return nil, ErrNoSignOff
		}
		return nil, nil
	}

	period, err := s.repo.TokePeriod.GetByCasinoDate(ctx, *requester.CasinoID, request.RequestDate)
	if err == nil {
		var signOff *model.TokeSignOff
		signOff, err = s.repo.SignOff.GetByUserPeriod(ctx, requester.UserID, period.TokePeriodID)
		if err == nil {
			return signOff, nil
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询申请人签到失败", zap.String("user_id", requester.UserID), zap.Error(err))
		return nil, err
	}
	if required {
		return nil, ErrNoSignOff
	}
	return nil, nil
}

// Deny 拒绝申请，权限与批准相同
func (s *earlyOutService) Deny(ctx context.Context, id, callerID string) (*dto.EarlyOutResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	request, err := s.findRequest(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDecider(actor, request); err != nil {
		return nil, err
	}
	if request.Status != model.EarlyOutPending {
		return nil, ErrInvalidState
	}

	now := s.clock()
	request.Status = model.EarlyOutDenied
	request.ActiveDate = nil
	request.AuthorizedBy = &actor.UserID
	request.ProcessedAt = &now
	request.UpdatedBy = &actor.UserID
	if err := s.repo.EarlyOut.UpdateStatus(ctx, request, model.EarlyOutPending); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrInvalidState
		}
		s.logger.Error("拒绝提前下班申请失败", zap.String("early_out_id", id), zap.Error(err))
		return nil, err
	}

	s.record(ctx, actor, "early_out.deny", "early_out_request", id, nil)

	resp := toEarlyOutResponse(request)
	return &resp, nil
}

// checkDecider 批准 / 拒绝的权限：不能处理自己的申请，须持 pencil 或为赌场经理
func (s *earlyOutService) checkDecider(actor *model.User, request *model.EarlyOutRequest) error {
	if actor.UserID == request.UserID {
		return ErrSelfAuthorization
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionAuthorizeEarlyOut, policy.Target{OwnerID: request.UserID}) {
		return ErrForbidden
	}
	return s.sameCasinoAs(actor, request)
}

// ────────────────────── CurrentList ──────────────────────

// CurrentList 当天的申请列表；荷官只能看到自己的申请
func (s *earlyOutService) CurrentList(ctx context.Context, req *dto.EarlyOutListRequest, callerID string) ([]dto.EarlyOutResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if actor.CasinoID == nil {
		return nil, ErrNoCasinoAssigned
	}

	filter := repository.EarlyOutFilter{
		CasinoID: *actor.CasinoID,
		Date:     s.today(),
		Role:     model.Role(req.ListType),
	}
	if filter.Role == "" {
		filter.Role = model.RoleDealer
	}
	switch {
	case req.Status != "":
		filter.Statuses = []model.EarlyOutStatus{model.EarlyOutStatus(req.Status)}
	case req.IncludeApproved:
		filter.Statuses = []model.EarlyOutStatus{model.EarlyOutPending, model.EarlyOutApproved}
	default:
		filter.Statuses = []model.EarlyOutStatus{model.EarlyOutPending}
	}

	list, err := s.repo.EarlyOut.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询提前下班列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EarlyOutResponse, 0, len(list))
	for i := range list {
		if actor.Role == model.RoleDealer && list[i].UserID != actor.UserID {
			continue
		}
		result = append(result, toEarlyOutResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── 辅助 ──────────────────────

func (s *earlyOutService) findRequest(ctx context.Context, repo *repository.Repository, id string) (*model.EarlyOutRequest, error) {
	request, err := repo.EarlyOut.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEarlyOutNotFound
		}
		s.logger.Error("查询提前下班申请失败", zap.String("early_out_id", id), zap.Error(err))
		return nil, err
	}
	return request, nil
}

func (s *earlyOutService) sameCasinoAs(actor *model.User, request *model.EarlyOutRequest) error {
	if request.User == nil || request.User.CasinoID == nil {
		return nil
	}
	return sameCasino(actor, *request.User.CasinoID)
}

