package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokebook/internal/dto"
	"tokebook/internal/model"
	"tokebook/internal/policy"
	"tokebook/internal/repository"
	pkgerrors "tokebook/pkg/errors"
)

// DiscrepancyService 小费清点差异业务接口
// 状态只能 PENDING → VERIFIED → RESOLVED 单向推进
type DiscrepancyService interface {
	Report(ctx context.Context, req *dto.ReportDiscrepancyRequest, callerID string) (*dto.DiscrepancyResponse, error)
	Get(ctx context.Context, id, callerID string) (*dto.DiscrepancyResponse, error)
	List(ctx context.Context, req *dto.DiscrepancyListRequest, callerID string) ([]dto.DiscrepancyResponse, int64, error)
	Verify(ctx context.Context, id string, req *dto.VerifyDiscrepancyRequest, callerID string) (*dto.DiscrepancyResponse, error)
	Resolve(ctx context.Context, id string, req *dto.ResolveDiscrepancyRequest, callerID string) (*dto.DiscrepancyResponse, error)
}

type discrepancyService struct {
	workflow
}

// NewDiscrepancyService 创建 DiscrepancyService 实例
func NewDiscrepancyService(repo *repository.Repository, audit AuditSink, logger *zap.Logger, opts ...Option) DiscrepancyService {
	return &discrepancyService{workflow: newWorkflow(nil, repo, audit, logger, opts)}
}

func (s *discrepancyService) Report(ctx context.Context, req *dto.ReportDiscrepancyRequest, callerID string) (*dto.DiscrepancyResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionReportDiscrepancy, policy.Target{}) {
		return nil, ErrForbidden
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	// 归属赌场：关联周期优先，否则取上报人所在赌场
	var casinoID string
	if req.TokePeriodID != nil {
		period, err := s.repo.TokePeriod.GetByID(ctx, *req.TokePeriodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPeriodNotFound
			}
			s.logger.Error("查询小费池周期失败", zap.Error(err))
			return nil, err
		}
		if err := sameCasino(actor, period.CasinoID); err != nil {
			return nil, err
		}
		casinoID = period.CasinoID
	} else {
		if actor.CasinoID == nil {
			return nil, ErrNoCasinoAssigned
		}
		casinoID = *actor.CasinoID
	}

	d := &model.Discrepancy{
		ReportedBy:     actor.UserID,
		CasinoID:       casinoID,
		TokePeriodID:   req.TokePeriodID,
		Description:    description,
		Status:         model.DiscrepancyPending,
		VersionedModel: model.VersionedModel{BaseModel: model.BaseModel{CreatedBy: &actor.UserID}},
	}
	if err := s.repo.Discrepancy.Create(ctx, d); err != nil {
		s.logger.Error("上报差异失败", zap.Error(err))
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionReportDiscrepancy), "discrepancy", d.DiscrepancyID, nil)

	resp := toDiscrepancyResponse(d)
	return &resp, nil
}

func (s *discrepancyService) Get(ctx context.Context, id, callerID string) (*dto.DiscrepancyResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	d, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := toDiscrepancyResponse(d)
	return &resp, nil
}

func (s *discrepancyService) List(ctx context.Context, req *dto.DiscrepancyListRequest, callerID string) ([]dto.DiscrepancyResponse, int64, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.DiscrepancyFilter{Status: model.DiscrepancyStatus(req.Status)}
	if actor.Role != model.RoleAdmin {
		if actor.CasinoID == nil {
			return nil, 0, ErrNoCasinoAssigned
		}
		filter.CasinoID = *actor.CasinoID
	}

	list, total, err := s.repo.Discrepancy.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询差异列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.DiscrepancyResponse, 0, len(list))
	for i := range list {
		result = append(result, toDiscrepancyResponse(&list[i]))
	}
	return result, total, nil
}

// Verify 小费经理核实，结果只能是 VERIFIED
func (s *discrepancyService) Verify(ctx context.Context, id string, req *dto.VerifyDiscrepancyRequest, callerID string) (*dto.DiscrepancyResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionVerifyDiscrepancy, policy.Target{}) {
		return nil, ErrForbidden
	}
	if req.Outcome != "" && model.DiscrepancyStatus(req.Outcome) != model.DiscrepancyVerified {
		return nil, ErrInvalidOutcome
	}

	d, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if d.Status != model.DiscrepancyPending {
		return nil, ErrInvalidState
	}

	now := s.clock()
	d.Status = model.DiscrepancyVerified
	d.VerifiedBy = &actor.UserID
	d.VerifiedAt = &now
	d.VerificationNotes = req.Notes
	d.UpdatedBy = &actor.UserID
	if err := s.advance(ctx, d, model.DiscrepancyPending); err != nil {
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionVerifyDiscrepancy), "discrepancy", id, nil)

	resp := toDiscrepancyResponse(d)
	return &resp, nil
}

// Resolve 赌场经理处理，只接受已核实的差异
func (s *discrepancyService) Resolve(ctx context.Context, id string, req *dto.ResolveDiscrepancyRequest, callerID string) (*dto.DiscrepancyResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionResolveDiscrepancy, policy.Target{}) {
		return nil, ErrForbidden
	}

	d, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if d.Status != model.DiscrepancyVerified {
		return nil, ErrInvalidState
	}

	now := s.clock()
	d.Status = model.DiscrepancyResolved
	d.ResolvedBy = &actor.UserID
	d.ResolvedAt = &now
	d.ResolutionNotes = req.Notes
	d.UpdatedBy = &actor.UserID
	if err := s.advance(ctx, d, model.DiscrepancyVerified); err != nil {
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionResolveDiscrepancy), "discrepancy", id, nil)

	resp := toDiscrepancyResponse(d)
	return &resp, nil
}

func (s *discrepancyService) advance(ctx context.Context, d *model.Discrepancy, from model.DiscrepancyStatus) error {
	if err := s.repo.Discrepancy.UpdateStatus(ctx, d, from); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrInvalidState
		}
		s.logger.Error("更新差异状态失败", zap.String("discrepancy_id", d.DiscrepancyID), zap.Error(err))
		return err
	}
	return nil
}

// find 加载差异单并校验赌场归属
func (s *discrepancyService) find(ctx context.Context, actor *model.User, id string) (*model.Discrepancy, error) {
	d, err := s.repo.Discrepancy.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscrepancyNotFound
		}
		s.logger.Error("查询差异失败", zap.String("discrepancy_id", id), zap.Error(err))
		return nil, err
	}
	if err := sameCasino(actor, d.CasinoID); err != nil {
		return nil, err
	}
	return d, nil
}
