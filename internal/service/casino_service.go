package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokebook/config"
	"tokebook/internal/dto"
	"tokebook/internal/model"
	"tokebook/internal/policy"
	"tokebook/internal/repository"
)

// CasinoService 赌场与班次配置业务接口
type CasinoService interface {
	Create(ctx context.Context, req *dto.CasinoRequest, callerID string) (*dto.CasinoResponse, error)
	Get(ctx context.Context, id string) (*dto.CasinoResponse, error)
	List(ctx context.Context) ([]dto.CasinoResponse, error)
	Update(ctx context.Context, id string, req *dto.CasinoRequest, callerID string) (*dto.CasinoResponse, error)
	CurrentShift(ctx context.Context, id string) (*dto.CurrentShiftResponse, error)
}

type casinoService struct {
	workflow
}

// NewCasinoService 创建 CasinoService 实例
func NewCasinoService(cfg *config.TokeConfig, repo *repository.Repository, audit AuditSink, logger *zap.Logger, opts ...Option) CasinoService {
	return &casinoService{workflow: newWorkflow(cfg, repo, audit, logger, opts)}
}

func (s *casinoService) Create(ctx context.Context, req *dto.CasinoRequest, callerID string) (*dto.CasinoResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	casino := &model.Casino{BaseModel: model.BaseModel{CreatedBy: &actor.UserID}}
	if err := applyCasinoRequest(casino, req); err != nil {
		return nil, err
	}
	if err := s.repo.Casino.Create(ctx, casino); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCasinoNameExists
		}
		s.logger.Error("创建赌场失败", zap.Error(err))
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionManageCasino), "casino", casino.CasinoID, map[string]any{"op": "create"})

	resp := toCasinoResponse(casino)
	return &resp, nil
}

func (s *casinoService) Get(ctx context.Context, id string) (*dto.CasinoResponse, error) {
	casino, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCasinoResponse(casino)
	return &resp, nil
}

func (s *casinoService) List(ctx context.Context) ([]dto.CasinoResponse, error) {
	casinos, err := s.repo.Casino.List(ctx)
	if err != nil {
		s.logger.Error("查询赌场列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CasinoResponse, 0, len(casinos))
	for i := range casinos {
		result = append(result, toCasinoResponse(&casinos[i]))
	}
	return result, nil
}

// Update 修改名称与班次边界；赌场经理只能修改本赌场
func (s *casinoService) Update(ctx context.Context, id string, req *dto.CasinoRequest, callerID string) (*dto.CasinoResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionManageCasino, policy.Target{}) {
		return nil, ErrForbidden
	}
	if err := sameCasino(actor, id); err != nil {
		return nil, err
	}

	casino, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyCasinoRequest(casino, req); err != nil {
		return nil, err
	}
	casino.UpdatedBy = &actor.UserID
	if err := s.repo.Casino.Update(ctx, casino); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCasinoNameExists
		}
		s.logger.Error("更新赌场失败", zap.String("casino_id", id), zap.Error(err))
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionManageCasino), "casino", id, map[string]any{"op": "update"})

	resp := toCasinoResponse(casino)
	return &resp, nil
}

// CurrentShift 按赌场本地时间判断当前班次
func (s *casinoService) CurrentShift(ctx context.Context, id string) (*dto.CurrentShiftResponse, error) {
	casino, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	local := s.now().In(s.loc)
	return &dto.CurrentShiftResponse{
		CasinoID: casino.CasinoID,
		Shift:    string(CurrentShift(casino, local)),
		At:       local.Format("15:04"),
	}, nil
}

func (s *casinoService) find(ctx context.Context, id string) (*model.Casino, error) {
	casino, err := s.repo.Casino.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCasinoNotFound
		}
		s.logger.Error("查询赌场失败", zap.String("casino_id", id), zap.Error(err))
		return nil, err
	}
	return casino, nil
}

// applyCasinoRequest 写入请求字段，空边界取默认值
func applyCasinoRequest(c *model.Casino, req *dto.CasinoRequest) error {
	c.Name = strings.TrimSpace(req.Name)

	bounds := []struct {
		dst *string
		in  string
		def string
	}{
		{&c.GraveStart, req.GraveStart, model.DefaultGraveStart},
		{&c.GraveEnd, req.GraveEnd, model.DefaultGraveEnd},
		{&c.DayStart, req.DayStart, model.DefaultDayStart},
		{&c.DayEnd, req.DayEnd, model.DefaultDayEnd},
		{&c.SwingStart, req.SwingStart, model.DefaultSwingStart},
		{&c.SwingEnd, req.SwingEnd, model.DefaultSwingEnd},
	}
	for _, b := range bounds {
		v := strings.TrimSpace(b.in)
		if v == "" {
			if *b.dst == "" {
				*b.dst = b.def
			}
			continue
		}
		minutes, ok := parseClock(v)
		if !ok {
			return ErrInvalidShiftTime
		}
		*b.dst = clockString(minutes)
	}
	return nil
}

func clockString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
