package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokebook/config"
	"tokebook/internal/dto"
	"tokebook/internal/model"
	"tokebook/internal/policy"
	"tokebook/internal/repository"
	pkgerrors "tokebook/pkg/errors"
)

// VacationService 荷官休假业务接口
type VacationService interface {
	Request(ctx context.Context, req *dto.CreateVacationRequest, callerID string) (*dto.VacationResponse, error)
	Get(ctx context.Context, id, callerID string) (*dto.VacationResponse, error)
	Approve(ctx context.Context, id, callerID string) (*dto.VacationResponse, error)
	Deny(ctx context.Context, id, callerID string) (*dto.VacationResponse, error)
	Cancel(ctx context.Context, id, callerID string) (*dto.VacationResponse, error)
	List(ctx context.Context, req *dto.VacationListRequest, callerID string) ([]dto.VacationResponse, error)
	MonthlyReport(ctx context.Context, year, month int, callerID string) ([]dto.VacationResponse, error)
	History(ctx context.Context, callerID string) ([]dto.VacationMonthGroup, error)
	ExportICS(ctx context.Context, callerID string) ([]byte, error)
}

type vacationService struct {
	workflow
	historyMonths int
}

// NewVacationService 创建 VacationService 实例
func NewVacationService(cfg *config.TokeConfig, repo *repository.Repository, audit AuditSink, logger *zap.Logger, opts ...Option) VacationService {
	months := 12
	if cfg != nil && cfg.VacationHistoryMonths > 0 {
		months = cfg.VacationHistoryMonths
	}
	return &vacationService{
		workflow:      newWorkflow(cfg, repo, audit, logger, opts),
		historyMonths: months,
	}
}

// ────────────────────── 申请与审批 ──────────────────────

func (s *vacationService) Request(ctx context.Context, req *dto.CreateVacationRequest, callerID string) (*dto.VacationResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionRequestVacation, policy.Target{}) {
		return nil, ErrForbidden
	}

	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := model.ParseDate(req.EndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	vacation := &model.DealerVacation{
		UserID:         actor.UserID,
		StartDate:      start,
		EndDate:        end,
		Status:         model.VacationPending,
		Notes:          req.Notes,
		VersionedModel: model.VersionedModel{BaseModel: model.BaseModel{CreatedBy: &actor.UserID}},
	}
	if err := s.repo.Vacation.Create(ctx, vacation); err != nil {
		if errors.Is(err, model.ErrVacationRange) {
			return nil, ErrInvalidRange
		}
		s.logger.Error("创建休假申请失败", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionRequestVacation), "dealer_vacation", vacation.VacationID, map[string]any{
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
	})

	vacation.User = actor
	resp := toVacationResponse(vacation)
	return &resp, nil
}

func (s *vacationService) Get(ctx context.Context, id, callerID string) (*dto.VacationResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	vacation, err := s.findVacation(ctx, id)
	if err != nil {
		return nil, err
	}
	if vacation.UserID != actor.UserID {
		if !policy.Can(policy.ActorOf(actor), policy.ActionViewAllVacations, policy.Target{}) {
			return nil, ErrForbidden
		}
		if err := s.sameCasinoAs(actor, vacation); err != nil {
			return nil, err
		}
	}
	resp := toVacationResponse(vacation)
	return &resp, nil
}

func (s *vacationService) Approve(ctx context.Context, id, callerID string) (*dto.VacationResponse, error) {
	return s.decide(ctx, id, callerID, model.VacationApproved)
}

func (s *vacationService) Deny(ctx context.Context, id, callerID string) (*dto.VacationResponse, error) {
	return s.decide(ctx, id, callerID, model.VacationDenied)
}

// decide PENDING → APPROVED / DENIED
func (s *vacationService) decide(ctx context.Context, id, callerID string, to model.VacationStatus) (*dto.VacationResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionDecideVacation, policy.Target{}) {
		return nil, ErrForbidden
	}
	vacation, err := s.findVacation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sameCasinoAs(actor, vacation); err != nil {
		return nil, err
	}
	if vacation.Status != model.VacationPending {
		return nil, ErrInvalidState
	}

	vacation.Status = to
	vacation.UpdatedBy = &actor.UserID
	if to == model.VacationApproved {
		now := s.clock()
		vacation.ApprovedBy = &actor.UserID
		vacation.ApprovedAt = &now
	}
	if err := s.repo.Vacation.UpdateStatus(ctx, vacation, model.VacationPending); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrInvalidState
		}
		s.logger.Error("审批休假失败", zap.String("vacation_id", id), zap.Error(err))
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionDecideVacation), "dealer_vacation", id, map[string]any{
		"status": string(to),
	})

	resp := toVacationResponse(vacation)
	return &resp, nil
}

// Cancel 申请人取消，任何未取消状态均可取消
func (s *vacationService) Cancel(ctx context.Context, id, callerID string) (*dto.VacationResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	vacation, err := s.findVacation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionCancelVacation, policy.Target{OwnerID: vacation.UserID}) {
		return nil, ErrForbidden
	}
	if vacation.Status == model.VacationCancelled {
		return nil, ErrInvalidState
	}

	from := vacation.Status
	vacation.Status = model.VacationCancelled
	vacation.UpdatedBy = &actor.UserID
	if err := s.repo.Vacation.UpdateStatus(ctx, vacation, from); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrInvalidState
		}
		s.logger.Error("取消休假失败", zap.String("vacation_id", id), zap.Error(err))
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionCancelVacation), "dealer_vacation", id, map[string]any{
		"from_status": string(from),
	})

	resp := toVacationResponse(vacation)
	return &resp, nil
}

// ────────────────────── 查询 ──────────────────────

// List 经理查看本赌场全部休假，其他角色只看自己的
func (s *vacationService) List(ctx context.Context, req *dto.VacationListRequest, callerID string) ([]dto.VacationResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}

	filter, err := s.scopedFilter(actor)
	if err != nil {
		return nil, err
	}
	filter.Status = model.VacationStatus(req.Status)
	if req.From != "" {
		if filter.From, err = model.ParseDate(req.From); err != nil {
			return nil, ErrInvalidDate
		}
	}
	if req.To != "" {
		if filter.To, err = model.ParseDate(req.To); err != nil {
			return nil, ErrInvalidDate
		}
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, ErrInvalidRange
	}

	list, err := s.repo.Vacation.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询休假列表失败", zap.Error(err))
		return nil, err
	}
	return toVacationResponses(list), nil
}

// MonthlyReport 开始日期落在指定月份的全部休假
func (s *vacationService) MonthlyReport(ctx context.Context, year, month int, callerID string) ([]dto.VacationResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionDecideVacation, policy.Target{}) {
		return nil, ErrForbidden
	}
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, ErrInvalidMonth
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	list, err := s.repo.Vacation.ListByStartRange(ctx, from, from.AddDate(0, 1, 0), "")
	if err != nil {
		s.logger.Error("查询休假月报失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, err
	}
	return toVacationResponses(s.inCasino(actor, list)), nil
}

// History 最近 N 个月已批准的休假，按开始月份倒序分组
func (s *vacationService) History(ctx context.Context, callerID string) ([]dto.VacationMonthGroup, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionDecideVacation, policy.Target{}) {
		return nil, ErrForbidden
	}

	today := s.today()
	list, err := s.repo.Vacation.ListByStartRange(ctx, today.AddDate(0, -s.historyMonths, 0), today.AddDate(0, 0, 1), model.VacationApproved)
	if err != nil {
		s.logger.Error("查询休假历史失败", zap.Error(err))
		return nil, err
	}
	list = s.inCasino(actor, list)

	groups := make([]dto.VacationMonthGroup, 0)
	index := make(map[string]int)
	for i := len(list) - 1; i >= 0; i-- {
		key := list[i].StartDate.Format("2006-01")
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, dto.VacationMonthGroup{Month: key})
		}
		groups[pos].Vacations = append(groups[pos].Vacations, toVacationResponse(&list[i]))
	}
	return groups, nil
}

// ExportICS 导出调用者可见的已批准休假日历
func (s *vacationService) ExportICS(ctx context.Context, callerID string) ([]byte, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	filter, err := s.scopedFilter(actor)
	if err != nil {
		return nil, err
	}
	filter.Status = model.VacationApproved

	list, err := s.repo.Vacation.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询休假日历失败", zap.Error(err))
		return nil, err
	}
	return []byte(buildVacationCalendar(list, s.clock())), nil
}

// buildVacationCalendar 每条休假生成一个全天事件，DTEND 为结束日次日
func buildVacationCalendar(vacations []model.DealerVacation, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tokebook//dealer vacations//EN")
	cal.SetXWRCalName("Dealer Vacations")

	for i := range vacations {
		v := &vacations[i]
		event := cal.AddEvent(v.VacationID + "@tokebook")
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(model.DateOf(v.StartDate))
		event.SetAllDayEndAt(model.DateOf(v.EndDate).AddDate(0, 0, 1))

		name := v.UserID
		if v.User != nil {
			name = fmt.Sprintf("%s (%s)", v.User.FullName(), v.User.EmployeeID)
		}
		event.SetSummary("Vacation: " + name)
		if v.Notes != "" {
			event.SetDescription(v.Notes)
		}
	}
	return cal.Serialize()
}

// ────────────────────── 辅助 ──────────────────────

func (s *vacationService) findVacation(ctx context.Context, id string) (*model.DealerVacation, error) {
	vacation, err := s.repo.Vacation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVacationNotFound
		}
		s.logger.Error("查询休假记录失败", zap.String("vacation_id", id), zap.Error(err))
		return nil, err
	}
	return vacation, nil
}

// scopedFilter 按角色限定可见范围
func (s *vacationService) scopedFilter(actor *model.User) (repository.VacationFilter, error) {
	if !policy.Can(policy.ActorOf(actor), policy.ActionViewAllVacations, policy.Target{}) {
		return repository.VacationFilter{UserID: actor.UserID}, nil
	}
	if actor.Role == model.RoleAdmin {
		return repository.VacationFilter{}, nil
	}
	if actor.CasinoID == nil {
		return repository.VacationFilter{}, ErrNoCasinoAssigned
	}
	return repository.VacationFilter{CasinoID: *actor.CasinoID}, nil
}

func (s *vacationService) sameCasinoAs(actor *model.User, v *model.DealerVacation) error {
	if v.User == nil || v.User.CasinoID == nil {
		return nil
	}
	return sameCasino(actor, *v.User.CasinoID)
}

// inCasino 过滤掉其他赌场的记录（管理员不过滤）
func (s *vacationService) inCasino(actor *model.User, list []model.DealerVacation) []model.DealerVacation {
	if actor.Role == model.RoleAdmin {
		return list
	}
	out := list[:0]
	for _, v := range list {
		if v.User != nil && v.User.CasinoID != nil && actor.CasinoID != nil && *v.User.CasinoID == *actor.CasinoID {
			out = append(out, v)
		}
	}
	return out
}

func toVacationResponses(list []model.DealerVacation) []dto.VacationResponse {
	result := make([]dto.VacationResponse, 0, len(list))
	for i := range list {
		result = append(result, toVacationResponse(&list[i]))
	}
	return result
}
