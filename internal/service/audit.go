package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tokebook/internal/dto"
	"tokebook/internal/model"
	"tokebook/internal/policy"
	"tokebook/internal/repository"
)

// AuditEvent 一次成功的状态变更
type AuditEvent struct {
	Action    string
	ActorID   string
	CasinoID  *string
	ModelName string
	RecordID  string
	Details   map[string]any
}

// AuditSink 审计旁路：业务事务提交后调用，失败不影响业务结果
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent)
}

// AuditService 审计日志业务接口
type AuditService interface {
	AuditSink
	List(ctx context.Context, req *dto.AuditLogListRequest, callerID string) ([]dto.AuditLogResponse, int64, error)
}

// ── 客户端信息 ──

// ClientInfo 请求来源，由 HTTP 中间件写入 context
type ClientInfo struct {
	IP        string
	UserAgent string
	Browser   string
	OS        string
	Mobile    bool
}

type clientInfoKey struct{}

// WithClientInfo 将客户端信息写入 context
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// ClientInfoFrom 读取客户端信息，不存在时返回零值
func ClientInfoFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) Record(ctx context.Context, ev AuditEvent) {
	info := ClientInfoFrom(ctx)

	details := make(map[string]any, len(ev.Details)+3)
	for k, v := range ev.Details {
		details[k] = v
	}
	if info.Browser != "" {
		details["browser"] = info.Browser
	}
	if info.OS != "" {
		details["os"] = info.OS
	}
	if info.Mobile {
		details["mobile"] = true
	}

	raw, err := json.Marshal(details)
	if err != nil {
		s.logger.Warn("审计详情序列化失败", zap.String("action", ev.Action), zap.Error(err))
		raw = []byte("{}")
	}

	entry := &model.AuditLog{
		CasinoID:  ev.CasinoID,
		Action:    ev.Action,
		ModelName: ev.ModelName,
		RecordID:  ev.RecordID,
		Details:   datatypes.JSON(raw),
		IPAddress: info.IP,
		UserAgent: truncate(info.UserAgent, 255),
	}
	if ev.ActorID != "" {
		actorID := ev.ActorID
		entry.UserID = &actorID
	}

	// 请求取消不应丢失已提交操作的审计记录
	if err := s.repo.AuditLog.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("写入审计日志失败",
			zap.String("action", ev.Action),
			zap.String("record_id", ev.RecordID),
			zap.Error(err),
		)
	}
}

func (s *auditService) List(ctx context.Context, req *dto.AuditLogListRequest, callerID string) ([]dto.AuditLogResponse, int64, error) {
	caller, err := s.repo.User.GetByID(ctx, callerID)
	if err != nil || !caller.IsActive {
		return nil, 0, ErrForbidden
	}
	if !policy.Can(policy.ActorOf(caller), policy.ActionViewAudit, policy.Target{}) {
		return nil, 0, ErrForbidden
	}

	logs, total, err := s.repo.AuditLog.List(ctx, repository.AuditLogFilter{
		UserID:    req.UserID,
		Action:    req.Action,
		ModelName: req.ModelName,
		RecordID:  req.RecordID,
		Offset:    req.GetOffset(),
		Limit:     req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AuditLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		result = append(result, dto.AuditLogResponse{
			ID:        l.AuditLogID,
			UserID:    l.UserID,
			CasinoID:  l.CasinoID,
			Action:    l.Action,
			ModelName: l.ModelName,
			RecordID:  l.RecordID,
			Details:   json.RawMessage(l.Details),
			IPAddress: l.IPAddress,
			UserAgent: l.UserAgent,
			CreatedAt: formatTime(l.CreatedAt),
		})
	}
	return result, total, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
