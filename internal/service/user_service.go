package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tokebook/internal/dto"
	"tokebook/internal/model"
	"tokebook/internal/policy"
	"tokebook/internal/repository"
	pkgerrors "tokebook/pkg/errors"
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	Get(ctx context.Context, id, callerID string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest, callerID string) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	Archive(ctx context.Context, id, callerID string) (*dto.UserResponse, error)
	Reactivate(ctx context.Context, id, callerID string) (*dto.UserResponse, error)
	GrantPencil(ctx context.Context, id, callerID string) (*dto.UserResponse, error)
	RevokePencil(ctx context.Context, id, callerID string) (*dto.UserResponse, error)
	VerifyPencil(ctx context.Context, req *dto.VerifyPencilRequest, callerID string) (*dto.PencilVerifyResponse, error)
}

type userService struct {
	workflow
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, audit AuditSink, logger *zap.Logger, opts ...Option) UserService {
	return &userService{workflow: newWorkflow(nil, repo, audit, logger, opts)}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionManageUsers, policy.Target{}) {
		return nil, ErrForbidden
	}

	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role == model.RoleAdmin && actor.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	if req.Shift != nil && (*req.Shift < model.ShiftDay || *req.Shift > model.ShiftGrave) {
		return nil, ErrInvalidShift
	}

	casinoID, err := s.resolveCasino(ctx, actor, req.CasinoID)
	if err != nil {
		return nil, err
	}

	employeeID := strings.TrimSpace(req.EmployeeID)
	if _, err := s.repo.User.GetByEmployeeID(ctx, employeeID); err == nil {
		return nil, ErrEmployeeIDExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询工号失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		EmployeeID:     employeeID,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		PasswordHash:   string(hash),
		Role:           role,
		CasinoID:       casinoID,
		Shift:          req.Shift,
		IsActive:       true,
		VersionedModel: model.VersionedModel{BaseModel: model.BaseModel{CreatedBy: &actor.UserID}},
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmployeeIDExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionManageUsers), "user", user.UserID, map[string]any{
		"op":   "create",
		"role": string(role),
	})

	resp := toUserResponse(user)
	return &resp, nil
}

// resolveCasino 非管理员创建的用户默认归属自己的赌场
func (s *userService) resolveCasino(ctx context.Context, actor *model.User, requested *string) (*string, error) {
	if requested == nil {
		if actor.Role == model.RoleAdmin {
			return nil, nil
		}
		return actor.CasinoID, nil
	}
	if err := sameCasino(actor, *requested); err != nil {
		return nil, err
	}
	if _, err := s.repo.Casino.GetByID(ctx, *requested); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCasinoNotFound
		}
		s.logger.Error("查询赌场失败", zap.Error(err))
		return nil, err
	}
	id := *requested
	return &id, nil
}

// ────────────────────── Query ──────────────────────

func (s *userService) Get(ctx context.Context, id, callerID string) (*dto.UserResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if id != actor.UserID && !policy.Can(policy.ActorOf(actor), policy.ActionManageUsers, policy.Target{}) {
		return nil, ErrForbidden
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sameCasinoAs(actor, user); err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest, callerID string) ([]dto.UserResponse, int64, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionManageUsers, policy.Target{}) {
		return nil, 0, ErrForbidden
	}

	filter := repository.UserFilter{
		Role:            model.Role(req.Role),
		IncludeArchived: req.IncludeArchived,
		Offset:          req.GetOffset(),
		Limit:           req.GetPageSize(),
	}
	if actor.Role != model.RoleAdmin {
		if actor.CasinoID == nil {
			return nil, 0, ErrNoCasinoAssigned
		}
		filter.CasinoID = *actor.CasinoID
	}

	users, total, err := s.repo.User.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionManageUsers, policy.Target{}) {
		return nil, ErrForbidden
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sameCasinoAs(actor, user); err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		if !role.Valid() {
			return nil, ErrInvalidRole
		}
		if (role == model.RoleAdmin || user.Role == model.RoleAdmin) && actor.Role != model.RoleAdmin {
			return nil, ErrForbidden
		}
		// 离开赌场经理角色时收回自动授予的 pencil
		if user.Role == model.RoleCasinoManager && role != model.RoleCasinoManager {
			user.HasPencil = false
			user.PencilID = nil
		}
		user.Role = role
	}
	if req.CasinoID != nil {
		casinoID, err := s.resolveCasino(ctx, actor, req.CasinoID)
		if err != nil {
			return nil, err
		}
		user.CasinoID = casinoID
	}
	if req.Shift != nil {
		if *req.Shift < model.ShiftDay || *req.Shift > model.ShiftGrave {
			return nil, ErrInvalidShift
		}
		user.Shift = req.Shift
	}

	user.UpdatedBy = &actor.UserID
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionManageUsers), "user", id, map[string]any{"op": "update"})

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── 归档 ──────────────────────

func (s *userService) Archive(ctx context.Context, id, callerID string) (*dto.UserResponse, error) {
	return s.setArchived(ctx, id, callerID, true)
}

func (s *userService) Reactivate(ctx context.Context, id, callerID string) (*dto.UserResponse, error) {
	return s.setArchived(ctx, id, callerID, false)
}

func (s *userService) setArchived(ctx context.Context, id, callerID string, archive bool) (*dto.UserResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionArchiveUser, policy.Target{OwnerID: id}) {
		return nil, ErrForbidden
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sameCasinoAs(actor, user); err != nil {
		return nil, err
	}
	if user.IsActive != archive {
		return nil, ErrInvalidState
	}

	if archive {
		now := s.clock()
		user.IsActive = false
		user.ArchivedBy = &actor.UserID
		user.ArchivedAt = &now
	} else {
		user.IsActive = true
		user.ArchivedBy = nil
		user.ArchivedAt = nil
	}
	user.UpdatedBy = &actor.UserID
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	op := "reactivate"
	if archive {
		op = "archive"
	}
	s.record(ctx, actor, string(policy.ActionArchiveUser), "user", id, map[string]any{"op": op})

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Pencil ──────────────────────

// GrantPencil 赌场经理为主管授予 pencil，编号等于主管工号
func (s *userService) GrantPencil(ctx context.Context, id, callerID string) (*dto.UserResponse, error) {
	return s.setPencil(ctx, id, callerID, true)
}

// RevokePencil 收回主管的 pencil
func (s *userService) RevokePencil(ctx context.Context, id, callerID string) (*dto.UserResponse, error) {
	return s.setPencil(ctx, id, callerID, false)
}

func (s *userService) setPencil(ctx context.Context, id, callerID string, grant bool) (*dto.UserResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleCasinoManager {
		return nil, ErrForbidden
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleSupervisor {
		return nil, ErrNotSupervisor
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionGrantPencil, policy.Target{OwnerID: user.UserID, OwnerRole: user.Role}) {
		return nil, ErrForbidden
	}
	if err := s.sameCasinoAs(actor, user); err != nil {
		return nil, err
	}

	if grant {
		pid := user.EmployeeID
		user.HasPencil = true
		user.PencilID = &pid
	} else {
		user.HasPencil = false
		user.PencilID = nil
	}
	user.UpdatedBy = &actor.UserID
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.record(ctx, actor, string(policy.ActionGrantPencil), "user", id, map[string]any{"granted": grant})

	resp := toUserResponse(user)
	return &resp, nil
}

// VerifyPencil 主管输入 pencil 编号，与记录一致时启用 pencil 权限
func (s *userService) VerifyPencil(ctx context.Context, req *dto.VerifyPencilRequest, callerID string) (*dto.PencilVerifyResponse, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionVerifyPencil, policy.Target{}) {
		return nil, ErrForbidden
	}
	if actor.PencilID == nil || *actor.PencilID != strings.TrimSpace(req.PencilID) {
		return nil, ErrPencilInvalid
	}

	if !actor.HasPencil {
		actor.HasPencil = true
		actor.UpdatedBy = &actor.UserID
		if err := s.save(ctx, actor); err != nil {
			return nil, err
		}
		s.record(ctx, actor, string(policy.ActionVerifyPencil), "user", actor.UserID, nil)
	}

	return &dto.PencilVerifyResponse{Verified: true, HasPencil: true}, nil
}

// ────────────────────── 辅助 ──────────────────────

func (s *userService) save(ctx context.Context, user *model.User) error {
	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrInvalidState
		}
		s.logger.Error("更新用户失败", zap.String("user_id", user.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) sameCasinoAs(actor *model.User, user *model.User) error {
	if actor.Role == model.RoleAdmin || user.CasinoID == nil {
		return nil
	}
	return sameCasino(actor, *user.CasinoID)
}
