package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"tokebook/config"
	"tokebook/internal/model"
	"tokebook/internal/repository"
)

// ── 测试环境 ──

// fixedNow 测试统一使用的"现在"：2024-03-15 12:00 UTC
var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

const testDate = "2024-03-15"

type testEnv struct {
	store  *memStore
	repo   *repository.Repository
	cfg    *config.TokeConfig
	now    time.Time
	casino *model.Casino

	otherCasino *model.Casino // seedOutsider 按需创建

	dealer     *model.User
	dealer2    *model.User
	supervisor *model.User // 持有 pencil
	tokeMgr    *model.User
	casinoMgr  *model.User
	accounting *model.User
	admin      *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	env := &testEnv{
		store: store,
		repo:  store.repository(),
		cfg: &config.TokeConfig{
			Timezone:              "UTC",
			DefaultScheduledHours: "8",
			VacationCreditHours:   "8",
			VacationHistoryMonths: 12,
		},
		now: fixedNow,
	}

	env.casino = &model.Casino{
		Name:       "Riverside",
		GraveStart: model.DefaultGraveStart,
		GraveEnd:   model.DefaultGraveEnd,
		DayStart:   model.DefaultDayStart,
		DayEnd:     model.DefaultDayEnd,
		SwingStart: model.DefaultSwingStart,
		SwingEnd:   model.DefaultSwingEnd,
	}
	if err := env.repo.Casino.Create(context.Background(), env.casino); err != nil {
		t.Fatalf("创建赌场失败: %v", err)
	}

	env.dealer = env.seedUser(t, "D001", "Alice", model.RoleDealer)
	env.dealer2 = env.seedUser(t, "D002", "Bob", model.RoleDealer)
	env.supervisor = env.seedUser(t, "S001", "Carol", model.RoleSupervisor)
	env.tokeMgr = env.seedUser(t, "T001", "Dave", model.RoleTokeManager)
	env.casinoMgr = env.seedUser(t, "C001", "Erin", model.RoleCasinoManager)
	env.accounting = env.seedUser(t, "A001", "Frank", model.RoleAccounting)
	env.admin = env.seedUser(t, "X001", "Grace", model.RoleAdmin)

	pencil := env.supervisor.EmployeeID
	env.supervisor.HasPencil = true
	env.supervisor.PencilID = &pencil
	if err := env.repo.User.Update(context.Background(), env.supervisor); err != nil {
		t.Fatalf("授予 pencil 失败: %v", err)
	}
	return env
}

func (e *testEnv) seedUser(t *testing.T, employeeID, name string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		EmployeeID:   employeeID,
		FirstName:    name,
		LastName:     "Test",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if role != model.RoleAdmin {
		casinoID := e.casino.CasinoID
		u.CasinoID = &casinoID
	}
	if err := e.repo.User.Create(context.Background(), u); err != nil {
		t.Fatalf("创建用户 %s 失败: %v", employeeID, err)
	}
	return u
}

// seedOutsider 创建隶属于另一家赌场（Lakeside）的用户
func (e *testEnv) seedOutsider(t *testing.T, employeeID, name string, role model.Role) *model.User {
	t.Helper()
	ctx := context.Background()
	if e.otherCasino == nil {
		e.otherCasino = &model.Casino{Name: "Lakeside"}
		if err := e.repo.Casino.Create(ctx, e.otherCasino); err != nil {
			t.Fatalf("创建赌场失败: %v", err)
		}
	}
	u := e.seedUser(t, employeeID, name, role)
	u.CasinoID = &e.otherCasino.CasinoID
	if err := e.repo.User.Update(ctx, u); err != nil {
		t.Fatalf("更新用户失败: %v", err)
	}
	return u
}

func (e *testEnv) clock() Option {
	return WithClock(func() time.Time { return e.now })
}

func (e *testEnv) tokeService() TokeService {
	return NewTokeService(e.cfg, e.repo, NewAuditService(e.repo, zap.NewNop()), zap.NewNop(), e.clock())
}

func (e *testEnv) earlyOutService() EarlyOutService {
	return NewEarlyOutService(e.cfg, e.repo, NewAuditService(e.repo, zap.NewNop()), zap.NewNop(), e.clock())
}

func (e *testEnv) vacationService() VacationService {
	return NewVacationService(e.cfg, e.repo, NewAuditService(e.repo, zap.NewNop()), zap.NewNop(), e.clock())
}

func (e *testEnv) discrepancyService() DiscrepancyService {
	return NewDiscrepancyService(e.repo, NewAuditService(e.repo, zap.NewNop()), zap.NewNop(), e.clock())
}

func (e *testEnv) userService() UserService {
	return NewUserService(e.repo, NewAuditService(e.repo, zap.NewNop()), zap.NewNop(), e.clock())
}

func (e *testEnv) casinoService() CasinoService {
	return NewCasinoService(e.cfg, e.repo, NewAuditService(e.repo, zap.NewNop()), zap.NewNop(), e.clock())
}

// openPeriod 荷官视角获取今天的周期
func (e *testEnv) openPeriod(t *testing.T, svc TokeService) string {
	t.Helper()
	p, err := svc.CurrentPeriod(context.Background(), e.dealer.UserID)
	if err != nil {
		t.Fatalf("CurrentPeriod 应成功: %v", err)
	}
	return p.ID
}

func strPtr(s string) *string { return &s }
