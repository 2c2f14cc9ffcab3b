package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tokebook/internal/dto"
	"tokebook/internal/model"
)

func signOff(t *testing.T, svc TokeService, userID, periodID, hours string) *dto.SignOffResponse {
	t.Helper()
	resp, err := svc.CreateSignOff(context.Background(), &dto.CreateSignOffRequest{
		TokePeriodID:   periodID,
		ScheduledHours: hoursPtr(hours),
		ShiftStart:     strPtr("14:00"),
		ShiftEnd:       strPtr("22:00"),
		ShiftDate:      testDate,
	}, userID)
	if err != nil {
		t.Fatalf("CreateSignOff 应成功: %v", err)
	}
	return resp
}

// ── 完整流程：签到 → 提前下班 → 设置奖池 → 结算 ──

func TestTokeService_FullDistribution(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	earlyOut := env.earlyOutService()
	ctx := context.Background()

	periodID := env.openPeriod(t, toke)
	so := signOff(t, toke, env.dealer.UserID, periodID, "8")
	if so.ActualHours == nil || *so.ActualHours != "8.00" || so.OriginalHours != "8.00" {
		t.Fatalf("签到后实际工时与原始工时应为 8.00，实际 %v / %s", so.ActualHours, so.OriginalHours)
	}

	req, err := earlyOut.Request(ctx, &dto.CreateEarlyOutRequest{PitNumber: "P1", TableNumber: strPtr("T5")}, env.dealer.UserID)
	if err != nil {
		t.Fatalf("Request 应成功: %v", err)
	}
	if _, err := earlyOut.Authorize(ctx, req.ID, &dto.AuthorizeEarlyOutRequest{HoursWorked: hoursPtr("5")}, env.supervisor.UserID); err != nil {
		t.Fatalf("Authorize 应成功: %v", err)
	}

	stored, _ := env.repo.SignOff.GetByID(ctx, so.ID)
	if !stored.ActualHours.Equal(decimal.NewFromInt(5)) {
		t.Errorf("批准后实际工时期望 5，实际 %s", stored.ActualHours)
	}
	if !stored.OriginalHours.Equal(decimal.NewFromInt(8)) {
		t.Errorf("原始工时应保持 8，实际 %s", stored.OriginalHours)
	}

	pool, err := toke.SetPoolAmount(ctx, periodID, decimal.NewFromInt(500), env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("SetPoolAmount 应成功: %v", err)
	}
	if pool.PreviewRate == nil || *pool.PreviewRate != "100.0000000000" {
		t.Errorf("预览费率期望 100.0000000000，实际 %v", pool.PreviewRate)
	}
	if pool.Period.State != string(model.PeriodPoolSet) {
		t.Errorf("设置奖池后状态期望 POOL_SET，实际 %s", pool.Period.State)
	}

	period, err := toke.Finalize(ctx, periodID, env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("Finalize 应成功: %v", err)
	}
	if period.PerHourRate == nil || *period.PerHourRate != "100.0000000000" {
		t.Errorf("结算费率期望 100.0000000000，实际 %v", period.PerHourRate)
	}
	if !period.Finalized || period.State != string(model.PeriodFinalized) {
		t.Errorf("结算后状态应为 FINALIZED，实际 %s", period.State)
	}

	stored, _ = env.repo.SignOff.GetByID(ctx, so.ID)
	if stored.TokeHours == nil || !stored.TokeHours.Equal(decimal.NewFromInt(5)) {
		t.Errorf("toke_hours 应冻结为 5，实际 %v", stored.TokeHours)
	}

	view, err := toke.PeriodView(ctx, periodID, env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("PeriodView 应成功: %v", err)
	}
	if view.Summary.TotalPayout == nil || *view.Summary.TotalPayout != "500.00" {
		t.Errorf("分配合计期望 500.00，实际 %v", view.Summary.TotalPayout)
	}
	if view.Summary.EarlyOutCount != 1 {
		t.Errorf("提前下班人数期望 1，实际 %d", view.Summary.EarlyOutCount)
	}

	if _, err := toke.Finalize(ctx, periodID, env.tokeMgr.UserID); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("重复结算期望 ErrAlreadyFinalized，实际 %v", err)
	}
	if _, err := toke.SetPoolAmount(ctx, periodID, decimal.NewFromInt(600), env.tokeMgr.UserID); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("结算后修改奖池期望 ErrAlreadyFinalized，实际 %v", err)
	}
	if _, err := toke.UpdateActualHours(ctx, so.ID, &dto.UpdateHoursRequest{ActualHours: hoursPtr("6")}, env.supervisor.UserID); !errors.Is(err, ErrAlreadyFinalized) {
		t.Errorf("结算后调整工时期望 ErrAlreadyFinalized，实际 %v", err)
	}
}

// ── 周期 ──

func TestTokeService_CurrentPeriod_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()

	first := env.openPeriod(t, toke)
	second := env.openPeriod(t, toke)
	if first != second {
		t.Errorf("同一天应返回同一周期，实际 %s / %s", first, second)
	}

	p, err := toke.GetPeriod(context.Background(), first, env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("GetPeriod 应成功: %v", err)
	}
	if p.Date != testDate || !p.IsCollectionDay || p.State != string(model.PeriodOpen) {
		t.Errorf("周期字段不符合预期: %+v", p)
	}
}

func TestTokeService_PreviousPeriod(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.tokeService().PreviousPeriod(context.Background(), env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("PreviousPeriod 应成功: %v", err)
	}
	if p.Date != "2024-03-14" {
		t.Errorf("期望前一天 2024-03-14，实际 %s", p.Date)
	}
	if p.IsCollectionDay {
		t.Error("前一天周期不应是收取日")
	}
}

func TestTokeService_NoCasinoAssigned(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.tokeService().CurrentPeriod(context.Background(), env.admin.UserID); !errors.Is(err, ErrNoCasinoAssigned) {
		t.Errorf("期望 ErrNoCasinoAssigned，实际 %v", err)
	}
}

func TestTokeService_ArchivedActor(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.repo.User.GetByID(context.Background(), env.dealer.UserID)
	u.IsActive = false
	if err := env.repo.User.Update(context.Background(), u); err != nil {
		t.Fatalf("归档失败: %v", err)
	}
	if _, err := env.tokeService().CurrentPeriod(context.Background(), env.dealer.UserID); !errors.Is(err, ErrActorArchived) {
		t.Errorf("期望 ErrActorArchived，实际 %v", err)
	}
}

// ── 奖池 ──

func TestTokeService_SetPool(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	ctx := context.Background()
	periodID := env.openPeriod(t, toke)

	tests := []struct {
		name    string
		caller  string
		amount  string
		wantErr error
	}{
		{"荷官无权设置", env.dealer.UserID, "100", ErrForbidden},
		{"金额为零", env.tokeMgr.UserID, "0", ErrInvalidAmount},
		{"金额为负", env.tokeMgr.UserID, "-5", ErrInvalidAmount},
		{"舍入后为零", env.tokeMgr.UserID, "0.004", ErrInvalidAmount},
		{"小费经理", env.tokeMgr.UserID, "250.50", nil},
		{"赌场经理可覆盖", env.casinoMgr.UserID, "300", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toke.SetPoolAmount(ctx, periodID, decimal.RequireFromString(tt.amount), tt.caller)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际 %v", tt.wantErr, err)
			}
		})
	}

	resp, err := toke.SetPoolAmount(ctx, periodID, decimal.NewFromInt(100), env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("SetPoolAmount 应成功: %v", err)
	}
	if resp.PreviewRate != nil {
		t.Errorf("无签到时预览费率应为 nil，实际 %s", *resp.PreviewRate)
	}
	if resp.TotalHours != "0.00" {
		t.Errorf("总工时期望 0.00，实际 %s", resp.TotalHours)
	}
}

func TestTokeService_SetPool_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.tokeService().SetPoolAmount(context.Background(), "missing", decimal.NewFromInt(1), env.tokeMgr.UserID)
	if !errors.Is(err, ErrPeriodNotFound) {
		t.Errorf("期望 ErrPeriodNotFound，实际 %v", err)
	}
}

// ── 结算 ──

func TestTokeService_Finalize_Preconditions(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	ctx := context.Background()
	periodID := env.openPeriod(t, toke)

	if _, err := toke.Finalize(ctx, periodID, env.dealer.UserID); !errors.Is(err, ErrForbidden) {
		t.Errorf("荷官结算期望 ErrForbidden，实际 %v", err)
	}
	if _, err := toke.Finalize(ctx, periodID, env.tokeMgr.UserID); !errors.Is(err, ErrPoolNotSet) {
		t.Errorf("未设置奖池期望 ErrPoolNotSet，实际 %v", err)
	}

	if _, err := toke.SetPoolAmount(ctx, periodID, decimal.NewFromInt(500), env.tokeMgr.UserID); err != nil {
		t.Fatalf("SetPoolAmount 应成功: %v", err)
	}
	if _, err := toke.Finalize(ctx, periodID, env.tokeMgr.UserID); !errors.Is(err, ErrNoEligibleHours) {
		t.Errorf("无工时期望 ErrNoEligibleHours，实际 %v", err)
	}

	p, _ := env.repo.TokePeriod.GetByID(ctx, periodID)
	if p.Finalized || p.PerHourRate != nil {
		t.Error("结算失败后周期不应被修改")
	}
}

func TestTokeService_Finalize_ThreeDealers(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	ctx := context.Background()
	periodID := env.openPeriod(t, toke)
	third := env.seedUser(t, "D003", "Heidi", model.RoleDealer)

	signOff(t, toke, env.dealer.UserID, periodID, "8")
	signOff(t, toke, env.dealer2.UserID, periodID, "6")
	signOff(t, toke, third.UserID, periodID, "10")

	if _, err := toke.SetPoolAmount(ctx, periodID, decimal.RequireFromString("1000.00"), env.tokeMgr.UserID); err != nil {
		t.Fatalf("SetPoolAmount 应成功: %v", err)
	}
	p, err := toke.Finalize(ctx, periodID, env.casinoMgr.UserID)
	if err != nil {
		t.Fatalf("Finalize 应成功: %v", err)
	}
	if *p.PerHourRate != "41.6666666667" {
		t.Errorf("费率期望 41.6666666667，实际 %s", *p.PerHourRate)
	}

	view, err := toke.PeriodView(ctx, periodID, env.accounting.UserID)
	if err != nil {
		t.Fatalf("PeriodView 应成功: %v", err)
	}
	total := decimal.RequireFromString(*view.Summary.TotalPayout)
	if total.Sub(decimal.NewFromInt(1000)).Abs().GreaterThan(decimal.RequireFromString("0.01")) {
		t.Errorf("分配合计 %s 与奖池相差超过一分", total)
	}
	for _, e := range view.Entries {
		if e.Payout == nil {
			t.Errorf("结算后每条签到都应有分配金额: %+v", e)
		}
	}
}

// ── 签到 ──

func TestTokeService_CreateSignOff_Errors(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	ctx := context.Background()
	periodID := env.openPeriod(t, toke)

	base := func() *dto.CreateSignOffRequest {
		return &dto.CreateSignOffRequest{TokePeriodID: periodID, ShiftDate: testDate}
	}

	tests := []struct {
		name    string
		caller  string
		mutate  func(r *dto.CreateSignOffRequest)
		wantErr error
	}{
		{"小费经理不能签到", env.tokeMgr.UserID, func(*dto.CreateSignOffRequest) {}, ErrForbidden},
		{"工时为零", env.dealer.UserID, func(r *dto.CreateSignOffRequest) { r.ScheduledHours = hoursPtr("0") }, ErrInvalidHours},
		{"工时超过 24", env.dealer.UserID, func(r *dto.CreateSignOffRequest) { r.ScheduledHours = hoursPtr("24.5") }, ErrInvalidHours},
		{"日期格式错误", env.dealer.UserID, func(r *dto.CreateSignOffRequest) { r.ShiftDate = "15/03/2024" }, ErrInvalidDate},
		{"时间格式错误", env.dealer.UserID, func(r *dto.CreateSignOffRequest) { r.ShiftStart = strPtr("25:00") }, ErrInvalidTime},
		{"日期不一致", env.dealer.UserID, func(r *dto.CreateSignOffRequest) { r.ShiftDate = "2024-03-16" }, ErrDateMismatch},
		{"周期不存在", env.dealer.UserID, func(r *dto.CreateSignOffRequest) { r.TokePeriodID = "missing" }, ErrPeriodNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(req)
			if _, err := toke.CreateSignOff(ctx, req, tt.caller); !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际 %v", tt.wantErr, err)
			}
		})
	}
}

func TestTokeService_CreateSignOff_DefaultHoursAndDuplicate(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	ctx := context.Background()
	periodID := env.openPeriod(t, toke)

	req := &dto.CreateSignOffRequest{TokePeriodID: periodID, ShiftDate: testDate}
	resp, err := toke.CreateSignOff(ctx, req, env.supervisor.UserID)
	if err != nil {
		t.Fatalf("CreateSignOff 应成功: %v", err)
	}
	if resp.ScheduledHours != "8.00" {
		t.Errorf("默认排班工时期望 8.00，实际 %s", resp.ScheduledHours)
	}

	if _, err := toke.CreateSignOff(ctx, req, env.supervisor.UserID); !errors.Is(err, ErrDuplicateSignOff) {
		t.Errorf("重复签到期望 ErrDuplicateSignOff，实际 %v", err)
	}

	last, err := toke.LastShift(ctx, env.supervisor.UserID)
	if err != nil {
		t.Fatalf("LastShift 应成功: %v", err)
	}
	if last.ID != resp.ID {
		t.Errorf("最近班次应为刚签到的记录")
	}
}

func TestTokeService_LastShift_NoHistory(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.tokeService().LastShift(context.Background(), env.dealer.UserID); !errors.Is(err, ErrNoShiftHistory) {
		t.Errorf("期望 ErrNoShiftHistory，实际 %v", err)
	}
}

// ── 工时调整 ──

func TestTokeService_UpdateActualHours(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	ctx := context.Background()
	periodID := env.openPeriod(t, toke)
	so := signOff(t, toke, env.dealer.UserID, periodID, "8")

	if _, err := toke.UpdateActualHours(ctx, so.ID, &dto.UpdateHoursRequest{ActualHours: hoursPtr("6")}, env.dealer2.UserID); !errors.Is(err, ErrForbidden) {
		t.Errorf("无 pencil 调整期望 ErrForbidden，实际 %v", err)
	}
	if _, err := toke.UpdateActualHours(ctx, so.ID, &dto.UpdateHoursRequest{}, env.supervisor.UserID); !errors.Is(err, ErrInvalidHours) {
		t.Errorf("缺少工时期望 ErrInvalidHours，实际 %v", err)
	}
	if _, err := toke.UpdateActualHours(ctx, "missing", &dto.UpdateHoursRequest{ActualHours: hoursPtr("6")}, env.supervisor.UserID); !errors.Is(err, ErrSignOffNotFound) {
		t.Errorf("期望 ErrSignOffNotFound，实际 %v", err)
	}

	resp, err := toke.UpdateActualHours(ctx, so.ID, &dto.UpdateHoursRequest{ActualHours: hoursPtr("6.5")}, env.casinoMgr.UserID)
	if err != nil {
		t.Fatalf("UpdateActualHours 应成功: %v", err)
	}
	if *resp.ActualHours != "6.50" || resp.OriginalHours != "8.00" {
		t.Errorf("调整后期望 6.50 / 8.00，实际 %s / %s", *resp.ActualHours, resp.OriginalHours)
	}
}

// ── 名册 ──

func TestTokeService_PeriodView_VacationCredit(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	ctx := context.Background()
	periodID := env.openPeriod(t, toke)
	signOff(t, toke, env.dealer.UserID, periodID, "8")

	v := &model.DealerVacation{
		UserID:    env.dealer2.UserID,
		StartDate: model.DateOf(fixedNow.AddDate(0, 0, -1)),
		EndDate:   model.DateOf(fixedNow.AddDate(0, 0, 1)),
		Status:    model.VacationApproved,
	}
	if err := env.repo.Vacation.Create(ctx, v); err != nil {
		t.Fatalf("创建休假失败: %v", err)
	}

	view, err := toke.PeriodView(ctx, periodID, env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("PeriodView 应成功: %v", err)
	}
	if view.Summary.Headcount != 2 || view.Summary.VacationCount != 1 {
		t.Fatalf("期望 2 人其中 1 人休假，实际 %+v", view.Summary)
	}
	if view.Summary.VacationHours != "8.00" {
		t.Errorf("休假折算工时期望 8.00，实际 %s", view.Summary.VacationHours)
	}
	if view.Summary.TotalPayout != nil {
		t.Error("未结算时不应有分配合计")
	}

	var credit *dto.RosterEntry
	for i := range view.Entries {
		if view.Entries[i].Kind == EntryVacation {
			credit = &view.Entries[i]
		}
	}
	if credit == nil || credit.User.ID != env.dealer2.UserID || !credit.OnVacation {
		t.Fatalf("应包含荷官 2 的休假折算条目: %+v", view.Entries)
	}

	// 休假折算不参与费率
	pool, err := toke.SetPoolAmount(ctx, periodID, decimal.NewFromInt(400), env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("SetPoolAmount 应成功: %v", err)
	}
	if *pool.PreviewRate != "50.0000000000" {
		t.Errorf("预览费率期望 50.0000000000，实际 %s", *pool.PreviewRate)
	}
}

func TestTokeService_CasinoIsolation(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	ctx := context.Background()
	periodID := env.openPeriod(t, toke)

	other := &model.Casino{Name: "Lakeside"}
	if err := env.repo.Casino.Create(ctx, other); err != nil {
		t.Fatalf("创建赌场失败: %v", err)
	}
	outsider := env.seedUser(t, "T900", "Ivan", model.RoleTokeManager)
	outsider.CasinoID = &other.CasinoID
	if err := env.repo.User.Update(ctx, outsider); err != nil {
		t.Fatalf("更新用户失败: %v", err)
	}

	if _, err := toke.GetPeriod(ctx, periodID, outsider.UserID); !errors.Is(err, ErrCasinoMismatch) {
		t.Errorf("跨赌场读取期望 ErrCasinoMismatch，实际 %v", err)
	}
	if _, err := toke.SetPoolAmount(ctx, periodID, decimal.NewFromInt(1), outsider.UserID); !errors.Is(err, ErrCasinoMismatch) {
		t.Errorf("跨赌场设置奖池期望 ErrCasinoMismatch，实际 %v", err)
	}
	if _, err := toke.GetPeriod(ctx, periodID, env.admin.UserID); err != nil {
		t.Errorf("管理员应能跨赌场读取: %v", err)
	}
}

func TestTokeService_ListPeriods(t *testing.T) {
	env := newTestEnv(t)
	toke := env.tokeService()
	ctx := context.Background()
	env.openPeriod(t, toke)
	if _, err := toke.PreviousPeriod(ctx, env.dealer.UserID); err != nil {
		t.Fatalf("PreviousPeriod 应成功: %v", err)
	}

	list, total, err := toke.ListPeriods(ctx, &dto.PeriodListRequest{}, env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("ListPeriods 应成功: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("期望 2 个周期，实际 %d", total)
	}
	if list[0].Date != testDate {
		t.Errorf("应按日期倒序，首条期望 %s，实际 %s", testDate, list[0].Date)
	}
}
