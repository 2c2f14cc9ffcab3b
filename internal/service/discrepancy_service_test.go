package service

import (
	"context"
	"errors"
	"testing"

	"tokebook/internal/dto"
	"tokebook/internal/model"
)

func TestDiscrepancyService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := env.discrepancyService()
	ctx := context.Background()

	d, err := svc.Report(ctx, &dto.ReportDiscrepancyRequest{Description: "  box 3 short by $20  "}, env.dealer.UserID)
	if err != nil {
		t.Fatalf("Report 应成功: %v", err)
	}
	if d.Status != string(model.DiscrepancyPending) || d.Description != "box 3 short by $20" {
		t.Errorf("上报后字段不符合预期: %+v", d)
	}

	// 未核实不能直接处理
	if _, err := svc.Resolve(ctx, d.ID, &dto.ResolveDiscrepancyRequest{Notes: "paid"}, env.casinoMgr.UserID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("PENDING 直接处理期望 ErrInvalidState，实际 %v", err)
	}
	if _, err := svc.Verify(ctx, d.ID, &dto.VerifyDiscrepancyRequest{}, env.casinoMgr.UserID); !errors.Is(err, ErrForbidden) {
		t.Errorf("赌场经理核实期望 ErrForbidden，实际 %v", err)
	}
	if _, err := svc.Verify(ctx, d.ID, &dto.VerifyDiscrepancyRequest{Outcome: "RESOLVED"}, env.tokeMgr.UserID); !errors.Is(err, ErrInvalidOutcome) {
		t.Errorf("核实结果非 VERIFIED 期望 ErrInvalidOutcome，实际 %v", err)
	}

	verified, err := svc.Verify(ctx, d.ID, &dto.VerifyDiscrepancyRequest{Outcome: "VERIFIED", Notes: "recounted"}, env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if verified.Status != string(model.DiscrepancyVerified) || verified.VerifiedBy == nil || verified.VerificationNotes != "recounted" {
		t.Errorf("核实后字段不符合预期: %+v", verified)
	}
	if _, err := svc.Verify(ctx, d.ID, &dto.VerifyDiscrepancyRequest{}, env.tokeMgr.UserID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("重复核实期望 ErrInvalidState，实际 %v", err)
	}

	if _, err := svc.Resolve(ctx, d.ID, &dto.ResolveDiscrepancyRequest{}, env.tokeMgr.UserID); !errors.Is(err, ErrForbidden) {
		t.Errorf("小费经理处理期望 ErrForbidden，实际 %v", err)
	}
	resolved, err := svc.Resolve(ctx, d.ID, &dto.ResolveDiscrepancyRequest{Notes: "paid out"}, env.casinoMgr.UserID)
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resolved.Status != string(model.DiscrepancyResolved) || resolved.ResolvedAt == "" {
		t.Errorf("处理后字段不符合预期: %+v", resolved)
	}
	if _, err := svc.Resolve(ctx, d.ID, &dto.ResolveDiscrepancyRequest{}, env.casinoMgr.UserID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("重复处理期望 ErrInvalidState，实际 %v", err)
	}
}

func TestDiscrepancyService_Report_UnknownPeriod(t *testing.T) {
	env := newTestEnv(t)
	missing := "00000000-0000-0000-0000-000000000001"
	_, err := env.discrepancyService().Report(context.Background(), &dto.ReportDiscrepancyRequest{
		Description:  "short",
		TokePeriodID: &missing,
	}, env.dealer.UserID)
	if !errors.Is(err, ErrPeriodNotFound) {
		t.Errorf("期望 ErrPeriodNotFound，实际 %v", err)
	}
}

func TestDiscrepancyService_List(t *testing.T) {
	env := newTestEnv(t)
	svc := env.discrepancyService()
	ctx := context.Background()

	first, _ := svc.Report(ctx, &dto.ReportDiscrepancyRequest{Description: "a"}, env.dealer.UserID)
	if _, err := svc.Report(ctx, &dto.ReportDiscrepancyRequest{Description: "b"}, env.supervisor.UserID); err != nil {
		t.Fatalf("Report 应成功: %v", err)
	}
	if _, err := svc.Verify(ctx, first.ID, &dto.VerifyDiscrepancyRequest{}, env.tokeMgr.UserID); err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}

	pending, total, err := svc.List(ctx, &dto.DiscrepancyListRequest{Status: "PENDING"}, env.tokeMgr.UserID)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || pending[0].Description != "b" {
		t.Errorf("PENDING 期望 1 条 b，实际 %d", total)
	}

	_, total, _ = svc.List(ctx, &dto.DiscrepancyListRequest{}, env.tokeMgr.UserID)
	if total != 2 {
		t.Errorf("全部期望 2 条，实际 %d", total)
	}

	if _, err := svc.Get(ctx, "missing", env.tokeMgr.UserID); !errors.Is(err, ErrDiscrepancyNotFound) {
		t.Errorf("期望 ErrDiscrepancyNotFound，实际 %v", err)
	}
}

func TestDiscrepancyService_Report_BlankDescription(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.discrepancyService().Report(context.Background(), &dto.ReportDiscrepancyRequest{Description: "   \t "}, env.dealer.UserID)
	if !errors.Is(err, ErrEmptyDescription) {
		t.Errorf("期望 ErrEmptyDescription，实际 %v", err)
	}
}

func TestDiscrepancyService_CasinoIsolation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.discrepancyService()
	ctx := context.Background()

	d, err := svc.Report(ctx, &dto.ReportDiscrepancyRequest{Description: "box 7 over"}, env.dealer.UserID)
	if err != nil {
		t.Fatalf("Report 应成功: %v", err)
	}
	if d.CasinoID != env.casino.CasinoID {
		t.Errorf("差异应归属上报人所在赌场，实际 %s", d.CasinoID)
	}

	outsideTokeMgr := env.seedOutsider(t, "T900", "Ivan", model.RoleTokeManager)
	outsideCasinoMgr := env.seedOutsider(t, "C900", "Judy", model.RoleCasinoManager)

	list, total, err := svc.List(ctx, &dto.DiscrepancyListRequest{}, outsideTokeMgr.UserID)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 0 || len(list) != 0 {
		t.Errorf("其他赌场不应看到本赌场差异，实际 %d 条", total)
	}
	if _, err := svc.Get(ctx, d.ID, outsideTokeMgr.UserID); !errors.Is(err, ErrCasinoMismatch) {
		t.Errorf("跨赌场读取期望 ErrCasinoMismatch，实际 %v", err)
	}
	if _, err := svc.Verify(ctx, d.ID, &dto.VerifyDiscrepancyRequest{}, outsideTokeMgr.UserID); !errors.Is(err, ErrCasinoMismatch) {
		t.Errorf("跨赌场核实期望 ErrCasinoMismatch，实际 %v", err)
	}

	if _, err := svc.Verify(ctx, d.ID, &dto.VerifyDiscrepancyRequest{}, env.tokeMgr.UserID); err != nil {
		t.Fatalf("本赌场核实应成功: %v", err)
	}
	if _, err := svc.Resolve(ctx, d.ID, &dto.ResolveDiscrepancyRequest{}, outsideCasinoMgr.UserID); !errors.Is(err, ErrCasinoMismatch) {
		t.Errorf("跨赌场处理期望 ErrCasinoMismatch，实际 %v", err)
	}

	stored, _ := env.repo.Discrepancy.GetByID(ctx, d.ID)
	if stored.Status != model.DiscrepancyVerified {
		t.Errorf("跨赌场操作不应改变状态，实际 %s", stored.Status)
	}

	_, total, err = svc.List(ctx, &dto.DiscrepancyListRequest{}, env.admin.UserID)
	if err != nil || total != 1 {
		t.Errorf("管理员应能看到全部差异，实际 %d, %v", total, err)
	}
}
