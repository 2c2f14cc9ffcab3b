package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tokebook/internal/model"
	"tokebook/internal/policy"
	"tokebook/internal/repository"
)

// ErrExportGenerateFail 生成 Excel 失败
var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportPayouts 导出已结算周期的分配表
	ExportPayouts(ctx context.Context, periodID, callerID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	workflow
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{workflow: newWorkflow(nil, repo, nil, logger, nil)}
}

// ═══════════════════════════════════════════════════════════
// ExportPayouts 分配表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：赌场周期标题（合并单元格）
//   - 第 2 行：奖池 / 总工时 / 费率
//   - 第 4 行起：工号 | 姓名 | 角色 | 排班工时 | 实际工时 | 计费工时 | 分配金额
//   - 末行：合计

func (s *exportService) ExportPayouts(ctx context.Context, periodID, callerID string) (*bytes.Buffer, string, error) {
	actor, err := s.loadActor(ctx, callerID)
	if err != nil {
		return nil, "", err
	}
	if !policy.Can(policy.ActorOf(actor), policy.ActionExport, policy.Target{}) {
		return nil, "", ErrForbidden
	}

	period, err := s.repo.TokePeriod.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPeriodNotFound
		}
		s.logger.Error("查询小费池周期失败", zap.Error(err))
		return nil, "", err
	}
	if err := sameCasino(actor, period.CasinoID); err != nil {
		return nil, "", err
	}
	if !period.Finalized || period.PerHourRate == nil || period.PoolAmount == nil {
		return nil, "", ErrPeriodNotFinalized
	}

	signOffs, err := s.repo.SignOff.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询签到记录失败", zap.Error(err))
		return nil, "", err
	}

	casinoName := period.CasinoID
	if casino, err := s.repo.Casino.GetByID(ctx, period.CasinoID); err == nil {
		casinoName = casino.Name
	}

	buf, err := writePayoutSheet(casinoName, period, signOffs)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.record(ctx, actor, string(policy.ActionExport), "toke_period", periodID, nil)

	filename := fmt.Sprintf("toke_%s_%s.xlsx", casinoName, formatDate(period.PeriodDate))
	return buf, filename, nil
}

func writePayoutSheet(casinoName string, period *model.TokePeriod, signOffs []model.TokeSignOff) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Distribution"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 24)
	f.SetColWidth(sheet, "C", "C", 14)
	f.SetColWidth(sheet, "D", "G", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00

	rate := *period.PerHourRate

	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s %s", casinoName, formatDate(period.PeriodDate)))
	f.MergeCell(sheet, "A1", "G1")
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	f.SetCellValue(sheet, "A2", "Pool")
	f.SetCellValue(sheet, "B2", period.PoolAmount.StringFixed(2))
	f.SetCellValue(sheet, "C2", "Rate / hr")
	f.SetCellValue(sheet, "D2", rate.StringFixed(RateScale))

	headers := []string{"Employee ID", "Name", "Role", "Scheduled", "Actual", "Toke Hours", "Payout"}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 4), h)
	}
	f.SetCellStyle(sheet, "A4", "G4", headerStyle)

	row := 5
	hours, paid := decimal.Zero, decimal.Zero
	for i := range signOffs {
		so := &signOffs[i]
		employeeID, name, role := so.UserID, "", ""
		if so.User != nil {
			employeeID, name, role = so.User.EmployeeID, so.User.FullName(), string(so.User.Role)
		}

		toke := decimal.Zero
		if so.TokeHours != nil {
			toke = *so.TokeHours
		}
		payout := Payout(toke, rate)
		hours = hours.Add(toke)
		paid = paid.Add(payout)

		f.SetCellValue(sheet, cell("A", row), employeeID)
		f.SetCellValue(sheet, cell("B", row), name)
		f.SetCellValue(sheet, cell("C", row), role)
		f.SetCellValue(sheet, cell("D", row), so.ScheduledHours.InexactFloat64())
		if so.ActualHours != nil {
			f.SetCellValue(sheet, cell("E", row), so.ActualHours.InexactFloat64())
		}
		f.SetCellValue(sheet, cell("F", row), toke.InexactFloat64())
		f.SetCellValue(sheet, cell("G", row), payout.InexactFloat64())
		f.SetCellStyle(sheet, cell("G", row), cell("G", row), moneyStyle)
		row++
	}

	f.SetCellValue(sheet, cell("A", row), "Total")
	f.SetCellValue(sheet, cell("F", row), hours.InexactFloat64())
	f.SetCellValue(sheet, cell("G", row), paid.InexactFloat64())
	f.SetCellStyle(sheet, cell("G", row), cell("G", row), moneyStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
