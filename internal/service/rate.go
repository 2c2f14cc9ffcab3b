package service

import (
	"github.com/shopspring/decimal"

	"tokebook/internal/model"
)

// RateScale 每小时费率保留的小数位数
const RateScale = 10

var (
	maxShiftHours = decimal.NewFromInt(24)
	centScale     = int32(2)
)

// TotalCreditedHours 汇总实际工时，未填写实际工时的签到不计入
func TotalCreditedHours(signOffs []model.TokeSignOff) decimal.Decimal {
	total := decimal.Zero
	for i := range signOffs {
		if signOffs[i].ActualHours != nil {
			total = total.Add(*signOffs[i].ActualHours)
		}
	}
	return total
}

// ComputeRate 每小时费率 = 奖池 / 总工时；总工时不为正时返回 false
func ComputeRate(pool, totalHours decimal.Decimal) (decimal.Decimal, bool) {
	if !totalHours.IsPositive() {
		return decimal.Zero, false
	}
	return pool.DivRound(totalHours, RateScale), true
}

// Payout 单人分配金额，四舍五入到分
func Payout(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Round(centScale)
}

// validHours 工时必须落在 (0, 24]
func validHours(h decimal.Decimal) bool {
	return h.IsPositive() && h.LessThanOrEqual(maxShiftHours)
}
