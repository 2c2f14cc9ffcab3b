package service

import (
	"time"

	"github.com/shopspring/decimal"

	"tokebook/internal/dto"
	"tokebook/internal/model"
)

// 名册条目类型
const (
	EntrySignOff  = "SIGN_OFF"
	EntryVacation = "VACATION"
)

// SignOffView 名册条目：已持久化的签到，或休假折算的整班工时
type SignOffView interface {
	RosterUserID() string
	entry() dto.RosterEntry
}

// PersistedSignOff 已落库的签到
type PersistedSignOff struct {
	SignOff *model.TokeSignOff
}

// RosterUserID 条目所属用户
func (p PersistedSignOff) RosterUserID() string { return p.SignOff.UserID }

func (p PersistedSignOff) entry() dto.RosterEntry {
	so := p.SignOff
	id := so.SignOffID
	return dto.RosterEntry{
		Kind:           EntrySignOff,
		SignOffID:      &id,
		User:           toUserBrief(so.User, so.UserID),
		ScheduledHours: hoursString(so.ScheduledHours),
		ActualHours:    hoursPtrString(so.ActualHours),
		OriginalHours:  hoursString(so.OriginalHours),
		TokeHours:      hoursPtrString(so.TokeHours),
		ShiftStart:     so.ShiftStart,
		ShiftEnd:       so.ShiftEnd,
	}
}

// VacationCredit 当天处于已批准休假、且未签到的荷官
// 工时窗口为零长度，不参与费率计算
type VacationCredit struct {
	User     *model.User
	Vacation *model.DealerVacation
	Hours    decimal.Decimal
}

// RosterUserID 条目所属用户
func (v VacationCredit) RosterUserID() string { return v.Vacation.UserID }

func (v VacationCredit) entry() dto.RosterEntry {
	h := hoursString(v.Hours)
	zero := "00:00"
	return dto.RosterEntry{
		Kind:           EntryVacation,
		User:           toUserBrief(v.User, v.Vacation.UserID),
		ScheduledHours: h,
		ActualHours:    &h,
		OriginalHours:  h,
		ShiftStart:     &zero,
		ShiftEnd:       &zero,
		OnVacation:     true,
	}
}

// BuildRoster 合并签到与休假折算，每个用户至多出现一次，签到优先
func BuildRoster(signOffs []model.TokeSignOff, vacations []model.DealerVacation, date time.Time, creditHours decimal.Decimal) []SignOffView {
	seen := make(map[string]bool, len(signOffs)+len(vacations))
	views := make([]SignOffView, 0, len(signOffs)+len(vacations))

	for i := range signOffs {
		so := &signOffs[i]
		if seen[so.UserID] {
			continue
		}
		seen[so.UserID] = true
		views = append(views, PersistedSignOff{SignOff: so})
	}

	for i := range vacations {
		v := &vacations[i]
		if v.Status != model.VacationApproved || !v.Covers(date) || seen[v.UserID] {
			continue
		}
		seen[v.UserID] = true
		views = append(views, VacationCredit{User: v.User, Vacation: v, Hours: creditHours})
	}

	return views
}

// summarizeRoster 生成名册行与汇总；rate 非 nil 时（已结算）计算每人分配金额
func summarizeRoster(views []SignOffView, earlyOuts map[string]model.EarlyOutStatus, rate *decimal.Decimal) ([]dto.RosterEntry, dto.PeriodSummary) {
	entries := make([]dto.RosterEntry, 0, len(views))
	scheduled, actual, vacationHours, paid := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	var summary dto.PeriodSummary

	for _, v := range views {
		e := v.entry()
		if st, ok := earlyOuts[v.RosterUserID()]; ok {
			s := string(st)
			e.EarlyOutStatus = &s
		}

		switch view := v.(type) {
		case PersistedSignOff:
			so := view.SignOff
			scheduled = scheduled.Add(so.ScheduledHours)
			if so.ActualHours != nil {
				actual = actual.Add(*so.ActualHours)
				if so.ActualHours.LessThan(so.ScheduledHours) {
					summary.EarlyOutCount++
				}
			}
			if rate != nil && so.TokeHours != nil {
				p := Payout(*so.TokeHours, *rate)
				paid = paid.Add(p)
				s := p.StringFixed(2)
				e.Payout = &s
			}
		case VacationCredit:
			summary.VacationCount++
			vacationHours = vacationHours.Add(view.Hours)
		}
		entries = append(entries, e)
	}

	summary.Headcount = len(views)
	summary.TotalScheduledHours = hoursString(scheduled)
	summary.TotalActualHours = hoursString(actual)
	summary.VacationHours = hoursString(vacationHours)
	if rate != nil {
		s := paid.StringFixed(2)
		summary.TotalPayout = &s
	}
	return entries, summary
}
