package service

import (
	"time"

	"github.com/shopspring/decimal"

	"tokebook/internal/dto"
	"tokebook/internal/model"
)

// ── model → dto 转换 ──

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func formatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

func hoursString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func hoursPtrString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func toUserBrief(u *model.User, fallbackID string) dto.UserBrief {
	if u == nil {
		return dto.UserBrief{ID: fallbackID}
	}
	return dto.UserBrief{
		ID:         u.UserID,
		EmployeeID: u.EmployeeID,
		Name:       u.FullName(),
		Role:       string(u.Role),
	}
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.UserID,
		EmployeeID: u.EmployeeID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       string(u.Role),
		CasinoID:   u.CasinoID,
		Shift:      u.Shift,
		HasPencil:  u.HasPencil,
		PencilID:   u.PencilID,
		IsActive:   u.IsActive,
		ArchivedAt: formatTimePtr(u.ArchivedAt),
		CreatedAt:  formatTime(u.CreatedAt),
	}
}

func toCasinoResponse(c *model.Casino) dto.CasinoResponse {
	return dto.CasinoResponse{
		ID:         c.CasinoID,
		Name:       c.Name,
		GraveStart: c.GraveStart,
		GraveEnd:   c.GraveEnd,
		DayStart:   c.DayStart,
		DayEnd:     c.DayEnd,
		SwingStart: c.SwingStart,
		SwingEnd:   c.SwingEnd,
	}
}

func toPeriodResponse(p *model.TokePeriod) dto.PeriodResponse {
	resp := dto.PeriodResponse{
		ID:              p.TokePeriodID,
		CasinoID:        p.CasinoID,
		Date:            formatDate(p.PeriodDate),
		State:           string(p.State()),
		IsCollectionDay: p.IsCollectionDay,
		Finalized:       p.Finalized,
		FinalizedBy:     p.FinalizedBy,
		FinalizedAt:     formatTimePtr(p.FinalizedAt),
		Version:         p.Version,
	}
	if p.PoolAmount != nil {
		s := p.PoolAmount.StringFixed(2)
		resp.PoolAmount = &s
	}
	if p.PerHourRate != nil {
		s := p.PerHourRate.StringFixed(RateScale)
		resp.PerHourRate = &s
	}
	return resp
}

func toSignOffResponse(so *model.TokeSignOff) dto.SignOffResponse {
	return dto.SignOffResponse{
		ID:             so.SignOffID,
		TokePeriodID:   so.TokePeriodID,
		User:           toUserBrief(so.User, so.UserID),
		ScheduledHours: hoursString(so.ScheduledHours),
		ActualHours:    hoursPtrString(so.ActualHours),
		OriginalHours:  hoursString(so.OriginalHours),
		TokeHours:      hoursPtrString(so.TokeHours),
		ShiftDate:      formatDate(so.ShiftDate),
		ShiftStart:     so.ShiftStart,
		ShiftEnd:       so.ShiftEnd,
		SignedAt:       formatTime(so.SignedAt),
		Version:        so.Version,
	}
}

func toEarlyOutResponse(r *model.EarlyOutRequest) dto.EarlyOutResponse {
	return dto.EarlyOutResponse{
		ID:           r.EarlyOutID,
		User:         toUserBrief(r.User, r.UserID),
		Status:       string(r.Status),
		Reason:       string(r.Reason),
		PitNumber:    r.PitNumber,
		TableNumber:  r.TableNumber,
		RequestDate:  formatDate(r.RequestDate),
		SignOffID:    r.SignOffID,
		AuthorizedBy: r.AuthorizedBy,
		HoursWorked:  hoursPtrString(r.HoursWorked),
		ProcessedAt:  formatTimePtr(r.ProcessedAt),
		CreatedAt:    formatTime(r.CreatedAt),
	}
}

func toVacationResponse(v *model.DealerVacation) dto.VacationResponse {
	return dto.VacationResponse{
		ID:         v.VacationID,
		User:       toUserBrief(v.User, v.UserID),
		StartDate:  formatDate(v.StartDate),
		EndDate:    formatDate(v.EndDate),
		Days:       int(model.DateOf(v.EndDate).Sub(model.DateOf(v.StartDate)).Hours()/24) + 1,
		Status:     string(v.Status),
		Notes:      v.Notes,
		ApprovedBy: v.ApprovedBy,
		ApprovedAt: formatTimePtr(v.ApprovedAt),
		CreatedAt:  formatTime(v.CreatedAt),
	}
}

func toDiscrepancyResponse(d *model.Discrepancy) dto.DiscrepancyResponse {
	return dto.DiscrepancyResponse{
		ID:                d.DiscrepancyID,
		ReportedBy:        d.ReportedBy,
		CasinoID:          d.CasinoID,
		TokePeriodID:      d.TokePeriodID,
		Description:       d.Description,
		Status:            string(d.Status),
		VerifiedBy:        d.VerifiedBy,
		VerifiedAt:        formatTimePtr(d.VerifiedAt),
		VerificationNotes: d.VerificationNotes,
		ResolvedBy:        d.ResolvedBy,
		ResolvedAt:        formatTimePtr(d.ResolvedAt),
		ResolutionNotes:   d.ResolutionNotes,
		CreatedAt:         formatTime(d.CreatedAt),
	}
}
