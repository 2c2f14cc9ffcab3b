package handler

import (
	"tokebook/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Casino      *CasinoHandler
	Toke        *TokeHandler
	EarlyOut    *EarlyOutHandler
	Vacation    *VacationHandler
	Discrepancy *DiscrepancyHandler
	Audit       *AuditHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		User:        NewUserHandler(svc.User),
		Casino:      NewCasinoHandler(svc.Casino),
		Toke:        NewTokeHandler(svc.Toke),
		EarlyOut:    NewEarlyOutHandler(svc.EarlyOut),
		Vacation:    NewVacationHandler(svc.Vacation),
		Discrepancy: NewDiscrepancyHandler(svc.Discrepancy),
		Audit:       NewAuditHandler(svc.Audit),
		Export:      NewExportHandler(svc.Export),
	}
}
