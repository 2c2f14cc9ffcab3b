// Package policy 角色权限判定
//
// 所有判定都是纯函数：给定操作者、动作与目标，返回是否允许。
// 不访问存储，不依赖 HTTP 上下文。
package policy

import "tokebook/internal/model"

// Action 受控动作
type Action string

const (
	ActionSignOff            Action = "toke.sign_off"
	ActionSetPool            Action = "toke.set_pool"
	ActionFinalize           Action = "toke.finalize"
	ActionAdjustHours        Action = "toke.adjust_hours"
	ActionExport             Action = "toke.export"
	ActionRequestEarlyOut    Action = "early_out.request"
	ActionRemoveEarlyOut     Action = "early_out.remove"
	ActionAuthorizeEarlyOut  Action = "early_out.authorize"
	ActionRequestVacation    Action = "vacation.request"
	ActionDecideVacation     Action = "vacation.decide"
	ActionCancelVacation     Action = "vacation.cancel"
	ActionViewAllVacations   Action = "vacation.view_all"
	ActionReportDiscrepancy  Action = "discrepancy.report"
	ActionVerifyDiscrepancy  Action = "discrepancy.verify"
	ActionResolveDiscrepancy Action = "discrepancy.resolve"
	ActionManageUsers        Action = "user.manage"
	ActionArchiveUser        Action = "user.archive"
	ActionGrantPencil        Action = "user.grant_pencil"
	ActionVerifyPencil       Action = "user.verify_pencil"
	ActionManageCasino       Action = "casino.manage"
	ActionViewAudit          Action = "audit.view"
)

// Actor 发起操作的用户
type Actor struct {
	UserID    string
	Role      model.Role
	HasPencil bool
}

// ActorOf 由用户记录构造 Actor
func ActorOf(u *model.User) Actor {
	return Actor{UserID: u.UserID, Role: u.Role, HasPencil: u.HasPencil}
}

// Target 操作目标（没有归属的动作传零值）
type Target struct {
	OwnerID   string
	OwnerRole model.Role
}

// Can 判定 actor 能否对 target 执行 action
func Can(actor Actor, action Action, target Target) bool {
	switch action {
	case ActionSignOff:
		return isFloor(actor.Role) && target.OwnerID == actor.UserID
	case ActionSetPool, ActionFinalize:
		return actor.Role.In(model.RoleTokeManager, model.RoleCasinoManager, model.RoleAdmin)
	case ActionAdjustHours:
		return actor.HasPencil
	case ActionExport:
		return actor.Role.In(model.RoleTokeManager, model.RoleCasinoManager, model.RoleAccounting, model.RoleAdmin)

	case ActionRequestEarlyOut:
		return isFloor(actor.Role)
	case ActionRemoveEarlyOut:
		return target.OwnerID == actor.UserID
	case ActionAuthorizeEarlyOut:
		if target.OwnerID == actor.UserID {
			return false
		}
		return actor.HasPencil || actor.Role == model.RoleCasinoManager

	case ActionRequestVacation:
		return actor.Role == model.RoleDealer
	case ActionDecideVacation:
		return actor.Role.In(model.RoleCasinoManager, model.RoleTokeManager)
	case ActionCancelVacation:
		return target.OwnerID == actor.UserID
	case ActionViewAllVacations:
		return actor.Role.In(model.RoleCasinoManager, model.RoleTokeManager, model.RoleAdmin)

	case ActionReportDiscrepancy:
		return actor.Role.Valid()
	case ActionVerifyDiscrepancy:
		return actor.Role == model.RoleTokeManager
	case ActionResolveDiscrepancy:
		return actor.Role == model.RoleCasinoManager

	case ActionManageUsers:
		return actor.Role.In(model.RoleCasinoManager, model.RoleTokeManager, model.RoleAdmin)
	case ActionArchiveUser:
		return actor.Role.In(model.RoleCasinoManager, model.RoleTokeManager) && target.OwnerID != actor.UserID
	case ActionGrantPencil:
		return actor.Role == model.RoleCasinoManager && target.OwnerRole == model.RoleSupervisor
	case ActionVerifyPencil:
		return actor.Role == model.RoleSupervisor

	case ActionManageCasino:
		return actor.Role.In(model.RoleAdmin, model.RoleCasinoManager)
	case ActionViewAudit:
		return actor.Role.In(model.RoleAdmin, model.RoleCasinoManager)
	}
	return false
}

// isFloor 场内员工（荷官、主管）
func isFloor(r model.Role) bool {
	return r == model.RoleDealer || r == model.RoleSupervisor
}
