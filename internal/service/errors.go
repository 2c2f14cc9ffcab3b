package service

import (
	pkgerrors "tokebook/pkg/errors"
)

// ── 通用业务错误 ──

var (
	ErrForbidden         = pkgerrors.New(pkgerrors.KindForbidden, 40300, "无权执行该操作")
	ErrSelfAuthorization = pkgerrors.New(pkgerrors.KindForbidden, 40301, "不能批准自己的申请")
	ErrActorArchived     = pkgerrors.New(pkgerrors.KindForbidden, 40302, "账号已归档")
	ErrInvalidState      = pkgerrors.New(pkgerrors.KindConflict, 40900, "当前状态不允许该操作")
	ErrUserNotFound      = pkgerrors.New(pkgerrors.KindNotFound, 40401, "用户不存在")
)

// ── 赌场模块 ──

var (
	ErrCasinoNotFound   = pkgerrors.New(pkgerrors.KindNotFound, 19001, "赌场不存在")
	ErrCasinoNameExists = pkgerrors.New(pkgerrors.KindConflict, 19002, "赌场名称已存在")
	ErrInvalidShiftTime = pkgerrors.New(pkgerrors.KindValidation, 19003, "班次时间格式应为 HH:MM")
	ErrNoCasinoAssigned = pkgerrors.New(pkgerrors.KindValidation, 19004, "用户未分配赌场")
)

// ── 小费池 / 签到模块 ──

var (
	ErrPeriodNotFound     = pkgerrors.New(pkgerrors.KindNotFound, 20001, "小费池周期不存在")
	ErrInvalidAmount      = pkgerrors.New(pkgerrors.KindValidation, 20002, "奖池金额必须大于 0")
	ErrAlreadyFinalized   = pkgerrors.New(pkgerrors.KindConflict, 20003, "该周期已结算")
	ErrPoolNotSet         = pkgerrors.New(pkgerrors.KindConflict, 20004, "尚未设置奖池金额")
	ErrNoEligibleHours    = pkgerrors.New(pkgerrors.KindConflict, 20005, "没有可计入的工时")
	ErrSignOffNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 20006, "签到记录不存在")
	ErrDuplicateSignOff   = pkgerrors.New(pkgerrors.KindConflict, 20007, "本周期已签到")
	ErrInvalidHours       = pkgerrors.New(pkgerrors.KindValidation, 20008, "工时必须在 0 到 24 之间")
	ErrDateMismatch       = pkgerrors.New(pkgerrors.KindValidation, 20009, "班次日期与小费池日期不一致")
	ErrInvalidDate        = pkgerrors.New(pkgerrors.KindValidation, 20010, "日期格式应为 YYYY-MM-DD")
	ErrInvalidTime        = pkgerrors.New(pkgerrors.KindValidation, 20011, "时间格式应为 HH:MM 或 HH:MM:SS")
	ErrCasinoMismatch     = pkgerrors.New(pkgerrors.KindForbidden, 20012, "不属于该赌场")
	ErrNoShiftHistory     = pkgerrors.New(pkgerrors.KindNotFound, 20013, "暂无班次记录")
	ErrPeriodNotFinalized = pkgerrors.New(pkgerrors.KindConflict, 20014, "该周期尚未结算")
)

// ── 提前下班模块 ──

var (
	ErrEarlyOutNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 21001, "提前下班申请不存在")
	ErrMissingPit          = pkgerrors.New(pkgerrors.KindValidation, 21002, "必须填写 Pit 编号")
	ErrMissingTable        = pkgerrors.New(pkgerrors.KindValidation, 21003, "荷官必须填写桌号")
	ErrDuplicateRequest    = pkgerrors.New(pkgerrors.KindConflict, 21004, "今天已有进行中的提前下班申请")
	ErrShiftAlreadyStarted = pkgerrors.New(pkgerrors.KindConflict, 21005, "班次已开始，不能撤回已批准的申请")
	ErrMissingHours        = pkgerrors.New(pkgerrors.KindValidation, 21006, "必须填写实际工时")
	ErrNoSignOff           = pkgerrors.New(pkgerrors.KindConflict, 21007, "该荷官本周期尚未签到")
	ErrInvalidReason       = pkgerrors.New(pkgerrors.KindValidation, 21008, "提前下班原因无效")
)

// ── 休假模块 ──

var (
	ErrVacationNotFound = pkgerrors.New(pkgerrors.KindNotFound, 22001, "休假申请不存在")
	ErrInvalidRange     = pkgerrors.New(pkgerrors.KindValidation, 22002, "结束日期不能早于开始日期")
	ErrInvalidMonth     = pkgerrors.New(pkgerrors.KindValidation, 22003, "年份或月份无效")
)

// ── 差异模块 ──

var (
	ErrDiscrepancyNotFound = pkgerrors.New(pkgerrors.KindNotFound, 23001, "差异记录不存在")
	ErrInvalidOutcome      = pkgerrors.New(pkgerrors.KindValidation, 23002, "核实结果只能为 VERIFIED")
	ErrEmptyDescription    = pkgerrors.New(pkgerrors.KindValidation, 23003, "差异描述不能为空")
)

// ── 用户模块 ──

var (
	ErrEmployeeIDExists = pkgerrors.New(pkgerrors.KindConflict, 24001, "工号已存在")
	ErrInvalidRole      = pkgerrors.New(pkgerrors.KindValidation, 24002, "角色无效")
	ErrNotSupervisor    = pkgerrors.New(pkgerrors.KindValidation, 24003, "pencil 权限只能授予主管")
	ErrPencilInvalid    = pkgerrors.New(pkgerrors.KindValidation, 24004, "pencil 编号无效")
	ErrInvalidShift     = pkgerrors.New(pkgerrors.KindValidation, 24005, "班次只能为 1、2、3")
)

// ── 认证模块 ──

var (
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.KindUnauthorized, 11001, "工号或密码错误")
	ErrAccountArchived    = pkgerrors.New(pkgerrors.KindUnauthorized, 11002, "账号已归档")
	ErrInvalidToken       = pkgerrors.New(pkgerrors.KindUnauthorized, 11003, "Token 无效或已过期")
)
