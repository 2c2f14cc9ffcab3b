package model

import (
	"time"

	"gorm.io/gorm"
)

// Role 用户角色（封闭枚举）
type Role string

const (
	RoleDealer        Role = "DEALER"
	RoleSupervisor    Role = "SUPERVISOR"
	RoleTokeManager   Role = "TOKE_MANAGER"
	RoleCasinoManager Role = "CASINO_MANAGER"
	RoleAccounting    Role = "ACCOUNTING"
	RoleAdmin         Role = "ADMIN"
)

// Roles 全部合法角色
var Roles = []Role{RoleDealer, RoleSupervisor, RoleTokeManager, RoleCasinoManager, RoleAccounting, RoleAdmin}

// Valid 是否为合法角色
func (r Role) Valid() bool {
	return r.In(Roles...)
}

// In 是否属于给定角色之一
func (r Role) In(roles ...Role) bool {
	for _, v := range roles {
		if r == v {
			return true
		}
	}
	return false
}

// 班次编号
const (
	ShiftDay   = 1
	ShiftSwing = 2
	ShiftGrave = 3
)

// User 用户表，对应 users
type User struct {
	UserID       string     `gorm:"type:uuid;primaryKey"                   json:"user_id"`
	EmployeeID   string     `gorm:"type:varchar(20);not null;uniqueIndex"  json:"employee_id"`
	FirstName    string     `gorm:"type:varchar(50);not null"              json:"first_name"`
	LastName     string     `gorm:"type:varchar(50);not null"              json:"last_name"`
	PasswordHash string     `gorm:"type:varchar(255);not null"             json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'DEALER';index" json:"role"`
	CasinoID     *string    `gorm:"type:uuid;index"                        json:"casino_id,omitempty"`
	Shift        *int       `gorm:"type:smallint"                          json:"shift,omitempty"`
	HasPencil    bool       `gorm:"not null;default:false"                 json:"has_pencil"`
	PencilID     *string    `gorm:"type:varchar(20)"                       json:"pencil_id,omitempty"`
	IsActive     bool       `gorm:"not null;default:true"                  json:"is_active"`
	ArchivedBy   *string    `gorm:"type:uuid"                              json:"archived_by,omitempty"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	VersionedModel

	Casino *Casino `gorm:"foreignKey:CasinoID;references:CasinoID" json:"casino,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 姓名
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ApplyRoleInvariants 赌场经理始终持有 pencil，且 pencil 编号等于工号
func (u *User) ApplyRoleInvariants() {
	if u.Role == RoleCasinoManager {
		u.HasPencil = true
		pid := u.EmployeeID
		u.PencilID = &pid
	}
}

// BeforeCreate 生成主键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = newID()
	}
	return nil
}

// BeforeSave Create / Save 路径上强制角色不变量
// 按列条件更新的路径由 repository 显式调用 ApplyRoleInvariants
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.ApplyRoleInvariants()
	return nil
}
