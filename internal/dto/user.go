package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,max=20"`
	FirstName  string  `json:"first_name"  binding:"required,max=50"`
	LastName   string  `json:"last_name"   binding:"omitempty,max=50"`
	Password   string  `json:"password"    binding:"required,min=8,max=64"`
	Role       string  `json:"role"        binding:"required,oneof=DEALER SUPERVISOR TOKE_MANAGER CASINO_MANAGER ACCOUNTING ADMIN"`
	CasinoID   *string `json:"casino_id"   binding:"omitempty,uuid"`
	Shift      *int    `json:"shift"       binding:"omitempty,oneof=1 2 3"`
}

// UpdateUserRequest 更新用户请求，字段为 nil 表示不修改
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=50"`
	Role      *string `json:"role"       binding:"omitempty,oneof=DEALER SUPERVISOR TOKE_MANAGER CASINO_MANAGER ACCOUNTING ADMIN"`
	CasinoID  *string `json:"casino_id"  binding:"omitempty,uuid"`
	Shift     *int    `json:"shift"      binding:"omitempty,oneof=1 2 3"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role            string `form:"role"             binding:"omitempty,oneof=DEALER SUPERVISOR TOKE_MANAGER CASINO_MANAGER ACCOUNTING ADMIN"`
	IncludeArchived bool   `form:"include_archived"`
}

// VerifyPencilRequest 主管校验 pencil 编号
type VerifyPencilRequest struct {
	PencilID string `json:"pencil_id" binding:"required,max=20"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Role       string  `json:"role"`
	CasinoID   *string `json:"casino_id,omitempty"`
	Shift      *int    `json:"shift,omitempty"`
	HasPencil  bool    `json:"has_pencil"`
	PencilID   *string `json:"pencil_id,omitempty"`
	IsActive   bool    `json:"is_active"`
	ArchivedAt string  `json:"archived_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// PencilVerifyResponse pencil 校验结果
type PencilVerifyResponse struct {
	Verified  bool `json:"verified"`
	HasPencil bool `json:"has_pencil"`
}
