package dto

// ── 工作人员模块 DTO ──

// UserListRequest 工作人员列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin registration_manager attendance_manager"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateUserRequest 创建工作人员请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Role     string `json:"role"     binding:"required,oneof=admin registration_manager attendance_manager"`
}

// CreateUserResponse 创建工作人员响应（含初始密码，仅返回一次）
type CreateUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// UpdateUserRequest 更新工作人员请求
type UpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=100"`
	Role     *string `json:"role"      binding:"omitempty,oneof=admin registration_manager attendance_manager"`
	IsActive *bool   `json:"is_active"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}
