package model

// 工作人员角色
const (
	RoleAdmin               = "admin"
	RoleRegistrationManager = "registration_manager" // 登记管理员：学员、时段
	RoleAttendanceManager   = "attendance_manager"   // 考勤管理员：签到、缺勤说明、停训恢复
)

// RoleMember 学员自助 Token 的角色，不对应 users 表中的账号
const RoleMember = "member"

// StaffRoles 全部工作人员角色
var StaffRoles = []string{RoleAdmin, RoleRegistrationManager, RoleAttendanceManager}

// User 工作人员账号表，对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"        json:"user_id"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"                 json:"username"`
	Name         string `gorm:"type:varchar(100);not null"                            json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                            json:"-"`
	Role         string `gorm:"type:varchar(30);not null;default:'attendance_manager'" json:"role"`
	IsActive     bool   `gorm:"not null;default:true"                                 json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
