package lifecycle

// Actor 请求上下文中的操作人
// 在认证中间件解析一次后显式传入业务层，业务代码不再回读token
type Actor struct {
	UserID      string
	Name        string
	CompanyID   string
	Roles       []string
	Permissions []string
}

// HasRole 判断操作人是否持有角色（admin视为持有全部角色）
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role || r == "ventas_admin" {
			return true
		}
	}
	return false
}

// HasPermission 判断操作人是否持有权限串
func (a Actor) HasPermission(perm string) bool {
	for _, p := range a.Permissions {
		if p == perm || p == "*" {
			return true
		}
	}
	return false
}
