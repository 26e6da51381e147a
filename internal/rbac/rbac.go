// Package rbac 提供静态的角色→能力表。
// 角色与能力都是编译期常量，替代原来运行时可变的权限字典。
package rbac

// Role 操作员角色。
type Role string

const (
	RoleOwner          Role = "owner"
	RoleAdmin          Role = "admin"
	RoleManager        Role = "manager"
	RoleCashier        Role = "cashier"
	RoleInventoryStaff Role = "inventory_staff"
	RoleEmployee       Role = "employee"
)

// Capabilities 各功能域的准入开关。
type Capabilities struct {
	POS            bool
	Inventory      bool
	Reports        bool
	UserManagement bool
}

// 角色能力表。新增角色必须在这里补一行，否则一律无权限。
var roleTable = map[Role]Capabilities{
	RoleOwner:          {POS: true, Inventory: true, Reports: true, UserManagement: true},
	RoleAdmin:          {POS: true, Inventory: true, Reports: true, UserManagement: true},
	RoleManager:        {POS: true, Inventory: true, Reports: true},
	RoleCashier:        {POS: true},
	RoleInventoryStaff: {Inventory: true},
	RoleEmployee:       {POS: true},
}

// Valid 判断角色是否在表内。
func Valid(r Role) bool {
	_, ok := roleTable[r]
	return ok
}

// Of 返回角色的能力集。未知角色返回零值（全部拒绝）。
func Of(r Role) Capabilities {
	return roleTable[r]
}

func CanPOS(r Role) bool            { return roleTable[r].POS }
func CanInventory(r Role) bool      { return roleTable[r].Inventory }
func CanReports(r Role) bool        { return roleTable[r].Reports }
func CanUserManagement(r Role) bool { return roleTable[r].UserManagement }
