package model

type Permission string

const (
	PermPOSSales     Permission = "POS_SALES"
	PermPOSVoid      Permission = "POS_VOID"
	PermPOSDiscount  Permission = "POS_DISCOUNT"
	PermFinanceView  Permission = "FINANCE_VIEW"
	PermStockManage  Permission = "STOCK_MANAGE"
	PermStaffManage  Permission = "STAFF_MANAGE"
	PermSystemConfig Permission = "SYSTEM_CONFIG"
	PermOwnerAccess  Permission = "OWNER_ACCESS"
	PermAGTConfig    Permission = "AGT_CONFIG"
)

// AllPermissions is the owner profile.
var AllPermissions = []Permission{
	PermPOSSales, PermPOSVoid, PermPOSDiscount, PermFinanceView, PermStockManage,
	PermStaffManage, PermSystemConfig, PermOwnerAccess, PermAGTConfig,
}

const (
	RoleOwner   = "OWNER"
	RoleManager = "GERENTE"
	RoleCashier = "CAIXA"
	RoleWaiter  = "GARCOM"
)

// User is a staff member that logs in with a numeric PIN. Only the bcrypt
// hash of the PIN is kept.
type User struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Role        string       `json:"role"`
	PINHash     string       `json:"pinHash"`
	Permissions []Permission `json:"permissions"`
	Active      bool         `json:"active"`
}

func (u User) Can(p Permission) bool {
	for _, have := range u.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

func (u User) Clone() User {
	u.Permissions = append([]Permission(nil), u.Permissions...)
	return u
}
