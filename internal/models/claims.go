package models

import "github.com/golang-jwt/jwt/v5"

// Wallet-facing permissions carried in tokens issued by the access-control
// layer. The wallet core only consumes these; it never grants them.
const (
	PermissionWalletRead       = "wallet:read"
	PermissionWalletWrite      = "wallet:write"
	PermissionTransactionRead  = "transaction:read"
	PermissionTransactionWrite = "transaction:write"
	PermissionWalletFreeze     = "wallet:freeze"
)

// UserClaims is the identity decision made by the external auth layer,
// as it arrives on each request.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID      uint     `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
