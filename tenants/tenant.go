package tenants

import "github.com/google/uuid"

// Role represents what a user may do within a customer account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

// TenantAccess is one customer (billing account) the current identity may act
// within. The access set is a point-in-time snapshot from the permission
// fetch; it is replaced wholesale on refetch, never mutated in place.
type TenantAccess struct {
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	BAN          string    `json:"ban,omitempty"`
	Role         Role      `json:"role"`
}
