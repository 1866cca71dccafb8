package entity

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleHost     UserRole = "host"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	Base
	Username string   `db:"username"`
	Email    string   `db:"email"`
	Role     UserRole `db:"role"`
	IsActive bool     `db:"is_active"`
}
