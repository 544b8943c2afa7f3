package models

// Role identifies which side of the platform a user acts on. Every user has
// exactly one active role at a time.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAgent      Role = "agent"
	RoleRestaurant Role = "restaurant"
	RoleAdmin      Role = "admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAgent || r == RoleRestaurant || r == RoleAdmin
}

// RoleAssignment maps a user to their single active role. An assignment with
// IsActive=false is treated as "no role" everywhere.
type RoleAssignment struct {
	UID          string  `db:"uid" json:"uid"`
	Role         Role    `db:"role" json:"role"`
	IsActive     bool    `db:"is_active" json:"is_active"`
	AssignedAt   string  `db:"assigned_at" json:"assigned_at"`
	UpdatedAt    string  `db:"updated_at" json:"updated_at"`
	PreviousRole *Role   `db:"previous_role" json:"previous_role,omitempty"`
	UpdatedBy    *string `db:"updated_by" json:"updated_by,omitempty"`
}

// User is the role-independent profile payload, created with empty defaults
// on first access.
type User struct {
	UID       string `db:"uid" json:"id"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
}

// ContactInfo is the slice of a user another role is entitled to see: the
// delivery contact only, never payment details.
type ContactInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
