package models

import "time"

// AccountStatus gates dashboard access; mutated only by an admin.
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusRejected AccountStatus = "rejected"
)

// ValidAccountStatus reports whether the value is a known account status.
func ValidAccountStatus(v string) bool {
	switch AccountStatus(v) {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Role is a named permission grant, independent of account status.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleStaff         Role = "staff"
	RoleHOD           Role = "hod"
	RoleFaculty       Role = "faculty"
	RolePlacementCell Role = "placement_cell"
	RoleExamCell      Role = "exam_cell"
)

// ValidRole reports whether the value is a known role name.
func ValidRole(v string) bool {
	switch Role(v) {
	case RoleAdmin, RoleStaff, RoleHOD, RoleFaculty, RolePlacementCell, RoleExamCell:
		return true
	default:
		return false
	}
}

// User represents an authenticated identity stored in the users table.
type User struct {
	ID            string        `db:"id" json:"id"`
	Email         string        `db:"email" json:"email"`
	PasswordHash  string        `db:"password_hash" json:"-"`
	FullName      *string       `db:"full_name" json:"full_name,omitempty"`
	AccountStatus AccountStatus `db:"account_status" json:"account_status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// UserRole associates a user with a role name.
type UserRole struct {
	ID     string `db:"id" json:"id"`
	UserID string `db:"user_id" json:"user_id"`
	Role   Role   `db:"role" json:"role"`
}

// Identity is the resolver output consumed by gated routes. A missing status
// is reported as the empty string, distinct from rejected.
type Identity struct {
	AccountStatus AccountStatus `json:"account_status"`
	IsAdmin       bool          `json:"is_admin"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
