package models

import "time"

// UserRole represents the roles recognised by the access control layer.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

// Student represents a registered learner and the owner of at most one
// assessment record.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"fullName"`
	SchoolName   string    `db:"school_name" json:"schoolName"`
	Standard     string    `db:"standard" json:"standard"`
	Age          int       `db:"age" json:"age"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// StudentFilter encapsulates allowed search parameters for the admin listing.
type StudentFilter struct {
	Search    string
	Status    *AssessmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentOverview joins a student with their assessment state for the
// admin panel. Score detail is deliberately omitted.
type StudentOverview struct {
	ID           string           `db:"id" json:"id"`
	FullName     string           `db:"full_name" json:"name"`
	SchoolName   string           `db:"school_name" json:"schoolName"`
	Standard     string           `db:"standard" json:"standard"`
	Age          int              `db:"age" json:"age"`
	Status       AssessmentStatus `db:"status" json:"status"`
	ReportHandle *string          `db:"report_handle" json:"reportPath,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
