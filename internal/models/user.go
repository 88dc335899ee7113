package models

// Role is the platform-wide user role. It drives task assignment
// permissions; see the policy package for the rule table.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleCoach   Role = "coach"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleCoach:
		return true
	}
	return false
}

// User represents a platform user (student, mentor or coach).
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	Email    string `json:"email" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     Role   `json:"role" gorm:"not null;default:'student'"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// UserRef is the lightweight user projection embedded in task payloads
// (assignee / createdBy), mirroring what the board UI needs to render.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ref returns the embeddable projection of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
