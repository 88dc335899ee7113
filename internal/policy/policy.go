// Package policy is the single place where role-based task permissions are
// decided. It is pure: no storage, no context, just the rule table.
package policy

import (
	"fmt"

	"mentorhub-api/internal/models"
)

// Operation names a task mutation subject to a policy decision.
type Operation string

const (
	OpAssign Operation = "assign"
	OpMove   Operation = "move"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// DeniedError reports a policy denial, carrying enough detail for the UI to
// explain which rule was violated.
type DeniedError struct {
	ActorRole  models.Role
	TargetRole models.Role
	Reason     string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

// assignable maps an actor role to the set of roles it may assign tasks to.
// Students assign only to fellow students, mentors to students and fellow
// mentors, coaches to anyone.
var assignable = map[models.Role]map[models.Role]bool{
	models.RoleStudent: {
		models.RoleStudent: true,
	},
	models.RoleMentor: {
		models.RoleStudent: true,
		models.RoleMentor:  true,
	},
	models.RoleCoach: {
		models.RoleStudent: true,
		models.RoleMentor:  true,
		models.RoleCoach:   true,
	},
}

var denialReasons = map[models.Role]string{
	models.RoleStudent: "students can only assign tasks to fellow students",
	models.RoleMentor:  "mentors can only assign tasks to students and fellow mentors",
}

// CanAssign decides whether actorRole may assign a task to a user holding
// targetRole. Returns nil on approval or a *DeniedError on denial.
func CanAssign(actorRole, targetRole models.Role) error {
	if assignable[actorRole][targetRole] {
		return nil
	}
	reason, ok := denialReasons[actorRole]
	if !ok {
		reason = fmt.Sprintf("role %q may not assign tasks to role %q", actorRole, targetRole)
	}
	return &DeniedError{ActorRole: actorRole, TargetRole: targetRole, Reason: reason}
}

// Check decides whether an authenticated actor may perform op against a task
// assigned (or being assigned) to targetRole. Only assignment is gated;
// moves, field updates and deletes are open to any authenticated role.
func Check(actorRole, targetRole models.Role, op Operation) error {
	switch op {
	case OpAssign:
		return CanAssign(actorRole, targetRole)
	default:
		return nil
	}
}
