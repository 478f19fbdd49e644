package models

// Role is a project-scoped permission level. Besides write permissions it
// controls the default notification reach of a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEditor    Role = "editor"
	RoleCommenter Role = "commenter"
	RoleViewer    Role = "viewer"
)

// DefaultRole applies when a user has no assignment in a project.
const DefaultRole = RoleViewer

// RoleAssignment maps a user to a role within one project. Unique per
// (project, user). NotifyAll is only meaningful for admins: when set, the
// admin opts into every notification category regardless of the matrix.
type RoleAssignment struct {
	ProjectID string `bson:"project_id" json:"projectId"`
	UserID    string `bson:"user_id" json:"userId"`
	Role      Role   `bson:"role" json:"role"`
	NotifyAll bool   `bson:"notify_all,omitempty" json:"notifyAll"`
}

func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleCommenter, RoleViewer:
		return true
	}
	return false
}
