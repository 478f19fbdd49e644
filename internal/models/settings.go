package models

// Notification settings exist in three historical shapes, and all three are
// live in production data. Exactly one shape is authoritative for a project
// at a time; the resolver branches on whichever record exists.

// CategoryFlags is one row of the role matrix: which broadcast categories a
// role receives.
type CategoryFlags struct {
	TaskUpdates bool `bson:"task_updates" json:"taskUpdates"`
	TasksAdded  bool `bson:"tasks_added" json:"tasksAdded"`
	Comments    bool `bson:"comments" json:"comments"`
	Messages    bool `bson:"messages" json:"messages"`
}

// RoleMatrix maps role -> category flags for a project.
type RoleMatrix map[Role]CategoryFlags

// DefaultRoleMatrix returns the engineering defaults: admins and editors get
// everything, commenters only comments, viewers nothing.
func DefaultRoleMatrix() RoleMatrix {
	return RoleMatrix{
		RoleAdmin:     {TaskUpdates: true, TasksAdded: true, Comments: true, Messages: true},
		RoleEditor:    {TaskUpdates: true, TasksAdded: true, Comments: true, Messages: true},
		RoleCommenter: {Comments: true},
		RoleViewer:    {},
	}
}

// RoleMatrixSettings is the stored form of a role-matrix record.
type RoleMatrixSettings struct {
	ProjectID string     `bson:"project_id" json:"projectId"`
	Roles     RoleMatrix `bson:"roles" json:"roles"`
}

// AllowLists is the per-user opt-in shape: four sets of user IDs, one per
// category. Membership in a set means opt-in.
type AllowLists struct {
	ProjectID     string   `bson:"project_id" json:"projectId"`
	StatusUpdates []string `bson:"status_updates" json:"statusUpdates"`
	TasksAdded    []string `bson:"tasks_added" json:"tasksAdded"`
	Messages      []string `bson:"messages" json:"messages"`
	Comments      []string `bson:"comments" json:"comments"`
}

// TeamMemberPreference lets a user mute notifications caused by a specific
// other member's actions.
type TeamMemberPreference struct {
	MemberID             string `bson:"member_id" json:"memberId"`
	ReceiveNotifications bool   `bson:"receive_notifications" json:"receiveNotifications"`
}

// UserPreference is the per-user-per-project boolean record.
type UserPreference struct {
	UserID                string                 `bson:"user_id" json:"userId"`
	ProjectID             string                 `bson:"project_id" json:"projectId"`
	StatusUpdates         bool                   `bson:"status_updates" json:"statusUpdates"`
	TasksAdded            bool                   `bson:"tasks_added" json:"tasksAdded"`
	Messages              bool                   `bson:"messages" json:"messages"`
	Comments              bool                   `bson:"comments" json:"comments"`
	TeamMemberPreferences []TeamMemberPreference `bson:"team_member_preferences,omitempty" json:"teamMemberPreferences,omitempty"`
}

// Muted reports whether this user has muted notifications triggered by
// senderID's actions.
func (p *UserPreference) Muted(senderID string) bool {
	for _, tm := range p.TeamMemberPreferences {
		if tm.MemberID == senderID {
			return !tm.ReceiveNotifications
		}
	}
	return false
}
