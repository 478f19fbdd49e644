package notification

// Category is the closed set of action categories that can trigger a
// notification fan-out.
type Category string

const (
	CategoryTasksAdded    Category = "tasksAdded"
	CategoryTaskUpdates   Category = "taskUpdates"
	CategoryComments      Category = "comments"
	CategoryMessages      Category = "messages"
	CategoryTaskAssigned  Category = "task_assigned"
	CategoryTaskMentioned Category = "task_mentioned"
	CategoryAdminOnly     Category = "adminOnly"
)

// Finer-grained task update kinds. They all resolve as CategoryTaskUpdates;
// the kind only flavours the persisted record's type/message.
const (
	KindStatusUpdate = "statusUpdates"
	KindTaskEdited   = "tasksEdited"
	KindTaskMoved    = "tasksMoved"
	KindTaskDeleted  = "tasksDeleted"
)

// Strategy selects how broadcast recipients are derived. The two strategies
// grew up independently and callers depend on their different reach:
// preference resolution is opt-in-narrow, role resolution is broad by
// default. Both stay exposed; see DESIGN.md for the open question of which
// one should win long term.
type Strategy string

const (
	// StrategyPreference derives recipients from the project's stored
	// notification settings (whichever of the three shapes exists).
	StrategyPreference Strategy = "preference"
	// StrategyRole derives recipients directly from role assignments,
	// ignoring stored settings.
	StrategyRole Strategy = "role"
)

// broadcast reports whether a category fans out to a derived set rather
// than to explicitly named targets.
func (c Category) broadcast() bool {
	switch c {
	case CategoryTasksAdded, CategoryTaskUpdates, CategoryComments, CategoryMessages:
		return true
	}
	return false
}

// direct reports whether a category addresses its explicit targets only.
func (c Category) direct() bool {
	return c == CategoryTaskAssigned || c == CategoryTaskMentioned
}
