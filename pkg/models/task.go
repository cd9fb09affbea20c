package models

// TaskStatus is the lifecycle state of a single task entry.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskFailed:
		return true
	default:
		return false
	}
}

// TaskEntry is the persisted per-task record inside GroupedTaskProgress.
type TaskEntry struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	StartedAt    string        `json:"startedAt,omitempty"`
	CompletedAt  string        `json:"completedAt,omitempty"`
	Status       TaskStatus    `json:"status"`
	TokenUsage   *TokenUsage   `json:"tokenUsage,omitempty"`
	ContextUsage *ContextUsage `json:"contextUsage,omitempty"`
}

// GroupedTaskProgress tracks completion at both the group (integer id
// prefix) and individual task granularity.
type GroupedTaskProgress struct {
	CompletedGroups []int       `json:"completedGroups"`
	TotalGroups     int         `json:"totalGroups"`
	CurrentGroup    *int        `json:"currentGroup,omitempty"`
	TaskEntries     []TaskEntry `json:"taskEntries,omitempty"`
	CurrentTaskID   string      `json:"currentTaskId,omitempty"`
}

// Task is a single parsed line from tasks.md, before grouping.
type Task struct {
	ID          string
	Completed   bool
	HasAsterisk bool
	Priority    bool
	Title       string
	Description string
}

// TaskGroup is a set of Tasks sharing the same integer id prefix.
type TaskGroup struct {
	Group     int
	Tasks     []Task
	Completed bool
}
