package models

import "time"

// DateLayout is the calendar date format used for due dates
const DateLayout = "2006-01-02"

type Task struct {
	ID          int       `json:"id"`
	OwnerID     int       `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"due_date,omitempty"` //zero when the task has no due date
	Priority    string    `json:"priority,omitempty"`
	Complete    bool      `json:"complete"`
	CreatedAt   time.Time `json:"created_at"` //always UTC
}

func (t Task) HasDueDate() bool {
	return !t.DueDate.IsZero()
}

// DueDateString returns the due date as YYYY-MM-DD or "" when unset
func (t Task) DueDateString() string {
	if !t.HasDueDate() {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// CreatedAtIn converts the stored UTC creation time to loc for display
func (t Task) CreatedAtIn(loc *time.Location) time.Time {
	if loc == nil {
		return t.CreatedAt
	}
	return t.CreatedAt.In(loc)
}

// PriorityRank maps a priority tag to its sort rank, unknown tags rank 0
func PriorityRank(priority string) int {
	switch priority {
	case "High":
		return 3
	case "Medium":
		return 2
	case "Low":
		return 1
	}
	return 0
}

// User represent the registered person
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` //bcrypt hash
}

// Stats are the aggregate counts shown above a task list
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func StatsOf(tasks []Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Complete {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

type TaskList struct {
	Tasks []Task `json:"tasks"`
	Stats Stats  `json:"stats"`
}
