package client

import (
	"fmt"
	"sort"
	"time"
)

// Row is one rendered task.
type Row struct {
	ID       string
	Text     string
	Done     bool
	DueLabel string
	Overdue  bool
	Order    int
}

// View is a pure projection of State.
type View struct {
	LoggedIn bool
	Username string
	Theme    Theme
	Status   string
	Rows     []Row
	Done     int
	Total    int
	Progress string
	Percent  float64
}

// DueLayout formats due dates for display.
const DueLayout = "2006-01-02 15:04"

// SortTasks orders tasks ascending by order, keeping response order for ties.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Order < tasks[j].Order })
}

// Render projects s into a View as of now. It does not modify s.
func Render(s State, now time.Time) View {
	v := View{
		LoggedIn: s.Auth.LoggedIn(),
		Username: s.Auth.Username,
		Theme:    s.Theme,
		Status:   s.Status,
	}
	tasks := append([]Task(nil), s.Tasks...)
	SortTasks(tasks)
	v.Rows = make([]Row, 0, len(tasks))
	for _, t := range tasks {
		row := Row{ID: t.ID, Text: t.Text, Done: t.Done, Order: t.Order}
		if t.DueDate != nil {
			row.DueLabel = "Due: " + t.DueDate.In(now.Location()).Format(DueLayout)
			row.Overdue = !t.Done && t.DueDate.Before(now)
		}
		if t.Done {
			v.Done++
		}
		v.Rows = append(v.Rows, row)
	}
	v.Total = len(tasks)
	v.Progress = fmt.Sprintf("%d of %d tasks done", v.Done, v.Total)
	if v.Total > 0 {
		v.Percent = float64(v.Done) / float64(v.Total) * 100
	}
	return v
}
