package client

import (
	"time"
)

// ReminderWindow is how far ahead a due task triggers a reminder.
const ReminderWindow = 10 * time.Minute

// Notifier shows desktop notifications.
type Notifier interface {
	// Permitted reports whether notifications may be shown.
	Permitted() bool
	Notify(title, body string) error
}

// Reminder is a notification for a task that is due soon.
type Reminder struct {
	TaskID string
	Title  string
	Body   string
}

// DueSoon returns reminders for tasks that are not done and due strictly
// within (now, now+ReminderWindow).
func DueSoon(tasks []Task, now time.Time) []Reminder {
	var out []Reminder
	for _, t := range tasks {
		if t.Done || t.DueDate == nil {
			continue
		}
		diff := t.DueDate.Sub(now)
		if diff <= 0 || diff >= ReminderWindow {
			continue
		}
		out = append(out, Reminder{
			TaskID: t.ID,
			Title:  "Task Reminder",
			Body:   t.Text + " is due soon (" + t.DueDate.In(now.Location()).Format(DueLayout) + ")",
		})
	}
	return out
}
