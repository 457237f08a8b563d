package domain

import "time"

// Task is a user-owned to-do item.
type Task struct {
	ID        string
	OwnerID   string
	Text      string
	Done      bool
	CreatedAt time.Time
	UpdatedAt *time.Time
	DueDate   *time.Time
	Order     int
}

// TaskRecord is a task together with the store revision it was read at.
type TaskRecord struct {
	Task
	Revision string
}

// TaskPatch carries the fields supplied by a partial update. A nil field is
// left unchanged. ClearDueDate removes the due date and wins over DueDate.
type TaskPatch struct {
	Text         *string
	Done         *bool
	DueDate      *time.Time
	ClearDueDate bool
	Order        *int
}

// Empty reports whether the patch changes nothing besides the update time.
func (p TaskPatch) Empty() bool {
	return p.Text == nil && p.Done == nil && p.DueDate == nil && !p.ClearDueDate && p.Order == nil
}

func (p TaskPatch) apply(t *Task) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Done != nil {
		t.Done = *p.Done
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
}
