package storage

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"taskpad/domain"
)

type taskEntity struct {
	keys
	OwnerID       string     `json:"OwnerID"`
	Text          string     `json:"Text"`
	Done          bool       `json:"Done"`
	Order         int        `json:"Order"`
	CreatedAt     time.Time  `json:"CreatedAt"`
	CreatedAtType string     `json:"CreatedAt@odata.type,omitempty"`
	UpdatedAt     *time.Time `json:"UpdatedAt,omitempty"`
	UpdatedAtType string     `json:"UpdatedAt@odata.type,omitempty"`
	DueDate       *time.Time `json:"DueDate,omitempty"`
	DueDateType   string     `json:"DueDate@odata.type,omitempty"`
}

func encodeTask(t domain.Task) ([]byte, error) {
	ent := taskEntity{
		keys:          keys{PartitionKey: taskPartition, RowKey: t.ID},
		OwnerID:       t.OwnerID,
		Text:          t.Text,
		Done:          t.Done,
		Order:         t.Order,
		CreatedAt:     t.CreatedAt.UTC(),
		CreatedAtType: edmDateTime,
	}
	if t.UpdatedAt != nil {
		u := t.UpdatedAt.UTC()
		ent.UpdatedAt, ent.UpdatedAtType = &u, edmDateTime
	}
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		ent.DueDate, ent.DueDateType = &d, edmDateTime
	}
	return sonic.Marshal(ent)
}

func decodeTask(data []byte) (domain.Task, error) {
	var ent taskEntity
	if err := sonic.Unmarshal(data, &ent); err != nil {
		return domain.Task{}, err
	}
	return domain.Task{
		ID:        ent.RowKey,
		OwnerID:   ent.OwnerID,
		Text:      ent.Text,
		Done:      ent.Done,
		Order:     ent.Order,
		CreatedAt: ent.CreatedAt,
		UpdatedAt: ent.UpdatedAt,
		DueDate:   ent.DueDate,
	}, nil
}

// FindTasks lists the owner's tasks in table order.
func (s *Storage) FindTasks(ctx context.Context, ownerID string) ([]domain.TaskRecord, error) {
	filter := eq("PartitionKey", taskPartition) + " and " + eq("OwnerID", ownerID)
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	recs := []domain.TaskRecord{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, translate(err)
		}
		for _, e := range resp.Entities {
			t, err := decodeTask(e)
			if err != nil {
				return nil, err
			}
			recs = append(recs, domain.TaskRecord{Task: t})
		}
	}
	return recs, nil
}

// GetTask reads a task together with its ETag.
func (s *Storage) GetTask(ctx context.Context, id string) (domain.TaskRecord, error) {
	resp, err := s.taskTable.GetEntity(ctx, taskPartition, id, nil)
	if err != nil {
		return domain.TaskRecord{}, translate(err)
	}
	t, err := decodeTask(resp.Value)
	if err != nil {
		return domain.TaskRecord{}, err
	}
	return domain.TaskRecord{Task: t, Revision: string(resp.ETag)}, nil
}

// InsertTask stores t under a fresh id.
func (s *Storage) InsertTask(ctx context.Context, t domain.Task) (string, error) {
	t.ID = uuid.NewString()
	payload, err := encodeTask(t)
	if err != nil {
		return "", err
	}
	if _, err := s.taskTable.AddEntity(ctx, payload, nil); err != nil {
		return "", translate(err)
	}
	return t.ID, nil
}

// ReplaceTask overwrites the task if its ETag still matches rec.Revision.
func (s *Storage) ReplaceTask(ctx context.Context, rec domain.TaskRecord) error {
	payload, err := encodeTask(rec.Task)
	if err != nil {
		return err
	}
	etag := azcore.ETag(rec.Revision)
	_, err = s.taskTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &etag, UpdateMode: aztables.UpdateModeReplace})
	return translate(err)
}

// DeleteTask removes the task if its ETag still matches revision.
func (s *Storage) DeleteTask(ctx context.Context, id, revision string) error {
	etag := azcore.ETag(revision)
	_, err := s.taskTable.DeleteEntity(ctx, taskPartition, id, &aztables.DeleteEntityOptions{IfMatch: &etag})
	return translate(err)
}
