package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskpad/domain"
)

type userEntity struct {
	keys
	Type          string    `json:"Type"`
	Username      string    `json:"Username"`
	PasswordHash  string    `json:"PasswordHash"`
	CreatedAt     time.Time `json:"CreatedAt"`
	CreatedAtType string    `json:"CreatedAt@odata.type,omitempty"`
}

// claimEntity reserves a username. Its row key is derived from the username,
// so a second insert for the same name fails with 409.
type claimEntity struct {
	keys
	UserID string `json:"UserID"`
}

func claimKey(username string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(username))
}

func decodeUser(data []byte) (domain.User, error) {
	var ent userEntity
	if err := sonic.Unmarshal(data, &ent); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           ent.RowKey,
		Username:     ent.Username,
		PasswordHash: ent.PasswordHash,
		CreatedAt:    ent.CreatedAt,
	}, nil
}

// FindUserByUsername returns the first user document with the given
// username, or nil when there is none.
func (s *Storage) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	filter := eq("PartitionKey", userPartition) + " and " + eq("Username", username)
	top := int32(1)
	pager := s.userTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter, Top: &top})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, translate(err)
		}
		for _, e := range resp.Entities {
			u, err := decodeUser(e)
			if err != nil {
				return nil, err
			}
			return &u, nil
		}
	}
	return nil, nil
}

// CreateUser claims the username and then stores the user document. A
// claim held by someone else fails with domain.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, u domain.User) (string, error) {
	u.ID = uuid.NewString()
	claim, err := sonic.Marshal(claimEntity{
		keys:   keys{PartitionKey: usernamePartition, RowKey: claimKey(u.Username)},
		UserID: u.ID,
	})
	if err != nil {
		return "", err
	}
	if _, err := s.userTable.AddEntity(ctx, claim, nil); err != nil {
		return "", translate(err)
	}
	doc, err := sonic.Marshal(userEntity{
		keys:          keys{PartitionKey: userPartition, RowKey: u.ID},
		Type:          "user",
		Username:      u.Username,
		PasswordHash:  u.PasswordHash,
		CreatedAt:     u.CreatedAt.UTC(),
		CreatedAtType: edmDateTime,
	})
	if err == nil {
		_, err = s.userTable.AddEntity(ctx, doc, nil)
	}
	if err != nil {
		if _, derr := s.userTable.DeleteEntity(ctx, usernamePartition, claimKey(u.Username), nil); derr != nil {
			log.WithFields(log.Fields{"username": u.Username, "error": derr}).Error("release username claim")
		}
		err = translate(err)
		if errors.Is(err, domain.ErrConflict) {
			// A uuid collision is the only way to get here; do not report it as a taken name.
			return "", errors.New("user id collision")
		}
		return "", err
	}
	return u.ID, nil
}
