package storage

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"taskpad/domain"
)

const (
	taskPartition     = "task"
	userPartition     = "user"
	usernamePartition = "username"

	edmDateTime = "Edm.DateTime"
)

// Storage keeps tasks and users in Azure Table Storage.
type Storage struct {
	taskTable *aztables.Client
	userTable *aztables.Client
}

var (
	_ domain.TaskStore = (*Storage)(nil)
	_ domain.UserStore = (*Storage)(nil)
)

// New creates a Storage instance from the given connection string.
func New(connStr, tasksTable, usersTable string) (*Storage, error) {
	svc, err := newServiceClient(connStr)
	if err != nil {
		return nil, err
	}
	return &Storage{taskTable: svc.NewClient(tasksTable), userTable: svc.NewClient(usersTable)}, nil
}

func newServiceClient(connStr string) (*aztables.ServiceClient, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	return aztables.NewServiceClientFromConnectionString(connStr, &opts)
}

// EnsureTables creates the named tables, ignoring ones that already exist.
func EnsureTables(ctx context.Context, connStr string, names ...string) error {
	svc, err := newServiceClient(connStr)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, err := svc.NewClient(name).CreateTable(ctx, nil); err != nil && !tableExists(err) {
			return err
		}
	}
	return nil
}

func tableExists(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists)
}

type keys struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

// translate maps table service status codes onto domain error kinds.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return err
	}
	switch respErr.StatusCode {
	case http.StatusNotFound:
		return domain.NewError(domain.ErrNotFound, describe(respErr))
	case http.StatusConflict, http.StatusPreconditionFailed:
		return domain.NewError(domain.ErrConflict, describe(respErr))
	default:
		return err
	}
}

func describe(respErr *azcore.ResponseError) string {
	if respErr.ErrorCode != "" {
		return respErr.ErrorCode
	}
	return http.StatusText(respErr.StatusCode)
}

// quote renders s as an OData string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func eq(field, value string) string {
	return field + " eq " + quote(value)
}
