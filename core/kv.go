package core

import (
	"context"

	"github.com/pkg/errors"
)

// Persistence keys, one record per store.
const (
	KeyUsers         = "users"
	KeySession       = "currentUser"
	KeyConversations = "conversations"
	KeyMeetings      = "meetingRequests"
	KeyFiles         = "uploadedFiles"
)

// ErrKeyNotFound is returned by KVStore.Get when nothing was ever saved under a key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the persistence port of the stores: every store saves its whole collection
// as a single JSON document under a fixed key.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
