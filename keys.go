package authstate

import (
	"context"
	"fmt"

	"github.com/MrEthical07/authstate/internal/records"
	"github.com/MrEthical07/authstate/keyspace"
)

// Category is a key-record category.
type Category = keyspace.Category

// Key-record categories.
const (
	CategoryPreKey              = keyspace.CategoryPreKey
	CategorySignedPreKey        = keyspace.CategorySignedPreKey
	CategorySession             = keyspace.CategorySession
	CategorySenderKey           = keyspace.CategorySenderKey
	CategorySenderKeyMemory     = keyspace.CategorySenderKeyMemory
	CategoryAppStateSyncKey     = keyspace.CategoryAppStateSyncKey
	CategoryAppStateSyncVersion = keyspace.CategoryAppStateSyncVersion
	CategoryLIDMapping          = keyspace.CategoryLIDMapping
	CategoryDeviceList          = keyspace.CategoryDeviceList
	CategoryTCToken             = keyspace.CategoryTCToken
)

// SignalKeyStore is the key-record surface a protocol runtime consumes.
type SignalKeyStore interface {
	Get(ctx context.Context, category Category, ids []string) (map[string]any, error)
	Set(ctx context.Context, data map[Category]map[string]any) error
}

var _ SignalKeyStore = (*KeyStore)(nil)

// KeyStore reads and writes the key records of one session.
type KeyStore struct {
	store *records.Store
}

// Get returns an entry for every id in ids. Absent and unreadable records map
// to nil; only an unsupported category is reported as an error.
func (k *KeyStore) Get(ctx context.Context, category Category, ids []string) (map[string]any, error) {
	if err := checkKeyCategory(category); err != nil {
		return nil, err
	}
	return k.store.BatchGet(ctx, category, ids), nil
}

// Set writes every non-empty value and deletes the record of every nil or
// empty one. All entries are attempted; the returned error joins one
// *WriteError per failed write and wraps ErrStoreWrite. Successful entries
// stay applied when others fail.
func (k *KeyStore) Set(ctx context.Context, data map[Category]map[string]any) error {
	for category := range data {
		if err := checkKeyCategory(category); err != nil {
			return err
		}
	}
	return k.store.BatchSet(ctx, data)
}

func checkKeyCategory(category Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(category))
	}
	return nil
}
