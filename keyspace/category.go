package keyspace

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned for category tags outside the known set.
var ErrUnknownCategory = errors.New("unknown key category")

// Category partitions key records by purpose.
type Category string

const (
	// CategoryCreds addresses the per-session credential record. It is not a
	// key-record category and cannot be used with item ids.
	CategoryCreds Category = "creds"

	CategoryPreKey              Category = "pre-key"
	CategorySignedPreKey        Category = "signed-pre-key"
	CategorySession             Category = "session"
	CategorySenderKey           Category = "sender-key"
	CategorySenderKeyMemory     Category = "sender-key-memory"
	CategoryAppStateSyncKey     Category = "app-state-sync-key"
	CategoryAppStateSyncVersion Category = "app-state-sync-version"
	CategoryLIDMapping          Category = "lid-mapping"
	CategoryDeviceList          Category = "device-list"
	CategoryTCToken             Category = "tctoken"
)

var keyCategories = []Category{
	CategoryPreKey,
	CategorySignedPreKey,
	CategorySession,
	CategorySenderKey,
	CategorySenderKeyMemory,
	CategoryAppStateSyncKey,
	CategoryAppStateSyncVersion,
	CategoryLIDMapping,
	CategoryDeviceList,
	CategoryTCToken,
}

// Categories returns every key-record category.
func Categories() []Category {
	out := make([]Category, len(keyCategories))
	copy(out, keyCategories)
	return out
}

// Valid reports whether c is a key-record category.
func (c Category) Valid() bool {
	for _, known := range keyCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a wire tag into a key-record Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
