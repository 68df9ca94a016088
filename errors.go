package authstate

import (
	"errors"

	"github.com/MrEthical07/authstate/codec"
	"github.com/MrEthical07/authstate/internal/records"
	"github.com/MrEthical07/authstate/keyspace"
)

var (
	// ErrStoreWrite wraps every failed record write returned by SaveCreds,
	// Flush and KeyStore.Set.
	ErrStoreWrite = records.ErrStoreWrite
	// ErrUnknownCategory is returned by KeyStore.Get and KeyStore.Set for a
	// category outside the supported set.
	ErrUnknownCategory = keyspace.ErrUnknownCategory
	// ErrStoreRead, ErrStoreDelete and ErrEnumeration appear in log records only.
	ErrStoreRead   = records.ErrStoreRead
	ErrStoreDelete = records.ErrStoreDelete
	ErrEnumeration = records.ErrEnumeration
	// ErrCredsInit wraps a failure of the credential initializer in Manager.Open.
	ErrCredsInit = errors.New("credential initialization failed")
	// ErrSessionIDRequired is returned by Manager.Open for an empty session id.
	ErrSessionIDRequired = errors.New("session id required")
	// ErrBuilderUsed is returned by a second Builder.Build call.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrBackendRequired is returned by Builder.Build when no backend was given.
	ErrBackendRequired = errors.New("backend required")
	// ErrPrefixRequired is returned by Manager.Sessions when the keyspace
	// prefix is empty.
	ErrPrefixRequired = errors.New("keyspace prefix required to list sessions")
)

// WriteError reports the category and item id of one failed write.
// Use errors.As on errors returned by KeyStore.Set to collect them.
type WriteError = records.WriteError

// DecodeError reports an unreadable stored value.
type DecodeError = codec.DecodeError
