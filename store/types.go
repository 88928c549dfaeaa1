package store

import (
	"github.com/iov-one/valman"
)

// Storage interfaces are defined in the root package, the aliases keep
// the names short inside this package.

type (
	ReadOnlyKVStore  = valman.ReadOnlyKVStore
	SetDeleter       = valman.SetDeleter
	KVStore          = valman.KVStore
	Batch            = valman.Batch
	Iterator         = valman.Iterator
	CacheableKVStore = valman.CacheableKVStore
	KVCacheWrap      = valman.KVCacheWrap
	CommitKVStore    = valman.CommitKVStore
	CommitID         = valman.CommitID
	Model            = valman.Model
)
