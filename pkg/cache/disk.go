package cache

import (
	"bytes"
	"encoding/gob"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/orneryd/culaunch/pkg/nvcc"
)

// DiskCache persists compiled artifacts in a BadgerDB store so compilation
// results survive process restarts. Values are gob-encoded artifacts keyed
// by the same digest ArtifactCache uses.
type DiskCache struct {
	db *badger.DB
}

// OpenDisk opens (creating if needed) a disk cache rooted at dir.
func OpenDisk(dir string) (*DiskCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "cache: open disk cache at %s", dir)
	}
	return &DiskCache{db: db}, nil
}

// Close releases the underlying store.
func (c *DiskCache) Close() error {
	return c.db.Close()
}

// Get looks up an artifact by key. The boolean reports presence; an error
// means the store itself failed, not a miss.
func (c *DiskCache) Get(key string) (*nvcc.Artifact, bool, error) {
	var art nvcc.Artifact
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&art)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "cache: disk get")
	}
	return &art, true, nil
}

// Put stores an artifact under key, overwriting any previous value.
func (c *DiskCache) Put(key string, art *nvcc.Artifact) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(art); err != nil {
		return errors.Wrap(err, "cache: encode artifact")
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf.Bytes())
	})
	return errors.Wrap(err, "cache: disk put")
}
