// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package watermark

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/dpos/thor"
)

var keyPrefix = []byte("wm")

var (
	writeOpt = opt.WriteOptions{Sync: true}
	readOpt  = opt.ReadOptions{}
)

// Store persists watermarks, so that a restarted node never signs a slot it had already signed.
type Store struct {
	db  *leveldb.DB
	stg storage.Storage
}

// Open create a persistent store.
// Create an empty one if not exists, or open if already there.
func Open(path string) (*Store, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open watermark store")
	}
	return open(stg)
}

// NewMem create a store in memory.
func NewMem() (*Store, error) {
	return open(storage.NewMemStorage())
}

func open(stg storage.Storage) (*Store, error) {
	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: 16,
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &Store{db, stg}, nil
}

func storeKey(name thor.Name) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], uint64(name))
	return key
}

func encode(wm Watermark) []byte {
	var val [8]byte
	binary.BigEndian.PutUint32(val[:], wm.BlockNum)
	binary.BigEndian.PutUint32(val[4:], uint32(wm.Slot))
	return val[:]
}

func decode(val []byte) (Watermark, error) {
	if len(val) != 8 {
		return Watermark{}, errors.Errorf("invalid watermark value length %d", len(val))
	}
	return Watermark{
		BlockNum: binary.BigEndian.Uint32(val),
		Slot:     thor.Slot(binary.BigEndian.Uint32(val[4:])),
	}, nil
}

// Get retrieves the watermark of the producer.
func (s *Store) Get(name thor.Name) (Watermark, bool, error) {
	val, err := s.db.Get(storeKey(name), &readOpt)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return Watermark{}, false, nil
		}
		return Watermark{}, false, err
	}
	wm, err := decode(val)
	if err != nil {
		return Watermark{}, false, err
	}
	return wm, true, nil
}

// Save writes the watermark of the producer, ignoring components lower than the stored ones.
func (s *Store) Save(name thor.Name, wm Watermark) error {
	stored, ok, err := s.Get(name)
	if err != nil {
		return err
	}
	if ok {
		marks := Watermarks{name: stored}
		marks.Consider(name, wm.BlockNum, wm.Slot)
		wm = marks[name]
	}
	return s.db.Put(storeKey(name), encode(wm), &writeOpt)
}

// Load reads all persisted watermarks.
func (s *Store) Load() (Watermarks, error) {
	marks := make(Watermarks)

	iter := s.db.NewIterator(util.BytesPrefix(keyPrefix), &readOpt)
	defer iter.Release()

	for iter.Next() {
		key := iter.Key()
		if len(key) != len(keyPrefix)+8 {
			return nil, errors.Errorf("invalid watermark key length %d", len(key))
		}
		wm, err := decode(iter.Value())
		if err != nil {
			return nil, err
		}
		marks[thor.Name(binary.BigEndian.Uint64(key[len(keyPrefix):]))] = wm
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate watermarks")
	}
	return marks, nil
}

// Close close the store.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		s.stg.Close()
		return err
	}
	return s.stg.Close()
}
