// Package store persists sale snapshots in a bbolt database so an engine can
// restart without losing deposit ledgers or one-shot settlement flags.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/openlaunch/liblaunch-go/sale"
	"github.com/openlaunch/liblaunch-go/token"
)

var (
	bucketSales      = []byte("sales")       // issued-token address → gob snapshot
	bucketSalesIndex = []byte("sales_index") // 8-byte ordinal → issued-token address
)

// SaleStore wraps a bbolt database holding sale snapshots keyed by
// issued-token address, with an ordinal index preserving registration order.
type SaleStore struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func Open(dbPath string) (*SaleStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketSales, bucketSalesIndex} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("store: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &SaleStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SaleStore) Close() error { return s.db.Close() }

// PutSale stores a snapshot, keyed by its issued-token address. A first put
// assigns the next ordinal; later puts overwrite in place.
func (s *SaleStore) PutSale(snap *sale.Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	key := snap.Config.IssuedToken
	if key.IsZero() {
		return fmt.Errorf("%w: zero issued token", ErrNilSnapshot)
	}

	data, err := encodeGob(snap)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		sb := tx.Bucket(bucketSales)
		isNew := sb.Get(key[:]) == nil

		if err := sb.Put(key[:], data); err != nil {
			return fmt.Errorf("store: put snapshot: %w", err)
		}
		if isNew {
			ib := tx.Bucket(bucketSalesIndex)
			seq, err := ib.NextSequence()
			if err != nil {
				return fmt.Errorf("store: next ordinal: %w", err)
			}
			if err := ib.Put(ordinalKey(seq), key[:]); err != nil {
				return fmt.Errorf("store: put ordinal: %w", err)
			}
		}
		return nil
	})
}

// GetSale retrieves a snapshot by issued-token address.
func (s *SaleStore) GetSale(issuedToken token.Address) (*sale.Snapshot, error) {
	var snap sale.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSales).Get(issuedToken[:])
		if data == nil {
			return ErrSaleNotFound
		}
		if err := decodeGob(data, &snap); err != nil {
			return fmt.Errorf("store: decode snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListSales returns up to limit snapshots in registration order, starting at
// position offset. Deleted sales do not occupy positions.
func (s *SaleStore) ListSales(offset, limit int) ([]*sale.Snapshot, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset %d, limit %d", ErrInvalidPage, offset, limit)
	}

	var snaps []*sale.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		sb := tx.Bucket(bucketSales)
		c := tx.Bucket(bucketSalesIndex).Cursor()

		pos := 0
		for k, v := c.First(); k != nil && len(snaps) < limit; k, v = c.Next() {
			data := sb.Get(v)
			if data == nil {
				continue // ordinal left behind by a deleted sale
			}
			if pos < offset {
				pos++
				continue
			}
			pos++
			var snap sale.Snapshot
			if err := decodeGob(data, &snap); err != nil {
				return fmt.Errorf("store: decode snapshot: %w", err)
			}
			snaps = append(snaps, &snap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snaps, nil
}

// DeleteSale removes a snapshot. Its ordinal slot is abandoned.
func (s *SaleStore) DeleteSale(issuedToken token.Address) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		sb := tx.Bucket(bucketSales)
		if sb.Get(issuedToken[:]) == nil {
			return ErrSaleNotFound
		}
		if err := sb.Delete(issuedToken[:]); err != nil {
			return fmt.Errorf("store: delete snapshot: %w", err)
		}
		return nil
	})
}

// SaleCount returns the number of stored snapshots.
func (s *SaleStore) SaleCount() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketSales).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ordinalKey encodes an ordinal as an 8-byte big-endian key for sorted storage.
func ordinalKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
