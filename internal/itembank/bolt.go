package itembank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/abhisek/thetacat/internal/irt"
)

var bucketItems = []byte("items")

// Store is a bbolt-backed item bank keyed by item ID.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the bank file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bank directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open item bank: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketItems)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init item bank: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put validates and upserts items in a single transaction.
func (s *Store) Put(items ...Item) error {
	if err := Validate(items); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketItems)
		for _, it := range items {
			j, err := json.Marshal(it)
			if err != nil {
				return fmt.Errorf("marshal item %q: %w", it.ID, err)
			}
			if err := b.Put([]byte(it.ID), j); err != nil {
				return fmt.Errorf("put item %q: %w", it.ID, err)
			}
		}
		return nil
	})
}

// Get returns the item with the given ID.
func (s *Store) Get(id string) (Item, error) {
	var it Item
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		it, err = getItem(tx.Bucket(bucketItems), id)
		return err
	})
	return it, err
}

// List returns all items ordered by ID.
func (s *Store) List() ([]Item, error) {
	out := []Item{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketItems).ForEach(func(k, v []byte) error {
			var it Item
			if err := json.Unmarshal(v, &it); err != nil {
				return fmt.Errorf("decode item %q: %w", k, err)
			}
			out = append(out, it)
			return nil
		})
	})
	return out, err
}

// Delete removes an item.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketItems)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("delete %q: %w", id, ErrItemNotFound)
		}
		return b.Delete([]byte(id))
	})
}

// Resolve returns the parameters for ids in order, reading them in one
// transaction. The first unknown ID fails the whole call.
func (s *Store) Resolve(ids []string) (irt.Items, error) {
	out := make(irt.Items, len(ids))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketItems)
		for i, id := range ids {
			it, err := getItem(b, id)
			if err != nil {
				return err
			}
			out[i] = it.Params()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getItem(b *bolt.Bucket, id string) (Item, error) {
	var it Item
	v := b.Get([]byte(id))
	if v == nil {
		return it, fmt.Errorf("item %q: %w", id, ErrItemNotFound)
	}
	if err := json.Unmarshal(v, &it); err != nil {
		return it, fmt.Errorf("decode item %q: %w", id, err)
	}
	return it, nil
}
