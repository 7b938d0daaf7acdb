package bbolt

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tymbaca/mapreduce-engine/pkg/caller"
	"github.com/tymbaca/mapreduce-engine/pkg/tracer"
	"go.etcd.io/bbolt"
)

// BboltStorage keeps one bolt bucket per partition.
type BboltStorage struct {
	db *bbolt.DB
}

func New(path string) (*BboltStorage, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("create bbolt storage: %w", err)
	}

	return &BboltStorage{
		db: db,
	}, nil
}

func (s *BboltStorage) Put(ctx context.Context, bucket, key, val string) error {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		buck, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}

		return buck.Put([]byte(key), []byte(val))
	})
	if err != nil {
		return fmt.Errorf("put %q into bucket %q: %w", key, bucket, err)
	}

	return nil
}

func (s *BboltStorage) Get(ctx context.Context, bucket, key string) (val string, found bool, err error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	err = s.db.View(func(tx *bbolt.Tx) error {
		buck := tx.Bucket([]byte(bucket))
		if buck == nil {
			return nil
		}

		// the slice is only valid inside the transaction
		data := buck.Get([]byte(key))
		if data != nil {
			val, found = string(data), true
		}

		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("get %q from bucket %q: %w", key, bucket, err)
	}

	return val, found, nil
}

func (s *BboltStorage) Keys(ctx context.Context, bucket string) ([]string, error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	var keys []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		buck := tx.Bucket([]byte(bucket))
		if buck == nil {
			return nil
		}

		c := buck.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list keys of bucket %q: %w", bucket, err)
	}

	return keys, nil
}

// Close must be call to release database connection.
func (s *BboltStorage) Close() error {
	return s.db.Close()
}

// Destroy closes the database and removes the file.
func (s *BboltStorage) Destroy() error {
	path := s.db.Path()
	_ = s.Close()
	return os.Remove(path)
}
