package mapreduce

import (
	"context"
	"strconv"
)

// Storage keeps reduce results. Bucket corresponds to the reducer's
// partition (see Bucket), so concurrent reducers never write the same
// bucket.
type Storage interface {
	Put(ctx context.Context, bucket, key, val string) error
	// Get reports false if the key was never put.
	Get(ctx context.Context, bucket, key string) (string, bool, error)
	// Keys returns the keys of bucket in ascending order.
	Keys(ctx context.Context, bucket string) ([]string, error)
}

// Bucket is the storage bucket of a partition.
func Bucket(partition int) string {
	return strconv.Itoa(partition)
}
