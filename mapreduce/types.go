package mapreduce

import "context"

// MapFunc is called once per input unit. It may call emit any number of
// times; emit must not be used after MapFunc returned.
type MapFunc func(ctx context.Context, unit string, emit EmitFunc) error

// ReduceFunc is called once per key of a partition, in ascending key order.
// values yields every value emitted for key, newest first. key and the
// values are owned by the engine and must not be retained.
type ReduceFunc func(ctx context.Context, key []byte, values ValueIterator, partition int) error

// EmitFunc routes a key/value pair to its partition. A nil key or value is a
// programmer error and panics with ErrInvalidEmit.
type EmitFunc func(key, value []byte)

// PartitionFunc maps a key to a partition in [0, partitions). It must be
// deterministic.
type PartitionFunc func(key []byte, partitions int) int

// ValueIterator yields the values of a single key. Next returns false after
// the last value.
type ValueIterator interface {
	Next() ([]byte, bool)
}
