package mapreduce

import "github.com/spaolacci/murmur3"

// DefaultHashPartition is the djb2 string hash taken modulo partitions.
func DefaultHashPartition(key []byte, partitions int) int {
	var hash uint64 = 5381
	for _, b := range key {
		hash = hash*33 + uint64(b)
	}

	return int(hash % uint64(partitions))
}

func MurmurPartition(key []byte, partitions int) int {
	return int(murmur3.Sum64(key) % uint64(partitions))
}
