package mapreduce

import (
	"fmt"
	"sync/atomic"
)

// Stats counts the work done by one run.
type Stats struct {
	MapIn     uint64 // units mapped
	MapOut    uint64 // pairs emitted
	ReduceIn  uint64 // keys reduced
	ReduceOut uint64 // values handed to reducers
}

func (s Stats) String() string {
	return fmt.Sprintf("MapIn: %d, MapOut: %d, ReduceIn: %d, ReduceOut: %d", s.MapIn, s.MapOut, s.ReduceIn, s.ReduceOut)
}

type counters struct {
	mapIn, mapOut       atomic.Uint64
	reduceIn, reduceOut atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		MapIn:     c.mapIn.Load(),
		MapOut:    c.mapOut.Load(),
		ReduceIn:  c.reduceIn.Load(),
		ReduceOut: c.reduceOut.Load(),
	}
}

// countingIterator counts the values a reducer pulls.
type countingIterator struct {
	ValueIterator
	n *atomic.Uint64
}

func (it countingIterator) Next() ([]byte, bool) {
	v, ok := it.ValueIterator.Next()
	if ok {
		it.n.Add(1)
	}

	return v, ok
}
