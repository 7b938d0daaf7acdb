// Package partition holds the per-reducer key/value store. A Partition is
// filled concurrently during the map phase and then drained in ascending key
// order by exactly one reducer.
package partition

import (
	"bytes"
	"log"
	"sync"
)

type node struct {
	key    []byte
	values [][]byte

	left   *node
	right  *node
	parent *node

	released bool
}

// Partition is a binary search tree keyed by byte order. Insert is safe for
// concurrent use. Draining is not, and must only start after every Insert
// has returned.
type Partition struct {
	mu   sync.Mutex
	root *node
	live int
}

func New() *Partition {
	return &Partition{}
}

// Insert adds value to the values of key, creating the key if needed. Both
// slices are copied.
func (p *Partition) Insert(key, value []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	value = bytes.Clone(value)

	if p.root == nil {
		p.root = p.newNode(key, value, nil)
		return
	}

	cur := p.root
	for {
		switch cmp := bytes.Compare(key, cur.key); {
		case cmp == 0:
			cur.values = append(cur.values, value)
			return
		case cmp < 0:
			if cur.left == nil {
				cur.left = p.newNode(key, value, cur)
				return
			}
			cur = cur.left
		default:
			if cur.right == nil {
				cur.right = p.newNode(key, value, cur)
				return
			}
			cur = cur.right
		}
	}
}

// Len returns the number of keys not yet released by a Drainer.
func (p *Partition) Len() int {
	return p.live
}

// Drain returns the iterator that empties the partition.
func (p *Partition) Drain() *Drainer {
	return &Drainer{p: p}
}

func (p *Partition) newNode(key, value []byte, parent *node) *node {
	p.live++
	return &node{
		key:    bytes.Clone(key),
		values: [][]byte{value},
		parent: parent,
	}
}

func (p *Partition) release(n *node) {
	if n.released {
		log.Panicf("partition: key %q released twice", n.key)
	}

	n.released = true
	n.values = nil
	n.left, n.right, n.parent = nil, nil, nil
	p.live--
}
