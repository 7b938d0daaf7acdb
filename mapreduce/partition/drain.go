package partition

// Drainer walks a Partition once in ascending key order, releasing every key
// after it moved past it. It also serves the values of the current key.
//
// A Drainer is owned by a single goroutine. Values must be requested for the
// current key only.
type Drainer struct {
	p *Partition

	min *node

	// pos is the number of values of min not yet returned, valid when
	// positioned is true.
	pos        int
	positioned bool
}

// NextKey releases the previous key and returns the smallest key left. It
// returns false once the partition is empty.
func (d *Drainer) NextKey() ([]byte, bool) {
	d.positioned = false

	if d.min == nil {
		if d.p.root == nil {
			return nil, false
		}

		n := d.p.root
		for n.left != nil {
			n = n.left
		}
		d.min = n

		return n.key, true
	}

	// the current minimum never has a left child
	old := d.min
	switch {
	case old.right == nil && old.parent == nil:
		d.p.root = nil
		d.min = nil
		d.p.release(old)
		return nil, false

	case old.right == nil:
		d.min = old.parent
		d.min.left = nil

	default:
		sub := old.right
		if old.parent == nil {
			d.p.root = sub
		} else {
			old.parent.left = sub
		}
		sub.parent = old.parent

		for sub.left != nil {
			sub = sub.left
		}
		d.min = sub
	}

	d.p.release(old)

	return d.min.key, true
}

// Next returns the next value of the current key, newest first. After the
// last value it returns false once, and the following call starts over at
// the newest value.
func (d *Drainer) Next() ([]byte, bool) {
	if d.min == nil {
		return nil, false
	}

	if !d.positioned {
		d.positioned = true
		d.pos = len(d.min.values)
	}

	if d.pos == 0 {
		d.positioned = false
		return nil, false
	}

	d.pos--

	return d.min.values[d.pos], true
}
