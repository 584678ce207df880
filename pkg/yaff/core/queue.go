package core

// Queue is the FIFO of pending work items. It is not safe for concurrent use;
// the Engine only touches it from its Loop.
type Queue struct {
	items []*Item
}

func (q *Queue) Len() int {
	return len(q.items)
}

func (q *Queue) Head() *Item {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

func (q *Queue) Last() *Item {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[len(q.items)-1]
}

// Push appends it. A parallel item directly following another parallel item
// continues its batch and takes the next position; any other parallel item
// opens a new batch at position 0.
func (q *Queue) Push(it *Item) {
	if it.Kind == Parallel {
		if last := q.Last(); last != nil && last.Kind == Parallel {
			it.Position = last.Position + 1
		} else {
			it.Position = 0
		}
	}
	q.items = append(q.items, it)
}

func (q *Queue) Pop() *Item {
	if len(q.items) == 0 {
		return nil
	}
	it := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return it
}

// PopBatch removes every contiguous leading parallel item.
func (q *Queue) PopBatch() []*Item {
	n := 0
	for n < len(q.items) && q.items[n].Kind == Parallel {
		n++
	}
	if n == 0 {
		return nil
	}
	batch := make([]*Item, n)
	copy(batch, q.items[:n])
	clear(q.items[:n])
	q.items = q.items[n:]
	return batch
}

func (q *Queue) Clear() {
	clear(q.items)
	q.items = nil
}

// Overflow holds parallel items deferred by their concurrency limit. Items
// leave in last-deferred-first order.
type Overflow struct {
	items []*Item
}

func (o *Overflow) Len() int {
	return len(o.items)
}

func (o *Overflow) Push(it *Item) {
	o.items = append(o.items, it)
}

func (o *Overflow) Pop() *Item {
	n := len(o.items)
	if n == 0 {
		return nil
	}
	it := o.items[n-1]
	o.items[n-1] = nil
	o.items = o.items[:n-1]
	return it
}

// Drop discards all deferred items and returns them, most recent first.
func (o *Overflow) Drop() []*Item {
	dropped := make([]*Item, 0, len(o.items))
	for it := o.Pop(); it != nil; it = o.Pop() {
		dropped = append(dropped, it)
	}
	return dropped
}
