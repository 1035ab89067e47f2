// Package event carries fire triggers from any goroutine to the simulation loop
package event

import (
	"sync/atomic"

	"github.com/lixenwraith/danmaku/parameter"
	"github.com/lixenwraith/danmaku/vmath"
)

// FireRequest asks the simulation to run a named pattern into a named pool
// Empty Pool selects the simulation's default pool
type FireRequest struct {
	Pattern  string
	Pool     string
	Origin   vmath.Vec2
	Rotation float32
}

// cell pairs a request with its turn number
// seq == pos: free for the producer claiming pos
// seq == pos+1: written, ready for the consumer reading pos
type cell struct {
	seq atomic.Uint64
	req FireRequest
}

// FireQueue is a bounded lock-free MPSC queue of fire requests
// Producers claim positions with CAS and publish through the cell sequence;
// a full queue rejects the new request, so requests already queued always fire
type FireQueue struct {
	cells   [parameter.FireQueueSize]cell
	enqueue atomic.Uint64
	dequeue atomic.Uint64 // written by the consumer only
	dropped atomic.Uint64
}

func NewFireQueue() *FireQueue {
	q := &FireQueue{}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q
}

// Push queues req; returns false and counts a drop when the queue is full
// Safe for concurrent producers
func (q *FireQueue) Push(req FireRequest) bool {
	pos := q.enqueue.Load()
	for {
		c := &q.cells[pos&parameter.FireBufferMask]
		seq := c.seq.Load()

		switch {
		case seq == pos:
			if q.enqueue.CompareAndSwap(pos, pos+1) {
				c.req = req
				c.seq.Store(pos + 1)
				return true
			}
			pos = q.enqueue.Load()
		case seq < pos:
			// Cell still holds the request from one lap ago
			q.dropped.Add(1)
			return false
		default:
			// Another producer claimed pos first
			pos = q.enqueue.Load()
		}
	}
}

// Consume appends ready requests to dst in FIFO order
// Stops at the first claimed but unwritten cell; that request is picked up next call.
// Single consumer only; dst is reused by the caller across steps
func (q *FireQueue) Consume(dst []FireRequest) []FireRequest {
	pos := q.dequeue.Load()
	for range parameter.FireQueueSize {
		c := &q.cells[pos&parameter.FireBufferMask]
		if c.seq.Load() != pos+1 {
			break
		}
		dst = append(dst, c.req)
		c.req = FireRequest{}
		c.seq.Store(pos + parameter.FireQueueSize)
		pos++
	}
	q.dequeue.Store(pos)
	return dst
}

// Len returns approximate pending request count
func (q *FireQueue) Len() int {
	head := q.dequeue.Load()
	tail := q.enqueue.Load()
	if tail <= head {
		return 0
	}
	return min(int(tail-head), parameter.FireQueueSize)
}

// Dropped returns how many requests were rejected by a full queue
func (q *FireQueue) Dropped() uint64 {
	return q.dropped.Load()
}
