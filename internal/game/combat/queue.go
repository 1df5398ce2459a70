package combat

// Queue is one combatant's bounded pending-action buffer. It is FIFO with
// rotate-not-pop read semantics: NextRotate returns the front entry and
// moves it to the back, so a capacity-1 queue repeats the last chosen
// action until a new submission overwrites it.
//
// Queue is not safe for concurrent use; the owning Session serializes
// access under its lock.
type Queue struct {
	capacity int
	entries  []Request
}

// DefaultQueueCapacity is the per-combatant queue size used when the
// session options leave it unset. One slot means a new submission always
// replaces the pending action.
const DefaultQueueCapacity = 1

// NewQueue creates an empty queue holding at most capacity entries.
//
// Precondition: capacity >= 1; values below 1 are clamped to 1.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{capacity: capacity}
}

// Len returns the number of queued requests.
func (q *Queue) Len() int { return len(q.entries) }

// Push appends r to the back of the queue. If the queue is at capacity the
// oldest entry is evicted to make room.
//
// Postcondition: Len() <= capacity; the newest entry is at the back.
func (q *Queue) Push(r Request) {
	if len(q.entries) >= q.capacity {
		q.entries = q.entries[1:]
	}
	q.entries = append(q.entries, r)
}

// NextRotate returns the request at the front and rotates it to the back.
// An empty queue yields the Hold fallback.
func (q *Queue) NextRotate() Request {
	if len(q.entries) == 0 {
		return HoldRequest()
	}
	front := q.entries[0]
	if len(q.entries) > 1 {
		copy(q.entries, q.entries[1:])
		q.entries[len(q.entries)-1] = front
	}
	return front
}

// Peek returns the request at the front without rotating, or the Hold
// fallback when empty. Used for status displays.
func (q *Queue) Peek() Request {
	if len(q.entries) == 0 {
		return HoldRequest()
	}
	return q.entries[0]
}

// Replace discards every queued entry and leaves only r. Used when an
// action forces the actor's next turn (stunt, use, wield force Hold).
//
// Postcondition: Len() == 1 and Peek() returns r.
func (q *Queue) Replace(r Request) {
	q.entries = q.entries[:0]
	q.entries = append(q.entries, r)
}

// Entries returns a copy of the queued requests, front first. Used for
// snapshots.
func (q *Queue) Entries() []Request {
	cp := make([]Request, len(q.entries))
	copy(cp, q.entries)
	return cp
}
