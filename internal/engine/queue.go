package engine

// pulseQueue is the FIFO queue for one simulator.
//
// Not thread-safe: the simulator is single-writer and the queue never
// leaves its goroutine. The backing array is reused across presses; once
// the queue drains it is rewound so steady-state presses do not allocate.
type pulseQueue struct {
	pulses []Pulse
	head   int
}

// newPulseQueue creates an empty queue.
func newPulseQueue() *pulseQueue {
	return &pulseQueue{
		pulses: make([]Pulse, 0, 64),
	}
}

// Enqueue appends p to the back of the queue.
func (q *pulseQueue) Enqueue(p Pulse) {
	q.pulses = append(q.pulses, p)
}

// Dequeue removes and returns the front pulse.
// Returns (Pulse{}, false) if the queue is empty.
func (q *pulseQueue) Dequeue() (Pulse, bool) {
	if q.head == len(q.pulses) {
		return Pulse{}, false
	}
	p := q.pulses[q.head]
	q.head++
	if q.head == len(q.pulses) {
		q.pulses = q.pulses[:0]
		q.head = 0
	}
	return p, true
}

// Len returns the number of queued pulses.
func (q *pulseQueue) Len() int {
	return len(q.pulses) - q.head
}

// Reset discards all queued pulses.
func (q *pulseQueue) Reset() {
	q.pulses = q.pulses[:0]
	q.head = 0
}
