// Package event implements a relative-time callback scheduler used by
// peripherals that model completion latency (UART transmit-complete)
// instead of acting instantaneously on the same cycle the MMIO write
// landed.
package event

// Callback receives the iarg supplied at scheduling time.
type Callback func(iarg int)

type entry struct {
	time int // Cycles remaining until this event fires, relative to prev.
	owner any
	cb    Callback
	iarg  int
	prev  *entry
	next  *entry
}

// List is a doubly-linked, relative-time ordered event queue. The zero
// value is ready to use.
type List struct {
	head *entry
	tail *entry
}

// Add schedules cb to run after the given number of cycles. A zero delay
// runs cb immediately, inline, without entering the list at all. owner
// identifies the peripheral that scheduled the event, for Cancel.
func (l *List) Add(owner any, cb Callback, cycles int, iarg int) {
	if cycles <= 0 {
		cb(iarg)
		return
	}

	ev := &entry{owner: owner, cb: cb, time: cycles, iarg: iarg}

	cur := l.head
	if cur == nil {
		l.head = ev
		l.tail = ev
		return
	}

	for cur != nil {
		if ev.time <= cur.time {
			cur.time -= ev.time
			ev.prev = cur.prev
			ev.next = cur
			cur.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				l.head = ev
			}
			return
		}
		ev.time -= cur.time
		cur = cur.next
	}

	ev.prev = l.tail
	l.tail.next = ev
	l.tail = ev
}

// Cancel removes the first pending event matching owner and iarg, if any.
func (l *List) Cancel(owner any, iarg int) {
	for cur := l.head; cur != nil; cur = cur.next {
		if cur.owner != owner || cur.iarg != iarg {
			continue
		}
		if cur.next != nil {
			cur.next.time += cur.time
			cur.next.prev = cur.prev
		} else {
			l.tail = cur.prev
		}
		if cur.prev != nil {
			cur.prev.next = cur.next
		} else {
			l.head = cur.next
		}
		return
	}
}

// Pending reports whether any event is queued.
func (l *List) Pending() bool {
	return l.head != nil
}

// Advance moves time forward by cycles, firing every event whose
// countdown reaches zero or below, in order.
func (l *List) Advance(cycles int) {
	if l.head == nil {
		return
	}
	l.head.time -= cycles
	for l.head != nil && l.head.time <= 0 {
		fired := l.head
		l.head = fired.next
		if l.head != nil {
			l.head.prev = nil
			l.head.time += fired.time // Carry any overshoot to the next event.
		} else {
			l.tail = nil
		}
		fired.cb(fired.iarg)
	}
}
