/*
 * wondercore - Event scheduler
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package event implements a relative-time event queue used by the scheduler
// to distribute CPU cycles to peripherals (display scanlines, sound mixing,
// the sound DMA sample clock, and the general DMA transfer schedule).
package event

// Callback fires when an event's relative time reaches zero. iarg carries
// whatever the registrant needs (channel number, repeat count, and so on).
type Callback = func(iarg int)

// Owner identifies the peripheral that registered an event, used only to
// cancel it later; the queue never calls back into the owner itself.
type Owner int

const (
	OwnerNone Owner = iota
	OwnerDisplay
	OwnerSound
	OwnerSDMA
	OwnerGDMA
	OwnerBlank
)

type entry struct {
	time int
	dev  Owner
	cb   Callback
	iarg int
	prev *entry
	next *entry
}

// Queue is a doubly-linked relative-time delta queue: each entry's time field
// stores cycles remaining after the previous entry fires, not an absolute
// deadline.
type Queue struct {
	head *entry
	tail *entry
}

// Add schedules cb to fire after time cycles elapse. A zero time fires it
// immediately, matching the teacher's AddEvent semantics for same-tick events.
func (q *Queue) Add(dev Owner, cb Callback, time int, iarg int) {
	if time == 0 {
		cb(iarg)
		return
	}

	ev := &entry{dev: dev, cb: cb, time: time, iarg: iarg}

	cur := q.head
	if cur == nil {
		q.head = ev
		q.tail = ev
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
				q.head = ev
			}
			return
		}
		ev.time -= cur.time
		cur = cur.next
	}

	ev.prev = q.tail
	q.tail.next = ev
	q.tail = ev
}

// Cancel removes the first queued event matching dev and iarg, if any.
func (q *Queue) Cancel(dev Owner, iarg int) {
	cur := q.head
	for cur != nil {
		if cur.dev == dev && cur.iarg == iarg {
			if cur.next != nil {
				cur.next.time += cur.time
				cur.next.prev = cur.prev
			} else {
				q.tail = cur.prev
			}
			if cur.prev != nil {
				cur.prev.next = cur.next
			} else {
				q.head = cur.next
			}
			return
		}
		cur = cur.next
	}
}

// Advance moves the clock forward by t cycles, firing every event that is now
// due, in time order. Callbacks may re-register themselves for the next period.
func (q *Queue) Advance(t int) {
	cur := q.head
	if cur == nil {
		return
	}
	cur.time -= t
	for cur != nil && cur.time <= 0 {
		over := cur.time
		cur.cb(cur.iarg)
		q.head = cur.next
		cur = q.head
		if cur != nil {
			cur.prev = nil
			cur.time += over
		} else {
			q.tail = nil
		}
	}
}
