// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package utils

import "testing"

func TestPriorityQueuePopsHighestFirst(t *testing.T) {
	q := NewPriorityQueue[string]()
	q.Push("a", 1)
	q.Push("b", 5)
	q.Push("c", 3)

	v, ok := q.Pop()
	if !ok || v != "b" {
		t.Fatalf("expected b first, got %q (ok=%v)", v, ok)
	}
	v, ok = q.Pop()
	if !ok || v != "c" {
		t.Fatalf("expected c second, got %q (ok=%v)", v, ok)
	}
	v, ok = q.Pop()
	if !ok || v != "a" {
		t.Fatalf("expected a third, got %q (ok=%v)", v, ok)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("expected the queue to be empty")
	}
}

func TestPriorityQueueTiesBreakByInsertionOrder(t *testing.T) {
	q := NewPriorityQueue[string]()
	q.Push("first", 1)
	q.Push("second", 1)

	v, _ := q.Pop()
	if v != "first" {
		t.Fatalf("expected the earlier-inserted entry to win an exact tie, got %q", v)
	}
}

func TestPriorityQueueBumpReordersAndRefreshesTieOrder(t *testing.T) {
	q := NewPriorityQueue[string]()
	q.Push("a", 1)
	q.Push("b", 1)
	q.Bump("a", 10)

	v, _ := q.Pop()
	if v != "a" {
		t.Fatalf("expected a to win after being bumped above b, got %q", v)
	}

	q2 := NewPriorityQueue[string]()
	q2.Push("a", 1)
	q2.Push("b", 1)
	q2.Bump("a", 0)
	v, _ = q2.Pop()
	if v != "b" {
		t.Fatalf("expected the freshly bumped a to lose an exact tie to b, got %q", v)
	}
}

func TestPriorityQueueContains(t *testing.T) {
	q := NewPriorityQueue[string]()
	if q.Contains("a") {
		t.Fatalf("empty queue should not contain anything")
	}
	q.Push("a", 0)
	if !q.Contains("a") {
		t.Fatalf("expected the queue to contain a after Push")
	}
	q.Pop()
	if q.Contains("a") {
		t.Fatalf("expected a to be gone after Pop")
	}
}
