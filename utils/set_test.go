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

func TestSetAddIsIdempotent(t *testing.T) {
	s := NewSet[string]()
	if !s.Add("rax") {
		t.Fatalf("expected the first Add to report a new element")
	}
	if s.Add("rax") {
		t.Fatalf("expected a duplicate Add to report false")
	}
	if s.Length() != 1 {
		t.Fatalf("expected length 1, got %d", s.Length())
	}
}

func TestSetRemove(t *testing.T) {
	s := NewSet[string]()
	s.Add("rax")
	if !s.Remove("rax") {
		t.Fatalf("expected Remove to report the element was present")
	}
	if s.Remove("rax") {
		t.Fatalf("expected a second Remove to report false")
	}
	if s.Contains("rax") {
		t.Fatalf("expected rax to be gone")
	}
}

func TestSetForEachVisitsEveryElement(t *testing.T) {
	s := NewSet[string]()
	s.Add("rax")
	s.Add("rbx")
	s.Add("rcx")

	seen := make(map[string]bool)
	s.ForEach(func(e string) { seen[e] = true })
	if len(seen) != 3 || !seen["rax"] || !seen["rbx"] || !seen["rcx"] {
		t.Fatalf("expected ForEach to visit all 3 elements, got %v", seen)
	}
}
