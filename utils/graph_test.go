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

func TestGraphAddEdgeIsUndirected(t *testing.T) {
	g := NewGraph[string]()
	g.AddEdge("a", "b")
	if !g.HasEdge("a", "b") || !g.HasEdge("b", "a") {
		t.Fatalf("expected the edge to be visible from both endpoints")
	}
	if g.Degree("a") != 1 || g.Degree("b") != 1 {
		t.Fatalf("expected degree 1 on both endpoints")
	}
}

func TestGraphAddEdgeIgnoresSelfLoops(t *testing.T) {
	g := NewGraph[string]()
	g.AddEdge("a", "a")
	if g.HasEdge("a", "a") {
		t.Fatalf("expected a self-loop to be ignored")
	}
}

func TestGraphAddVertexWithoutEdges(t *testing.T) {
	g := NewGraph[string]()
	g.AddVertex("a")
	if g.NumVertices() != 1 {
		t.Fatalf("expected 1 vertex, got %d", g.NumVertices())
	}
	if g.Degree("a") != 0 {
		t.Fatalf("expected an isolated vertex to have degree 0")
	}
}

func TestGraphNeighbours(t *testing.T) {
	g := NewGraph[string]()
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	ns := g.Neighbours("a")
	if len(ns) != 2 {
		t.Fatalf("expected 2 neighbours of a, got %d", len(ns))
	}
}
