// Package graph provides the directed graph model and its text format
package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Node is a single graph node: a value and the indices of its out-neighbours
type Node struct {
	Index      int
	Value      int64
	Neighbours []int
}

// Graph is a directed graph with integer-valued nodes indexed 0..n-1
type Graph struct {
	Nodes []*Node
}

// New creates a graph of n nodes carrying the given values, with no edges
func New(values ...int64) *Graph {
	nodes := make([]*Node, len(values))
	for i, v := range values {
		nodes[i] = &Node{Index: i, Value: v}
	}
	return &Graph{Nodes: nodes}
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// AddEdge adds a directed edge from one node to another
func (g *Graph) AddEdge(from, to int) error {
	if from < 0 || from >= len(g.Nodes) {
		return fmt.Errorf("edge source %d out of range [0, %d)", from, len(g.Nodes))
	}
	if to < 0 || to >= len(g.Nodes) {
		return fmt.Errorf("edge target %d out of range [0, %d)", to, len(g.Nodes))
	}
	g.Nodes[from].Neighbours = append(g.Nodes[from].Neighbours, to)
	return nil
}

// Parse reads a graph in the whitespace-separated text format: a header with
// the node count and edge count, then one value per node, then one "from to"
// index pair per edge.
//
//	n m
//	v0 v1 ... v(n-1)
//	from to
//	...
func Parse(r io.Reader) (*Graph, error) {
	br := bufio.NewReader(r)

	var n, m int
	if _, err := fmt.Fscan(br, &n, &m); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("node count must be positive, got %d", n)
	}
	if m < 0 {
		return nil, fmt.Errorf("edge count must be non-negative, got %d", m)
	}

	values := make([]int64, n)
	for i := range values {
		if _, err := fmt.Fscan(br, &values[i]); err != nil {
			return nil, fmt.Errorf("read value of node %d: %w", i, err)
		}
	}
	g := New(values...)

	for i := 0; i < m; i++ {
		var from, to int
		if _, err := fmt.Fscan(br, &from, &to); err != nil {
			return nil, fmt.Errorf("read edge %d: %w", i, err)
		}
		if err := g.AddEdge(from, to); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}

	return g, nil
}

// Load parses a graph file from disk
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}
