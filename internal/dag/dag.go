// Package dag provides the class inheritance graph used to order surface
// building. It supports cycle detection, topological sorting, execution levels
// and downstream change detection.
package dag

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Node is one class in the graph.
type Node[T any] struct {
	// ID is the class module id.
	ID string
	// Data holds the class payload.
	Data T
}

// Graph is a directed graph where an edge runs from a base class to a class
// that extends it.
type Graph[T any] struct {
	nodes   map[string]*Node[T]
	edges   map[string][]string // base -> derived classes
	parents map[string][]string // derived -> base classes
}

// NewGraph creates a new empty graph.
func NewGraph[T any]() *Graph[T] {
	return &Graph[T]{
		nodes:   make(map[string]*Node[T]),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node, replacing the data of an existing one.
func (g *Graph[T]) AddNode(id string, data T) {
	if node, exists := g.nodes[id]; exists {
		node.Data = data
		return
	}
	g.nodes[id] = &Node[T]{ID: id, Data: data}
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge records that child extends parent.
func (g *Graph[T]) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return errors.Newf("base node %q does not exist", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return errors.Newf("derived node %q does not exist", childID)
	}
	if parentID == childID {
		return errors.Newf("class %s extends itself", parentID)
	}

	if !contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// RemoveNode deletes a node and every edge touching it.
func (g *Graph[T]) RemoveNode(id string) {
	if _, exists := g.nodes[id]; !exists {
		return
	}
	for _, childID := range g.edges[id] {
		g.parents[childID] = without(g.parents[childID], id)
	}
	for _, parentID := range g.parents[id] {
		g.edges[parentID] = without(g.edges[parentID], id)
	}
	delete(g.nodes, id)
	delete(g.edges, id)
	delete(g.parents, id)
}

// GetNode returns a node by ID.
func (g *Graph[T]) GetNode(id string) (*Node[T], bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// GetParents returns the base classes of a node.
func (g *Graph[T]) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the classes extending a node.
func (g *Graph[T]) GetChildren(id string) []string {
	return g.edges[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph[T]) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph[T]) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

func (g *Graph[T]) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasCycle returns true if the graph contains a cycle, along with one cycle path.
func (g *Graph[T]) HasCycle() (bool, []string) {
	cycles := g.Cycles()
	if len(cycles) == 0 {
		return false, nil
	}
	path := append([]string{}, cycles[0]...)
	return true, append(path, cycles[0][0])
}

// Cycles returns the strongly connected components with more than one node,
// each sorted, in order of their first member.
func (g *Graph[T]) Cycles() [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var cycles [][]string

	var connect func(id string)
	connect = func(id string) {
		indices[id] = index
		lowlink[id] = index
		index++
		stack = append(stack, id)
		onStack[id] = true

		for _, childID := range g.edges[id] {
			if _, seen := indices[childID]; !seen {
				connect(childID)
				lowlink[id] = min(lowlink[id], lowlink[childID])
			} else if onStack[childID] {
				lowlink[id] = min(lowlink[id], indices[childID])
			}
		}

		if lowlink[id] != indices[id] {
			return
		}
		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == id {
				break
			}
		}
		if len(component) > 1 {
			sort.Strings(component)
			cycles = append(cycles, component)
		}
	}

	for _, id := range g.sortedIDs() {
		if _, seen := indices[id]; !seen {
			connect(id)
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// TopologicalSort returns nodes with base classes before derived classes.
// Returns an error if the graph contains a cycle.
func (g *Graph[T]) TopologicalSort() ([]*Node[T], error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, errors.Newf("inheritance cycle: %v", cyclePath)
	}

	visited := make(map[string]bool)
	result := make([]*Node[T], 0, len(g.nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, parentID := range g.parents[id] {
			visit(parentID)
		}
		result = append(result, g.nodes[id])
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return result, nil
}

// GetExecutionLevels groups nodes by inheritance depth. Level 0 holds classes
// whose base is outside the graph.
func (g *Graph[T]) GetExecutionLevels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, errors.Newf("inheritance cycle: %v", cyclePath)
	}

	assigned := make(map[string]int)
	var getLevel func(id string) int
	getLevel = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}
		level := 0
		for _, parentID := range g.parents[id] {
			level = max(level, getLevel(parentID)+1)
		}
		assigned[id] = level
		return level
	}

	maxLevel := -1
	for id := range g.nodes {
		maxLevel = max(maxLevel, getLevel(id))
	}

	levels := make([][]string, maxLevel+1)
	for id, level := range assigned {
		levels[level] = append(levels[level], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// GetAffectedNodes returns the given nodes plus every class deriving from
// them, directly or transitively.
func (g *Graph[T]) GetAffectedNodes(changedIDs []string) []string {
	affected := make(map[string]bool)

	var markAffected func(id string)
	markAffected = func(id string) {
		if affected[id] {
			return
		}
		affected[id] = true
		for _, childID := range g.edges[id] {
			markAffected(childID)
		}
	}

	for _, id := range changedIDs {
		if _, exists := g.nodes[id]; exists {
			markAffected(id)
		}
	}
	return sortedKeys(affected)
}

// GetUpstreamNodes returns every ancestor of the given node.
func (g *Graph[T]) GetUpstreamNodes(id string) []string {
	upstream := make(map[string]bool)

	var markUpstream func(nodeID string)
	markUpstream = func(nodeID string) {
		for _, parentID := range g.parents[nodeID] {
			if !upstream[parentID] {
				upstream[parentID] = true
				markUpstream(parentID)
			}
		}
	}

	markUpstream(id)
	return sortedKeys(upstream)
}

// GetRoots returns nodes with no base class in the graph.
func (g *Graph[T]) GetRoots() []string {
	var roots []string
	for _, id := range g.sortedIDs() {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

func sortedKeys(set map[string]bool) []string {
	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

func without(slice []string, str string) []string {
	out := slice[:0]
	for _, s := range slice {
		if s != str {
			out = append(out, s)
		}
	}
	return out
}
