package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hierarchy builds ManagedObject <- Element <- Control <- {Button, Panel} <- SampleControl(Button).
func hierarchy(t *testing.T) *Graph[string] {
	t.Helper()
	g := NewGraph[string]()
	for _, id := range []string{"ManagedObject", "Element", "Control", "Button", "Panel", "SampleControl"} {
		g.AddNode(id, id+".ts")
	}
	require.NoError(t, g.AddEdge("ManagedObject", "Element"))
	require.NoError(t, g.AddEdge("Element", "Control"))
	require.NoError(t, g.AddEdge("Control", "Button"))
	require.NoError(t, g.AddEdge("Control", "Panel"))
	require.NoError(t, g.AddEdge("Button", "SampleControl"))
	return g
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := hierarchy(t)
	assert.Equal(t, 6, g.NodeCount())
	assert.Equal(t, 5, g.EdgeCount())

	g.AddNode("Button", "sap/m/Button.ts")
	node, ok := g.GetNode("Button")
	require.True(t, ok)
	assert.Equal(t, "sap/m/Button.ts", node.Data)
	assert.Equal(t, 6, g.NodeCount())
}

func TestGraph_AddEdge_Invalid(t *testing.T) {
	g := NewGraph[int]()
	g.AddNode("a", 1)

	assert.Error(t, g.AddEdge("a", "missing"))
	assert.Error(t, g.AddEdge("missing", "a"))
	assert.Error(t, g.AddEdge("a", "a"), "a class cannot extend itself")
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := NewGraph[int]()
	g.AddNode("a", 0)
	g.AddNode("b", 0)
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "b"))

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []string{"a"}, g.GetParents("b"))
	assert.Equal(t, []string{"b"}, g.GetChildren("a"))
}

func TestGraph_TopologicalSort(t *testing.T) {
	sorted, err := hierarchy(t).TopologicalSort()
	require.NoError(t, err)
	require.Len(t, sorted, 6)

	positions := make(map[string]int)
	for i, node := range sorted {
		positions[node.ID] = i
	}
	assert.Less(t, positions["ManagedObject"], positions["Element"])
	assert.Less(t, positions["Element"], positions["Control"])
	assert.Less(t, positions["Control"], positions["Button"])
	assert.Less(t, positions["Control"], positions["Panel"])
	assert.Less(t, positions["Button"], positions["SampleControl"])
}

func TestGraph_Cycles(t *testing.T) {
	g := hierarchy(t)
	g.AddNode("A", "")
	g.AddNode("B", "")
	g.AddNode("C", "")
	g.AddNode("D", "")
	require.NoError(t, g.AddEdge("A", "B"))
	require.NoError(t, g.AddEdge("B", "A"))
	require.NoError(t, g.AddEdge("B", "C"))
	require.NoError(t, g.AddEdge("C", "D"))
	require.NoError(t, g.AddEdge("D", "C"))

	assert.Equal(t, [][]string{{"A", "B"}, {"C", "D"}}, g.Cycles())

	hasCycle, path := g.HasCycle()
	assert.True(t, hasCycle)
	assert.Equal(t, []string{"A", "B", "A"}, path)

	_, err := g.TopologicalSort()
	assert.Error(t, err)
	_, err = g.GetExecutionLevels()
	assert.Error(t, err)
}

func TestGraph_NoCycles(t *testing.T) {
	g := hierarchy(t)
	assert.Empty(t, g.Cycles())
	hasCycle, path := g.HasCycle()
	assert.False(t, hasCycle)
	assert.Nil(t, path)
}

func TestGraph_RemoveNode(t *testing.T) {
	g := hierarchy(t)
	g.RemoveNode("Control")

	assert.Equal(t, 5, g.NodeCount())
	assert.Empty(t, g.GetChildren("Element"))
	assert.Empty(t, g.GetParents("Button"))
	assert.Equal(t, []string{"Button", "ManagedObject", "Panel"}, g.GetRoots())

	g.RemoveNode("missing")
	assert.Equal(t, 5, g.NodeCount())
}

func TestGraph_GetExecutionLevels(t *testing.T) {
	levels, err := hierarchy(t).GetExecutionLevels()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"ManagedObject"},
		{"Element"},
		{"Control"},
		{"Button", "Panel"},
		{"SampleControl"},
	}, levels)
}

func TestGraph_GetExecutionLevels_Empty(t *testing.T) {
	levels, err := NewGraph[int]().GetExecutionLevels()
	require.NoError(t, err)
	assert.Empty(t, levels)
}

func TestGraph_GetAffectedNodes(t *testing.T) {
	g := hierarchy(t)

	assert.Equal(t, []string{"Button", "SampleControl"}, g.GetAffectedNodes([]string{"Button"}))
	assert.Equal(t, []string{"Button", "Control", "Panel", "SampleControl"}, g.GetAffectedNodes([]string{"Control", "missing"}))
	assert.Empty(t, g.GetAffectedNodes(nil))
}

func TestGraph_GetUpstreamNodes(t *testing.T) {
	g := hierarchy(t)

	assert.Equal(t, []string{"Button", "Control", "Element", "ManagedObject"}, g.GetUpstreamNodes("SampleControl"))
	assert.Empty(t, g.GetUpstreamNodes("ManagedObject"))
}

func TestGraph_GetRoots(t *testing.T) {
	g := hierarchy(t)
	g.AddNode("Standalone", "")
	assert.Equal(t, []string{"ManagedObject", "Standalone"}, g.GetRoots())
}
