package depgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// TopoSort orders the graph leaf-first with Kahn's algorithm. Files on an
// import cycle never reach indegree zero and are left out.
func TopoSort(g *Graph) []string {
	order := []string{}
	if g == nil || len(g.Items) == 0 {
		return order
	}

	indegree := make(map[string]int, len(g.Indegree))
	for k, v := range g.Indegree {
		indegree[k] = v
	}

	queue := make([]string, 0, len(g.Items))
	for _, it := range g.Items {
		if indegree[it.FilePath] == 0 {
			queue = append(queue, it.FilePath)
		}
	}

	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		order = append(order, file)
		for _, dep := range g.Adjacency[file] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	// Kahn yields importers before their imports.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// Cycles returns the strongly connected components with more than one file.
// Files and components are ordered by visit order.
func Cycles(g *Graph) [][]string {
	cycles := [][]string{}
	if g == nil || len(g.Items) == 0 {
		return cycles
	}

	ids := make(map[string]int64, len(g.Items))
	paths := make([]string, len(g.Items))
	directed := simple.NewDirectedGraph()
	for i, it := range g.Items {
		ids[it.FilePath] = int64(i)
		paths[i] = it.FilePath
		directed.AddNode(simple.Node(int64(i)))
	}
	for from, targets := range g.Adjacency {
		fromID, ok := ids[from]
		if !ok {
			continue
		}
		for _, to := range targets {
			toID, ok := ids[to]
			if !ok || toID == fromID {
				continue
			}
			directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
		}
	}

	var components [][]int64
	for _, scc := range topo.TarjanSCC(directed) {
		if len(scc) < 2 {
			continue
		}
		members := make([]int64, len(scc))
		for i, n := range scc {
			members[i] = n.ID()
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		components = append(components, members)
	}
	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })

	for _, members := range components {
		cycle := make([]string, len(members))
		for i, id := range members {
			cycle[i] = paths[id]
		}
		cycles = append(cycles, cycle)
	}
	return cycles
}
