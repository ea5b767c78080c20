// Package domain contains the core domain models of the package manager:
// identifiers, core descriptions, the dependency graph and its outputs.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// PackageNode is a selected core together with the identities it depends on.
type PackageNode struct {
	Key          InternedString
	Core         *Core
	Dependencies []InternedString
}

// Graph represents the dependency graph of selected cores.
type Graph struct {
	nodes map[InternedString]PackageNode
	order []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[InternedString]PackageNode),
	}
}

// AddPackage adds a node to the graph.
// It returns an error if a node with the same identity already exists.
func (g *Graph) AddPackage(n *PackageNode) error {
	if _, exists := g.nodes[n.Key]; exists {
		return zerr.With(ErrPackageAlreadyExists, "package", n.Key.String())
	}
	g.nodes[n.Key] = *n
	return nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Validate checks root and everything reachable from it for missing
// dependencies and cycles, then orders the graph topologically. Cores that
// become ready together are ordered by identity, every core follows its
// dependencies and root comes last.
func (g *Graph) Validate(root InternedString) error {
	if _, ok := g.nodes[root]; !ok {
		return zerr.With(ErrMissingDependency, "dependency", root.String())
	}
	if err := g.checkAcyclic(root); err != nil {
		return err
	}
	g.order = g.levels(root)
	return nil
}

// checkAcyclic runs a depth-first search from root and then from every node
// it did not reach, in identity order.
func (g *Graph) checkAcyclic(root InternedString) error {
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		node, exists := g.nodes[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", u.String())
		}

		for _, dep := range node.Dependencies {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		return nil
	}

	if err := visit(root); err != nil {
		return err
	}
	for _, key := range g.sortedKeys() {
		if visited[key] == 0 {
			if err := visit(key); err != nil {
				return err
			}
		}
	}
	return nil
}

// levels flattens the graph level by level: each round emits every node
// whose dependencies are all emitted, sorted by identity. root is held back
// and emitted last; edges into root do not delay other nodes.
func (g *Graph) levels(root InternedString) []InternedString {
	pending := make(map[InternedString]int, len(g.nodes))
	dependents := make(map[InternedString][]InternedString, len(g.nodes))
	for key, node := range g.nodes {
		for _, dep := range node.Dependencies {
			if dep == root || dep == key {
				continue
			}
			pending[key]++
			dependents[dep] = append(dependents[dep], key)
		}
	}

	var ready []InternedString
	for _, key := range g.sortedKeys() {
		if key != root && pending[key] == 0 {
			ready = append(ready, key)
		}
	}

	order := make([]InternedString, 0, len(g.nodes))
	for len(ready) > 0 {
		order = append(order, ready...)
		var next []InternedString
		for _, key := range ready {
			for _, d := range dependents[key] {
				pending[d]--
				if pending[d] == 0 && d != root {
					next = append(next, d)
				}
			}
		}
		sortByIdentity(next)
		ready = next
	}
	return append(order, root)
}

func (g *Graph) sortedKeys() []InternedString {
	keys := make([]InternedString, 0, len(g.nodes))
	for key := range g.nodes {
		keys = append(keys, key)
	}
	sortByIdentity(keys)
	return keys
}

func sortByIdentity(keys []InternedString) {
	slices.SortFunc(keys, func(a, b InternedString) int {
		return strings.Compare(a.String(), b.String())
	})
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	var b strings.Builder
	startIdx := slices.Index(path, dep)
	for i := startIdx; i < len(path); i++ {
		b.WriteString(path[i].String())
		b.WriteString(" -> ")
	}
	b.WriteString(dep.String())
	return zerr.With(ErrCycleDetected, "cycle", b.String())
}

// Walk returns an iterator that yields cores in dependency order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*Core] {
	return func(yield func(*Core) bool) {
		for _, key := range g.order {
			if !yield(g.nodes[key].Core) {
				return
			}
		}
	}
}

// Dependencies returns the identities key depends on.
func (g *Graph) Dependencies(key InternedString) []InternedString {
	return g.nodes[key].Dependencies
}
