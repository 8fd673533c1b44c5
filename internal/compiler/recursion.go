package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// RecursionWarning reports a function that can reach itself through calls.
//
// Recursion is a warning, not an error, because it is usually intentional:
// the interpreter bounds it with its step quota and call depth limit.
type RecursionWarning struct {
	Path    []string `json:"path"`    // call path: ["even", "odd", "even"]
	Message string   `json:"message"` // human-readable description
	Level   string   `json:"level"`   // always "warning"
}

// AnalyzeRecursion finds recursive functions in a call graph.
//
// The graph maps each function to the user functions its body calls. Each
// strongly connected component with more than one function, or a single
// function that calls itself, becomes one warning. Warnings are ordered by
// the first function of their path, and a component's path starts at its
// alphabetically first member, so the result is deterministic.
func AnalyzeRecursion(calls map[string][]string) []RecursionWarning {
	graph := make(callGraph, len(calls))
	for fn, callees := range calls {
		graph[fn] = dedupe(callees)
	}

	var warnings []RecursionWarning
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, sccToWarning(scc, graph))
		}
	}
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Path[0] < warnings[j].Path[0]
	})
	return warnings
}

// callGraph maps function name → functions it calls.
type callGraph map[string][]string

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func hasSelfLoop(node string, graph callGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order and every SCC comes back sorted.
func tarjanSCC(graph callGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func sccToWarning(scc []string, graph callGraph) RecursionWarning {
	if len(scc) == 1 {
		fn := scc[0]
		return RecursionWarning{
			Path:    []string{fn, fn},
			Message: fmt.Sprintf("function %s calls itself", fn),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return RecursionWarning{
		Path:    path,
		Message: fmt.Sprintf("mutually recursive functions: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath walks from the first SCC member along edges that stay
// inside the SCC until it returns to the start.
func reconstructCyclePath(scc []string, graph callGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
