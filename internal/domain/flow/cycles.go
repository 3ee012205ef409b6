package flow

import "sort"

// DetectCycles reports every cycle in the child-to-parents graph using a
// depth-first traversal with a recursion stack. Each cycle is returned as
// the ordered sequence of playlist IDs involved, reported once per back
// edge. A cycle is data for the caller, not an error: the flow service
// decides whether to suppress flow for the affected playlists.
//
// Only direct relationships participate; no transitive closure is computed,
// so a chain A→B→C is not a cycle unless a direct edge closes it.
func DetectCycles(childToParents map[string][]string) [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var dfs func(id string)
	dfs = func(id string) {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, parent := range childToParents[id] {
			if onStack[parent] {
				for i, node := range path {
					if node == parent {
						cycles = append(cycles, append([]string(nil), path[i:]...))
						break
					}
				}
				continue
			}
			if !visited[parent] {
				dfs(parent)
			}
		}

		onStack[id] = false
		path = path[:len(path)-1]
	}

	// Stable root order keeps cycle reports reproducible across runs.
	roots := make([]string, 0, len(childToParents))
	for id := range childToParents {
		roots = append(roots, id)
	}
	sort.Strings(roots)

	for _, id := range roots {
		if !visited[id] {
			dfs(id)
		}
	}
	return cycles
}
