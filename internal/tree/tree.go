// Package tree builds a forest of shared-subgraph-deduplicated tree
// nodes from a flat map of task definitions: each target becomes a
// root, children are built one per depends entry in order, and a node
// reached through more than one parent is the same node (same pointer)
// in every parent's children list.
package tree

import (
	"github.com/yarlson/rusk/internal/ruskerr"
	"github.com/yarlson/rusk/internal/taskkey"
)

// Node is one vertex of the built forest. Item is shared by value but
// the Node itself is always referenced by pointer, so sharing a subtree
// between two parents means appending the same *Node to both parents'
// Children slices; the garbage collector keeps it alive for as long as
// any parent references it, with no refcounting of our own needed.
type Node[E any] struct {
	Key      taskkey.Key
	Item     E
	Children []*Node[E]
}

// DepsFunc extracts the dependency keys of an item. It is passed in
// rather than required via an interface method because taskdef.TaskDef
// and executable.Executable are plain structs with no behaviour of
// their own — Go has no trait-like mechanism to retrofit a method onto
// an already-defined type from another package.
type DepsFunc[E any] func(E) []taskkey.Key

// Build constructs one root tree per target. Cycle detection uses a
// scoped ancestor set: a key is added to the ancestor set on entry to
// its conversion and removed via defer on every exit path (success or
// error), so sibling branches of the DFS are never falsely flagged —
// a scoped-insertion discipline with guaranteed removal. Shared-subgraph
// de-duplication uses a separate
// "converted" cache of already-completed nodes, populated only once a
// node's full subtree has been built, so a node reached by two parents
// is built exactly once and the same *Node pointer is reused thereafter.
func Build[E any](defs map[taskkey.Key]E, targets []taskkey.Key, deps DepsFunc[E]) ([]*Node[E], error) {
	converted := make(map[taskkey.Key]*Node[E])
	ancestors := make(map[taskkey.Key]bool)

	var convert func(key taskkey.Key) (*Node[E], error)
	convert = func(key taskkey.Key) (*Node[E], error) {
		if node, ok := converted[key]; ok {
			return node, nil
		}
		if ancestors[key] {
			return nil, &ruskerr.CircularDependencyError{Key: key.String()}
		}
		item, ok := defs[key]
		if !ok {
			return nil, &ruskerr.ItemNotFoundError{Key: key.String()}
		}

		ancestors[key] = true
		defer delete(ancestors, key)

		depKeys := deps(item)
		children := make([]*Node[E], 0, len(depKeys))
		for _, depKey := range depKeys {
			child, err := convert(depKey)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}

		node := &Node[E]{Key: key, Item: item, Children: children}
		converted[key] = node
		return node, nil
	}

	roots := make([]*Node[E], 0, len(targets))
	for _, target := range targets {
		node, err := convert(target)
		if err != nil {
			return nil, err
		}
		roots = append(roots, node)
	}
	return roots, nil
}
