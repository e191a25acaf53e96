package datastore

import (
	"fmt"

	"github.com/pawkit/pawkit/internal/model"
)

// Collection tree helpers. Traversal is iterative over adjacency maps
// with a visited-set guard: the write path rejects cycles, but not every
// historical path did, so reads must not hang on corrupt data.

// children returns the direct active children of a collection.
func (ds *DataStore) children(id string) []model.Collection {
	var out []model.Collection
	for _, c := range ds.mem.collectionList() {
		if c.ParentID != nil && *c.ParentID == id {
			out = append(out, c)
		}
	}
	return out
}

// descendants returns every collection below id, deepest last. The root
// itself is not included.
func (ds *DataStore) descendants(id string) []string {
	childIndex := make(map[string][]string)
	for _, c := range ds.mem.collectionList() {
		if c.ParentID != nil {
			childIndex[*c.ParentID] = append(childIndex[*c.ParentID], c.ID)
		}
	}

	var out []string
	visited := map[string]bool{id: true}
	stack := append([]string(nil), childIndex[id]...)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		out = append(out, current)
		stack = append(stack, childIndex[current]...)
	}
	return out
}

// checkNoCycle rejects moving collection id under newParent when
// newParent is id itself or one of its descendants.
func (ds *DataStore) checkNoCycle(id, newParent string) error {
	if newParent == id {
		return fmt.Errorf("%w: collection cannot be its own parent", model.ErrValidation)
	}

	parentIndex := make(map[string]*string)
	for _, c := range ds.mem.collectionList() {
		parentIndex[c.ID] = c.ParentID
	}

	visited := make(map[string]bool)
	current := newParent
	for {
		if visited[current] {
			// Pre-existing cycle above the target; the move cannot make
			// things worse, but refuse it anyway.
			return fmt.Errorf("%w: collection tree already contains a cycle at %s", model.ErrValidation, current)
		}
		visited[current] = true

		parent, ok := parentIndex[current]
		if !ok || parent == nil {
			return nil
		}
		if *parent == id {
			return fmt.Errorf("%w: moving collection under its own descendant", model.ErrValidation)
		}
		current = *parent
	}
}

// Ancestors returns the parent chain of a collection from nearest to
// root, stopping at a cycle.
func (ds *DataStore) Ancestors(id string) []model.Collection {
	var out []model.Collection
	visited := map[string]bool{id: true}

	current, ok := ds.mem.collection(id)
	if !ok {
		return nil
	}
	for current.ParentID != nil {
		parent, ok := ds.mem.collection(*current.ParentID)
		if !ok || visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		out = append(out, parent)
		current = parent
	}
	return out
}
