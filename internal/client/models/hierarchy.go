package models

import (
	"fmt"

	"github.com/dmitrijs2005/docme/internal/common"
)

// ParentLookup returns the parent reference of a folder and whether the
// folder is known.
type ParentLookup func(id string) (parent *string, ok bool)

// CheckAcyclic verifies that giving folder id the parent parentID keeps the
// hierarchy a tree: walking up from parentID must never reach id.
func CheckAcyclic(id string, parentID *string, lookup ParentLookup) error {
	seen := map[string]bool{}
	for cur := parentID; cur != nil; {
		if *cur == id {
			return fmt.Errorf("%w: %s would become its own ancestor", common.ErrCycle, id)
		}
		if seen[*cur] {
			return fmt.Errorf("%w: existing loop through %s", common.ErrCycle, *cur)
		}
		seen[*cur] = true

		next, ok := lookup(*cur)
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}

// FolderParents builds a ParentLookup over a slice of folders.
func FolderParents(folders []Folder) ParentLookup {
	byID := make(map[string]*string, len(folders))
	for _, f := range folders {
		byID[f.ID] = f.ParentID
	}
	return func(id string) (*string, bool) {
		p, ok := byID[id]
		return p, ok
	}
}

// Descendants returns the ids of every folder below root, depth first.
func Descendants(root string, folders []Folder) []string {
	children := map[string][]string{}
	for _, f := range folders {
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], f.ID)
		}
	}

	var out []string
	seen := map[string]bool{root: true}
	stack := append([]string(nil), children[root]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		stack = append(stack, children[id]...)
	}
	return out
}
