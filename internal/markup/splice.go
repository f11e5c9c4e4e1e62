package markup

import (
	"errors"
	"fmt"
	"sort"

	gast "github.com/yuin/goldmark/ast"
)

// Splice replaces Target with Replacement in the tree. Offset is Target's byte
// position in the original source.
type Splice struct {
	Offset      int
	Target      gast.Node
	Replacement gast.Node
}

// ApplySplices applies splices from the highest offset toward the lowest, so
// every splice is positioned against the original document.
//
// Splices must target distinct, attached nodes.
func ApplySplices(splices []Splice) error {
	if len(splices) == 0 {
		return nil
	}

	sorted := make([]Splice, len(splices))
	copy(sorted, splices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset > sorted[j].Offset
	})

	for i, s := range sorted {
		if s.Target == nil || s.Replacement == nil {
			return fmt.Errorf("invalid splice[%d]: nil node", i)
		}
		if s.Target.Parent() == nil {
			return fmt.Errorf("invalid splice[%d]: target is detached", i)
		}
		if i > 0 && sorted[i-1].Offset == s.Offset {
			return errors.New("invalid splices: duplicate offset")
		}
	}

	for _, s := range sorted {
		parent := s.Target.Parent()
		parent.ReplaceChild(parent, s.Target, s.Replacement)
	}
	return nil
}
