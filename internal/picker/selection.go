// SPDX-License-Identifier: MPL-2.0

package picker

import (
	"slices"

	"github.com/chatpack/chatpack/pkg/types"
)

// Selection is an ordered set of component ids. Ids keep the order in which
// they were first selected; deselecting and reselecting moves an id to the end.
type Selection struct {
	ids []types.ComponentID
}

// Toggle adds id if absent, removes it otherwise, and reports whether id is
// selected afterwards.
func (s *Selection) Toggle(id types.ComponentID) bool {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id types.ComponentID) bool {
	return slices.Contains(s.ids, id)
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []types.ComponentID {
	return slices.Clone(s.ids)
}

// Clear deselects everything.
func (s *Selection) Clear() {
	s.ids = nil
}
