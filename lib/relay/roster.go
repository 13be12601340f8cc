// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"fmt"
	"slices"
)

// Roster is the fixed set of staff identities. It is built once at
// startup and read concurrently afterwards.
type Roster struct {
	members map[int64]struct{}
	ordered []int64
}

// NewRoster returns a roster of the given ids. Duplicates collapse; an
// empty roster or a zero id is an error.
func NewRoster(ids ...int64) (*Roster, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("relay: staff roster is empty")
	}
	roster := &Roster{members: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		if id == 0 {
			return nil, fmt.Errorf("relay: staff roster contains a zero id")
		}
		if _, seen := roster.members[id]; seen {
			continue
		}
		roster.members[id] = struct{}{}
		roster.ordered = append(roster.ordered, id)
	}
	slices.Sort(roster.ordered)
	return roster, nil
}

// Contains reports whether id is staff.
func (r *Roster) Contains(id int64) bool {
	_, ok := r.members[id]
	return ok
}

// IDs returns the staff ids in ascending order.
func (r *Roster) IDs() []int64 {
	return slices.Clone(r.ordered)
}

// Len returns the number of staff.
func (r *Roster) Len() int {
	return len(r.ordered)
}
