package frame

import "fmt"

// Group is one entity's rows, with the identifier column removed
type Group struct {
	ID    string
	Frame *Frame
}

// Partition splits the frame into one sub-frame per distinct identifier.
// Groups are returned in first-encountered identifier order and each keeps
// the original row order of its entity.
func (f *Frame) Partition(idColumn string) ([]Group, error) {
	ids, err := f.Strings(idColumn)
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}

	order := make([]string, 0)
	rowsByID := make(map[string][]int)
	for row, id := range ids {
		if _, seen := rowsByID[id]; !seen {
			order = append(order, id)
		}
		rowsByID[id] = append(rowsByID[id], row)
	}

	rest := f.Drop(idColumn)
	groups := make([]Group, len(order))
	for i, id := range order {
		groups[i] = Group{ID: id, Frame: rest.Take(rowsByID[id])}
	}
	return groups, nil
}

// Index maps each group identifier to its position in groups
func Index(groups []Group) map[string]int {
	idx := make(map[string]int, len(groups))
	for i, g := range groups {
		idx[g.ID] = i
	}
	return idx
}
