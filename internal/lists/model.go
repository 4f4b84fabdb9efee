// Package lists holds the local shopping-list model and the mapper that builds it
// from raw Listonic payloads.
package lists

// Item is a single entry of a shopping list. Its identity is ID within the owning list.
type Item struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsChecked bool   `json:"is_checked"`
}

// List is a shopping list. Items are replaced wholesale on every poll.
type List struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Items      []Item `json:"items"`
	IsArchived bool   `json:"is_archived"`
}

// CheckedCount returns the number of checked items
func (l List) CheckedCount() int {
	n := 0
	for _, item := range l.Items {
		if item.IsChecked {
			n++
		}
	}
	return n
}

// UncheckedCount returns the number of items still to buy
func (l List) UncheckedCount() int {
	return len(l.Items) - l.CheckedCount()
}

// FindItem returns the item with the given id
func (l List) FindItem(itemID int64) (Item, bool) {
	for _, item := range l.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

// Clone returns a deep copy of the list
func (l List) Clone() List {
	out := l
	out.Items = make([]Item, len(l.Items))
	copy(out.Items, l.Items)
	return out
}

// CloneAll returns a deep copy of a list graph
func CloneAll(in map[int64]List) map[int64]List {
	out := make(map[int64]List, len(in))
	for id, l := range in {
		out[id] = l.Clone()
	}
	return out
}

// ItemCount returns the total number of items across all lists
func ItemCount(in map[int64]List) int {
	n := 0
	for _, l := range in {
		n += len(l.Items)
	}
	return n
}
