package lists

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformedPayload is returned when a payload is not valid JSON
var ErrMalformedPayload = errors.New("malformed payload")

var (
	idKeys       = []string{"id"}
	nameKeys     = []string{"name"}
	itemsKeys    = []string{"items"}
	listsKeys    = []string{"lists"}
	listKeys     = []string{"list"}
	checkedKeys  = []string{"checked", "is_checked", "ischecked"}
	archivedKeys = []string{"archived", "is_archived", "isarchived"}
)

// MapLists builds the list graph from a payload that is either an array of lists
// or an object carrying a "lists" array. Entries without a positive id are skipped.
// When an id repeats, the last entry wins and keeps the position of the first.
func MapLists(raw []byte) (map[int64]List, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: lists response is not valid JSON", ErrMalformedPayload)
	}

	root := gjson.ParseBytes(raw)
	if root.IsObject() {
		root = field(root, listsKeys)
	}

	result := make(map[int64]List)
	if !root.IsArray() {
		return result, nil
	}

	root.ForEach(func(_, value gjson.Result) bool {
		if l, ok := mapList(value); ok {
			result[l.ID] = l
		}
		return true
	})

	return result, nil
}

// MapList builds a single list from a list payload, optionally wrapped in a "list" object.
// It reports false when the payload carries no list with a positive id.
func MapList(raw []byte) (List, bool, error) {
	if !gjson.ValidBytes(raw) {
		return List{}, false, fmt.Errorf("%w: list response is not valid JSON", ErrMalformedPayload)
	}

	root := gjson.ParseBytes(raw)
	if wrapped := field(root, listKeys); wrapped.IsObject() {
		root = wrapped
	}

	l, ok := mapList(root)
	return l, ok, nil
}

// Marshal serializes a list graph, ordered by list id, in a form MapLists accepts
func Marshal(in map[int64]List) ([]byte, error) {
	ids := make([]int64, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]List, 0, len(ids))
	for _, id := range ids {
		l := in[id]
		if l.Items == nil {
			l.Items = []Item{}
		}
		out = append(out, l)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lists: %w", err)
	}
	return data, nil
}

func mapList(value gjson.Result) (List, bool) {
	if !value.IsObject() {
		return List{}, false
	}

	id, ok := positiveID(value)
	if !ok {
		return List{}, false
	}

	l := List{
		ID:         id,
		Name:       field(value, nameKeys).String(),
		IsArchived: field(value, archivedKeys).Bool(),
		Items:      []Item{},
	}

	positions := make(map[int64]int)
	field(value, itemsKeys).ForEach(func(_, raw gjson.Result) bool {
		item, ok := mapItem(raw)
		if !ok {
			return true
		}
		if pos, seen := positions[item.ID]; seen {
			l.Items[pos] = item
			return true
		}
		positions[item.ID] = len(l.Items)
		l.Items = append(l.Items, item)
		return true
	})

	return l, true
}

func mapItem(value gjson.Result) (Item, bool) {
	if !value.IsObject() {
		return Item{}, false
	}

	id, ok := positiveID(value)
	if !ok {
		return Item{}, false
	}

	return Item{
		ID:        id,
		Name:      field(value, nameKeys).String(),
		IsChecked: field(value, checkedKeys).Bool(),
	}, true
}

func positiveID(value gjson.Result) (int64, bool) {
	raw := field(value, idKeys)
	switch raw.Type {
	case gjson.Number, gjson.String:
		id := raw.Int()
		return id, id > 0
	default:
		return 0, false
	}
}

// field looks up the first key of obj matching any of names, ignoring case
func field(obj gjson.Result, names []string) gjson.Result {
	var found gjson.Result
	if !obj.IsObject() {
		return found
	}
	obj.ForEach(func(key, value gjson.Result) bool {
		for _, name := range names {
			if strings.EqualFold(key.String(), name) {
				found = value
				return false
			}
		}
		return true
	})
	return found
}
