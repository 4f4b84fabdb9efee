package lists

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLists_Groceries(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"lists":[{"id":123,"name":"Groceries","items":[` +
		`{"id":1,"name":"Milk","checked":false},{"id":2,"name":"Bread","checked":true}],"archived":false}]}`)

	got, err := MapLists(raw)

	require.NoError(t, err)
	require.Contains(t, got, int64(123))
	assert.Equal(t, List{
		ID:   123,
		Name: "Groceries",
		Items: []Item{
			{ID: 1, Name: "Milk", IsChecked: false},
			{ID: 2, Name: "Bread", IsChecked: true},
		},
	}, got[123])
}

func TestMapLists_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantIDs []int64
	}{
		{
			name:    "bare array with Listonic casing",
			raw:     `[{"Id":1,"Name":"A","Items":[]},{"Id":2,"Name":"B"}]`,
			wantIDs: []int64{1, 2},
		},
		{
			name:    "object with Lists key",
			raw:     `{"Lists":[{"Id":5}]}`,
			wantIDs: []int64{5},
		},
		{
			name:    "object without lists",
			raw:     `{"total":0}`,
			wantIDs: nil,
		},
		{
			name:    "empty array",
			raw:     `[]`,
			wantIDs: nil,
		},
		{
			name:    "scalar payload",
			raw:     `42`,
			wantIDs: nil,
		},
		{
			name:    "entries without positive id are skipped",
			raw:     `[{"name":"no id"},{"id":0},{"id":-3},{"id":"x"},{"id":"9"},"junk",{"id":4}]`,
			wantIDs: []int64{9, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := MapLists([]byte(tt.raw))

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Len(t, got, len(tt.wantIDs))
			for _, id := range tt.wantIDs {
				assert.Contains(t, got, id)
			}
		})
	}
}

func TestMapLists_FieldVariants(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"Id":1,"Name":"Numeric flags","Archived":1,"Items":[{"Id":10,"Name":"Eggs","Checked":1},{"Id":11,"Name":"Jam","Checked":0}]},
		{"id":2,"name":"Snake case","is_archived":true,"items":[{"id":20,"name":"Rice","is_checked":true}]},
		{"id":3,"unknown":{"nested":true},"items":[{"id":30,"extra":"ignored"}]}
	]`)

	got, err := MapLists(raw)

	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[1].IsArchived)
	assert.Equal(t, []Item{{ID: 10, Name: "Eggs", IsChecked: true}, {ID: 11, Name: "Jam"}}, got[1].Items)

	assert.True(t, got[2].IsArchived)
	assert.Equal(t, []Item{{ID: 20, Name: "Rice", IsChecked: true}}, got[2].Items)

	assert.Equal(t, List{ID: 3, Items: []Item{{ID: 30}}}, got[3])
}

func TestMapLists_MissingFieldsDefault(t *testing.T) {
	t.Parallel()

	got, err := MapLists([]byte(`[{"id":7}]`))

	require.NoError(t, err)
	assert.Equal(t, List{ID: 7, Items: []Item{}}, got[7])
}

func TestMapLists_Duplicates(t *testing.T) {
	t.Parallel()

	raw := []byte(`[
		{"id":1,"name":"first","items":[{"id":1,"name":"a"},{"id":2,"name":"b"},{"id":1,"name":"a2","checked":true}]},
		{"id":1,"name":"second","items":[{"id":5,"name":"x"},{"id":6,"name":"y"},{"id":5,"name":"x2"}]}
	]`)

	got, err := MapLists(raw)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[1].Name)
	assert.Equal(t, []Item{{ID: 5, Name: "x2"}, {ID: 6, Name: "y"}}, got[1].Items)
}

func TestMapLists_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`{"lists":[`, ``, `not json`} {
		_, err := MapLists([]byte(raw))
		require.Error(t, err, "payload %q", raw)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	}
}

func TestMapList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		want   List
		wantOK bool
	}{
		{
			name:   "plain object",
			raw:    `{"Id":123,"Name":"Weekly","Items":[{"Id":1,"Name":"Milk"}]}`,
			want:   List{ID: 123, Name: "Weekly", Items: []Item{{ID: 1, Name: "Milk"}}},
			wantOK: true,
		},
		{
			name:   "wrapped in list key",
			raw:    `{"list":{"id":4,"name":"Hardware"}}`,
			want:   List{ID: 4, Name: "Hardware", Items: []Item{}},
			wantOK: true,
		},
		{
			name:   "no id",
			raw:    `{"name":"orphan"}`,
			wantOK: false,
		},
		{
			name:   "array is not a list",
			raw:    `[{"id":1}]`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok, err := MapList([]byte(tt.raw))

			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	_, _, err := MapList([]byte(`{`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	const (
		numLists = 5
		numItems = 7
	)

	var sb strings.Builder
	sb.WriteString(`{"lists":[`)
	for l := 1; l <= numLists; l++ {
		if l > 1 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"Id":%d,"Name":"List %d","Archived":%t,"Items":[`, l, l, l%2 == 0)
		for i := 1; i <= numItems; i++ {
			if i > 1 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, `{"Id":%d,"Name":"Item %d-%d","Checked":%d}`, l*100+i, l, i, i%2)
		}
		sb.WriteString("]}")
	}
	sb.WriteString("]}")

	first, err := MapLists([]byte(sb.String()))
	require.NoError(t, err)
	require.Len(t, first, numLists)

	data, err := Marshal(first)
	require.NoError(t, err)

	second, err := MapLists(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for id, l := range second {
		require.Len(t, l.Items, numItems)
		assert.Equal(t, id%2 == 0, l.IsArchived)
		for i, item := range l.Items {
			assert.Equal(t, id*100+int64(i+1), item.ID)
			assert.Equal(t, (i+1)%2 == 1, item.IsChecked)
			assert.Equal(t, fmt.Sprintf("Item %d-%d", id, i+1), item.Name)
		}
	}
}

func TestMarshal_NilItems(t *testing.T) {
	t.Parallel()

	data, err := Marshal(map[int64]List{2: {ID: 2, Name: "b"}, 1: {ID: 1, Name: "a"}})

	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":1,"name":"a","items":[],"is_archived":false},{"id":2,"name":"b","items":[],"is_archived":false}]`,
		string(data))
}
