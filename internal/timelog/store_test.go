package timelog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/internal/catalog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_LogAndList(t *testing.T) {
	store := newTestStore(t)

	logged, err := store.Log(Entry{Project: "INTERNAL", Hours: 8, Date: "2025-06-02"})
	require.NoError(t, err)
	assert.NotEmpty(t, logged.ID)
	assert.False(t, logged.CreatedAt.IsZero())

	entries, err := store.List(Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "INTERNAL", entries[0].Project)
	assert.Equal(t, 8.0, entries[0].Hours)
}

func TestStore_ListFilters(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Log(Entry{Project: "INTERNAL", Hours: 8, Date: "2025-06-02"})
	require.NoError(t, err)
	_, err = store.Log(Entry{Project: "CLIENT", Hours: 4, Date: "2025-06-03"})
	require.NoError(t, err)
	_, err = store.Log(Entry{Project: "internal", Hours: 2, Date: "2025-06-04"})
	require.NoError(t, err)

	// Project filter is case-insensitive.
	entries, err := store.List(Filter{Project: "INTERNAL"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = store.List(Filter{Since: "2025-06-03"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = store.List(Filter{Project: "CLIENT", Since: "2025-06-04"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Sum(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Log(Entry{Project: "INTERNAL", Hours: 8, Date: "2025-06-02"})
	require.NoError(t, err)
	_, err = store.Log(Entry{Project: "INTERNAL", Hours: 1.5, Date: "2025-06-03"})
	require.NoError(t, err)

	total, err := store.Sum(Filter{Project: "INTERNAL"})
	require.NoError(t, err)
	assert.Equal(t, 9.5, total)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)

	logged, err := store.Log(Entry{Project: "INTERNAL", Hours: 8, Date: "2025-06-02"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(logged.ID))

	entries, err := store.List(Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, store.Delete(logged.ID), ErrNotFound)
}

func TestStore_RejectsBadDates(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Log(Entry{Project: "X", Hours: 1, Date: "02/06/2025"})
	require.Error(t, err)

	_, err = store.List(Filter{Since: "yesterday"})
	require.Error(t, err)
}

func TestTools_LogTimeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	reg := catalog.NewRegistry(nil, Tools(store)...)

	// log_time and delete_time_entry are gated; list/sum are not.
	wantDestructive := map[string]bool{
		"log_time":          true,
		"list_time_entries": false,
		"sum_time":          false,
		"delete_time_entry": true,
	}
	for name, want := range wantDestructive {
		d, ok := reg.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, want, d.Destructive, name)
	}

	result, err := reg.Execute(context.Background(), "log_time", map[string]any{
		"project": "INTERNAL",
		"hours":   8,
		"date":    "2025-06-02",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "INTERNAL")

	raw, err := reg.Execute(context.Background(), "list_time_entries", map[string]any{})
	require.NoError(t, err)
	var entries []Entry
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Len(t, entries, 1)

	result, err = reg.Execute(context.Background(), "sum_time", map[string]any{"project": "INTERNAL"})
	require.NoError(t, err)
	assert.Contains(t, result, "8")

	result, err = reg.Execute(context.Background(), "delete_time_entry", map[string]any{"id": entries[0].ID})
	require.NoError(t, err)
	assert.Contains(t, result, "Deleted")
}

func TestTools_Validation(t *testing.T) {
	store := newTestStore(t)
	reg := catalog.NewRegistry(nil, Tools(store)...)

	_, err := reg.Execute(context.Background(), "log_time", map[string]any{"hours": 8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project is required")

	_, err = reg.Execute(context.Background(), "log_time", map[string]any{"project": "X", "hours": 30})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hours")
}
