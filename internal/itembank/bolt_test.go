package itembank

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/thetacat/internal/irt"
)

func openTestBank(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "bank.db"))
	require.NoError(t, err, "open test bank")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGetList(t *testing.T) {
	s := openTestBank(t)

	require.NoError(t, s.Put(
		Item{ID: "q2", A: 0.8, B: -1, C: 0.1},
		Item{ID: "q1", A: 1.5, B: 0.5, C: 0.2, Content: "fractions"},
	))

	got, err := s.Get("q1")
	require.NoError(t, err)
	assert.Equal(t, Item{ID: "q1", A: 1.5, B: 0.5, C: 0.2, Content: "fractions"}, got)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "q1", all[0].ID, "list is ordered by id")
	assert.Equal(t, "q2", all[1].ID)
}

func TestStore_PutOverwrites(t *testing.T) {
	s := openTestBank(t)
	require.NoError(t, s.Put(Item{ID: "q1", A: 1, B: 0, C: 0}))
	require.NoError(t, s.Put(Item{ID: "q1", A: 2, B: 1, C: 0.25}))

	got, err := s.Get("q1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.A)
	assert.Equal(t, 0.25, got.C)
}

func TestStore_PutRejectsInvalid(t *testing.T) {
	s := openTestBank(t)
	err := s.Put(Item{ID: "ok", A: 1}, Item{ID: "bad", A: 1, C: 3})
	require.Error(t, err)

	all, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, all, "nothing is written when any item is invalid")
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestBank(t)
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := openTestBank(t)
	require.NoError(t, s.Put(Item{ID: "q1", A: 1}))

	require.NoError(t, s.Delete("q1"))
	_, err := s.Get("q1")
	assert.ErrorIs(t, err, ErrItemNotFound)

	assert.ErrorIs(t, s.Delete("q1"), ErrItemNotFound)
}

func TestStore_Resolve(t *testing.T) {
	s := openTestBank(t)
	require.NoError(t, s.Put(
		Item{ID: "q1", A: 1.2, B: 0, C: 0.1},
		Item{ID: "q2", A: 0.9, B: -0.5, C: 0.05},
	))

	items, err := s.Resolve([]string{"q2", "q1", "q2"})
	require.NoError(t, err)
	assert.Equal(t, irt.Items{{A: 0.9, B: -0.5, C: 0.05}, {A: 1.2, B: 0, C: 0.1}, {A: 0.9, B: -0.5, C: 0.05}}, items)

	_, err = s.Resolve([]string{"q1", "ghost"})
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Contains(t, err.Error(), "ghost")
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(Item{ID: "q1", A: 1, B: 2, C: 0}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get("q1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.B)
}
