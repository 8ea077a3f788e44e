package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownIDs(ids ...string) func(string) bool {
	set := toSet(ids)
	return func(id string) bool { return set[id] }
}

func TestSelectionCap(t *testing.T) {
	s := NewSelectionState(knownIDs("a", "b", "c", "d", "e", "f"))
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.True(t, s.Add(id))
	}
	before := s.Snapshot()

	assert.False(t, s.Add("f"))
	assert.False(t, s.Add("f"), "rejection is idempotent")
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 5, s.Len())
}

func TestSelectionRejectsUnknownAndDuplicates(t *testing.T) {
	s := NewSelectionState(knownIDs("a"))
	assert.False(t, s.Add("ghost"))
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"))
	assert.Equal(t, []string{"a"}, s.Snapshot().DestinationIDs)
}

func TestSelectionTryAddReasons(t *testing.T) {
	s := NewSelectionState(knownIDs("a", "b", "c", "d", "e", "f"))
	assert.ErrorIs(t, s.TryAdd("ghost"), ErrUnknownFacility)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, s.TryAdd(id))
	}
	assert.ErrorIs(t, s.TryAdd("a"), ErrAlreadySelected)
	assert.ErrorIs(t, s.TryAdd("f"), ErrSelectionFull)
	assert.Equal(t, 5, s.Len())
}

func TestSelectionKeepsInsertionOrder(t *testing.T) {
	s := NewSelectionState(nil)
	for _, id := range []string{"c", "a", "b"} {
		s.Add(id)
	}
	s.Remove("a")
	s.Add("a")
	assert.Equal(t, []string{"c", "b", "a"}, s.Snapshot().DestinationIDs)
	assert.False(t, s.Add(""))
}

func TestSelectionRemoveClearsFlags(t *testing.T) {
	s := NewSelectionState(nil)
	s.Add("a")
	s.Add("b")
	require.True(t, s.SetAttending("a", true))
	require.True(t, s.Force("a"))
	require.True(t, s.Force("b"))

	sel := s.Snapshot()
	assert.Equal(t, []string{"a"}, sel.AttendingEventIDs)
	assert.Equal(t, []string{"a", "b"}, sel.ForcedRecommendationIDs)

	require.True(t, s.Remove("a"))
	sel = s.Snapshot()
	assert.Empty(t, sel.AttendingEventIDs)
	assert.Equal(t, []string{"b"}, sel.ForcedRecommendationIDs)

	s.Add("a")
	assert.Empty(t, s.Snapshot().AttendingEventIDs, "re-adding does not restore old flags")
	assert.False(t, s.Remove("ghost"))
}

func TestSelectionFlagsRequireSelection(t *testing.T) {
	s := NewSelectionState(nil)
	assert.False(t, s.SetAttending("a", true))
	assert.False(t, s.Force("a"))
	assert.False(t, s.Unforce("a"))

	s.Add("a")
	assert.True(t, s.SetAttending("a", true))
	assert.False(t, s.SetAttending("a", true))
	assert.True(t, s.SetAttending("a", false))
	assert.True(t, s.Force("a"))
	assert.False(t, s.Force("a"))
	assert.True(t, s.Unforce("a"))
}

func TestSelectionClear(t *testing.T) {
	s := NewSelectionState(nil)
	assert.False(t, s.Clear())
	s.Add("a")
	s.Force("a")
	assert.True(t, s.Clear())
	sel := s.Snapshot()
	assert.Empty(t, sel.DestinationIDs)
	assert.Empty(t, sel.ForcedRecommendationIDs)
}
