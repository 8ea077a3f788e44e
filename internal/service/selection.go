package service

import (
	"fmt"

	"github.com/iancoleman/orderedmap"

	"github.com/zooguide/backend/internal/domain"
)

// SelectionState is the visitor's insertion-ordered destination set plus
// attendance and force-recommend flags. Rejected mutations are no-ops that
// return false. It is not safe for concurrent use; GuideService serializes.
type SelectionState struct {
	destinations *orderedmap.OrderedMap
	attending    map[string]bool
	forced       map[string]bool
	known        func(id string) bool
}

// NewSelectionState creates an empty selection. known validates facility
// ids; nil accepts any non-empty id.
func NewSelectionState(known func(id string) bool) *SelectionState {
	if known == nil {
		known = func(id string) bool { return id != "" }
	}
	return &SelectionState{
		destinations: orderedmap.New(),
		attending:    make(map[string]bool),
		forced:       make(map[string]bool),
		known:        known,
	}
}

// Len returns the number of selected destinations
func (s *SelectionState) Len() int { return len(s.destinations.Keys()) }

// Contains reports whether id is selected
func (s *SelectionState) Contains(id string) bool {
	_, ok := s.destinations.Get(id)
	return ok
}

// Add appends id unless it is unknown, already selected, or the cap is reached
func (s *SelectionState) Add(id string) bool {
	return s.TryAdd(id) == nil
}

// TryAdd is Add reporting why id was rejected
func (s *SelectionState) TryAdd(id string) error {
	switch {
	case !s.known(id):
		return fmt.Errorf("%w: %s", ErrUnknownFacility, id)
	case s.Contains(id):
		return fmt.Errorf("%w: %s", ErrAlreadySelected, id)
	case s.Len() >= domain.MaxDestinations:
		return fmt.Errorf("%w (%d)", ErrSelectionFull, domain.MaxDestinations)
	}
	s.destinations.Set(id, struct{}{})
	return nil
}

// Remove drops id together with its attendance and forced flags
func (s *SelectionState) Remove(id string) bool {
	if !s.Contains(id) {
		return false
	}
	s.destinations.Delete(id)
	delete(s.attending, id)
	delete(s.forced, id)
	return true
}

// Clear empties the selection. It reports whether anything was removed.
func (s *SelectionState) Clear() bool {
	if s.Len() == 0 && len(s.attending) == 0 && len(s.forced) == 0 {
		return false
	}
	s.destinations = orderedmap.New()
	s.attending = make(map[string]bool)
	s.forced = make(map[string]bool)
	return true
}

// SetAttending confirms or declines attendance for a selected destination
func (s *SelectionState) SetAttending(id string, attend bool) bool {
	if !s.Contains(id) || s.attending[id] == attend {
		return false
	}
	if attend {
		s.attending[id] = true
	} else {
		delete(s.attending, id)
	}
	return true
}

// Force makes a selected destination bypass the eligibility gate
func (s *SelectionState) Force(id string) bool {
	if !s.Contains(id) || s.forced[id] {
		return false
	}
	s.forced[id] = true
	return true
}

// Unforce removes a force-recommend flag
func (s *SelectionState) Unforce(id string) bool {
	if !s.forced[id] {
		return false
	}
	delete(s.forced, id)
	return true
}

// Snapshot returns the selection in insertion order, with flag lists
// following the same order.
func (s *SelectionState) Snapshot() domain.Selection {
	keys := s.destinations.Keys()
	sel := domain.Selection{
		DestinationIDs:          make([]string, 0, len(keys)),
		AttendingEventIDs:       []string{},
		ForcedRecommendationIDs: []string{},
	}
	for _, id := range keys {
		sel.DestinationIDs = append(sel.DestinationIDs, id)
		if s.attending[id] {
			sel.AttendingEventIDs = append(sel.AttendingEventIDs, id)
		}
		if s.forced[id] {
			sel.ForcedRecommendationIDs = append(sel.ForcedRecommendationIDs, id)
		}
	}
	return sel
}
