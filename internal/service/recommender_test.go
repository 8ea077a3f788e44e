package service

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooguide/backend/internal/domain"
)

func recommend(t *testing.T, r *RouteRecommender, snap FacilitySnapshot, sel domain.Selection, now string) *domain.Recommendation {
	t.Helper()
	return r.Recommend(RecommendInput{Selection: sel, Position: origin, Now: domain.MustParseClock(now)}, snap)
}

func TestRecommendEmptySelection(t *testing.T) {
	r := NewRouteRecommender(nil, RecommenderOptions{}, nil)
	assert.Nil(t, recommend(t, r, snapshotOf(), domain.Selection{}, "10:00"))
}

func TestRecommendSingleNearbyDestination(t *testing.T) {
	seal := facilityAt("seal", offset(origin, 45, 500), 10, 2)
	r := NewRouteRecommender(nil, RecommenderOptions{}, nil)

	rec := recommend(t, r, snapshotOf(seal), domain.Selection{DestinationIDs: []string{"seal"}}, "10:00")
	require.NotNil(t, rec)
	require.Len(t, rec.Destinations, 1)
	d := rec.Destinations[0]
	assert.True(t, d.Recommended)
	assert.Empty(t, d.NotRecommendedReason)
	assert.InDelta(t, 500, d.DistanceMeters, 0.5)
	assert.Equal(t, domain.OrderCongestionFirst, rec.Mode)
	assert.Len(t, rec.Route(), 1)
}

func TestRecommendTooFarThenForced(t *testing.T) {
	far := facilityAt("far", offset(origin, 0, 700), 10, 1)
	snap := snapshotOf(far)
	r := NewRouteRecommender(nil, RecommenderOptions{}, nil)

	rec := recommend(t, r, snap, domain.Selection{DestinationIDs: []string{"far"}}, "10:00")
	d := rec.Destinations[0]
	assert.False(t, d.Recommended)
	assert.Contains(t, d.NotRecommendedReason, "600m")
	assert.Empty(t, rec.Route())

	rec = recommend(t, r, snap, domain.Selection{DestinationIDs: []string{"far"}, ForcedRecommendationIDs: []string{"far"}}, "10:00")
	d = rec.Destinations[0]
	assert.True(t, d.Recommended)
	assert.True(t, d.Forced)
	assert.Empty(t, d.NotRecommendedReason)
}

func TestRecommendCrowdedDestination(t *testing.T) {
	a := facilityAt("a", offset(origin, 0, 100), 10, 9)
	b := facilityAt("b", offset(origin, 180, 100), 10, 1)
	snap := snapshotOf(a, b)
	r := NewRouteRecommender(nil, RecommenderOptions{}, nil)
	sel := domain.Selection{DestinationIDs: []string{"a", "b"}}

	rec := recommend(t, r, snap, sel, "10:00")
	require.Len(t, rec.Destinations, 2)
	assert.Equal(t, "b", rec.Destinations[0].ID)
	assert.True(t, rec.Destinations[0].Recommended)
	assert.Equal(t, "a", rec.Destinations[1].ID)
	assert.False(t, rec.Destinations[1].Recommended)
	assert.Contains(t, rec.Destinations[1].NotRecommendedReason, "crowded")

	sel.ForcedRecommendationIDs = []string{"a"}
	rec = recommend(t, r, snap, sel, "10:00")
	assert.Len(t, rec.Route(), 2)
}

func TestRecommendCombinesReasons(t *testing.T) {
	both := facilityAt("both", offset(origin, 0, 650), 10, 10)
	r := NewRouteRecommender(nil, RecommenderOptions{}, nil)
	rec := recommend(t, r, snapshotOf(both), domain.Selection{DestinationIDs: []string{"both"}}, "10:00")
	reason := rec.Destinations[0].NotRecommendedReason
	assert.Contains(t, reason, "too far")
	assert.Contains(t, reason, "crowded")
}

func TestRecommendSkipsUnknownAndDuplicateIDs(t *testing.T) {
	a := facilityAt("a", offset(origin, 0, 100), 10, 1)
	r := NewRouteRecommender(nil, RecommenderOptions{}, nil)
	rec := recommend(t, r, snapshotOf(a), domain.Selection{DestinationIDs: []string{"ghost", "a", "a"}}, "10:00")
	require.Len(t, rec.Destinations, 1)
	assert.Equal(t, "a", rec.Destinations[0].ID)
}

func TestEventPriorityLadder(t *testing.T) {
	cases := map[int]int{-1: 10, 0: 1, 30: 1, 31: 2, 60: 2, 61: 3, 120: 3, 121: 5, 600: 5}
	for minutes, want := range cases {
		assert.Equal(t, want, eventPriority(minutes), "minutes=%d", minutes)
	}
}

func TestRecommendEventOrdering(t *testing.T) {
	soon := facilityAt("soon", offset(origin, 0, 300), 10, 5)
	later := facilityAt("later", offset(origin, 90, 100), 10, 5)
	plain := facilityAt("plain", offset(origin, 180, 50), 10, 0)
	attend := facilityAt("attend", offset(origin, 270, 400), 10, 5)

	cal := NewEventCalendar([]domain.Event{
		{ID: "e-soon", AreaID: "soon", StartTime: domain.MustParseClock("10:20"), EndTime: domain.MustParseClock("10:40")},
		{ID: "e-later", AreaID: "later", StartTime: domain.MustParseClock("11:30"), EndTime: domain.MustParseClock("12:00")},
		{ID: "e-attend", AreaID: "attend", StartTime: domain.MustParseClock("13:00"), EndTime: domain.MustParseClock("13:30")},
	})
	r := NewRouteRecommender(cal, RecommenderOptions{}, nil)
	snap := snapshotOf(soon, later, plain, attend)

	rec := recommend(t, r, snap, domain.Selection{
		DestinationIDs:    []string{"plain", "later", "soon", "attend"},
		AttendingEventIDs: []string{"e-attend"},
	}, "10:00")

	ids := make([]string, 0, len(rec.Destinations))
	for _, d := range rec.Destinations {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"attend", "soon", "later", "plain"}, ids)

	byID := map[string]domain.RecommendedDestination{}
	for _, d := range rec.Destinations {
		byID[d.ID] = d
	}
	assert.True(t, byID["attend"].IsAttending)
	assert.Equal(t, 0, byID["attend"].PriorityScore)
	assert.Equal(t, 1, byID["soon"].PriorityScore)
	assert.Equal(t, 3, byID["later"].PriorityScore)
	require.NotNil(t, byID["soon"].TimeUntilEventMinutes)
	assert.Equal(t, 20, *byID["soon"].TimeUntilEventMinutes)
	assert.False(t, byID["plain"].HasEvent)
	assert.Nil(t, byID["plain"].TimeUntilEventMinutes)
}

func TestRecommendAttendanceRequiresEvent(t *testing.T) {
	plain := facilityAt("plain", offset(origin, 0, 50), 10, 0)
	r := NewRouteRecommender(nil, RecommenderOptions{}, nil)
	rec := recommend(t, r, snapshotOf(plain), domain.Selection{DestinationIDs: []string{"plain"}, AttendingEventIDs: []string{"plain"}}, "10:00")
	assert.False(t, rec.Destinations[0].IsAttending)
}

func TestRecommendCongestionDeadband(t *testing.T) {
	near := facilityAt("near", offset(origin, 0, 100), 100, 35)
	far := facilityAt("far", offset(origin, 180, 200), 100, 30)
	quiet := facilityAt("quiet", offset(origin, 90, 300), 100, 5)
	r := NewRouteRecommender(nil, RecommenderOptions{}, nil)

	rec := recommend(t, r, snapshotOf(near, far, quiet), domain.Selection{DestinationIDs: []string{"far", "near", "quiet"}}, "10:00")
	require.Equal(t, domain.OrderCongestionFirst, rec.Mode)
	ids := []string{rec.Destinations[0].ID, rec.Destinations[1].ID, rec.Destinations[2].ID}
	assert.Equal(t, []string{"quiet", "near", "far"}, ids, "0.35 and 0.30 tie inside the deadband and fall back to distance")
}

func TestRecommendDetourBoundFlipsToDistanceFirst(t *testing.T) {
	congestion := []int{2, 4, 5, 3, 1}
	var facilities []domain.Facility
	var ids []string
	for i, c := range congestion {
		id := fmt.Sprintf("p%d", i+1)
		facilities = append(facilities, facilityAt(id, offset(origin, 0, float64(100*(i+1))), 10, c))
		ids = append(ids, id)
	}
	r := NewRouteRecommender(nil, RecommenderOptions{}, nil)

	rec := recommend(t, r, snapshotOf(facilities...), domain.Selection{DestinationIDs: ids, ForcedRecommendationIDs: []string{"p3"}}, "10:00")
	assert.Equal(t, domain.OrderDistanceFirst, rec.Mode)
	assert.InDelta(t, 500, rec.DistanceOrderMeters, 1)
	assert.InDelta(t, 1500, rec.CongestionOrderMeters, 1)

	require.Len(t, rec.Destinations, 5)
	assert.Equal(t, "p3", rec.Destinations[0].ID)
	assert.True(t, rec.Destinations[0].Forced)
	for _, d := range rec.Destinations[1:] {
		assert.False(t, d.Recommended)
		assert.Equal(t, ReasonDetour, d.NotRecommendedReason)
	}
	assert.Equal(t, []string{"p1", "p2", "p4", "p5"},
		[]string{rec.Destinations[1].ID, rec.Destinations[2].ID, rec.Destinations[3].ID, rec.Destinations[4].ID})
}

func TestRecommendPropertiesOverRandomScenarios(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	cal := NewEventCalendar([]domain.Event{
		{ID: "e0", AreaID: "f0", StartTime: domain.MustParseClock("10:15"), EndTime: domain.MustParseClock("10:45")},
		{ID: "e3", AreaID: "f3", StartTime: domain.MustParseClock("09:30"), EndTime: domain.MustParseClock("12:00")},
	})
	r := NewRouteRecommender(cal, RecommenderOptions{}, nil)

	for round := 0; round < 300; round++ {
		var facilities []domain.Facility
		for i := 0; i < 8; i++ {
			p := offset(origin, rng.Float64()*360, rng.Float64()*900)
			facilities = append(facilities, facilityAt(fmt.Sprintf("f%d", i), p, 20, rng.Intn(27)))
		}
		snap := snapshotOf(facilities...)

		perm := rng.Perm(8)[:1+rng.Intn(domain.MaxDestinations)]
		sel := domain.Selection{}
		for _, i := range perm {
			sel.DestinationIDs = append(sel.DestinationIDs, fmt.Sprintf("f%d", i))
		}
		if rng.Intn(2) == 0 {
			sel.ForcedRecommendationIDs = []string{sel.DestinationIDs[0]}
		}

		rec := recommend(t, r, snap, sel, "10:00")
		require.NotNil(t, rec)
		require.Len(t, rec.Destinations, len(sel.DestinationIDs))

		got := map[string]int{}
		for _, d := range rec.Destinations {
			got[d.ID]++
			if !d.Recommended {
				require.NotEmpty(t, d.NotRecommendedReason)
			}
		}
		for _, id := range sel.DestinationIDs {
			require.Equal(t, 1, got[id], "destination %s must appear exactly once", id)
		}
		for _, id := range sel.ForcedRecommendationIDs {
			for _, d := range rec.Destinations {
				if d.ID == id {
					require.True(t, d.Recommended)
					require.Empty(t, d.NotRecommendedReason)
				}
			}
		}
		if rec.Mode == domain.OrderCongestionFirst {
			require.LessOrEqual(t, rec.CongestionOrderMeters, 2*rec.DistanceOrderMeters+1e-9)
		}

		seenNotRecommended := false
		for _, d := range rec.Destinations {
			if !d.Recommended {
				seenNotRecommended = true
			} else {
				require.False(t, seenNotRecommended, "recommended entries form a prefix")
			}
		}
	}
}
