package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooguide/backend/internal/domain"
)

func lineOfPoints(from domain.LatLng, bearing, spacing float64, n int) []domain.LatLng {
	points := make([]domain.LatLng, 0, n)
	for i := 1; i <= n; i++ {
		points = append(points, offset(from, bearing, spacing*float64(i)))
	}
	return points
}

func TestWaypointGraphSameEndpoints(t *testing.T) {
	g := NewWaypointGraph(lineOfPoints(origin, 0, 5, 10), GraphOptions{})
	assert.Empty(t, g.Route(origin, origin))
}

func TestWaypointGraphChainsAlongPath(t *testing.T) {
	points := lineOfPoints(origin, 0, 20, 10)
	g := NewWaypointGraph(points, GraphOptions{})
	target := offset(origin, 0, 210)

	path := g.Route(origin, target)
	require.NotEmpty(t, path)

	prev := origin.DistanceTo(target)
	for _, p := range path {
		d := p.DistanceTo(target)
		assert.Less(t, d, prev, "every hop moves closer along the line")
		prev = d
	}
	last := path[len(path)-1]
	assert.Less(t, last.DistanceTo(target), 30.0)
	assert.NotContains(t, path, origin)
	assert.NotContains(t, path, target)
}

func TestWaypointGraphRejectsFarHops(t *testing.T) {
	far := []domain.LatLng{offset(origin, 0, 150)}
	g := NewWaypointGraph(far, GraphOptions{})
	assert.Empty(t, g.Route(origin, offset(origin, 0, 300)))
}

func TestWaypointGraphRejectsBacktracking(t *testing.T) {
	behind := []domain.LatLng{offset(origin, 180, 50)}
	g := NewWaypointGraph(behind, GraphOptions{})
	assert.Empty(t, g.Route(origin, offset(origin, 0, 80)))
}

func TestWaypointGraphTerminatesWithoutRevisits(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	points := make([]domain.LatLng, 0, 120)
	for i := 0; i < 120; i++ {
		points = append(points, offset(origin, rng.Float64()*360, rng.Float64()*600))
	}
	g := NewWaypointGraph(points, GraphOptions{})

	for i := 0; i < 200; i++ {
		from := offset(origin, rng.Float64()*360, rng.Float64()*600)
		to := offset(origin, rng.Float64()*360, rng.Float64()*600)
		path := g.Route(from, to)
		require.LessOrEqual(t, len(path), g.Options().MaxHops)

		seen := make(map[domain.LatLng]bool, len(path))
		for _, p := range path {
			require.False(t, seen[p], "waypoint visited twice")
			seen[p] = true
		}
	}
}

type countingRouter struct {
	calls int
	path  []domain.LatLng
}

func (c *countingRouter) Route(from, to domain.LatLng) []domain.LatLng {
	c.calls++
	return append([]domain.LatLng(nil), c.path...)
}

func TestCachedRouterMemoizes(t *testing.T) {
	inner := &countingRouter{path: []domain.LatLng{offset(origin, 0, 20)}}
	router, err := NewCachedRouter(inner, 4)
	require.NoError(t, err)

	to := offset(origin, 0, 40)
	first := router.Route(origin, to)
	first[0] = domain.LatLng{}

	second := router.Route(origin, to)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, inner.path, second, "cached copy is not affected by caller mutation")

	router.Route(to, origin)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, router.(*CachedRouter).Len())
}

func TestCachedRouterDisabled(t *testing.T) {
	inner := &countingRouter{}
	router, err := NewCachedRouter(inner, 0)
	require.NoError(t, err)
	assert.Same(t, inner, router)
}
