package service

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/internal/logging"
	"github.com/zooguide/backend/pkg/geo"
	"github.com/zooguide/backend/pkg/utils"
)

// GuideConfig holds the per-visitor tuning of the guide
type GuideConfig struct {
	StartFacilityID  string
	UseWaypoints     bool
	PositionThrottle time.Duration
	Location         *time.Location
}

// GuideDeps are the engine components a GuideService drives
type GuideDeps struct {
	Registry *FacilityRegistry
	Calendar *EventCalendar
	Graph    *WaypointGraph
	Router   WaypointRouter
	Clock    Clock
	Logger   *slog.Logger
	Metrics  *Metrics
}

// GuideService owns one visitor's selection, position and navigation and
// reads facility state from registry snapshots. All methods are safe for
// concurrent use.
type GuideService struct {
	registry    *FacilityRegistry
	calendar    *EventCalendar
	graph       *WaypointGraph
	assembler   *PathAssembler
	recommender *RouteRecommender
	clock       Clock
	logger      *slog.Logger
	metrics     *Metrics
	cfg         GuideConfig

	mu            sync.Mutex
	selection     *SelectionState
	position      domain.LatLng
	lastNavUpdate time.Time
	pending       *domain.LatLng
	session       *NavigationSession
}

// PositionResult reports what a position update did
type PositionResult struct {
	Position  domain.LatLng `json:"position"`
	Throttled bool          `json:"throttled"`
	Arrived   bool          `json:"arrived"`
	State     NavState      `json:"state,omitempty"`
}

// NewGuideService wires the engine together. The visitor starts at the
// start facility.
func NewGuideService(deps GuideDeps, cfg GuideConfig) (*GuideService, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("service: failed to create guide: registry is required")
	}
	if deps.Calendar == nil {
		deps.Calendar = NewEventCalendar(nil)
	}
	if deps.Router == nil && deps.Graph != nil {
		deps.Router = deps.Graph
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	snap := deps.Registry.Snapshot()
	start, ok := snap.Find(cfg.StartFacilityID)
	if !ok {
		return nil, fmt.Errorf("service: failed to create guide: start facility %q: %w", cfg.StartFacilityID, ErrUnknownFacility)
	}

	g := &GuideService{
		registry:    deps.Registry,
		calendar:    deps.Calendar,
		graph:       deps.Graph,
		assembler:   NewPathAssembler(deps.Router, deps.Metrics),
		recommender: NewRouteRecommender(deps.Calendar, DefaultRecommenderOptions(), deps.Metrics),
		clock:       deps.Clock,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		cfg:         cfg,
		position:    start.Position(),
	}
	g.selection = NewSelectionState(func(id string) bool {
		return g.registry.Snapshot().Has(id)
	})
	return g, nil
}

// now is the visitor's local wall-clock time of day
func (g *GuideService) now() domain.ClockTime {
	return domain.ClockFromTime(g.clock.Now().In(g.cfg.Location))
}

// Snapshot returns the current facility state
func (g *GuideService) Snapshot() FacilitySnapshot {
	return g.registry.Snapshot()
}

// Waypoints returns the curated path points for map display
func (g *GuideService) Waypoints() []domain.LatLng {
	if g.graph == nil {
		return nil
	}
	return g.graph.Points()
}

// Facilities lists facilities for the browser, measured from the visitor
// when opts.From is unset. The start facility is never listed.
func (g *GuideService) Facilities(opts ListOptions) []FacilityListing {
	if opts.From == nil {
		pos := g.Position()
		opts.From = &pos
	}
	opts.Exclude = append(slices.Clone(opts.Exclude), g.cfg.StartFacilityID)
	return ListFacilities(g.registry.Snapshot(), opts)
}

// Facility returns one facility measured from the visitor
func (g *GuideService) Facility(id string) (FacilityListing, error) {
	f, ok := g.registry.Snapshot().Find(id)
	if !ok {
		return FacilityListing{}, fmt.Errorf("%w: %s", ErrUnknownFacility, id)
	}
	d := utils.RoundTo(g.Position().DistanceTo(f.Position()), 1)
	return FacilityListing{Facility: f, Band: domain.ClassifyCongestion(f.CongestionLevel), DistanceMeters: &d}, nil
}

// Events returns the day's schedule
func (g *GuideService) Events() []domain.Event {
	return g.calendar.Events()
}

// Feasibility checks whether the visitor can reach facilityID's event in time
func (g *GuideService) Feasibility(facilityID string) (*AttendanceCheck, error) {
	snap := g.registry.Snapshot()
	if !snap.Has(facilityID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFacility, facilityID)
	}
	check := g.calendar.CheckAttendanceFeasibility(snap, facilityID, g.Position(), g.now())
	if check == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoEvent, facilityID)
	}
	return check, nil
}

// Selection returns the current selection
func (g *GuideService) Selection() domain.Selection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selection.Snapshot()
}

func (g *GuideService) mutateSelection(fn func(*SelectionState) bool) (domain.Selection, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	changed := fn(g.selection)
	return g.selection.Snapshot(), changed
}

// AddDestination selects id. The error wraps ErrUnknownFacility,
// ErrAlreadySelected or ErrSelectionFull.
func (g *GuideService) AddDestination(id string) (domain.Selection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	err := g.selection.TryAdd(id)
	return g.selection.Snapshot(), err
}

// RemoveDestination deselects id
func (g *GuideService) RemoveDestination(id string) (domain.Selection, bool) {
	return g.mutateSelection(func(s *SelectionState) bool { return s.Remove(id) })
}

// ClearSelection deselects everything
func (g *GuideService) ClearSelection() (domain.Selection, bool) {
	return g.mutateSelection(func(s *SelectionState) bool { return s.Clear() })
}

// SetAttending confirms or declines the event at a selected destination
func (g *GuideService) SetAttending(id string, attend bool) (domain.Selection, bool) {
	return g.mutateSelection(func(s *SelectionState) bool { return s.SetAttending(id, attend) })
}

// ForceRecommend makes a selected destination bypass the eligibility gate
func (g *GuideService) ForceRecommend(id string) (domain.Selection, bool) {
	return g.mutateSelection(func(s *SelectionState) bool { return s.Force(id) })
}

// UnforceRecommend removes the override
func (g *GuideService) UnforceRecommend(id string) (domain.Selection, bool) {
	return g.mutateSelection(func(s *SelectionState) bool { return s.Unforce(id) })
}

// Recommendation runs the recommender over the current selection. It
// returns nil when nothing is selected.
func (g *GuideService) Recommendation() *domain.Recommendation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.recommendLocked(g.selection.Snapshot())
}

func (g *GuideService) recommendLocked(sel domain.Selection) *domain.Recommendation {
	return g.recommender.Recommend(RecommendInput{
		Selection: sel,
		Position:  g.position,
		Now:       g.now(),
	}, g.registry.Snapshot())
}

// Leg builds a path from the visitor to facilityID
func (g *GuideService) Leg(facilityID string) (domain.Path, error) {
	snap := g.registry.Snapshot()
	f, ok := snap.Find(facilityID)
	if !ok {
		return domain.Path{}, fmt.Errorf("%w: %s", ErrUnknownFacility, facilityID)
	}
	return g.assembler.BuildLeg(g.Position(), f, snap, g.cfg.UseWaypoints), nil
}

// Position returns the visitor's last known position
func (g *GuideService) Position() domain.LatLng {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

// UpdatePosition stores pos. Updates arriving within the throttle window of
// the last navigated one are held as pending and fed to navigation on the
// next unthrottled update or congestion tick.
func (g *GuideService) UpdatePosition(pos domain.LatLng) PositionResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updatePositionLocked(pos)
}

func (g *GuideService) updatePositionLocked(pos domain.LatLng) PositionResult {
	g.position = pos
	res := PositionResult{Position: pos}
	if g.session == nil {
		return res
	}
	res.State = g.session.State()
	if g.session.State() != NavWalking {
		g.session.OnPositionUpdate(pos)
		return res
	}

	now := g.clock.Now()
	if !g.lastNavUpdate.IsZero() && now.Sub(g.lastNavUpdate) < g.cfg.PositionThrottle {
		res.Throttled = true
		g.pending = &pos
		g.metrics.observeThrottled()
		return res
	}
	g.lastNavUpdate = now

	res.Arrived = g.navigateLocked(pos)
	res.State = g.session.State()
	return res
}

// navigateLocked feeds any pending throttled position and then pos to the
// session. It reports whether either crossed into the arrival ring.
func (g *GuideService) navigateLocked(pos domain.LatLng) bool {
	arrived := false
	if pending := g.pending; pending != nil {
		g.pending = nil
		if *pending != pos {
			arrived = g.feedLocked(*pending)
		}
	}
	return g.feedLocked(pos) || arrived
}

func (g *GuideService) feedLocked(pos domain.LatLng) bool {
	arrived := g.session.OnPositionUpdate(pos)
	if arrived {
		dest := g.session.route[g.session.ActiveIndex()]
		g.logger.Info("visitor arrived", "session", g.session.ID(), "facility", dest.ID, "index", g.session.ActiveIndex())
	}
	return arrived
}

// StepPosition moves the visitor meters along heading, the way the
// keyboard position source does.
func (g *GuideService) StepPosition(heading, meters float64) PositionResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	lat, lon := geo.Destination(g.position.Latitude, g.position.Longitude, heading, meters)
	return g.updatePositionLocked(domain.LatLng{Latitude: lat, Longitude: lon})
}

// Visible returns the facilities inside the camera cone
func (g *GuideService) Visible(heading float64, categories []domain.Category) []VisibleFacility {
	opts := DefaultVisibilityOptions()
	opts.Categories = categories
	return VisibleFacilities(g.registry.Snapshot(), g.Position(), heading, opts)
}

// StartNavigation freezes the recommended route and walks to its first stop
func (g *GuideService) StartNavigation() (NavigationView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session != nil && !g.session.State().Terminal() {
		return NavigationView{}, ErrActiveNavigation
	}
	route := g.recommendLocked(g.selection.Snapshot()).Route()
	if len(route) == 0 {
		return NavigationView{}, ErrNothingRecommended
	}
	return g.startLocked(route)
}

func (g *GuideService) startLocked(route []domain.RecommendedDestination) (NavigationView, error) {
	session := NewNavigationSession(g.assembler, g.registry, NavigationOptions{
		UseWaypoints: g.cfg.UseWaypoints,
		Clock:        g.clock,
		Metrics:      g.metrics,
		Reroute:      g.rerouteLocked,
	})
	if err := session.Start(route, g.position); err != nil {
		return NavigationView{}, fmt.Errorf("service: failed to start navigation: %w", err)
	}
	g.session = session
	g.lastNavUpdate = time.Time{}
	g.pending = nil
	g.logger.Info("navigation started", "session", session.ID(), "stops", len(route))
	return session.View(), nil
}

// rerouteLocked re-recommends the rest of the route without the destination
// just reached. Selection flags carry over.
func (g *GuideService) rerouteLocked(arrived domain.RecommendedDestination, remaining []domain.RecommendedDestination, position domain.LatLng) ([]domain.RecommendedDestination, error) {
	sel := g.selection.Snapshot()
	ids := make([]string, 0, len(remaining))
	for _, d := range remaining {
		if d.ID != arrived.ID {
			ids = append(ids, d.ID)
		}
	}
	sel.DestinationIDs = ids

	rec := g.recommender.Recommend(RecommendInput{Selection: sel, Position: position, Now: g.now()}, g.registry.Snapshot())
	route := rec.Route()
	if len(route) == 0 {
		return nil, ErrNothingRecommended
	}
	g.logger.Info("route recalculated", "after", arrived.ID, "stops", len(route), "mode", rec.Mode)
	return route, nil
}

// AcknowledgeArrival resolves the arrival prompt
func (g *GuideService) AcknowledgeArrival(choice ArrivalChoice) (NavigationView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return NavigationView{}, ErrNoSession
	}
	if err := g.session.OnArrivalAcknowledged(choice); err != nil {
		return g.session.View(), err
	}
	g.lastNavUpdate = time.Time{}
	g.pending = nil
	if g.session.State() == NavCompleted {
		g.logger.Info("navigation completed", "session", g.session.ID())
	}
	return g.session.View(), nil
}

// StopNavigation ends the active session
func (g *GuideService) StopNavigation() (NavigationView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return NavigationView{}, ErrNoSession
	}
	if err := g.session.Stop(); err != nil {
		return g.session.View(), err
	}
	g.logger.Info("navigation stopped", "session", g.session.ID(), "index", g.session.ActiveIndex())
	return g.session.View(), nil
}

// ResumeNavigation starts a fresh session over what a stopped session had
// left to visit.
func (g *GuideService) ResumeNavigation() (NavigationView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return NavigationView{}, ErrNoSession
	}
	if g.session.State() != NavStopped {
		return g.session.View(), ErrNothingToResume
	}
	remaining := g.session.Remaining()
	if len(remaining) == 0 {
		return g.session.View(), ErrNothingToResume
	}
	return g.startLocked(remaining)
}

// Navigation returns the current session view
func (g *GuideService) Navigation() (NavigationView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return NavigationView{}, ErrNoSession
	}
	return g.session.View(), nil
}

// Guidance returns the turn hint for a visitor facing heading
func (g *GuideService) Guidance(heading float64) (Guidance, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return Guidance{}, ErrNoSession
	}
	return g.session.Guidance(heading)
}

// OnCongestionTick re-runs navigation from the visitor's latest position so
// the leg picks up fresh congestion and a throttled final fix still arrives.
func (g *GuideService) OnCongestionTick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session != nil && g.session.State() == NavWalking {
		g.navigateLocked(g.position)
	}
}
