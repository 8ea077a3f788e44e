package service

import (
	"fmt"
	"time"

	"github.com/brunoga/deep"
	"github.com/google/uuid"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/pkg/geo"
)

// NavState is the navigation session state
type NavState string

const (
	NavIdle      NavState = "idle"
	NavWalking   NavState = "walking"
	NavArrived   NavState = "arrived"
	NavCompleted NavState = "completed"
	NavStopped   NavState = "stopped"
)

// Terminal reports whether no further transitions are possible
func (s NavState) Terminal() bool {
	return s == NavCompleted || s == NavStopped
}

// ArrivalChoice is the visitor's answer to the arrival prompt
type ArrivalChoice string

const (
	ChoiceAdvance ArrivalChoice = "advance"
	ChoiceReroute ArrivalChoice = "reroute"
	ChoiceStop    ArrivalChoice = "stop"
)

// ParseArrivalChoice validates a choice received from the UI
func ParseArrivalChoice(s string) (ArrivalChoice, error) {
	switch c := ArrivalChoice(s); c {
	case ChoiceAdvance, ChoiceReroute, ChoiceStop:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

const (
	defaultArrivalMeters = 30.0
	// guidanceLookaheadMeters skips path points the visitor is already standing on
	guidanceLookaheadMeters = 10.0
	maxHistory              = 64
)

// Transition is one recorded state change
type Transition struct {
	From  NavState  `json:"from"`
	To    NavState  `json:"to"`
	Index int       `json:"index"`
	At    time.Time `json:"at"`
}

// RerouteFunc computes a replacement route after arriving at arrived.
// remaining holds the destinations after it in the current route.
type RerouteFunc func(arrived domain.RecommendedDestination, remaining []domain.RecommendedDestination, position domain.LatLng) ([]domain.RecommendedDestination, error)

// NavigationOptions configures a session
type NavigationOptions struct {
	UseWaypoints  bool
	ArrivalMeters float64
	Clock         Clock
	Metrics       *Metrics
	Reroute       RerouteFunc
}

// NavigationSession walks the visitor through a frozen route one leg at a
// time. Arrival fires once per entry into the arrival ring of the active
// destination; the latch is re-armed whenever a new leg starts.
type NavigationSession struct {
	id        string
	state     NavState
	route     []domain.RecommendedDestination
	index     int
	position  domain.LatLng
	leg       *domain.Path
	inside    bool
	reached   bool
	assembler *PathAssembler
	source    SnapshotSource
	opts      NavigationOptions
	history   []Transition
}

// NewNavigationSession creates an idle session
func NewNavigationSession(assembler *PathAssembler, source SnapshotSource, opts NavigationOptions) *NavigationSession {
	if opts.ArrivalMeters <= 0 {
		opts.ArrivalMeters = defaultArrivalMeters
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	return &NavigationSession{
		id:        uuid.NewString(),
		state:     NavIdle,
		assembler: assembler,
		source:    source,
		opts:      opts,
	}
}

// ID returns the session identifier
func (n *NavigationSession) ID() string { return n.id }

// State returns the current state
func (n *NavigationSession) State() NavState { return n.state }

// ActiveIndex returns the index of the destination being walked to
func (n *NavigationSession) ActiveIndex() int { return n.index }

// Start freezes route and begins the first leg from position
func (n *NavigationSession) Start(route []domain.RecommendedDestination, position domain.LatLng) error {
	if len(route) == 0 {
		return ErrEmptyRoute
	}
	if n.state.Terminal() {
		return ErrSessionFinished
	}
	if n.state != NavIdle {
		return ErrActiveNavigation
	}
	n.route = deep.MustCopy(route)
	n.position = position
	n.index = 0
	n.beginLeg()
	n.transition(NavWalking)
	return nil
}

// OnPositionUpdate records the new position. While walking it rebuilds the
// leg and reports whether this update crossed into the arrival ring.
func (n *NavigationSession) OnPositionUpdate(position domain.LatLng) bool {
	n.position = position
	if n.state != NavWalking {
		return false
	}
	n.buildLeg()

	within := position.DistanceTo(n.route[n.index].Position()) < n.opts.ArrivalMeters
	crossed := within && !n.inside
	n.inside = within
	if crossed {
		n.transition(NavArrived)
	}
	return crossed
}

// OnArrivalAcknowledged resolves the arrival prompt. At the last destination
// every choice completes the session.
func (n *NavigationSession) OnArrivalAcknowledged(choice ArrivalChoice) error {
	if n.state.Terminal() {
		return ErrSessionFinished
	}
	if n.state != NavArrived {
		return ErrNotArrived
	}
	if _, err := ParseArrivalChoice(string(choice)); err != nil {
		return err
	}

	if n.index == len(n.route)-1 {
		n.leg = nil
		n.transition(NavCompleted)
		return nil
	}

	switch choice {
	case ChoiceAdvance:
		n.index++
		n.beginLeg()
		n.transition(NavWalking)
	case ChoiceStop:
		n.reached = true
		n.leg = nil
		n.transition(NavStopped)
	case ChoiceReroute:
		if n.opts.Reroute == nil {
			return fmt.Errorf("%w: rerouting is not configured", ErrInvalidChoice)
		}
		next, err := n.opts.Reroute(n.route[n.index], deep.MustCopy(n.route[n.index+1:]), n.position)
		if err != nil {
			return err
		}
		return n.Reroute(next)
	}
	return nil
}

// Reroute replaces the remaining route and starts walking to its first entry
func (n *NavigationSession) Reroute(route []domain.RecommendedDestination) error {
	if len(route) == 0 {
		return ErrEmptyRoute
	}
	if n.state.Terminal() {
		return ErrSessionFinished
	}
	if n.state == NavIdle {
		return ErrNoSession
	}
	n.route = deep.MustCopy(route)
	n.index = 0
	n.beginLeg()
	n.transition(NavWalking)
	return nil
}

// Stop ends navigation. The route and active index stay inspectable.
// Stopping at an arrival prompt counts the active stop as visited.
func (n *NavigationSession) Stop() error {
	if n.state.Terminal() {
		return ErrSessionFinished
	}
	n.reached = n.state == NavArrived
	n.leg = nil
	n.transition(NavStopped)
	return nil
}

// Remaining returns the destinations still to visit, or nil when the
// session has completed. The active stop is excluded once reached.
func (n *NavigationSession) Remaining() []domain.RecommendedDestination {
	from := n.index
	if n.reached {
		from++
	}
	if n.state == NavCompleted || from >= len(n.route) {
		return nil
	}
	return deep.MustCopy(n.route[from:])
}

func (n *NavigationSession) beginLeg() {
	n.inside = false
	n.reached = false
	n.buildLeg()
}

func (n *NavigationSession) buildLeg() {
	leg := n.assembler.BuildLeg(n.position, n.route[n.index].Facility, n.source.Snapshot(), n.opts.UseWaypoints)
	n.leg = &leg
}

func (n *NavigationSession) transition(to NavState) {
	n.history = append(n.history, Transition{From: n.state, To: to, Index: n.index, At: n.opts.Clock.Now()})
	if len(n.history) > maxHistory {
		n.history = n.history[len(n.history)-maxHistory:]
	}
	n.state = to
	n.opts.Metrics.observeTransition(to)
}

// NavigationView is a display copy of the session
type NavigationView struct {
	ID               string                          `json:"id"`
	State            NavState                        `json:"state"`
	ActiveIndex      int                             `json:"active_index"`
	Route            []domain.RecommendedDestination `json:"route"`
	Active           *domain.RecommendedDestination  `json:"active,omitempty"`
	Leg              *domain.Path                    `json:"leg,omitempty"`
	Position         domain.LatLng                   `json:"position"`
	DistanceToActive *float64                        `json:"distance_to_active,omitempty"`
	History          []Transition                    `json:"history"`
}

// View returns a copy safe to hand to the display layer
func (n *NavigationSession) View() NavigationView {
	v := NavigationView{
		ID:          n.id,
		State:       n.state,
		ActiveIndex: n.index,
		Route:       deep.MustCopy(n.route),
		Position:    n.position,
		History:     append([]Transition(nil), n.history...),
	}
	if n.leg != nil {
		leg := deep.MustCopy(*n.leg)
		v.Leg = &leg
	}
	if n.index < len(n.route) && !n.state.Terminal() && n.state != NavIdle {
		active := v.Route[n.index]
		dist := n.position.DistanceTo(active.Position())
		v.Active = &active
		v.DistanceToActive = &dist
	}
	return v
}

// Guidance is the turn hint toward the next meaningful point of the leg
type Guidance struct {
	DestinationID    string           `json:"destination_id"`
	Target           domain.PathPoint `json:"target"`
	DistanceMeters   float64          `json:"distance_meters"`
	BearingDegrees   float64          `json:"bearing_degrees"`
	AngleDiff        float64          `json:"angle_diff"`
	Direction        geo.Direction    `json:"direction"`
	RemainingMeters  float64          `json:"remaining_meters"`
	RemainingMinutes int              `json:"remaining_minutes"`
}

// Guidance points the visitor facing heading at the first leg point more
// than ten meters away, falling back to the destination itself.
func (n *NavigationSession) Guidance(heading float64) (Guidance, error) {
	if n.state.Terminal() {
		return Guidance{}, ErrSessionFinished
	}
	if n.leg == nil || n.state == NavIdle {
		return Guidance{}, ErrNoSession
	}

	target, _ := n.leg.Destination()
	for _, p := range n.leg.Points[1:] {
		if n.position.DistanceTo(p.Position()) > guidanceLookaheadMeters {
			target = p
			break
		}
	}

	bearing := n.position.BearingTo(target.Position())
	diff := geo.AngleDifference(bearing, heading)
	return Guidance{
		DestinationID:    n.route[n.index].ID,
		Target:           target,
		DistanceMeters:   n.position.DistanceTo(target.Position()),
		BearingDegrees:   bearing,
		AngleDiff:        diff,
		Direction:        geo.ScreenDirection(diff),
		RemainingMeters:  n.leg.TotalDistanceMeters,
		RemainingMinutes: n.leg.EstimatedMinutes,
	}, nil
}
