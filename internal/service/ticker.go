package service

import (
	"context"
	"time"
)

// RunCongestionTicker advances the occupancy simulation every interval
// until ctx is cancelled. It returns nil on cancellation.
func (g *GuideService) RunCongestionTicker(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	g.logger.Info("congestion ticker started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("congestion ticker stopped")
			return nil
		case <-ticker.C:
			g.Tick()
		}
	}
}

// Tick applies one occupancy step and refreshes the active leg
func (g *GuideService) Tick() FacilitySnapshot {
	snap := g.registry.Tick()
	g.OnCongestionTick()
	g.logger.Debug("congestion tick", "version", snap.Version, "facilities", len(snap.Facilities))
	return snap
}
