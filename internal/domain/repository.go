package domain

import "context"

// Catalog is the static dataset the guide runs on
type Catalog struct {
	Facilities []Facility `json:"facilities" yaml:"facilities"`
	Events     []Event    `json:"events" yaml:"events"`
	Waypoints  []LatLng   `json:"waypoints" yaml:"waypoints"`
}

// CatalogRepository defines the read-only source of seed data.
// Nothing in the guide writes back; visitor state lives in memory only.
type CatalogRepository interface {
	// LoadFacilities returns every facility with its seed visitor count
	LoadFacilities(ctx context.Context) ([]Facility, error)

	// LoadEvents returns the day's event schedule
	LoadEvents(ctx context.Context) ([]Event, error)

	// LoadWaypoints returns the curated walkable-path points
	LoadWaypoints(ctx context.Context) ([]LatLng, error)

	// Health checks the source is reachable
	Health(ctx context.Context) error
}

// LoadCatalog reads all three collections from repo
func LoadCatalog(ctx context.Context, repo CatalogRepository) (Catalog, error) {
	facilities, err := repo.LoadFacilities(ctx)
	if err != nil {
		return Catalog{}, err
	}
	events, err := repo.LoadEvents(ctx)
	if err != nil {
		return Catalog{}, err
	}
	waypoints, err := repo.LoadWaypoints(ctx)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Facilities: facilities, Events: events, Waypoints: waypoints}, nil
}
