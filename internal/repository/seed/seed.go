// Package seed serves the built-in park catalog embedded in the binary.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zooguide/backend/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Repository implements domain.CatalogRepository over a decoded catalog
type Repository struct {
	catalog domain.Catalog
}

// New decodes the embedded catalog
func New() (*Repository, error) {
	return Parse(catalogYAML)
}

// Parse decodes a YAML catalog and validates it. Unknown keys are rejected.
func Parse(data []byte) (*Repository, error) {
	var catalog domain.Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("seed: failed to decode catalog: %w", err)
	}
	for i := range catalog.Facilities {
		f := &catalog.Facilities[i]
		f.SetVisitors(f.Visitors)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &Repository{catalog: catalog}, nil
}

// LoadFacilities returns a copy of the seed facilities
func (r *Repository) LoadFacilities(ctx context.Context) ([]domain.Facility, error) {
	return slices.Clone(r.catalog.Facilities), nil
}

// LoadEvents returns a copy of the seed schedule
func (r *Repository) LoadEvents(ctx context.Context) ([]domain.Event, error) {
	return slices.Clone(r.catalog.Events), nil
}

// LoadWaypoints returns a copy of the path points
func (r *Repository) LoadWaypoints(ctx context.Context) ([]domain.LatLng, error) {
	return slices.Clone(r.catalog.Waypoints), nil
}

// Health always succeeds; the catalog lives in memory
func (r *Repository) Health(ctx context.Context) error {
	return nil
}

var _ domain.CatalogRepository = (*Repository)(nil)
