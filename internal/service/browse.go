package service

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/pkg/geo"
	"github.com/zooguide/backend/pkg/utils"
)

// SortKey orders a facility listing
type SortKey string

const (
	SortByName       SortKey = "name"
	SortByCongestion SortKey = "congestion"
	SortByDistance   SortKey = "distance"
)

// ParseSortKey accepts an empty string as SortByName
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortByName, nil
	case SortByName, SortByCongestion, SortByDistance:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// ListOptions filters and orders ListFacilities
type ListOptions struct {
	Categories []domain.Category
	Exclude    []string
	SortBy     SortKey
	From       *domain.LatLng
}

// FacilityListing is one row of the facility browser
type FacilityListing struct {
	domain.Facility
	Band           domain.CongestionBand `json:"band"`
	DistanceMeters *float64              `json:"distance_meters,omitempty"`
}

// ListFacilities filters snap by category and orders it. Names sort with
// Korean collation; distance sort needs From and otherwise keeps seed order.
func ListFacilities(snap FacilitySnapshot, opts ListOptions) []FacilityListing {
	excluded := toSet(opts.Exclude)
	out := make([]FacilityListing, 0, len(snap.Facilities))
	for _, f := range snap.Facilities {
		if excluded[f.ID] || !categoryMatch(f.Category, opts.Categories) {
			continue
		}
		row := FacilityListing{Facility: f, Band: domain.ClassifyCongestion(f.CongestionLevel)}
		if opts.From != nil {
			d := utils.RoundTo(opts.From.DistanceTo(f.Position()), 1)
			row.DistanceMeters = &d
		}
		out = append(out, row)
	}

	switch opts.SortBy {
	case SortByCongestion:
		slices.SortStableFunc(out, func(a, b FacilityListing) int {
			return cmp.Compare(a.CongestionLevel, b.CongestionLevel)
		})
	case SortByDistance:
		if opts.From != nil {
			slices.SortStableFunc(out, func(a, b FacilityListing) int {
				return cmp.Compare(*a.DistanceMeters, *b.DistanceMeters)
			})
		}
	default:
		// Collators are not safe for concurrent use.
		col := collate.New(language.Korean)
		slices.SortStableFunc(out, func(a, b FacilityListing) int {
			return col.CompareString(a.Name, b.Name)
		})
	}
	return out
}

func categoryMatch(c domain.Category, allowed []domain.Category) bool {
	return len(allowed) == 0 || slices.Contains(allowed, c)
}

// VisibilityOptions bounds the camera cone used for AR labels
type VisibilityOptions struct {
	HalfAngleDegrees float64
	RangeMeters      float64
	Categories       []domain.Category
}

// DefaultVisibilityOptions is a 120 degree cone reaching 200 meters
func DefaultVisibilityOptions() VisibilityOptions {
	return VisibilityOptions{HalfAngleDegrees: 60, RangeMeters: 200}
}

// VisibleFacility is a facility inside the camera cone
type VisibleFacility struct {
	domain.Facility
	DistanceMeters float64 `json:"distance_meters"`
	BearingDegrees float64 `json:"bearing_degrees"`
	AngleDiff      float64 `json:"angle_diff"`
}

// VisibleFacilities returns the facilities a visitor at position facing
// heading would see, nearest first.
func VisibleFacilities(snap FacilitySnapshot, position domain.LatLng, heading float64, opts VisibilityOptions) []VisibleFacility {
	if opts.HalfAngleDegrees <= 0 || opts.RangeMeters <= 0 {
		defaults := DefaultVisibilityOptions()
		opts.HalfAngleDegrees, opts.RangeMeters = defaults.HalfAngleDegrees, defaults.RangeMeters
	}
	heading = geo.NormalizeAngle(heading)

	var out []VisibleFacility
	for _, f := range snap.Facilities {
		if !categoryMatch(f.Category, opts.Categories) {
			continue
		}
		distance := position.DistanceTo(f.Position())
		if distance >= opts.RangeMeters {
			continue
		}
		bearing := geo.NormalizeAngle(position.BearingTo(f.Position()))
		diff := geo.AngleDifference(bearing, heading)
		if utils.Abs(diff) >= opts.HalfAngleDegrees {
			continue
		}
		out = append(out, VisibleFacility{
			Facility:       f,
			DistanceMeters: distance,
			BearingDegrees: bearing,
			AngleDiff:      diff,
		})
	}
	slices.SortStableFunc(out, func(a, b VisibleFacility) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})
	return out
}
