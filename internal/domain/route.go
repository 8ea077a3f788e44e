package domain

// MaxDestinations caps how many facilities a visitor may select
const MaxDestinations = 5

// Selection is the visitor's choice snapshot consumed by the recommender
type Selection struct {
	DestinationIDs          []string `json:"destination_ids"`
	AttendingEventIDs       []string `json:"attending_event_ids"`
	ForcedRecommendationIDs []string `json:"forced_recommendation_ids"`
}

// OrderingMode is the global ordering decided by the detour-bound check
type OrderingMode string

const (
	OrderCongestionFirst OrderingMode = "congestion_first"
	OrderDistanceFirst   OrderingMode = "distance_first"
)

// RecommendedDestination is a facility enriched for one recommendation pass
type RecommendedDestination struct {
	Facility
	Event                 *Event  `json:"event"`
	IsAttending           bool    `json:"is_attending"`
	HasEvent              bool    `json:"has_event"`
	TimeUntilEventMinutes *int    `json:"time_until_event_minutes"`
	PriorityScore         int     `json:"priority_score"`
	DistanceMeters        float64 `json:"distance_meters"`
	Recommended           bool    `json:"recommended"`
	NotRecommendedReason  string  `json:"not_recommended_reason"`
	Forced                bool    `json:"forced"`
}

// Recommendation is the full output of one recommender call
type Recommendation struct {
	Mode                  OrderingMode             `json:"mode"`
	DistanceOrderMeters   float64                  `json:"distance_order_meters"`
	CongestionOrderMeters float64                  `json:"congestion_order_meters"`
	Destinations          []RecommendedDestination `json:"destinations"`
}

// Route returns the recommended prefix of the ordered list
func (r *Recommendation) Route() []RecommendedDestination {
	if r == nil {
		return nil
	}
	var route []RecommendedDestination
	for _, d := range r.Destinations {
		if !d.Recommended {
			break
		}
		route = append(route, d)
	}
	return route
}
