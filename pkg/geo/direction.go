package geo

// Direction is the coarse screen-relative instruction shown on the overlay.
type Direction string

const (
	DirectionStraight Direction = "straight"
	DirectionRight    Direction = "right"
	DirectionLeft     Direction = "left"
	DirectionBack     Direction = "back"
)

// ScreenDirection classifies a signed angle (see AngleDifference) into one
// of four quadrants centered on the view direction.
func ScreenDirection(angleDiff float64) Direction {
	switch {
	case angleDiff > -45 && angleDiff <= 45:
		return DirectionStraight
	case angleDiff > 45 && angleDiff <= 135:
		return DirectionRight
	case angleDiff > -135 && angleDiff <= -45:
		return DirectionLeft
	default:
		return DirectionBack
	}
}
