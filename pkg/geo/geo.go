// Package geo provides the geographic helpers shared by the route engine.
//
// Distances use the haversine formula on WGS-84 degrees. The planar
// projection is a local-area approximation tuned for the park's latitude
// band and must not be used as a general map projection.
package geo

import "math"

const (
	// EarthRadiusMeters is the mean radius of Earth in meters.
	EarthRadiusMeters = 6_371_000.0

	// WalkingMetersPerMinute is the average walking pace (about 4 km/h)
	// used for every ETA in the system.
	WalkingMetersPerMinute = 67.0

	// MetersPerDegreeLat and MetersPerDegreeLon are fixed scale factors for
	// the local planar projection around latitude 37.5.
	MetersPerDegreeLat = 111_320.0
	MetersPerDegreeLon = 88_740.0

	// LocalScale converts real meters to display units (10 m -> 1 unit).
	LocalScale = 0.1
)

// Vec3 is a position in the AR scene. Y is always zero; +Z points south.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceMeters returns the great-circle distance between two points in meters
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// BearingDegrees returns the initial great-circle bearing from the first
// point to the second, in [0, 360).
func BearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dLambda := radians(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	return NormalizeAngle(degrees(math.Atan2(y, x)))
}

// NormalizeAngle maps any angle in degrees to [0, 360).
func NormalizeAngle(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	n := math.Mod(deg, 360)
	if n < 0 {
		n += 360
	}
	// -1e-15 + 360 rounds to 360
	if n >= 360 {
		n = 0
	}
	return n
}

// AngleDifference returns the signed turn from current to target in
// (-180, 180]. Positive means the target is clockwise (to the right).
func AngleDifference(target, current float64) float64 {
	d := NormalizeAngle(target - current)
	if d > 180 {
		d -= 360
	}
	return d
}

// GPSToLocalPlanar projects a coordinate into the scene frame centered on
// the reference point. North is -Z, east is +X.
func GPSToLocalPlanar(lat, lon, refLat, refLon float64) Vec3 {
	return Vec3{
		X: (lon - refLon) * MetersPerDegreeLon * LocalScale,
		Y: 0,
		Z: -(lat - refLat) * MetersPerDegreeLat * LocalScale,
	}
}

// Destination returns the point reached by travelling meters along the
// given initial bearing.
func Destination(lat, lon, bearing, meters float64) (float64, float64) {
	delta := meters / EarthRadiusMeters
	theta := radians(bearing)
	phi1 := radians(lat)
	lambda1 := radians(lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	return degrees(phi2), degrees(lambda2)
}

// WalkingMinutes returns the whole minutes needed to walk the distance.
func WalkingMinutes(meters float64) int {
	if meters <= 0 {
		return 0
	}
	return int(math.Ceil(meters / WalkingMetersPerMinute))
}

func radians(d float64) float64 { return d * math.Pi / 180 }

func degrees(r float64) float64 { return r * 180 / math.Pi }
