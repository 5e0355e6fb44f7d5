// Package units provides shared geographic constants and angle/velocity
// unit conversion helpers.
package units

import "math"

// KmPerDegree is the meridional distance of one degree of latitude in
// kilometres. One degree of longitude spans KmPerDegree * cos(lat).
const KmPerDegree = 111.325

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// LonKmPerDegree returns the east-west extent of one degree of longitude
// at the given latitude, in kilometres.
func LonKmPerDegree(latDeg float64) float64 {
	return math.Cos(DegToRad(latDeg)) * KmPerDegree
}

// NormalizeBearing folds an angle in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
