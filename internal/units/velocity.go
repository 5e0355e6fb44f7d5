package units

// Velocity unit constants. Layers store velocity in km/yr for
// unprojected grids and grid-units/yr for projected grids.
const (
	KMYR = "kmyr"
	MYR  = "myr"
)

// ValidUnits contains all valid velocity unit values
var ValidUnits = []string{KMYR, MYR}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "kmyr, myr"
}

// ConvertVelocity converts a velocity from kilometres per year to the
// target units. Layers store velocity in km/yr.
func ConvertVelocity(velKmYr float64, targetUnits string) float64 {
	switch targetUnits {
	case MYR:
		return velKmYr * 1000
	case KMYR:
		return velKmYr
	default:
		return velKmYr
	}
}
