package analytics

import "strings"

// DNFCategory buckets retirement causes
type DNFCategory string

const (
	CategoryMechanical DNFCategory = "Mechanical"
	CategoryAccident   DNFCategory = "Accident"
	CategoryOther      DNFCategory = "Other"
)

// Matched as case-insensitive substrings of the upstream status.
var (
	mechanicalCauses = []string{
		"engine", "gearbox", "transmission", "clutch", "hydraulic", "electrical",
		"electronics", "brake", "suspension", "fuel", "overheating", "mechanical",
		"power unit", "power loss", "turbo", "battery", "oil", "water",
		"cooling", "radiator", "exhaust", "throttle", "driveshaft", "drivetrain",
		"differential", "halfshaft", "wheel", "steering", "pneumatic", "vibrations",
		"technical", "alternator", "spark plugs", "injection", "distributor",
		"axle", "chassis", "rear wing", "front wing", "mgu",
	}
	accidentCauses = []string{
		"accident", "collision", "spun off", "crash", "damage", "debris",
	}
)

// CategorizeCause maps a retirement status to a category. Accident keywords
// win over mechanical ones ("Collision damage" is an accident).
func CategorizeCause(status string) DNFCategory {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return CategoryOther
	}
	for _, k := range accidentCauses {
		if strings.Contains(s, k) {
			return CategoryAccident
		}
	}
	for _, k := range mechanicalCauses {
		if strings.Contains(s, k) {
			return CategoryMechanical
		}
	}
	return CategoryOther
}
