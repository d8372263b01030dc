package domain

import "time"

// All departure timestamps and window comparisons use one fixed civil
// timezone so thresholds behave consistently across DST transitions.
const ReferenceZone = "Europe/Kyiv"

var kyiv = mustLoadKyiv()

func mustLoadKyiv() *time.Location {
	loc, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		panic("load " + ReferenceZone + ": " + err.Error())
	}
	return loc
}

// Kyiv returns the reference civil timezone.
func Kyiv() *time.Location { return kyiv }

// Now returns the current time in the reference timezone.
func Now() time.Time { return time.Now().In(kyiv) }
