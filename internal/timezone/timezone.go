package timezone

import "time"

// Slot dates are stored as wall-clock strings of the specialist; timestamps
// are always UTC.
const DateLayout = "2006-01-02"

func Now() time.Time {
	return time.Now().UTC()
}

func IsValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
