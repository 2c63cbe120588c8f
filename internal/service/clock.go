package service

import "time"

// timestampPrecision matches what postgres stores for timestamptz.
const timestampPrecision = time.Microsecond

func currentTimestamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(timestampPrecision)
}

// nextTimestamp returns the current time, nudged past prev when the clock has
// not moved far enough for the stored value to change.
func nextTimestamp(now func() time.Time, prev time.Time) time.Time {
	t := currentTimestamp(now)
	floor := prev.UTC().Truncate(timestampPrecision)
	if !t.After(floor) {
		t = floor.Add(timestampPrecision)
	}
	return t
}
