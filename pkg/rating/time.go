package rating

import "time"

// nowUnix returns the current time as seconds since epoch, matching
// spec.md §6.1's created_at field.
func nowUnix() int64 {
	return time.Now().Unix()
}
