package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Prague")
	if err != nil {
		panic(err)
	}
}

// force the clock into the source site's timezone, the daily price
// history groups snapshots by calendar date and a server that boots
// in a different zone would split days in the wrong place
func Now() time.Time {
	return time.Now().In(Location)
}
