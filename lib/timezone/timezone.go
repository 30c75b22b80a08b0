package timezone

import (
	"time"

	_ "time/tzdata"
)

// Location is the zone the journal portal runs in (Orenburg, UTC+5).
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Yekaterinburg")
	if err != nil {
		panic(err)
	}
}

// In converts t to the portal's zone, dates shown next to grades are only
// meaningful there.
func In(t time.Time) time.Time {
	return t.In(Location)
}
