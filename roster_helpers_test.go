package roster_test

import "time"

var testTime = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
