package analysisports

import "time"

// Clock abstracts time so cache TTL behavior is testable without real
// waiting.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
