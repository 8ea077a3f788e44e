package service

import "time"

// Clock abstracts wall time so event scoring and throttling are testable
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
