package processor

import "time"

// Clock supplies the unix time an instruction executes at.
type Clock interface {
	Now() uint64
}

type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

type ClockFunc func() uint64

func (f ClockFunc) Now() uint64 {
	return f()
}
