package clock

import "time"

type Clock interface {
	Now() time.Time
}

// TickClock is a Clock that can also schedule periodic ticks.
type TickClock interface {
	Clock
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of *time.Ticker the tick loop depends on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }

func (s systemTicker) Stop() { s.t.Stop() }
