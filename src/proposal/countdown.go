package proposal

import (
	"fmt"
	"sync"
	"time"
)

const (
	dayMs    = 86_400_000
	hourMs   = 3_600_000
	minuteMs = 60_000
	secondMs = 1_000
)

// TickInterval is how often a live countdown refreshes. The UI never shows
// sub-minute precision, so once a minute is enough.
const TickInterval = 60 * time.Second

// CountdownTime is the decomposed time remaining in a voting window.
type CountdownTime struct {
	Days      int  `json:"days"`
	Hours     int  `json:"hours"`
	Minutes   int  `json:"minutes"`
	Seconds   int  `json:"seconds"`
	IsExpired bool `json:"isExpired"`
}

// ComputeCountdown returns the time remaining between now and the close of
// a voting window that opened at createdAtMs and runs for durationDays.
// Decomposition always floors, so 23h59m59s reads as 0 days 23 hours.
// A non-positive durationDays falls back to the default window.
func ComputeCountdown(createdAtMs int64, durationDays int, now time.Time) CountdownTime {
	if durationDays <= 0 {
		durationDays = DefaultDurationDays
	}
	diff := createdAtMs + int64(durationDays)*dayMs - now.UnixMilli()
	if diff <= 0 {
		return CountdownTime{IsExpired: true}
	}
	return CountdownTime{
		Days:    int(diff / dayMs),
		Hours:   int(diff % dayMs / hourMs),
		Minutes: int(diff % hourMs / minuteMs),
		Seconds: int(diff % minuteMs / secondMs),
	}
}

// Countdown returns the proposal's current countdown state.
func (p Proposal) Countdown(now time.Time) CountdownTime {
	return ComputeCountdown(p.CreatedAt, p.DurationDays, now)
}

// TimeLeftLabel renders the short human label shown on proposal cards.
func TimeLeftLabel(createdAtMs int64, durationDays int, now time.Time) string {
	cd := ComputeCountdown(createdAtMs, durationDays, now)
	switch {
	case cd.IsExpired:
		return "Ended"
	case cd.Days > 0:
		return fmt.Sprintf("%d days", cd.Days)
	case cd.Hours > 0:
		return fmt.Sprintf("%d hours", cd.Hours)
	default:
		return "Less than 1 hour"
	}
}

// CountdownTicker recomputes a proposal countdown on a fixed interval and
// hands each result to its callback. Every tick reads a fresh clock; the
// ticker never reuses the timestamp it was created with. Stop releases the
// underlying timer and must be called when the consuming view goes away.
type CountdownTicker struct {
	createdAtMs  int64
	durationDays int
	interval     time.Duration
	fn           func(CountdownTime)
	now          func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewCountdownTicker starts a ticker for the given window. The callback is
// invoked once immediately and then on every interval until Stop is called.
func NewCountdownTicker(createdAtMs int64, durationDays int, interval time.Duration, fn func(CountdownTime)) *CountdownTicker {
	if interval <= 0 {
		interval = TickInterval
	}
	t := &CountdownTicker{
		createdAtMs:  createdAtMs,
		durationDays: durationDays,
		interval:     interval,
		fn:           fn,
		now:          time.Now,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *CountdownTicker) run() {
	defer close(t.done)
	t.fn(ComputeCountdown(t.createdAtMs, t.durationDays, t.now()))
	tick := time.NewTicker(t.interval)
	defer tick.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-tick.C:
			t.fn(ComputeCountdown(t.createdAtMs, t.durationDays, t.now()))
		}
	}
}

// Stop cancels the ticker and waits for the last callback to finish. Safe
// to call more than once.
func (t *CountdownTicker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}
