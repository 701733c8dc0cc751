package tick

// Handle identifies a registered interval. The zero value is never issued.
type Handle int64

// NoHandle is the zero Handle.
const NoHandle Handle = 0

// Scheduler delivers repeating callbacks onto the game-loop goroutine.
// Implementations never call back from another goroutine.
type Scheduler interface {
	// SetAbsoluteInterval registers fn to fire every periodMs, anchored to
	// the registration time. The nowMs passed to fn is the scheduled fire
	// time, not the pump time.
	SetAbsoluteInterval(fn func(nowMs int64), periodMs int64) Handle
	ClearInterval(h Handle)
}

type timer struct {
	fn     func(nowMs int64)
	period int64
	nextAt int64
}

// Wheel is the game-loop scheduler. Intervals fire at absolute multiples of
// their period from registration time; a late pump catches up on missed
// firings instead of drifting.
//
// Accessed only from the game loop goroutine - no locks needed.
type Wheel struct {
	clock  Clock
	seq    int64
	timers map[Handle]*timer
	order  []Handle
}

func NewWheel(clock Clock) *Wheel {
	return &Wheel{
		clock:  clock,
		timers: make(map[Handle]*timer),
	}
}

func (w *Wheel) SetAbsoluteInterval(fn func(nowMs int64), periodMs int64) Handle {
	if periodMs <= 0 {
		panic("tick: interval period must be positive")
	}
	w.seq++
	h := Handle(w.seq)
	w.timers[h] = &timer{
		fn:     fn,
		period: periodMs,
		nextAt: w.clock.NowMs() + periodMs,
	}
	w.order = append(w.order, h)
	return h
}

func (w *Wheel) ClearInterval(h Handle) {
	if _, ok := w.timers[h]; !ok {
		return
	}
	delete(w.timers, h)
	for i, o := range w.order {
		if o == h {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Pump fires every interval due at or before nowMs. Callbacks may register
// or clear intervals; intervals registered during a pump first fire on a
// later pump.
func (w *Wheel) Pump(nowMs int64) {
	due := make([]Handle, len(w.order))
	copy(due, w.order)
	for _, h := range due {
		for {
			t, ok := w.timers[h]
			if !ok || t.nextAt > nowMs {
				break
			}
			at := t.nextAt
			t.nextAt += t.period
			t.fn(at)
		}
	}
}

// Len reports the number of live intervals.
func (w *Wheel) Len() int { return len(w.timers) }
